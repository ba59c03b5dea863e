// internal/session/session.go

// Package session owns the single live printer handle and serializes every
// operation that touches it.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"printer-bridge/internal/device"
	"printer-bridge/internal/fault"
	"printer-bridge/internal/model"
)

// State is the lifecycle state of the session
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosing:
		return "closing"
	default:
		return "disconnected"
	}
}

// StateChangeFunc observes state transitions
type StateChangeFunc func(from, to State, settings model.ConnectionSettings)

// Session holds at most one open printer. Connect, Disconnect and Do share a
// one-slot semaphore so the handle is never used by two operations at once
// and never closed under a writer.
type Session struct {
	connector   device.Connector
	emulation   model.Emulation
	openTimeout time.Duration
	logger      *zap.Logger

	slot chan struct{}

	mu         sync.RWMutex
	state      State
	handle     device.Printer
	settings   model.ConnectionSettings
	generation uint64
	observers  []StateChangeFunc
}

// New creates a disconnected session
func New(connector device.Connector, emulation model.Emulation, openTimeout time.Duration, logger *zap.Logger) *Session {
	return &Session{
		connector:   connector,
		emulation:   emulation,
		openTimeout: openTimeout,
		logger:      logger.With(zap.String("component", "session")),
		slot:        make(chan struct{}, 1),
	}
}

// OnStateChange registers an observer. Observers run synchronously inside the
// critical section and must not call back into the session.
func (s *Session) OnStateChange(fn StateChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// State returns the current state
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Settings returns the settings of the connected printer
func (s *Session) Settings() (model.ConnectionSettings, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, s.state == StateConnected
}

// Emulation returns the emulation new connections are opened with
func (s *Session) Emulation() model.Emulation {
	return s.emulation
}

// Health returns the metrics of the live handle
func (s *Session) Health() (device.HealthMetrics, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.handle == nil {
		return device.HealthMetrics{}, false
	}
	return s.handle.Health(), true
}

// Connect closes any existing handle and opens a new one. Failures closing
// the old handle are logged and swallowed.
func (s *Session) Connect(ctx context.Context, settings model.ConnectionSettings) error {
	if err := s.acquire(ctx); err != nil {
		return fault.Classify(err)
	}
	defer s.release()

	s.closeLocked("reconnect")

	s.setState(StateConnecting, settings)

	openCtx := ctx
	if s.openTimeout > 0 {
		var cancel context.CancelFunc
		openCtx, cancel = context.WithTimeout(ctx, s.openTimeout)
		defer cancel()
	}

	printer, err := s.connector.Connect(openCtx, settings, s.emulation)
	if err != nil {
		s.setState(StateDisconnected, settings)
		return fault.Classify(err)
	}

	s.mu.Lock()
	s.handle = printer
	s.settings = settings
	s.generation++
	s.mu.Unlock()
	s.setState(StateConnected, settings)
	return nil
}

// Disconnect closes the live handle. It waits for an in-flight operation and
// succeeds when nothing is connected. If ctx ends first the close is left to
// run once the operation releases the handle, and the context error is returned.
func (s *Session) Disconnect(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		s.mu.RLock()
		generation, open := s.generation, s.handle != nil
		s.mu.RUnlock()
		if open {
			s.logger.Warn("Disconnect interrupted, printer closes after the running operation", zap.Error(err))
			go s.closeWhenIdle(generation)
		}
		return fault.Classify(err)
	}
	defer s.release()

	s.closeLocked("disconnect")
	return nil
}

// Do runs fn against the live handle inside the critical section. Without a
// connected handle fn is not called and a NoConnection fault is returned.
// A failure that leaves the handle closed resets the session.
func (s *Session) Do(ctx context.Context, fn func(ctx context.Context, printer device.Printer) error) error {
	if err := s.acquire(ctx); err != nil {
		return fault.Classify(err)
	}
	defer s.release()

	s.mu.RLock()
	printer, state := s.handle, s.state
	s.mu.RUnlock()

	if state != StateConnected || printer == nil {
		return fault.NoConnection()
	}

	err := fn(ctx, printer)
	if err != nil && !printer.IsOpen() {
		s.logger.Warn("Printer handle lost, resetting session", zap.Error(err))
		s.closeLocked("handle lost")
	}
	return err
}

// closeWhenIdle waits for the slot and closes the handle opened as
// generation, unless a later Connect has replaced it.
func (s *Session) closeWhenIdle(generation uint64) {
	s.slot <- struct{}{}
	defer s.release()

	s.mu.RLock()
	current := s.generation
	s.mu.RUnlock()
	if current != generation {
		return
	}
	s.closeLocked("disconnect")
}

// closeLocked releases the handle. The caller holds the slot.
func (s *Session) closeLocked(reason string) {
	s.mu.RLock()
	printer, settings := s.handle, s.settings
	s.mu.RUnlock()

	if printer == nil {
		return
	}

	s.setState(StateClosing, settings)
	if err := printer.Close(); err != nil {
		s.logger.Warn("Failed to close printer",
			zap.String("identifier", settings.Identifier),
			zap.String("reason", reason),
			zap.Error(err),
		)
	}

	s.mu.Lock()
	s.handle = nil
	s.settings = model.ConnectionSettings{}
	s.mu.Unlock()
	s.setState(StateDisconnected, settings)

	s.logger.Info("Printer closed",
		zap.String("identifier", settings.Identifier),
		zap.String("reason", reason),
	)
}

func (s *Session) setState(to State, settings model.ConnectionSettings) {
	s.mu.Lock()
	from := s.state
	s.state = to
	observers := append([]StateChangeFunc(nil), s.observers...)
	s.mu.Unlock()

	if from == to {
		return
	}
	for _, fn := range observers {
		fn(from, to, settings)
	}
}

func (s *Session) acquire(ctx context.Context) error {
	select {
	case s.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) release() {
	<-s.slot
}
