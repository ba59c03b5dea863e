// internal/monitor/monitor.go

// Package monitor polls the connected printer and turns status transitions
// into named events.
package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"printer-bridge/internal/config"
	"printer-bridge/internal/fault"
	"printer-bridge/internal/metrics"
	"printer-bridge/internal/model"
)

// Poll results recorded in printer_bridge_monitor_polls_total
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultIdle    = "idle"
	ResultSkipped = "skipped"
)

// StatusSource queries the live printer. Failures are expected to be
// reported as events by the source itself.
type StatusSource interface {
	Status(ctx context.Context) (*model.Status, error)
}

// Emitter publishes status events
type Emitter interface {
	Emit(name model.EventName, data string)
}

// Monitor is a passive status poller
type Monitor struct {
	source   StatusSource
	emitter  Emitter
	metrics  *metrics.Registry
	breaker  *gobreaker.CircuitBreaker[*model.Status]
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	mu   sync.Mutex
	last *model.Status
}

// New creates a monitor. Repeated communication failures open the breaker
// and polling pauses for cfg.OpenTimeout.
func New(cfg config.MonitorConfig, statusTimeout time.Duration, source StatusSource, emitter Emitter, m *metrics.Registry, logger *zap.Logger) *Monitor {
	mon := &Monitor{
		source:   source,
		emitter:  emitter,
		metrics:  m,
		interval: cfg.Interval,
		timeout:  statusTimeout,
		logger:   logger.With(zap.String("component", "monitor")),
	}

	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 3
	}
	mon.breaker = gobreaker.NewCircuitBreaker[*model.Status](gobreaker.Settings{
		Name:        "printer-status",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, fault.ErrNoConnection)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			mon.logger.Info("Status breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return mon
}

// Run polls until ctx is done
func (m *Monitor) Run(ctx context.Context) {
	if m.interval <= 0 {
		m.logger.Warn("Monitor interval not positive, polling disabled")
		return
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info("Status monitor started", zap.Duration("interval", m.interval))
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Status monitor stopped")
			return
		case <-ticker.C:
			m.Poll(ctx)
		}
	}
}

// Poll runs one status query and emits the events for whatever changed since
// the previous successful poll. It returns the poll result label.
func (m *Monitor) Poll(ctx context.Context) string {
	pollCtx := ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	status, err := m.breaker.Execute(func() (*model.Status, error) {
		return m.source.Status(pollCtx)
	})

	result := ResultOK
	switch {
	case err == nil:
		m.observe(status)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		result = ResultSkipped
	case errors.Is(err, fault.ErrNoConnection):
		result = ResultIdle
		m.Reset()
	default:
		result = ResultError
		m.Reset()
		m.logger.Debug("Status poll failed", zap.Error(err))
	}

	m.metrics.IncMonitorPolls(result)
	return result
}

// Reset forgets the last status so the next poll reports a full snapshot
func (m *Monitor) Reset() {
	m.mu.Lock()
	m.last = nil
	m.mu.Unlock()
}

func (m *Monitor) observe(status *model.Status) {
	if status == nil {
		return
	}

	m.mu.Lock()
	prev := m.last
	snapshot := *status
	m.last = &snapshot
	m.mu.Unlock()

	for _, name := range Transitions(prev, status) {
		m.emitter.Emit(name, "")
	}
}

type paperLevel int

const (
	paperReady paperLevel = iota
	paperNearEmpty
	paperEmpty
)

func levelOf(s *model.Status) paperLevel {
	switch {
	case s.PaperEmpty:
		return paperEmpty
	case s.PaperNearEmpty:
		return paperNearEmpty
	default:
		return paperReady
	}
}

// Transitions lists the events implied by moving from prev to next. A nil
// prev yields the full snapshot.
func Transitions(prev, next *model.Status) []model.EventName {
	if next == nil {
		return nil
	}
	var events []model.EventName

	if prev == nil || prev.Printable() != next.Printable() {
		if next.Printable() {
			events = append(events, model.EventPrinterIsReady)
		} else {
			events = append(events, model.EventPrinterHasError)
		}
	}

	if level := levelOf(next); prev == nil || levelOf(prev) != level {
		switch level {
		case paperEmpty:
			events = append(events, model.EventPrinterPaperIsEmpty)
		case paperNearEmpty:
			events = append(events, model.EventPrinterPaperIsNearEmpty)
		default:
			events = append(events, model.EventPrinterPaperIsReady)
		}
	}

	if prev == nil || prev.CoverOpen != next.CoverOpen {
		if next.CoverOpen {
			events = append(events, model.EventPrinterCoverOpened)
		} else {
			events = append(events, model.EventPrinterCoverClosed)
		}
	}

	if prev == nil || prev.DrawerOpenCloseSignal != next.DrawerOpenCloseSignal {
		if next.DrawerOpenCloseSignal {
			events = append(events, model.EventPrinterDrawerOpened)
		} else {
			events = append(events, model.EventPrinterDrawerClosed)
		}
	}

	return events
}
