// internal/event/emitter.go
package event

import (
	"time"

	"go.uber.org/zap"

	"printer-bridge/internal/metrics"
	"printer-bridge/internal/model"
)

// Emitter publishes named events while at least one listener is registered
type Emitter struct {
	bus      *Bus
	registry *Registry
	metrics  *metrics.Registry
	logger   *zap.Logger
}

// NewEmitter creates an emitter. metrics may be nil.
func NewEmitter(bus *Bus, registry *Registry, m *metrics.Registry, logger *zap.Logger) *Emitter {
	return &Emitter{
		bus:      bus,
		registry: registry,
		metrics:  m,
		logger:   logger,
	}
}

// Emit publishes name with optional data. Nothing is published when no
// listener is registered.
func (e *Emitter) Emit(name model.EventName, data string) {
	if !e.registry.Active() {
		return
	}

	event := model.PrinterEvent{
		Name:      name,
		Data:      data,
		Timestamp: time.Now(),
	}
	if !e.bus.Publish(event) {
		e.metrics.IncEventsDropped()
		return
	}

	e.metrics.IncEventsEmitted(string(name))
	e.logger.Debug("Event emitted", zap.String("event_name", string(name)))
}
