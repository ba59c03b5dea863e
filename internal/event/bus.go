// internal/event/bus.go

// Package event fans printer status events out to registered listeners.
package event

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"printer-bridge/internal/model"
)

// Bus distributes events to subscribers
type Bus struct {
	subscribers map[int]*subscriber
	events      chan model.PrinterEvent
	nextID      int
	mutex       sync.RWMutex
	logger      *zap.Logger
}

type subscriber struct {
	names map[model.EventName]struct{}
	ch    chan model.PrinterEvent
}

func (s *subscriber) wants(name model.EventName) bool {
	if len(s.names) == 0 {
		return true
	}
	_, ok := s.names[name]
	return ok
}

// NewBus creates a new event bus
func NewBus(bufferSize int, logger *zap.Logger) *Bus {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Bus{
		subscribers: make(map[int]*subscriber),
		events:      make(chan model.PrinterEvent, bufferSize),
		logger:      logger,
	}
}

// Start distributes events until ctx is done
func (eb *Bus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-eb.events:
			eb.distributeEvent(event)
		}
	}
}

// Publish queues an event. It reports false when the bus is full and the
// event was dropped.
func (eb *Bus) Publish(event model.PrinterEvent) bool {
	select {
	case eb.events <- event:
		return true
	default:
		eb.logger.Warn("Event bus full, dropping event",
			zap.String("event_name", string(event.Name)),
		)
		return false
	}
}

// Subscribe returns a channel receiving the named events, or every event
// when no names are given, and a function that cancels the subscription
func (eb *Bus) Subscribe(names ...model.EventName) (<-chan model.PrinterEvent, func()) {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	sub := &subscriber{
		names: make(map[model.EventName]struct{}, len(names)),
		ch:    make(chan model.PrinterEvent, 100),
	}
	for _, name := range names {
		sub.names[name] = struct{}{}
	}

	id := eb.nextID
	eb.nextID++
	eb.subscribers[id] = sub

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			eb.mutex.Lock()
			defer eb.mutex.Unlock()
			delete(eb.subscribers, id)
			close(sub.ch)
		})
	}
}

// distributeEvent distributes an event to subscribers
func (eb *Bus) distributeEvent(event model.PrinterEvent) {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()

	for _, sub := range eb.subscribers {
		if !sub.wants(event.Name) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			// slow subscriber
		}
	}
}
