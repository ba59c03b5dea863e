// internal/event/registry.go
package event

import (
	"fmt"
	"sync/atomic"

	"printer-bridge/internal/model"
)

// Registry counts active listeners. The count is maintained by the outer
// surface; the core only reads it.
type Registry struct {
	count    atomic.Int64
	onChange func(count int64)
}

// NewRegistry creates an empty registry. onChange may be nil.
func NewRegistry(onChange func(count int64)) *Registry {
	return &Registry{onChange: onChange}
}

// Add registers one listener for name
func (r *Registry) Add(name model.EventName) (int64, error) {
	if !name.IsValid() {
		return r.Count(), fmt.Errorf("unknown event name: %s", name)
	}
	return r.Register(), nil
}

// Register registers one listener for every event
func (r *Registry) Register() int64 {
	return r.changed(r.count.Add(1))
}

// Remove drops n listeners
func (r *Registry) Remove(n int) int64 {
	return r.changed(r.count.Add(-int64(n)))
}

// Count returns the raw listener count, which may be negative after
// unbalanced removals
func (r *Registry) Count() int64 {
	return r.count.Load()
}

// Active reports whether anyone is listening
func (r *Registry) Active() bool {
	return r.Count() > 0
}

func (r *Registry) changed(count int64) int64 {
	if r.onChange != nil {
		r.onChange(count)
	}
	return count
}
