// internal/driver/registry.go
package driver

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"printer-bridge/internal/driver/escpos"
	"printer-bridge/internal/driver/starline"
	"printer-bridge/internal/model"
)

// EncoderFactory creates an encoder instance
type EncoderFactory func() Encoder

// Registry manages emulation encoders
type Registry struct {
	encoders map[model.Emulation]EncoderFactory
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewRegistry creates a registry holding the built-in emulations
func NewRegistry(logger *zap.Logger) *Registry {
	r := &Registry{
		encoders: make(map[model.Emulation]EncoderFactory),
		logger:   logger,
	}
	r.Register(model.EmulationEscPos, func() Encoder { return escpos.New() })
	r.Register(model.EmulationStarLine, func() Encoder { return starline.New() })
	return r
}

// Register registers an encoder factory
func (r *Registry) Register(emulation model.Emulation, factory EncoderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.encoders[emulation] = factory
	r.logger.Debug("Encoder registered", zap.String("emulation", string(emulation)))
}

// Encoder creates the encoder for an emulation
func (r *Registry) Encoder(emulation model.Emulation) (Encoder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.encoders[emulation]
	if !exists {
		return nil, fmt.Errorf("no encoder registered for emulation %s", emulation)
	}
	return factory(), nil
}

// Emulations returns all registered emulations, sorted
func (r *Registry) Emulations() []model.Emulation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Emulation, 0, len(r.encoders))
	for e := range r.encoders {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsSupported checks if an emulation is registered
func (r *Registry) IsSupported(emulation model.Emulation) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.encoders[emulation]
	return exists
}
