// internal/discovery/scanner.go

// Package discovery searches the host for reachable receipt printers.
package discovery

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"printer-bridge/internal/model"
)

// Scanner finds printers on one interface type
type Scanner interface {
	Scan(ctx context.Context) ([]model.FoundPrinter, error)
	Interface() model.InterfaceType
	IsAvailable() bool
}

// Manager fans a search out to the registered scanners
type Manager struct {
	mu       sync.RWMutex
	scanners map[model.InterfaceType]Scanner
	timeout  time.Duration
	logger   *zap.Logger
}

// NewManager creates a scanner manager. A zero timeout leaves the caller's
// deadline in charge.
func NewManager(timeout time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		scanners: make(map[model.InterfaceType]Scanner),
		timeout:  timeout,
		logger:   logger.With(zap.String("component", "discovery")),
	}
}

// Register adds a scanner, replacing any previous one for the same interface
func (m *Manager) Register(scanner Scanner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanners[scanner.Interface()] = scanner
	m.logger.Info("Scanner registered", zap.String("interface", string(scanner.Interface())))
}

// Interfaces returns the interface types that currently have an available scanner
func (m *Manager) Interfaces() []model.InterfaceType {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var available []model.InterfaceType
	for _, iface := range model.AllInterfaces {
		if s, ok := m.scanners[iface]; ok && s.IsAvailable() {
			available = append(available, iface)
		}
	}
	return available
}

// Search scans the requested interfaces concurrently. An empty filter
// searches everything registered. A failing scanner is logged and skipped so
// one broken subsystem never hides printers found on another.
func (m *Manager) Search(ctx context.Context, interfaces []model.InterfaceType) ([]model.FoundPrinter, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	scanners := m.selectScanners(interfaces)
	results := make([][]model.FoundPrinter, len(scanners))

	var wg sync.WaitGroup
	for i, scanner := range scanners {
		wg.Add(1)
		go func(i int, scanner Scanner) {
			defer wg.Done()

			startTime := time.Now()
			found, err := scanner.Scan(ctx)
			if err != nil {
				m.logger.Error("Scanner failed",
					zap.String("interface", string(scanner.Interface())),
					zap.Error(err),
				)
			}
			results[i] = found

			m.logger.Info("Scanner completed",
				zap.String("interface", string(scanner.Interface())),
				zap.Int("printers_found", len(found)),
				zap.Duration("duration", time.Since(startTime)),
			)
		}(i, scanner)
	}
	wg.Wait()

	seen := make(map[model.ConnectionSettings]struct{})
	printers := []model.FoundPrinter{}
	for _, found := range results {
		for _, p := range found {
			if _, dup := seen[p.ConnectionSettings]; dup {
				continue
			}
			seen[p.ConnectionSettings] = struct{}{}
			printers = append(printers, p)
		}
	}

	if err := ctx.Err(); err != nil && len(printers) == 0 {
		return printers, err
	}
	return printers, nil
}

func (m *Manager) selectScanners(interfaces []model.InterfaceType) []Scanner {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(interfaces) == 0 {
		interfaces = model.AllInterfaces
	}

	var selected []Scanner
	seen := make(map[model.InterfaceType]struct{})
	for _, iface := range interfaces {
		if _, dup := seen[iface]; dup {
			continue
		}
		seen[iface] = struct{}{}

		scanner, ok := m.scanners[iface]
		if !ok {
			m.logger.Debug("No scanner for interface", zap.String("interface", string(iface)))
			continue
		}
		if !scanner.IsAvailable() {
			m.logger.Debug("Scanner not available, skipping", zap.String("interface", string(iface)))
			continue
		}
		selected = append(selected, scanner)
	}
	return selected
}

// EmulationForBrand picks the command language a brand's printers speak
func EmulationForBrand(brand model.Brand) model.Emulation {
	if brand == model.BrandStar {
		return model.EmulationStarLine
	}
	return model.EmulationEscPos
}
