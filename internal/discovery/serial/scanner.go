// internal/discovery/serial/scanner.go
package serial

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"printer-bridge/internal/model"
)

// PortLister returns the serial ports known to the host
type PortLister func() ([]*enumerator.PortDetails, error)

// Scanner lists paired Bluetooth SPP ports
type Scanner struct {
	logger    *zap.Logger
	config    *Config
	listPorts PortLister
}

// Config for serial scanner
type Config struct {
	// PortPatterns match port names that belong to Bluetooth serial links
	PortPatterns []string `json:"port_patterns"`
	Emulation    model.Emulation
}

// NewScanner creates a new serial scanner
func NewScanner(logger *zap.Logger, config *Config) *Scanner {
	if config == nil {
		config = &Config{}
	}
	if len(config.PortPatterns) == 0 {
		config.PortPatterns = getDefaultPortPatterns()
	}
	if config.Emulation == "" {
		config.Emulation = model.EmulationEscPos
	}

	return &Scanner{
		logger:    logger.With(zap.String("scanner", "bluetooth")),
		config:    config,
		listPorts: enumerator.GetDetailedPortsList,
	}
}

// WithPortLister replaces the host enumerator
func (s *Scanner) WithPortLister(lister PortLister) *Scanner {
	s.listPorts = lister
	return s
}

// Interface returns the interface type this scanner covers
func (s *Scanner) Interface() model.InterfaceType {
	return model.InterfaceBluetooth
}

// IsAvailable checks if serial port scanning is available
func (s *Scanner) IsAvailable() bool {
	return true
}

// Scan lists serial ports whose names mark them as Bluetooth links.
// USB serial adapters are skipped.
func (s *Scanner) Scan(ctx context.Context) ([]model.FoundPrinter, error) {
	s.logger.Info("Starting bluetooth port scan")

	ports, err := s.listPorts()
	if err != nil {
		return nil, fmt.Errorf("failed to get serial ports: %w", err)
	}

	patterns := s.compilePatterns()
	printers := []model.FoundPrinter{}
	for _, port := range ports {
		if err := ctx.Err(); err != nil {
			return printers, err
		}
		if port == nil || port.IsUSB || !matchesAny(patterns, port.Name) {
			continue
		}

		printers = append(printers, model.FoundPrinter{
			ConnectionSettings: model.ConnectionSettings{
				Identifier: port.Name,
				Interface:  model.InterfaceBluetooth,
			},
			Information: model.PrinterInformation{
				Emulation: string(s.config.Emulation),
				Model:     portModel(port),
			},
		})
	}

	s.logger.Info("Bluetooth scan completed",
		zap.Int("ports_seen", len(ports)),
		zap.Int("printers_found", len(printers)),
	)
	return printers, nil
}

func (s *Scanner) compilePatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(s.config.PortPatterns))
	for _, p := range s.config.PortPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			s.logger.Warn("Invalid port pattern", zap.String("pattern", p), zap.Error(err))
			continue
		}
		patterns = append(patterns, re)
	}
	return patterns
}

func matchesAny(patterns []*regexp.Regexp, name string) bool {
	for _, re := range patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

func portModel(port *enumerator.PortDetails) string {
	if port.Product != "" {
		return port.Product
	}
	base := filepath.Base(port.Name)
	base = strings.TrimPrefix(base, "tty.")
	base = strings.TrimPrefix(base, "cu.")
	return base
}

// getDefaultPortPatterns returns the Bluetooth serial naming of each platform
func getDefaultPortPatterns() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{`^/dev/(tty|cu)\..*(Bluetooth|SerialPort|SPP)`}
	case "windows":
		// Windows exposes SPP links as ordinary COM ports
		return []string{`^COM[0-9]+$`}
	default:
		return []string{`^/dev/rfcomm[0-9]+$`}
	}
}
