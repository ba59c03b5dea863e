// internal/discovery/lan/scanner.go
package lan

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"time"

	"go.uber.org/zap"

	"printer-bridge/internal/model"
)

// maxHosts caps a CIDR sweep at a /16
const maxHosts = 1 << 16

// Dialer opens the probe connection
type Dialer func(ctx context.Context, network, address string) (net.Conn, error)

// Scanner probes raw print ports on configured hosts
type Scanner struct {
	logger *zap.Logger
	config *Config
	dial   Dialer
}

// Config for LAN scanner
type Config struct {
	Hosts       []string      `json:"hosts"`
	CIDR        string        `json:"cidr"`
	Port        int           `json:"port"`
	ConnTimeout time.Duration `json:"connection_timeout"`
	Concurrency int           `json:"concurrency"`
	Emulation   model.Emulation
}

// NewScanner creates a new LAN scanner
func NewScanner(logger *zap.Logger, config *Config) *Scanner {
	if config == nil {
		config = &Config{}
	}
	if config.Port == 0 {
		config.Port = 9100
	}
	if config.ConnTimeout <= 0 {
		config.ConnTimeout = time.Second
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 32
	}
	if config.Emulation == "" {
		config.Emulation = model.EmulationEscPos
	}

	dialer := &net.Dialer{Timeout: config.ConnTimeout}
	return &Scanner{
		logger: logger.With(zap.String("scanner", "lan")),
		config: config,
		dial:   dialer.DialContext,
	}
}

// WithDialer replaces the network dialer
func (s *Scanner) WithDialer(dial Dialer) *Scanner {
	s.dial = dial
	return s
}

// Interface returns the interface type this scanner covers
func (s *Scanner) Interface() model.InterfaceType {
	return model.InterfaceLAN
}

// IsAvailable reports whether any host or range is configured
func (s *Scanner) IsAvailable() bool {
	return len(s.config.Hosts) > 0 || s.config.CIDR != ""
}

type probeResult struct {
	address string
	open    bool
}

// Scan connects to the print port of every candidate host. Hosts that
// accept the connection are reported.
func (s *Scanner) Scan(ctx context.Context) ([]model.FoundPrinter, error) {
	targets, err := s.targets()
	if err != nil {
		return nil, err
	}
	s.logger.Info("Starting LAN scan", zap.Int("targets", len(targets)), zap.Int("port", s.config.Port))

	workers := min(s.config.Concurrency, len(targets))
	targetChan := make(chan string)
	resultChan := make(chan probeResult, len(targets))

	for i := 0; i < workers; i++ {
		go s.probeWorker(ctx, targetChan, resultChan)
	}

	sent := 0
send:
	for _, target := range targets {
		select {
		case targetChan <- target:
			sent++
		case <-ctx.Done():
			break send
		}
	}
	close(targetChan)

	open := make(map[string]bool, sent)
	for i := 0; i < sent; i++ {
		result := <-resultChan
		if result.open {
			open[result.address] = true
		}
	}

	// report in target order
	printers := []model.FoundPrinter{}
	for _, target := range targets {
		if !open[target] {
			continue
		}
		printers = append(printers, model.FoundPrinter{
			ConnectionSettings: model.ConnectionSettings{
				Identifier: target,
				Interface:  model.InterfaceLAN,
			},
			Information: model.PrinterInformation{
				Emulation: string(s.config.Emulation),
				Model:     "Network Printer",
			},
		})
	}

	s.logger.Info("LAN scan completed", zap.Int("printers_found", len(printers)))
	return printers, ctx.Err()
}

func (s *Scanner) probeWorker(ctx context.Context, targets <-chan string, results chan<- probeResult) {
	for target := range targets {
		results <- probeResult{address: target, open: s.probe(ctx, target)}
	}
}

func (s *Scanner) probe(ctx context.Context, address string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, s.config.ConnTimeout)
	defer cancel()

	conn, err := s.dial(probeCtx, "tcp", address)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// targets expands the host list and CIDR into unique host:port addresses
func (s *Scanner) targets() ([]string, error) {
	port := strconv.Itoa(s.config.Port)
	seen := make(map[string]struct{})
	var targets []string
	add := func(address string) {
		if _, dup := seen[address]; dup {
			return
		}
		seen[address] = struct{}{}
		targets = append(targets, address)
	}

	for _, host := range s.config.Hosts {
		if _, _, err := net.SplitHostPort(host); err == nil {
			add(host)
			continue
		}
		add(net.JoinHostPort(host, port))
	}

	if s.config.CIDR != "" {
		hosts, err := ExpandCIDR(s.config.CIDR)
		if err != nil {
			return nil, err
		}
		for _, addr := range hosts {
			add(net.JoinHostPort(addr.String(), port))
		}
	}
	return targets, nil
}

// ExpandCIDR lists the usable host addresses of an IPv4 prefix. Network and
// broadcast addresses are skipped for prefixes shorter than /31.
func ExpandCIDR(cidr string) ([]netip.Addr, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid lan cidr %q: %w", cidr, err)
	}
	prefix = prefix.Masked()
	if !prefix.Addr().Is4() {
		return nil, fmt.Errorf("lan cidr %q: only IPv4 ranges can be swept", cidr)
	}

	size := 1 << (32 - prefix.Bits())
	if size > maxHosts {
		return nil, fmt.Errorf("lan cidr %q is larger than a /16", cidr)
	}

	hosts := make([]netip.Addr, 0, size)
	for addr := prefix.Addr(); prefix.Contains(addr); addr = addr.Next() {
		hosts = append(hosts, addr)
		if !addr.Next().IsValid() {
			break
		}
	}
	if prefix.Bits() < 31 && len(hosts) > 2 {
		hosts = hosts[1 : len(hosts)-1]
	}
	return hosts, nil
}
