// internal/device/printer.go

// Package device pairs a transport with an emulation encoder to form a live
// printer handle.
package device

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"printer-bridge/internal/document"
	"printer-bridge/internal/driver"
	"printer-bridge/internal/fault"
	"printer-bridge/internal/model"
	"printer-bridge/internal/protocol"
)

// Printer is a handle to one opened printer
type Printer interface {
	// Connection management
	Open(ctx context.Context) error
	Close() error
	IsOpen() bool

	// Device information
	Settings() model.ConnectionSettings
	Emulation() model.Emulation
	Health() HealthMetrics

	// Operations
	Status(ctx context.Context) (*model.Status, error)
	Print(ctx context.Context, buf document.Buffer) (int, error)
}

// Options tune the handle
type Options struct {
	// CheckStatus queries the printer before every job and refuses to print
	// when the status is not printable
	CheckStatus   bool
	StatusTimeout time.Duration
	PrintTimeout  time.Duration
}

// HealthMetrics summarises the outcome of operations on a handle
type HealthMetrics struct {
	TotalOperations int64          `json:"total_operations"`
	ErrorCount      int64          `json:"error_count"`
	SuccessRate     float64        `json:"success_rate"`
	ResponseTime    time.Duration  `json:"response_time"`
	LastSuccessTime *time.Time     `json:"last_success_time,omitempty"`
	LastErrorTime   *time.Time     `json:"last_error_time,omitempty"`
	Transport       protocol.Stats `json:"transport"`
}

// RawPrinter drives a printer over a byte transport
type RawPrinter struct {
	settings  model.ConnectionSettings
	transport protocol.Transport
	encoder   driver.Encoder
	options   Options
	logger    *zap.Logger

	mutex  sync.Mutex
	health HealthMetrics
}

// NewRawPrinter creates a handle. The transport is not opened.
func NewRawPrinter(settings model.ConnectionSettings, transport protocol.Transport, encoder driver.Encoder, options Options, logger *zap.Logger) *RawPrinter {
	return &RawPrinter{
		settings:  settings,
		transport: transport,
		encoder:   encoder,
		options:   options,
		logger: logger.With(
			zap.String("identifier", settings.Identifier),
			zap.String("emulation", string(encoder.Emulation())),
		),
	}
}

func (p *RawPrinter) Settings() model.ConnectionSettings {
	return p.settings
}

func (p *RawPrinter) Emulation() model.Emulation {
	return p.encoder.Emulation()
}

// Open opens the underlying transport
func (p *RawPrinter) Open(ctx context.Context) error {
	startTime := time.Now()
	if err := p.transport.Open(ctx); err != nil {
		p.record(time.Since(startTime), err)
		return fault.Classify(err)
	}
	p.record(time.Since(startTime), nil)
	return nil
}

// Close closes the underlying transport
func (p *RawPrinter) Close() error {
	if err := p.transport.Close(); err != nil {
		return fault.Classify(err)
	}
	return nil
}

func (p *RawPrinter) IsOpen() bool {
	return p.transport.IsOpen()
}

// Health returns a snapshot of the handle metrics
func (p *RawPrinter) Health() HealthMetrics {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	health := p.health
	health.Transport = p.transport.Stats()
	return health
}

// Status requests and decodes a status reply
func (p *RawPrinter) Status(ctx context.Context) (*model.Status, error) {
	startTime := time.Now()
	status, err := p.status(ctx)
	p.record(time.Since(startTime), err)
	if err != nil {
		return nil, fault.Classify(err)
	}
	return status, nil
}

func (p *RawPrinter) status(ctx context.Context) (*model.Status, error) {
	if p.options.StatusTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.options.StatusTimeout)
		defer cancel()
	}

	if err := p.transport.Write(ctx, p.encoder.StatusRequest()); err != nil {
		return nil, fmt.Errorf("failed to request status: %w", err)
	}

	reply, err := p.readStatus(ctx)
	if err != nil {
		return nil, err
	}
	return p.encoder.ParseStatus(reply)
}

func (p *RawPrinter) readStatus(ctx context.Context) ([]byte, error) {
	framer, ok := p.encoder.(driver.StatusFramer)
	if !ok {
		return protocol.ReadFull(ctx, p.transport, p.encoder.StatusLength())
	}

	header, err := protocol.ReadFull(ctx, p.transport, 1)
	if err != nil {
		return nil, err
	}
	rest, err := protocol.ReadFull(ctx, p.transport, framer.StatusReplyLength(header[0])-1)
	if err != nil {
		return nil, err
	}
	return append(header, rest...), nil
}

// Print encodes buf and writes it in one transfer. It returns the number of
// bytes written.
func (p *RawPrinter) Print(ctx context.Context, buf document.Buffer) (int, error) {
	startTime := time.Now()
	n, err := p.send(ctx, buf)
	p.record(time.Since(startTime), err)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (p *RawPrinter) send(ctx context.Context, buf document.Buffer) (int, error) {
	data, err := p.encoder.Encode(buf)
	if err != nil {
		return 0, fault.Classify(err)
	}

	if p.options.CheckStatus {
		status, err := p.status(ctx)
		if err != nil {
			return 0, fault.Classify(err)
		}
		if !status.Printable() {
			return 0, fault.New(fault.KindUnprintable, fault.ReasonDeviceHasError, "printer reports an error condition")
		}
	}

	writeCtx := ctx
	if p.options.PrintTimeout > 0 {
		var cancel context.CancelFunc
		writeCtx, cancel = context.WithTimeout(ctx, p.options.PrintTimeout)
		defer cancel()
	}

	if err := p.transport.Write(writeCtx, data); err != nil {
		if isTimeout(err) || errors.Is(writeCtx.Err(), context.DeadlineExceeded) {
			return 0, fault.Wrap(fault.KindUnprintable, fault.ReasonPrintingTimeout, err, "print job timed out")
		}
		return 0, fault.Classify(err)
	}

	p.logger.Debug("Print job written", zap.Int("bytes", len(data)), zap.Int("ops", buf.Len()))
	return len(data), nil
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded)
}

// record updates health metrics
func (p *RawPrinter) record(responseTime time.Duration, err error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	now := time.Now()
	p.health.TotalOperations++
	p.health.ResponseTime = responseTime
	if err != nil {
		p.health.ErrorCount++
		p.health.LastErrorTime = &now
	} else {
		p.health.LastSuccessTime = &now
	}
	p.health.SuccessRate = float64(p.health.TotalOperations-p.health.ErrorCount) / float64(p.health.TotalOperations)
}
