// internal/dispatch/dispatcher.go

// Package dispatch submits finalized documents and device operations through
// the connection session and turns failures into classified faults and
// status events.
package dispatch

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"printer-bridge/internal/command"
	"printer-bridge/internal/device"
	"printer-bridge/internal/document"
	"printer-bridge/internal/fault"
	"printer-bridge/internal/metrics"
	"printer-bridge/internal/model"
	"printer-bridge/internal/session"
	"printer-bridge/internal/utils"
)

// Emitter publishes status events
type Emitter interface {
	Emit(name model.EventName, data string)
}

// Options configures document building
type Options struct {
	DotsPerMM decimal.Decimal
	Encoding  model.Encoding
	Images    document.ImageLoader
}

// Dispatcher runs device operations against the session
type Dispatcher struct {
	session *session.Session
	emitter Emitter
	metrics *metrics.Registry
	options Options
	logger  *zap.Logger
}

// New creates a dispatcher. metrics may be nil.
func New(s *session.Session, emitter Emitter, m *metrics.Registry, options Options, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		session: s,
		emitter: emitter,
		metrics: m,
		options: options,
		logger:  logger,
	}
}

// Build translates commands into a finalized buffer. The character set is
// emitted first. Images without a style width are sized to the detected
// paper width, which costs one status round trip.
func (d *Dispatcher) Build(ctx context.Context, commands []command.Command, charset model.InternationalType) (document.Buffer, error) {
	doc := document.New(document.Options{
		Charset:    charset,
		DotsPerMM:  d.options.DotsPerMM,
		Encoding:   d.options.Encoding,
		Images:     d.options.Images,
		PaperWidth: d.paperWidth,
	})
	if _, err := doc.ApplyAll(ctx, commands); err != nil {
		return document.Buffer{}, err
	}
	return doc.Finalize(), nil
}

// Dispatch submits buf in a single print call and returns the bytes written
func (d *Dispatcher) Dispatch(ctx context.Context, op fault.Operation, buf document.Buffer) (int, error) {
	var written int
	err := d.Run(ctx, op, func(ctx context.Context, printer device.Printer) error {
		n, err := printer.Print(ctx, buf)
		written = n
		return err
	})
	return written, err
}

// Status queries the live printer
func (d *Dispatcher) Status(ctx context.Context) (*model.Status, error) {
	var status *model.Status
	startTime := time.Now()
	err := d.Run(ctx, fault.OpGetStatus, func(ctx context.Context, printer device.Printer) error {
		s, err := printer.Status(ctx)
		status = s
		return err
	})
	if err == nil && status != nil {
		d.printerLogger().LogStatus(status, time.Since(startTime))
	}
	return status, err
}

// Run executes fn inside the session critical section. Failures are
// classified, counted and, when they reflect a device condition, emitted as
// events.
func (d *Dispatcher) Run(ctx context.Context, op fault.Operation, fn func(ctx context.Context, printer device.Printer) error) error {
	startTime := time.Now()
	err := d.session.Do(ctx, fn)
	duration := time.Since(startTime)
	d.metrics.ObserveDispatch(string(op), duration)
	if err == nil {
		d.printerLogger().LogOperation(string(op), duration, nil)
		return nil
	}

	f := fault.Classify(err)
	d.metrics.IncFaults(string(op), string(f.Kind))
	d.printerLogger().LogOperation(string(op), duration, err,
		zap.String("fault_kind", string(f.Kind)),
		zap.String("fault_reason", string(f.Reason)),
	)

	if name, ok := EventFor(op, f); ok {
		d.emitter.Emit(name, f.Error())
	}
	return f
}

func (d *Dispatcher) paperWidth(ctx context.Context) (*int, error) {
	var width *int
	err := d.session.Do(ctx, func(ctx context.Context, printer device.Printer) error {
		status, err := printer.Status(ctx)
		if err != nil {
			return err
		}
		width = status.DetectedPaperWidth
		return nil
	})
	return width, err
}

// EventFor returns the status event a fault raised by op maps to. Caller
// mistakes such as NoConnection have no event.
func EventFor(op fault.Operation, f *fault.Fault) (model.EventName, bool) {
	if f == nil || !f.IsStandingCondition() {
		return "", false
	}

	if f.Kind == fault.KindUnprintable && f.Reason != fault.ReasonPrintingTimeout {
		return model.EventPrinterHasError, true
	}

	switch op {
	case fault.OpOpenDrawer:
		return model.EventPrinterDrawerCommunicationError, true
	case fault.OpShowText, fault.OpClearDisplay:
		return model.EventDisplayCommunicationError, true
	default:
		return model.EventPrinterCommunicationError, true
	}
}

// printerLogger tags entries with the connected printer, if any
func (d *Dispatcher) printerLogger() *utils.PrinterLogger {
	settings, _ := d.session.Settings()
	return utils.NewPrinterLogger(d.logger, settings, d.session.Emulation())
}
