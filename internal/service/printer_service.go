// internal/service/printer_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"printer-bridge/internal/command"
	"printer-bridge/internal/dispatch"
	"printer-bridge/internal/document"
	"printer-bridge/internal/event"
	"printer-bridge/internal/fault"
	"printer-bridge/internal/legacy"
	"printer-bridge/internal/metrics"
	"printer-bridge/internal/model"
	"printer-bridge/internal/repository"
	"printer-bridge/internal/resolve"
	"printer-bridge/internal/session"
	"printer-bridge/internal/utils"
)

// ErrJournalDisabled is returned by journal queries when no journal is configured
var ErrJournalDisabled = errors.New("print job journal is disabled")

// Searcher finds printers on the requested interfaces
type Searcher interface {
	Search(ctx context.Context, interfaces []model.InterfaceType) ([]model.FoundPrinter, error)
}

// Dependencies wires a PrinterService. Jobs and Metrics may be nil.
type Dependencies struct {
	Session    *session.Session
	Dispatcher *dispatch.Dispatcher
	Searcher   Searcher
	Listeners  *event.Registry
	Jobs       repository.JobRepository
	Metrics    *metrics.Registry
	Images     document.ImageLoader
}

// Options holds the caller facing defaults
type Options struct {
	DefaultCharset string
	// JournalTimeout bounds the journal write that follows every print
	JournalTimeout time.Duration
}

// DisplayRequest is the input of ShowTextOnDisplay. Nil fields take their defaults.
type DisplayRequest struct {
	Content     string  `json:"content"`
	Backlight   *bool   `json:"backlight,omitempty"`
	Contrast    *int    `json:"contrast,omitempty"`
	CursorState *string `json:"cursorState,omitempty"`
	Charset     *string `json:"charset,omitempty"`
}

// PrintResult describes a dispatched job
type PrintResult struct {
	Job     *model.PrintJob `json:"job"`
	Skipped []string        `json:"skipped,omitempty"`
}

// PrinterService is the produced surface: every caller facing printer
// operation goes through it.
type PrinterService struct {
	session    *session.Session
	dispatcher *dispatch.Dispatcher
	searcher   Searcher
	listeners  *event.Registry
	jobs       repository.JobRepository
	metrics    *metrics.Registry
	images     document.ImageLoader
	options    Options
	baseLogger *zap.Logger
	logger     *utils.ServiceLogger
}

// NewPrinterService creates a new printer service instance
func NewPrinterService(deps Dependencies, options Options, logger *zap.Logger) *PrinterService {
	if options.JournalTimeout <= 0 {
		options.JournalTimeout = 5 * time.Second
	}

	ps := &PrinterService{
		session:    deps.Session,
		dispatcher: deps.Dispatcher,
		searcher:   deps.Searcher,
		listeners:  deps.Listeners,
		jobs:       deps.Jobs,
		metrics:    deps.Metrics,
		images:     deps.Images,
		options:    options,
		baseLogger: logger,
		logger:     utils.NewServiceLogger(logger, "printer-service"),
	}

	ps.session.OnStateChange(func(from, to session.State, settings model.ConnectionSettings) {
		ps.metrics.SetSessionState(int(to))
		ps.logger.Info("Session state changed",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
			zap.String("identifier", settings.Identifier),
		)
	})

	return ps
}

// SearchPrinter returns the first printer found on the requested interfaces
func (ps *PrinterService) SearchPrinter(ctx context.Context, interfaces []model.InterfaceType) (*model.FoundPrinter, error) {
	printers, err := ps.SearchPrinters(ctx, interfaces)
	if err != nil {
		return nil, err
	}
	if len(printers) == 0 {
		return nil, fault.New(fault.KindNotFound, fault.ReasonNone, "no printer found")
	}
	return &printers[0], nil
}

// SearchPrinters returns every printer found on the requested interfaces
func (ps *PrinterService) SearchPrinters(ctx context.Context, interfaces []model.InterfaceType) ([]model.FoundPrinter, error) {
	if ps.searcher == nil {
		return nil, fault.New(fault.KindInvalidOperation, fault.ReasonNone, "printer search is not configured")
	}

	printers, err := ps.searcher.Search(ctx, interfaces)
	if err != nil {
		return nil, fault.Classify(err)
	}

	ps.logger.Info("Printer search completed", zap.Int("printers_found", len(printers)))
	return printers, nil
}

// Connect opens the printer named by identifier, replacing any open handle
func (ps *PrinterService) Connect(ctx context.Context, identifier, iface string) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return fault.New(fault.KindArgumentFormatInvalid, fault.ReasonNone, "identifier is required")
	}

	settings := model.ConnectionSettings{
		Identifier: identifier,
		Interface:  model.ParseInterfaceType(iface),
	}
	printerLogger := utils.NewPrinterLogger(ps.baseLogger, settings, ps.session.Emulation())

	if err := ps.session.Connect(ctx, settings); err != nil {
		printerLogger.LogConnection("connect", false, err)
		return err
	}

	printerLogger.LogConnection("connect", true, nil)
	return nil
}

// Disconnect releases the printer. It always succeeds: a failure closing the
// handle still leaves the session disconnected.
func (ps *PrinterService) Disconnect(ctx context.Context) error {
	if err := ps.session.Disconnect(ctx); err != nil {
		ps.logger.Warn("Disconnect did not complete cleanly", zap.Error(err))
	}
	return nil
}

// State returns the session state and the settings of the connected printer
func (ps *PrinterService) State() (session.State, *model.ConnectionSettings) {
	settings, connected := ps.session.Settings()
	if !connected {
		return ps.session.State(), nil
	}
	return session.StateConnected, &settings
}

// Print parses descriptors, builds one document and dispatches it in a single
// print call. Nothing is sent when any descriptor is invalid.
func (ps *PrinterService) Print(ctx context.Context, descriptors []map[string]interface{}, charset string) (*PrintResult, error) {
	job := ps.newJob(len(descriptors))
	opLogger := utils.NewOperationLogger(ps.baseLogger, "print", job.ID.String())
	opLogger.Start(zap.Int("command_count", len(descriptors)))

	commands, err := command.ParseAll(descriptors)
	if err != nil {
		ps.finishJob(job, 0, err)
		opLogger.Error(err)
		return &PrintResult{Job: job}, err
	}

	if charset == "" {
		charset = ps.options.DefaultCharset
	}
	buf, err := ps.dispatcher.Build(ctx, commands, resolve.International(charset))
	if err != nil {
		ps.finishJob(job, 0, err)
		opLogger.Error(err)
		return &PrintResult{Job: job}, err
	}

	written, err := ps.dispatcher.Dispatch(ctx, fault.OpPrint, buf)
	ps.finishJob(job, written, err)
	if err != nil {
		opLogger.Error(err)
		return &PrintResult{Job: job}, err
	}

	opLogger.Success(zap.Int("bytes", written))
	return &PrintResult{Job: job}, nil
}

// PrintLegacy translates append* descriptors and dispatches the result.
// Descriptors with no known key are skipped and reported.
func (ps *PrinterService) PrintLegacy(ctx context.Context, descriptors []map[string]interface{}) (*PrintResult, error) {
	job := ps.newJob(len(descriptors))
	opLogger := utils.NewOperationLogger(ps.baseLogger, "print_legacy", job.ID.String())
	opLogger.Start(zap.Int("command_count", len(descriptors)))

	translator := legacy.New(legacy.Options{Images: ps.images})
	translation, err := translator.Translate(ctx, descriptors)
	if err != nil {
		ps.finishJob(job, 0, err)
		opLogger.Error(err)
		return &PrintResult{Job: job}, err
	}
	if len(translation.Skipped) > 0 {
		ps.logger.Warn("Legacy descriptors skipped", zap.Strings("skipped", translation.Skipped))
	}

	written, err := ps.dispatcher.Dispatch(ctx, fault.OpPrint, translation.Buffer)
	ps.finishJob(job, written, err)
	result := &PrintResult{Job: job, Skipped: translation.Skipped}
	if err != nil {
		opLogger.Error(err)
		return result, err
	}

	opLogger.Success(zap.Int("bytes", written))
	return result, nil
}

// GetStatus queries the connected printer
func (ps *PrinterService) GetStatus(ctx context.Context) (*model.Status, error) {
	return ps.dispatcher.Status(ctx)
}

// OpenCashDrawer kicks the drawer on peripheral channel 1
func (ps *PrinterService) OpenCashDrawer(ctx context.Context) error {
	buf := document.NewBuffer(document.Drawer{Channel: model.PeripheralNo1})
	_, err := ps.dispatcher.Dispatch(ctx, fault.OpOpenDrawer, buf)
	return err
}

// ShowTextOnDisplay writes content to the customer display
func (ps *PrinterService) ShowTextOnDisplay(ctx context.Context, req DisplayRequest) error {
	backlight := true
	if req.Backlight != nil {
		backlight = *req.Backlight
	}
	contrast := 0
	if req.Contrast != nil {
		contrast = *req.Contrast
	}
	cursor := "off"
	if req.CursorState != nil {
		cursor = *req.CursorState
	}
	charset := "usa"
	if req.Charset != nil {
		charset = *req.Charset
	}

	buf := document.NewBuffer(
		document.DisplayCharset{Type: resolve.DisplayInternational(charset)},
		document.DisplayCursor{State: resolve.CursorState(cursor)},
		document.DisplayBacklight{On: backlight},
		document.DisplayContrast{Level: resolve.Contrast(contrast)},
		document.DisplayText{Data: req.Content},
	)
	_, err := ps.dispatcher.Dispatch(ctx, fault.OpShowText, buf)
	return err
}

// ClearDisplay clears the customer display
func (ps *PrinterService) ClearDisplay(ctx context.Context) error {
	_, err := ps.dispatcher.Dispatch(ctx, fault.OpClearDisplay, document.NewBuffer(document.DisplayClear{}))
	return err
}

// AddListener registers one listener for name and returns the new count
func (ps *PrinterService) AddListener(name model.EventName) (int64, error) {
	count, err := ps.listeners.Add(name)
	if err != nil {
		return count, fault.Wrap(fault.KindArgumentFormatInvalid, fault.ReasonNone, err, "")
	}
	return count, nil
}

// RemoveListeners drops count listeners and returns the new count
func (ps *PrinterService) RemoveListeners(count int) (int64, error) {
	if count < 0 {
		return ps.listeners.Count(), fault.New(fault.KindArgumentFormatInvalid, fault.ReasonNone, "count must not be negative")
	}
	return ps.listeners.Remove(count), nil
}

// ListenerCount returns the number of registered listeners
func (ps *PrinterService) ListenerCount() int64 {
	return ps.listeners.Count()
}

// ListJobs returns journaled jobs, newest first
func (ps *PrinterService) ListJobs(ctx context.Context, filter *repository.JobFilter) ([]*model.PrintJob, int, error) {
	if ps.jobs == nil {
		return nil, 0, ErrJournalDisabled
	}
	return ps.jobs.List(ctx, filter)
}

// JobStats summarizes journaled jobs since the given time
func (ps *PrinterService) JobStats(ctx context.Context, since time.Time) (*repository.JobStats, error) {
	if ps.jobs == nil {
		return nil, ErrJournalDisabled
	}
	return ps.jobs.Stats(ctx, since)
}

// PurgeJobs removes journal entries older than retention
func (ps *PrinterService) PurgeJobs(ctx context.Context, retention time.Duration) (int64, error) {
	if ps.jobs == nil {
		return 0, ErrJournalDisabled
	}

	deleted, err := ps.jobs.DeleteOlderThan(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		ps.logger.Info("Purged journal entries", zap.Int64("deleted", deleted))
	}
	return deleted, nil
}

func (ps *PrinterService) newJob(commandCount int) *model.PrintJob {
	settings, _ := ps.session.Settings()
	return model.NewPrintJob(settings, ps.session.Emulation(), commandCount)
}

// finishJob records the outcome, counts it and journals it. Journal failures
// are logged and never fail the print.
func (ps *PrinterService) finishJob(job *model.PrintJob, written int, err error) {
	status, code := jobOutcome(err)
	job.Complete(status, written, code, err)
	ps.metrics.IncJobs(strings.ToLower(string(status)))

	if ps.jobs == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), ps.options.JournalTimeout)
	defer cancel()
	if err := ps.jobs.Create(ctx, job); err != nil {
		ps.logger.Error("Failed to journal print job",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
	}
}

// jobOutcome maps a print error to the journal status and fault code.
// Validation errors reject the job before anything reaches the device.
func jobOutcome(err error) (model.JobStatus, string) {
	if err == nil {
		return model.JobStatusSuccess, ""
	}
	if IsValidationError(err) {
		return model.JobStatusRejected, "INVALID_COMMAND"
	}
	return model.JobStatusFailed, fault.Code(fault.OpPrint, fault.Classify(err))
}

// IsValidationError reports whether err was raised while parsing or building
// a document rather than by the device
func IsValidationError(err error) bool {
	return errors.Is(err, command.ErrMalformedCommand) ||
		errors.Is(err, command.ErrUnknownAction) ||
		errors.Is(err, command.ErrUnknownType) ||
		errors.Is(err, command.ErrInvalidField) ||
		errors.Is(err, document.ErrImageUnavailable)
}

func (r *PrintResult) String() string {
	if r == nil || r.Job == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s %s (%d bytes)", r.Job.ID, r.Job.Status, r.Job.ByteCount)
}
