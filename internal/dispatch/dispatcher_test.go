// internal/dispatch/dispatcher_test.go
package dispatch

import (
	"context"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"printer-bridge/internal/command"
	"printer-bridge/internal/device"
	"printer-bridge/internal/document"
	"printer-bridge/internal/fault"
	"printer-bridge/internal/metrics"
	"printer-bridge/internal/model"
	"printer-bridge/internal/session"
)

type fakePrinter struct {
	mu          sync.Mutex
	open        bool
	printCalls  int
	statusCalls int
	printed     []document.Buffer
	printErr    error
	status      *model.Status
}

func (p *fakePrinter) Open(ctx context.Context) error { return nil }
func (p *fakePrinter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
	return nil
}

func (p *fakePrinter) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

func (p *fakePrinter) Settings() model.ConnectionSettings { return model.ConnectionSettings{} }
func (p *fakePrinter) Emulation() model.Emulation         { return model.EmulationEscPos }
func (p *fakePrinter) Health() device.HealthMetrics       { return device.HealthMetrics{} }

func (p *fakePrinter) Status(ctx context.Context) (*model.Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusCalls++
	if p.status == nil {
		return &model.Status{}, nil
	}
	return p.status, nil
}

func (p *fakePrinter) Print(ctx context.Context, buf document.Buffer) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printCalls++
	if p.printErr != nil {
		return 0, p.printErr
	}
	p.printed = append(p.printed, buf)
	return buf.Len(), nil
}

type fakeConnector struct{ printer *fakePrinter }

func (c *fakeConnector) Connect(ctx context.Context, settings model.ConnectionSettings, emulation model.Emulation) (device.Printer, error) {
	c.printer.mu.Lock()
	c.printer.open = true
	c.printer.mu.Unlock()
	return c.printer, nil
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []model.EventName
}

func (e *recordingEmitter) Emit(name model.EventName, data string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, name)
}

type fixture struct {
	printer    *fakePrinter
	session    *session.Session
	emitter    *recordingEmitter
	dispatcher *Dispatcher
}

func newFixture(t *testing.T, connect bool) *fixture {
	t.Helper()
	printer := &fakePrinter{}
	s := session.New(&fakeConnector{printer: printer}, model.EmulationEscPos, time.Second, zap.NewNop())
	emitter := &recordingEmitter{}
	d := New(s, emitter, metrics.NewRegistry(prometheus.NewRegistry()), Options{}, zap.NewNop())

	if connect {
		require.NoError(t, s.Connect(context.Background(), model.ConnectionSettings{Identifier: "192.0.2.10", Interface: model.InterfaceLAN}))
	}
	return &fixture{printer: printer, session: s, emitter: emitter, dispatcher: d}
}

func TestDispatchWithoutConnection(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.dispatcher.Dispatch(context.Background(), fault.OpPrint, document.NewBuffer())
	assert.ErrorIs(t, err, fault.ErrNoConnection)
	assert.Zero(t, f.printer.printCalls)
	assert.Empty(t, f.emitter.events)

	code := fault.Code(fault.OpPrint, fault.Classify(err))
	assert.Equal(t, "PRINTER_PRINT_NO_PRINTER_CONNECTION", code)
}

func TestDispatchAfterDisconnect(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.session.Disconnect(context.Background()))

	_, err := f.dispatcher.Dispatch(context.Background(), fault.OpPrint, document.NewBuffer())
	assert.ErrorIs(t, err, fault.ErrNoConnection)
	assert.Zero(t, f.printer.printCalls)
}

func TestBuildAndDispatchInOneCall(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	commands, err := command.ParseAll([]map[string]interface{}{
		{"data": "Hello", "type": "text"},
		{"action": "feed-line"},
		{"action": "cut"},
	})
	require.NoError(t, err)

	buf, err := f.dispatcher.Build(ctx, commands, model.InternationalUSA)
	require.NoError(t, err)

	_, err = f.dispatcher.Dispatch(ctx, fault.OpPrint, buf)
	require.NoError(t, err)

	require.Equal(t, 1, f.printer.printCalls)
	assert.Equal(t, []document.Op{
		document.International{Type: model.InternationalUSA},
		document.Text{Data: "Hello", Encoding: model.EncodingWindows1252},
		document.LineFeed{Lines: 1},
		document.Cut{Mode: model.CutFull},
	}, f.printer.printed[0].Ops())
}

func TestBuildSizesImagesToDetectedPaper(t *testing.T) {
	f := newFixture(t, true)
	width := 58
	f.printer.status = &model.Status{DetectedPaperWidth: &width}
	f.dispatcher.options.Images = document.ImageLoaderFunc(func(ctx context.Context, source string) (image.Image, error) {
		return image.NewGray(image.Rect(0, 0, 100, 10)), nil
	})

	commands, err := command.ParseAll([]map[string]interface{}{{"data": "logo.png", "type": "image"}})
	require.NoError(t, err)

	buf, err := f.dispatcher.Build(context.Background(), commands, model.InternationalUSA)
	require.NoError(t, err)

	images := 0
	for _, op := range buf.Ops() {
		if img, ok := op.(document.Image); ok {
			images++
			assert.Equal(t, 384, img.WidthDots)
		}
	}
	assert.Equal(t, 1, images)
	assert.Equal(t, 1, f.printer.statusCalls)
}

func TestDispatchFaultEmitsEvent(t *testing.T) {
	f := newFixture(t, true)
	f.printer.printErr = fault.New(fault.KindUnprintable, fault.ReasonDeviceHasError, "cover open")

	_, err := f.dispatcher.Dispatch(context.Background(), fault.OpPrint, document.NewBuffer())
	assert.ErrorIs(t, err, fault.ErrDeviceHasError)
	assert.Equal(t, []model.EventName{model.EventPrinterHasError}, f.emitter.events)
	assert.Equal(t, session.StateConnected, f.session.State())
}

func TestRunDrawerCommunicationFault(t *testing.T) {
	f := newFixture(t, true)

	err := f.dispatcher.Run(context.Background(), fault.OpOpenDrawer, func(ctx context.Context, p device.Printer) error {
		p.(*fakePrinter).open = false
		return fault.New(fault.KindCommunication, fault.ReasonNone, "reset by peer")
	})

	assert.ErrorIs(t, err, fault.ErrCommunication)
	assert.Equal(t, []model.EventName{model.EventPrinterDrawerCommunicationError}, f.emitter.events)
	assert.Equal(t, session.StateDisconnected, f.session.State())
}

func TestStatus(t *testing.T) {
	f := newFixture(t, true)
	f.printer.status = &model.Status{PaperNearEmpty: true}

	status, err := f.dispatcher.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.PaperNearEmpty)
}

func TestEventFor(t *testing.T) {
	tests := []struct {
		op    fault.Operation
		fault *fault.Fault
		want  model.EventName
		ok    bool
	}{
		{fault.OpPrint, fault.New(fault.KindCommunication, fault.ReasonNone, ""), model.EventPrinterCommunicationError, true},
		{fault.OpShowText, fault.New(fault.KindCommunication, fault.ReasonNone, ""), model.EventDisplayCommunicationError, true},
		{fault.OpClearDisplay, fault.New(fault.KindCommunication, fault.ReasonNone, ""), model.EventDisplayCommunicationError, true},
		{fault.OpPrint, fault.New(fault.KindUnprintable, fault.ReasonHoldingPaper, ""), model.EventPrinterHasError, true},
		{fault.OpPrint, fault.New(fault.KindUnprintable, fault.ReasonPrintingTimeout, ""), model.EventPrinterCommunicationError, true},
		{fault.OpOpen, fault.New(fault.KindIllegalDeviceState, fault.ReasonUsbUnavailable, ""), model.EventPrinterCommunicationError, true},
		{fault.OpPrint, fault.NoConnection(), "", false},
		{fault.OpPrint, fault.New(fault.KindInvalidOperation, fault.ReasonNone, ""), "", false},
	}

	for _, tt := range tests {
		name, ok := EventFor(tt.op, tt.fault)
		assert.Equal(t, tt.ok, ok, tt.fault.Error())
		assert.Equal(t, tt.want, name, tt.fault.Error())
	}
}

func TestRunLogsWithPrinterFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	printer := &fakePrinter{status: &model.Status{PaperEmpty: true}}
	s := session.New(&fakeConnector{printer: printer}, model.EmulationEscPos, time.Second, zap.NewNop())
	d := New(s, &recordingEmitter{}, nil, Options{}, zap.New(core))
	require.NoError(t, s.Connect(context.Background(), model.ConnectionSettings{Identifier: "192.0.2.10", Interface: model.InterfaceLAN}))

	_, err := d.Status(context.Background())
	require.NoError(t, err)
	status := logs.FilterMessage("Printer status").All()
	require.Len(t, status, 1)
	assert.Equal(t, true, status[0].ContextMap()["paper_empty"])
	assert.Equal(t, "192.0.2.10", status[0].ContextMap()["identifier"])

	err = d.Run(context.Background(), fault.OpOpenDrawer, func(ctx context.Context, p device.Printer) error {
		return fault.New(fault.KindUnprintable, fault.ReasonDeviceHasError, "cover open")
	})
	require.Error(t, err)
	failed := logs.FilterMessage("Printer operation failed").All()
	require.Len(t, failed, 1)
	fields := failed[0].ContextMap()
	assert.Equal(t, string(fault.OpOpenDrawer), fields["operation"])
	assert.Equal(t, string(fault.KindUnprintable), fields["fault_kind"])
	assert.Equal(t, "escpos", fields["emulation"])
}
