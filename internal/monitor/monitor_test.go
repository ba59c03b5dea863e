// internal/monitor/monitor_test.go
package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"printer-bridge/internal/config"
	"printer-bridge/internal/fault"
	"printer-bridge/internal/metrics"
	"printer-bridge/internal/model"
)

type scriptedSource struct {
	mu      sync.Mutex
	replies []reply
	calls   int
}

type reply struct {
	status *model.Status
	err    error
}

func (s *scriptedSource) Status(ctx context.Context) (*model.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.replies[min(s.calls, len(s.replies)-1)]
	s.calls++
	return r.status, r.err
}

type recordingEmitter struct {
	events []model.EventName
}

func (e *recordingEmitter) Emit(name model.EventName, data string) {
	e.events = append(e.events, name)
}

func newMonitor(source StatusSource, emitter Emitter) *Monitor {
	cfg := config.MonitorConfig{
		Enabled:          true,
		Interval:         time.Second,
		FailureThreshold: 2,
		OpenTimeout:      time.Hour,
	}
	return New(cfg, time.Second, source, emitter, metrics.NewRegistry(prometheus.NewRegistry()), zap.NewNop())
}

func TestTransitionsFullSnapshot(t *testing.T) {
	events := Transitions(nil, &model.Status{})
	assert.Equal(t, []model.EventName{
		model.EventPrinterIsReady,
		model.EventPrinterPaperIsReady,
		model.EventPrinterCoverClosed,
		model.EventPrinterDrawerClosed,
	}, events)
}

func TestTransitions(t *testing.T) {
	tests := []struct {
		name string
		prev model.Status
		next model.Status
		want []model.EventName
	}{
		{
			name: "no change",
			want: nil,
		},
		{
			name: "cover opened",
			next: model.Status{CoverOpen: true},
			want: []model.EventName{model.EventPrinterHasError, model.EventPrinterCoverOpened},
		},
		{
			name: "paper running low",
			next: model.Status{PaperNearEmpty: true},
			want: []model.EventName{model.EventPrinterPaperIsNearEmpty},
		},
		{
			name: "paper out",
			prev: model.Status{PaperNearEmpty: true},
			next: model.Status{PaperNearEmpty: true, PaperEmpty: true},
			want: []model.EventName{model.EventPrinterHasError, model.EventPrinterPaperIsEmpty},
		},
		{
			name: "paper replaced",
			prev: model.Status{PaperEmpty: true},
			want: []model.EventName{model.EventPrinterIsReady, model.EventPrinterPaperIsReady},
		},
		{
			name: "drawer opened",
			next: model.Status{DrawerOpenCloseSignal: true},
			want: []model.EventName{model.EventPrinterDrawerOpened},
		},
		{
			name: "cover closed",
			prev: model.Status{CoverOpen: true},
			want: []model.EventName{model.EventPrinterIsReady, model.EventPrinterCoverClosed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev, next := tt.prev, tt.next
			assert.Equal(t, tt.want, Transitions(&prev, &next))
		})
	}
}

func TestPollEmitsOnlyChanges(t *testing.T) {
	source := &scriptedSource{replies: []reply{
		{status: &model.Status{}},
		{status: &model.Status{}},
		{status: &model.Status{CoverOpen: true}},
	}}
	emitter := &recordingEmitter{}
	mon := newMonitor(source, emitter)
	ctx := context.Background()

	assert.Equal(t, ResultOK, mon.Poll(ctx))
	assert.Len(t, emitter.events, 4)

	emitter.events = nil
	mon.Poll(ctx)
	assert.Empty(t, emitter.events)

	mon.Poll(ctx)
	assert.Equal(t, []model.EventName{model.EventPrinterHasError, model.EventPrinterCoverOpened}, emitter.events)
}

func TestPollIdleWithoutConnection(t *testing.T) {
	source := &scriptedSource{replies: []reply{{err: fault.NoConnection()}}}
	mon := newMonitor(source, &recordingEmitter{})

	for i := 0; i < 5; i++ {
		assert.Equal(t, ResultIdle, mon.Poll(context.Background()))
	}
	assert.Equal(t, 5, source.calls)
}

func TestPollBreakerOpensAfterFailures(t *testing.T) {
	source := &scriptedSource{replies: []reply{
		{err: fault.New(fault.KindCommunication, fault.ReasonNone, "timeout")},
	}}
	mon := newMonitor(source, &recordingEmitter{})
	ctx := context.Background()

	assert.Equal(t, ResultError, mon.Poll(ctx))
	assert.Equal(t, ResultError, mon.Poll(ctx))
	assert.Equal(t, ResultSkipped, mon.Poll(ctx))
	assert.Equal(t, 2, source.calls)
}

func TestPollFailureResetsSnapshot(t *testing.T) {
	source := &scriptedSource{replies: []reply{
		{status: &model.Status{}},
		{err: errors.New("read failed")},
		{status: &model.Status{}},
	}}
	emitter := &recordingEmitter{}
	mon := newMonitor(source, emitter)
	ctx := context.Background()

	mon.Poll(ctx)
	mon.Poll(ctx)
	emitter.events = nil
	mon.Poll(ctx)
	assert.Len(t, emitter.events, 4)
}

func TestRunStopsWithContext(t *testing.T) {
	source := &scriptedSource{replies: []reply{{status: &model.Status{}}}}
	mon := newMonitor(source, &recordingEmitter{})
	mon.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		mon.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		source.mu.Lock()
		defer source.mu.Unlock()
		return source.calls > 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}
