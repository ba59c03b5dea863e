// internal/event/event_test.go
package event

import (
	"context"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"printer-bridge/internal/config"
	"printer-bridge/internal/metrics"
	"printer-bridge/internal/model"
)

func receive(t *testing.T, ch <-chan model.PrinterEvent) model.PrinterEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return model.PrinterEvent{}
	}
}

func startBus(t *testing.T, size int) *Bus {
	t.Helper()
	bus := NewBus(size, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Start(ctx)
	return bus
}

func TestRegistryCounts(t *testing.T) {
	var seen []int64
	r := NewRegistry(func(n int64) { seen = append(seen, n) })

	n, err := r.Add(model.EventPrinterHasError)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.True(t, r.Active())

	_, err = r.Add("printerExploded")
	assert.Error(t, err)
	assert.Equal(t, int64(1), r.Count())

	assert.Equal(t, int64(-1), r.Remove(2))
	assert.False(t, r.Active())
	assert.Equal(t, []int64{1, -1}, seen)
}

func TestEmitterIsSilentWithoutListeners(t *testing.T) {
	bus := startBus(t, 8)
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	registry := NewRegistry(nil)
	emitter := NewEmitter(bus, registry, nil, zap.NewNop())

	emitter.Emit(model.EventPrinterHasError, "")
	registry.Remove(1)
	emitter.Emit(model.EventPrinterHasError, "")

	select {
	case ev := <-events:
		t.Fatalf("unexpected event %s", ev.Name)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEmitterPublishesToSubscribers(t *testing.T) {
	bus := startBus(t, 8)
	registry := NewRegistry(nil)
	registry.Register()
	emitter := NewEmitter(bus, registry, metrics.NewRegistry(prometheus.NewRegistry()), zap.NewNop())

	covers, stopCovers := bus.Subscribe(model.EventPrinterCoverOpened)
	defer stopCovers()
	all, stopAll := bus.Subscribe()
	defer stopAll()

	emitter.Emit(model.EventPrinterHasError, "cover open")
	emitter.Emit(model.EventPrinterCoverOpened, "")

	first := receive(t, all)
	assert.Equal(t, model.EventPrinterHasError, first.Name)
	assert.Equal(t, "cover open", first.Data)
	assert.Equal(t, model.EventPrinterCoverOpened, receive(t, all).Name)

	assert.Equal(t, model.EventPrinterCoverOpened, receive(t, covers).Name)
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := NewBus(1, zap.NewNop())

	assert.True(t, bus.Publish(model.PrinterEvent{Name: model.EventPrinterIsReady}))
	assert.False(t, bus.Publish(model.PrinterEvent{Name: model.EventPrinterIsReady}))
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := startBus(t, 8)
	events, unsubscribe := bus.Subscribe()
	unsubscribe()
	unsubscribe()

	_, ok := <-events
	assert.False(t, ok)

	assert.True(t, bus.Publish(model.PrinterEvent{Name: model.EventPrinterIsReady}))
}

type fakeToken struct {
	done chan struct{}
}

func newFakeToken() *fakeToken {
	t := &fakeToken{done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                       { return true }
func (t *fakeToken) WaitTimeout(d time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}            { return t.done }
func (t *fakeToken) Error() error                     { return nil }

type fakePublisher struct {
	mu       sync.Mutex
	topics   []string
	payloads [][]byte
}

func (p *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload.([]byte))
	return newFakeToken()
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.topics)
}

func TestRelayPublishesEvents(t *testing.T) {
	bus := startBus(t, 8)
	registry := NewRegistry(nil)
	publisher := &fakePublisher{}
	relay := NewRelayWithPublisher(config.MQTTConfig{TopicPrefix: "bridge/events/", QoS: 1}, publisher, bus, registry, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()

	require.Eventually(t, registry.Active, time.Second, 5*time.Millisecond)

	emitter := NewEmitter(bus, registry, nil, zap.NewNop())
	emitter.Emit(model.EventPrinterPaperIsEmpty, "")

	require.Eventually(t, func() bool { return publisher.count() == 1 }, time.Second, 5*time.Millisecond)

	publisher.mu.Lock()
	assert.Equal(t, "bridge/events/printerPaperIsEmpty", publisher.topics[0])
	var ev model.PrinterEvent
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &ev))
	publisher.mu.Unlock()
	assert.Equal(t, model.EventPrinterPaperIsEmpty, ev.Name)

	cancel()
	<-done
	assert.False(t, registry.Active())
}
