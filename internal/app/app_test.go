// internal/app/app_test.go
package app

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"printer-bridge/internal/config"
	"printer-bridge/internal/model"
	"printer-bridge/internal/session"
)

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	chdir(t, t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() == name {
			require.NotEmpty(t, family.GetMetric())
			return family.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not registered", name)
	return 0
}

func TestNewWiresStackWithoutJournal(t *testing.T) {
	cfg := loadConfig(t)
	cfg.Discovery.Interfaces = []string{"lan", "floppy"}
	cfg.Discovery.LANHosts = []string{"127.0.0.1"}

	reg := prometheus.NewRegistry()
	c, err := New(context.Background(), cfg, zap.NewNop(), reg)
	require.NoError(t, err)

	assert.NotNil(t, c.Printer)
	assert.NotNil(t, c.Metrics)
	assert.Nil(t, c.Database)
	assert.Nil(t, c.Jobs)
	assert.Equal(t, model.EmulationEscPos, c.Session.Emulation())
	assert.Equal(t, []model.InterfaceType{model.InterfaceLAN}, c.Discovery.Interfaces())
	assert.Equal(t, []model.Emulation{model.EmulationEscPos, model.EmulationStarLine}, c.Drivers.Emulations())

	state, settings := c.Printer.State()
	assert.Equal(t, session.StateDisconnected, state)
	assert.Nil(t, settings)
}

func TestListenerGaugeFollowsRegistry(t *testing.T) {
	cfg := loadConfig(t)

	reg := prometheus.NewRegistry()
	c, err := New(context.Background(), cfg, zap.NewNop(), reg)
	require.NoError(t, err)

	_, err = c.Printer.AddListener(model.EventDisplayConnected)
	require.NoError(t, err)
	_, err = c.Printer.AddListener(model.EventDisplayDisconnected)
	require.NoError(t, err)
	assert.Equal(t, float64(2), gaugeValue(t, reg, "printer_bridge_listeners"))

	_, err = c.Printer.RemoveListeners(1)
	require.NoError(t, err)
	assert.Equal(t, float64(1), gaugeValue(t, reg, "printer_bridge_listeners"))
}

func TestNewWithoutMetrics(t *testing.T) {
	cfg := loadConfig(t)

	c, err := New(context.Background(), cfg, zap.NewNop(), nil)
	require.NoError(t, err)
	assert.Nil(t, c.Metrics)

	count, err := c.Printer.AddListener(model.EventDisplayConnected)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	c.Close(context.Background())
}

func TestStartBackgroundStopsWithContext(t *testing.T) {
	cfg := loadConfig(t)
	cfg.Monitor.Enabled = false

	c, err := New(context.Background(), cfg, zap.NewNop(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	c.StartBackground(ctx)

	events, unsubscribe := c.Bus.Subscribe(model.EventDisplayConnected)
	defer unsubscribe()

	_, err = c.Printer.AddListener(model.EventDisplayConnected)
	require.NoError(t, err)
	c.Emitter.Emit(model.EventDisplayConnected, "")

	got := <-events
	assert.Equal(t, model.EventDisplayConnected, got.Name)
	cancel()
}
