// internal/metrics/registry_test.go
package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(reg)

	r.IncJobs("SUCCESS")
	r.IncJobs("SUCCESS")
	r.IncFaults("PRINTER_PRINT", "communication_error")
	r.IncEventsDropped()
	r.SetListeners(3)
	r.SetSessionState(2)
	r.ObserveDispatch("PRINTER_PRINT", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.jobsTotal.WithLabelValues("SUCCESS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.faultsTotal.WithLabelValues("PRINTER_PRINT", "communication_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.eventsDropped))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.listeners))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.sessionState))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilRegistryIsSafe(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.IncJobs("FAILED")
		r.IncEventsEmitted("printerIsReady")
		r.ObserveDispatch("PRINTER_PRINT", time.Second)
		r.SetListeners(1)
	})
}
