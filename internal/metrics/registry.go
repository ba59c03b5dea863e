// internal/metrics/registry.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all Prometheus metrics. A nil *Registry records nothing.
type Registry struct {
	jobsTotal        *prometheus.CounterVec
	faultsTotal      *prometheus.CounterVec
	eventsEmitted    *prometheus.CounterVec
	eventsDropped    prometheus.Counter
	dispatchDuration *prometheus.HistogramVec
	sessionState     prometheus.Gauge
	listeners        prometheus.Gauge
	monitorPolls     *prometheus.CounterVec
}

// NewRegistry creates the metrics and registers them with reg
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		jobsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "printer_bridge_jobs_total",
			Help: "Total number of print jobs by outcome",
		}, []string{"outcome"}),
		faultsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "printer_bridge_faults_total",
			Help: "Total number of classified device faults",
		}, []string{"operation", "kind"}),
		eventsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "printer_bridge_events_emitted_total",
			Help: "Total number of status events published to listeners",
		}, []string{"event"}),
		eventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "printer_bridge_events_dropped_total",
			Help: "Total number of status events dropped because the bus was full",
		}),
		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "printer_bridge_dispatch_duration_seconds",
			Help:    "Duration of device operations",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		sessionState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "printer_bridge_session_state",
			Help: "Connection session state (0 disconnected, 1 connecting, 2 connected, 3 closing)",
		}),
		listeners: factory.NewGauge(prometheus.GaugeOpts{
			Name: "printer_bridge_listeners",
			Help: "Current number of registered event listeners",
		}),
		monitorPolls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "printer_bridge_monitor_polls_total",
			Help: "Total number of status polls by result",
		}, []string{"result"}),
	}
}

// IncJobs counts a finished print job
func (r *Registry) IncJobs(outcome string) {
	if r == nil {
		return
	}
	r.jobsTotal.WithLabelValues(outcome).Inc()
}

// IncFaults counts a classified fault
func (r *Registry) IncFaults(operation, kind string) {
	if r == nil {
		return
	}
	r.faultsTotal.WithLabelValues(operation, kind).Inc()
}

// IncEventsEmitted counts a published event
func (r *Registry) IncEventsEmitted(event string) {
	if r == nil {
		return
	}
	r.eventsEmitted.WithLabelValues(event).Inc()
}

// IncEventsDropped counts an event lost to a full bus
func (r *Registry) IncEventsDropped() {
	if r == nil {
		return
	}
	r.eventsDropped.Inc()
}

// ObserveDispatch records the duration of a device operation
func (r *Registry) ObserveDispatch(operation string, d time.Duration) {
	if r == nil {
		return
	}
	r.dispatchDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// SetSessionState sets the session state gauge
func (r *Registry) SetSessionState(state int) {
	if r == nil {
		return
	}
	r.sessionState.Set(float64(state))
}

// SetListeners sets the listener gauge
func (r *Registry) SetListeners(count int64) {
	if r == nil {
		return
	}
	r.listeners.Set(float64(count))
}

// IncMonitorPolls counts a status poll
func (r *Registry) IncMonitorPolls(result string) {
	if r == nil {
		return
	}
	r.monitorPolls.WithLabelValues(result).Inc()
}
