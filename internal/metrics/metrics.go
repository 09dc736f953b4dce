// Package metrics exposes Prometheus collectors for pipeline control:
// state transitions, bus messages and live wrapper counts.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/open-beagle/gstkit/gst"
)

// Collector owns the registry and the collectors for one process.
type Collector struct {
	registry *prometheus.Registry

	transitions        *prometheus.CounterVec
	transitionDuration prometheus.Histogram
	busMessages        *prometheus.CounterVec
	liveWrappers       prometheus.Gauge
}

// NewCollector creates and registers all collectors on a fresh registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gstkit",
			Name:      "state_transitions_total",
			Help:      "State transition requests by source state, target state and result.",
		}, []string{"from", "to", "result"}),
		transitionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gstkit",
			Name:      "state_transition_duration_seconds",
			Help:      "Wall time until a requested state transition settled.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}),
		busMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gstkit",
			Name:      "bus_messages_total",
			Help:      "Bus messages observed by type.",
		}, []string{"type"}),
		liveWrappers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gstkit",
			Name:      "live_wrappers",
			Help:      "Owning wrappers currently tracked by the handle registry.",
		}),
	}

	c.registry.MustRegister(
		c.transitions,
		c.transitionDuration,
		c.busMessages,
		c.liveWrappers,
	)
	return c
}

// ObserveTransition records the outcome of one state transition request.
func (c *Collector) ObserveTransition(from, to gst.State, result gst.StateChangeReturn, d time.Duration) {
	c.transitions.WithLabelValues(from.String(), to.String(), result.String()).Inc()
	c.transitionDuration.Observe(d.Seconds())
}

// ObserveBusMessage counts one bus message.
func (c *Collector) ObserveBusMessage(t gst.MessageType) {
	c.busMessages.WithLabelValues(t.String()).Inc()
}

// SetLiveWrappers tracks the handle registry size.
func (c *Collector) SetLiveWrappers(n int) {
	c.liveWrappers.Set(float64(n))
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns the scrape handler for the registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
