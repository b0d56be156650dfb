// Package metrics exposes the engine's counters and gauges via
// github.com/prometheus/client_golang, the ambient observability surface
// §4.6's "report counters" requirement asks for made durable across the
// process lifetime (§10.4).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every counter/gauge the pipeline stages and controller
// update.
type Metrics struct {
	MessagesIngested prometheus.Counter
	RecordsDropped   *prometheus.CounterVec
	MessagesMatched  prometheus.Counter
	TradesExecuted   prometheus.Counter
	EventsPublished  prometheus.Counter

	InQOccupancy  prometheus.Gauge
	OutQOccupancy prometheus.Gauge
	RestingOrders prometheus.Gauge

	registry *prometheus.Registry
}

// New constructs and registers all metrics on a private registry (avoiding
// the global default registry so multiple engine instances can coexist in
// one test binary).
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		MessagesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vortex_messages_ingested_total",
			Help: "Records successfully parsed and enqueued by the ingress parser.",
		}),
		RecordsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vortex_records_dropped_total",
			Help: "Records or events dropped after exhausting the backpressure retry budget.",
		}, []string{"stage"}),
		MessagesMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vortex_messages_matched_total",
			Help: "Requests dispatched to the matching engine.",
		}),
		TradesExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vortex_trades_executed_total",
			Help: "Trade events produced by the matching core.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vortex_events_published_total",
			Help: "Events written to the output stream by the egress formatter.",
		}),
		InQOccupancy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vortex_inq_occupancy",
			Help: "Approximate current occupancy of the ingress->matcher queue.",
		}),
		OutQOccupancy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vortex_outq_occupancy",
			Help: "Approximate current occupancy of the matcher->egress queue.",
		}),
		RestingOrders: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vortex_resting_orders",
			Help: "Total resting orders across all symbol books.",
		}),
		registry: reg,
	}

	reg.MustRegister(
		m.MessagesIngested, m.RecordsDropped, m.MessagesMatched,
		m.TradesExecuted, m.EventsPublished,
		m.InQOccupancy, m.OutQOccupancy, m.RestingOrders,
	)
	return m
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
