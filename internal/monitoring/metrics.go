// internal/monitoring/metrics.go
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the run-level Prometheus instruments.
type Metrics struct {
	registry *prometheus.Registry

	PagesFetched     prometheus.Counter
	LinksDiscovered  prometheus.Counter
	RecordsCollected prometheus.Counter
	RecordsDiscarded prometheus.Counter
	FetchFailures    prometheus.Counter
	FetchRetries     prometheus.Counter
	InFlight         prometheus.Gauge
}

// NewMetrics creates the instrument set on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		PagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "cinescrape",
			Name:      "pages_fetched_total",
			Help:      "Listing pages fetched during pagination.",
		}),
		LinksDiscovered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "cinescrape",
			Name:      "links_discovered_total",
			Help:      "Distinct detail-page links accumulated.",
		}),
		RecordsCollected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "cinescrape",
			Name:      "records_collected_total",
			Help:      "Detail records that passed the validity gate.",
		}),
		RecordsDiscarded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "cinescrape",
			Name:      "records_discarded_total",
			Help:      "Detail records discarded by the validity gate.",
		}),
		FetchFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "cinescrape",
			Name:      "fetch_failures_total",
			Help:      "Detail fetches that failed permanently after retries.",
		}),
		FetchRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "cinescrape",
			Name:      "fetch_retries_total",
			Help:      "Individual fetch attempts that were retried.",
		}),
		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "cinescrape",
			Name:      "detail_fetches_in_flight",
			Help:      "Detail fetches currently executing.",
		}),
	}
}

// Registry exposes the underlying registry for the metrics server.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
