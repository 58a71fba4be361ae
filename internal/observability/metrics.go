package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the query service.
type Metrics struct {
	UpstreamRequests   *prometheus.CounterVec // labels: feed={day,week,month,range}, outcome={success,http_error,network_error,malformed}
	UpstreamDuration   prometheus.Histogram
	TruncatedResponses prometheus.Counter
	EventsReturned     prometheus.Histogram
	RefreshRuns        *prometheus.CounterVec // labels: period, outcome={success,error,stale}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.TruncatedResponses,
		m.EventsReturned,
		m.RefreshRuns,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_watch",
			Name:      "upstream_requests_total",
			Help:      "USGS feed requests by feed and outcome.",
		}, []string{"feed", "outcome"}),
		UpstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_watch",
			Name:      "upstream_request_duration_seconds",
			Help:      "Duration of USGS feed requests.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		TruncatedResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_watch",
			Name:      "truncated_responses_total",
			Help:      "Explicit-range responses that hit the result-count ceiling.",
		}),
		EventsReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_watch",
			Name:      "events_returned",
			Help:      "Number of in-region events per query.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		RefreshRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_watch",
			Name:      "refresh_runs_total",
			Help:      "Background snapshot refreshes by period and outcome.",
		}, []string{"period", "outcome"}),
	}
}
