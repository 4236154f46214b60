package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_lookup"

// Metrics holds the Prometheus counters, histograms, and gauges for the widget.
type Metrics struct {
	// Upstream HTTP metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: endpoint={search,reverse,weather,geolocation}, outcome={success,error,empty}
	UpstreamDuration *prometheus.HistogramVec // labels: endpoint
	BreakerState     *prometheus.GaugeVec     // labels: endpoint; 0 closed, 1 half-open, 2 open

	// Geocoding cache metrics.
	GeocodeCache *prometheus.CounterVec // labels: method={search,reverse}, result={hit,miss}

	// Suggestion metrics.
	SuggestionLookups     prometheus.Counter
	SuggestionsSuperseded prometheus.Counter

	// Search cycle metrics.
	SearchCycles *prometheus.CounterVec // labels: entry={name,place,device}, outcome={success,failed,superseded}
	HistorySize  prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.BreakerState,
		m.GeocodeCache,
		m.SuggestionLookups,
		m.SuggestionsSuperseded,
		m.SearchCycles,
		m.HistorySize,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state per upstream endpoint: 0 closed, 1 half-open, 2 open.",
		}, []string{"endpoint"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		SuggestionLookups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestion_lookups_total",
			Help:      "Suggestion lookups issued after the debounce window.",
		}),
		SuggestionsSuperseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestions_superseded_total",
			Help:      "Suggestion lookups whose results were discarded because a newer lookup was issued.",
		}),
		SearchCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_cycles_total",
			Help:      "Search cycles by entry point and outcome.",
		}, []string{"entry", "outcome"}),
		HistorySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_entries",
			Help:      "Number of entries in the persisted search history.",
		}),
	}
}
