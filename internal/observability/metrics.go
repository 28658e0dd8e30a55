package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the map service.
type Metrics struct {
	// Dataset loading.
	DatasetLoads        *prometheus.CounterVec // labels: outcome={success,not_found,status_error,network_error,invalid_year}
	DatasetLoadDuration prometheus.Histogram
	StaleResponses      prometheus.Counter

	// Rendering and interaction.
	TracksRendered   prometheus.Gauge
	ElementsRendered prometheus.Gauge
	TrackSelections  prometheus.Counter
	HighlightResets  prometheus.Counter

	// Event sink and streaming.
	EventsPublished *prometheus.CounterVec // labels: outcome={success,error}
	SSEClients      prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.DatasetLoads,
		m.DatasetLoadDuration,
		m.StaleResponses,
		m.TracksRendered,
		m.ElementsRendered,
		m.TrackSelections,
		m.HighlightResets,
		m.EventsPublished,
		m.SSEClients,
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
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aew_map",
			Name:      "dataset_loads_total",
			Help:      "Year dataset loads by outcome.",
		}, []string{"outcome"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aew_map",
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of a year dataset fetch and decode.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		StaleResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aew_map",
			Name:      "stale_responses_total",
			Help:      "Dataset responses discarded because a newer load was issued.",
		}),
		TracksRendered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aew_map",
			Name:      "tracks_rendered",
			Help:      "Track groups on the surface after the last render.",
		}),
		ElementsRendered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aew_map",
			Name:      "elements_rendered",
			Help:      "Markers or segments on the surface after the last render.",
		}),
		TrackSelections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aew_map",
			Name:      "track_selections_total",
			Help:      "Element clicks handled by the surface.",
		}),
		HighlightResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aew_map",
			Name:      "highlight_resets_total",
			Help:      "Highlight resets that cleared an active highlight.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aew_map",
			Name:      "events_published_total",
			Help:      "Interaction events handed to the event sink by outcome.",
		}, []string{"outcome"}),
		SSEClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aew_map",
			Name:      "sse_clients",
			Help:      "Connected view-stream clients.",
		}),
	}
}
