package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// recommendation engine and its adapters.
type Metrics struct {
	ScoringRuns        prometheus.Counter
	ScoringErrors      prometheus.Counter
	CandidatesScored   prometheus.Counter
	CandidatesFiltered prometheus.Counter
	EngineReady        prometheus.Gauge

	ScoringDuration         prometheus.Histogram
	RecommendationsReturned prometheus.Histogram

	// Weather collaborator metrics.
	WeatherRequests *prometheus.CounterVec // labels: endpoint={current,forecast,historical}, outcome={success,error}
	WeatherCache    *prometheus.CounterVec // labels: result={hit,miss,stale}

	// Downstream publishing metrics.
	EventsPublished prometheus.Counter
	PublishErrors   prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus
// registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ScoringRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crop_engine",
			Name:      "scoring_runs_total",
			Help:      "Total scoring runs executed.",
		}),
		ScoringErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crop_engine",
			Name:      "scoring_errors_total",
			Help:      "Total scoring runs rejected with a validation error.",
		}),
		CandidatesScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crop_engine",
			Name:      "candidates_scored_total",
			Help:      "Total candidate crops scored across all runs.",
		}),
		CandidatesFiltered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crop_engine",
			Name:      "candidates_filtered_total",
			Help:      "Total candidate crops excluded by the soil hard filter.",
		}),
		EngineReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crop_engine",
			Name:      "ready",
			Help:      "1 when the reference store is loaded and the engine can score.",
		}),
		ScoringDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crop_engine",
			Name:      "scoring_duration_seconds",
			Help:      "Duration of a complete scoring run.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		RecommendationsReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crop_engine",
			Name:      "recommendations_returned",
			Help:      "Number of recommendations returned per run.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crop_engine",
			Name:      "weather_requests_total",
			Help:      "Weather collaborator requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crop_engine",
			Name:      "weather_cache_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crop_engine",
			Name:      "events_published_total",
			Help:      "Recommendation events published to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crop_engine",
			Name:      "publish_errors_total",
			Help:      "Failed attempts to publish recommendation events.",
		}),
	}

	prometheus.MustRegister(
		m.ScoringRuns,
		m.ScoringErrors,
		m.CandidatesScored,
		m.CandidatesFiltered,
		m.EngineReady,
		m.ScoringDuration,
		m.RecommendationsReturned,
		m.WeatherRequests,
		m.WeatherCache,
		m.EventsPublished,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ScoringRuns:             prometheus.NewCounter(prometheus.CounterOpts{Namespace: "crop_engine", Name: "scoring_runs_total"}),
		ScoringErrors:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "crop_engine", Name: "scoring_errors_total"}),
		CandidatesScored:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "crop_engine", Name: "candidates_scored_total"}),
		CandidatesFiltered:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "crop_engine", Name: "candidates_filtered_total"}),
		EngineReady:             prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "crop_engine", Name: "ready"}),
		ScoringDuration:         prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "crop_engine", Name: "scoring_duration_seconds"}),
		RecommendationsReturned: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "crop_engine", Name: "recommendations_returned"}),
		WeatherRequests:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "crop_engine", Name: "weather_requests_total"}, []string{"endpoint", "outcome"}),
		WeatherCache:            prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "crop_engine", Name: "weather_cache_total"}, []string{"result"}),
		EventsPublished:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "crop_engine", Name: "events_published_total"}),
		PublishErrors:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "crop_engine", Name: "publish_errors_total"}),
	}
}
