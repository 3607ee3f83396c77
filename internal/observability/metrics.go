package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the Prometheus collectors for the service. It uses a
// custom registry to avoid polluting the global default.
type Metrics struct {
	Registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Engine metrics
	RecommendationsTotal   *prometheus.CounterVec
	RecommendationDuration prometheus.Histogram
	RecommendationMatches  prometheus.Histogram
	ValidationFailures     prometheus.Counter
	PriceResolutions       *prometheus.CounterVec

	// Catalog metrics
	CatalogRecords prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all collectors registered.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gpu_recommender_http_requests_total",
			Help: "Total number of HTTP requests served.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gpu_recommender_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		RecommendationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gpu_recommender_recommendations_total",
			Help: "Total number of successful recommendation calls by use case.",
		}, []string{"use_case"}),
		RecommendationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gpu_recommender_recommendation_duration_seconds",
			Help:    "Duration of recommendation calls including live price lookups.",
			Buckets: prometheus.DefBuckets,
		}),
		RecommendationMatches: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gpu_recommender_recommendation_matches",
			Help:    "Number of feasible entries returned per recommendation.",
			Buckets: prometheus.LinearBuckets(0, 2, 10),
		}),
		ValidationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gpu_recommender_validation_failures_total",
			Help: "Total number of rejected constraint sets.",
		}),
		PriceResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gpu_recommender_price_resolutions_total",
			Help: "Live price lookups by outcome.",
		}, []string{"outcome"}),

		CatalogRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gpu_recommender_catalog_records",
			Help: "Number of GPU records in the loaded catalog.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RecommendationsTotal,
		m.RecommendationDuration,
		m.RecommendationMatches,
		m.ValidationFailures,
		m.PriceResolutions,
		m.CatalogRecords,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) ObserveRecommendation(useCase string, matches int, elapsed time.Duration) {
	m.RecommendationsTotal.WithLabelValues(useCase).Inc()
	m.RecommendationDuration.Observe(elapsed.Seconds())
	m.RecommendationMatches.Observe(float64(matches))
}

func (m *Metrics) ObserveValidationFailure() {
	m.ValidationFailures.Inc()
}

func (m *Metrics) ObservePriceResolution(outcome string) {
	m.PriceResolutions.WithLabelValues(outcome).Inc()
}
