package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quickbuy_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quickbuy_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	// Catalog
	CatalogQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quickbuy_catalog_queries_total",
			Help: "Catalog queries by operation",
		},
		[]string{"operation"},
	)

	PhotoBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quickbuy_photo_bytes",
			Help:    "Size of accepted product photos in bytes",
			Buckets: prometheus.ExponentialBuckets(4096, 4, 6),
		},
	)

	PhotosRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quickbuy_photos_rejected_total",
			Help: "Product photos rejected by validation",
		},
	)

	// Personalization
	PreferenceWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quickbuy_preference_writes_total",
			Help: "Preference keyword insertions by result",
		},
		[]string{"result"},
	)

	RecommendationCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quickbuy_recommendation_candidates",
			Help:    "Number of products ranked per recommendation request",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// Events
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quickbuy_events_published_total",
			Help: "Domain events published to the broker by result",
		},
		[]string{"routing_key", "result"},
	)
)

// RecordQuery counts one catalog query.
func RecordQuery(operation string) {
	CatalogQueries.WithLabelValues(operation).Inc()
}
