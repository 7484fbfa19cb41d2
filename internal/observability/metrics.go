package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RatingsSubmitted counts accepted rating writes by kind and action.
	RatingsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipehub_ratings_total",
		Help: "Total number of rating writes",
	}, []string{"kind", "action"})

	// AggregateRecomputeLatency records time spent inside the rate-and-recompute transaction.
	AggregateRecomputeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recipehub_aggregate_recompute_seconds",
		Help:    "Latency of rating upsert plus aggregate recompute",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	// FeedSize observes the number of posts returned per feed or discovery request.
	FeedSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recipehub_feed_size",
		Help:    "Number of posts returned by feed and discovery queries",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	}, []string{"feed"})

	// DiscoveryCache counts discovery snapshot lookups by result.
	DiscoveryCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipehub_discovery_cache_total",
		Help: "Discovery snapshot cache lookups by result",
	}, []string{"result"})

	// EventPublishFailures counts domain events that could not be delivered.
	EventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipehub_event_publish_failures_total",
		Help: "Domain events that failed to publish",
	}, []string{"subject"})

	// StorageOperations counts object storage calls by operation and outcome.
	StorageOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipehub_storage_operations_total",
		Help: "Object storage operations by outcome",
	}, []string{"operation", "outcome"})

	// DatabaseQueryLatency records repository query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recipehub_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// ObserveRecompute records the duration of one rate-and-recompute unit of work.
func ObserveRecompute(kind string, start time.Time) {
	AggregateRecomputeLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
