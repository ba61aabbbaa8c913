package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// PartitionsFetched tracks the total number of partition fetches
	PartitionsFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronoplan_partitions_fetched_total",
			Help: "Total number of partition fetches",
		},
		[]string{"mode", "status"}, // status: success, rejected, unavailable
	)

	// FetchDuration measures partition fetch duration in seconds
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chronoplan_fetch_duration_seconds",
			Help:    "Partition fetch duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~200s
		},
		[]string{"mode"},
	)

	// PlannedChunks tracks the chunk count of the most recent plan
	PlannedChunks = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chronoplan_planned_chunks",
			Help: "Chunk count of the most recently built plan",
		},
		[]string{"mode"},
	)

	// PlannedPartitions tracks the partition count of the most recent plan
	PlannedPartitions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chronoplan_planned_partitions",
			Help: "Partition count of the most recently built plan",
		},
		[]string{"mode"},
	)

	// CacheRequests counts partition cache lookups by result
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronoplan_cache_requests_total",
			Help: "Partition cache lookups",
		},
		[]string{"result"}, // result: hit, miss, error
	)

	// PrefetchTasksEnqueued counts prefetch tasks handed to the queue
	PrefetchTasksEnqueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chronoplan_prefetch_tasks_enqueued_total",
			Help: "Total prefetch tasks enqueued",
		},
	)

	// PrefetchTasksProcessed counts prefetch task executions by outcome
	PrefetchTasksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronoplan_prefetch_tasks_processed_total",
			Help: "Total prefetch task executions",
		},
		[]string{"status"}, // status: success, failed, skipped
	)
)

// RecordFetch records the outcome and duration of one partition fetch.
func RecordFetch(mode, status string, seconds float64) {
	PartitionsFetched.WithLabelValues(mode, status).Inc()
	if status == "success" {
		FetchDuration.WithLabelValues(mode).Observe(seconds)
	}
}

// RecordPlan records the shape of a freshly built plan.
func RecordPlan(mode string, partitions, chunks int) {
	PlannedPartitions.WithLabelValues(mode).Set(float64(partitions))
	PlannedChunks.WithLabelValues(mode).Set(float64(chunks))
}

// RecordCacheLookup records a partition cache lookup result.
func RecordCacheLookup(result string) {
	CacheRequests.WithLabelValues(result).Inc()
}

// RecordPrefetch records the outcome of one prefetch task execution.
func RecordPrefetch(status string) {
	PrefetchTasksProcessed.WithLabelValues(status).Inc()
}
