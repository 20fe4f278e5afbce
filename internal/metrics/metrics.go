package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StoreOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rajmarketing_store_operations_total",
		Help: "Total number of document store operations, by operation name.",
	},
		[]string{"operation"},
	)

	StoreOperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rajmarketing_store_operation_errors_total",
		Help: "Total number of failed document store operations, by operation name.",
	},
		[]string{"operation"},
	)

	WriteConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rajmarketing_write_conflicts_total",
		Help: "Total number of optimistic-concurrency conflicts observed on collection writes.",
	})

	WriteRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rajmarketing_write_retries_total",
		Help: "Total number of read-modify-write cycles retried after a version conflict.",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rajmarketing_http_requests_total",
		Help: "Total number of HTTP requests served, by method and status code.",
	},
		[]string{"method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rajmarketing_http_request_duration_seconds",
		Help:    "HTTP request handling duration.",
		Buckets: prometheus.DefBuckets,
	})

	EventsRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rajmarketing_events_recorded_total",
		Help: "Total number of domain events handed to the event recorder.",
	})

	EventsPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rajmarketing_events_published_total",
		Help: "Total number of domain events successfully published to the broker.",
	})
)
