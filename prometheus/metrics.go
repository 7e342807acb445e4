package prometheus

import (
	"time"

	"github.com/chrisgermon/form-ordering-sub000/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Submission pipeline metrics
	SubmissionsReceivedCounter  prometheus.Counter
	SubmissionsPersistedCounter prometheus.Counter
	SubmissionsRejectedCounter  prometheus.Counter
	PipelineStepFailuresCounter prometheus.CounterVec

	// Form definition cache metrics
	FormCacheHitCounter  prometheus.Counter
	FormCacheMissCounter prometheus.Counter

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Entity CRUD metrics
	EntityOperationsCounter prometheus.CounterVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of admin login attempts",
		},
	)

	AuthSuccessCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successful admin logins",
		},
	)

	AuthErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of failed admin logins",
		},
	)

	SubmissionsReceivedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_submissions_received_total",
			Help: "Total number of order submissions received",
		},
	)

	SubmissionsPersistedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_submissions_persisted_total",
			Help: "Total number of order submissions persisted",
		},
	)

	SubmissionsRejectedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_submissions_rejected_total",
			Help: "Total number of order submissions rejected by validation",
		},
	)

	PipelineStepFailuresCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_pipeline_step_failures_total",
			Help: "Total number of non-fatal submission pipeline step failures",
		},
		[]string{"step"},
	)

	FormCacheHitCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_form_cache_hits_total",
			Help: "Total number of form definition cache hits",
		},
	)

	FormCacheMissCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_form_cache_misses_total",
			Help: "Total number of form definition cache misses",
		},
	)

	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	EntityOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_entity_operations_total",
			Help: "Total number of admin entity operations",
		},
		[]string{"entity", "operation"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordEntityOperation increments the counter for admin entity operations
func RecordEntityOperation(entity, operation string) {
	EntityOperationsCounter.WithLabelValues(entity, operation).Inc()
}

// RecordPipelineStepFailure increments the counter for a failed pipeline step
func RecordPipelineStepFailure(step string) {
	PipelineStepFailuresCounter.WithLabelValues(step).Inc()
}
