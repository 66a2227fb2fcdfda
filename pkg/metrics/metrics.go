package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP Метрики
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Пример запроса PromQL: rate(http_requests_total{service="feedback-service"}[5m])
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

// HttpRequestsInFlight - текущее количество обрабатываемых запросов
var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Database Метрики
// =============================================================================

var DbQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"service", "operation", "table"},
)

var DbErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_errors_total",
		Help: "Total number of database errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Redis Метрики
// =============================================================================

var RedisOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Duration of Redis operations in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	},
	[]string{"service", "operation"},
)

var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka Метрики
// =============================================================================

var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

var KafkaMessagesConsumed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_consumed_total",
		Help: "Total number of Kafka messages consumed",
	},
	[]string{"service", "topic", "group"},
)

var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

var KafkaConsumeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_consume_duration_seconds",
		Help:    "Duration of Kafka message processing",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	},
	[]string{"service", "topic"},
)

var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"}, // operation: produce, consume
)

// =============================================================================
// Business Метрики
// =============================================================================

// FeedbackCreated - созданные отзывы по типу ресурса (profile, app)
var FeedbackCreated = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "feedback_created_total",
		Help: "Total number of feedback items created",
	},
	[]string{"kind"},
)

// FeedbackRating - распределение общих оценок
var FeedbackRating = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "feedback_overall_rating",
		Help:    "Distribution of overall feedback ratings",
		Buckets: []float64{1, 2, 3, 4, 5},
	},
	[]string{"kind"},
)

// FeedbackConflicts - отказы записи: duplicate (уникальность) и precondition (If-Match)
var FeedbackConflicts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "feedback_write_conflicts_total",
		Help: "Total number of rejected feedback writes",
	},
	[]string{"kind", "reason"},
)

// FeedbackNotModified - ответы 304 на условные чтения
var FeedbackNotModified = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "feedback_not_modified_total",
		Help: "Total number of conditional reads answered with 304",
	},
	[]string{"kind"},
)

// JobsProcessed - обработанные задачи аналитики
var JobsProcessed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "feedback_jobs_processed_total",
		Help: "Total number of feedback analysis jobs processed",
	},
	[]string{"job_type", "status"}, // status: succeeded, failed, skipped
)

// JobProcessingDuration - время выполнения задачи аналитики
var JobProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "feedback_job_processing_duration_seconds",
		Help:    "Duration of feedback analysis job processing",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	},
	[]string{"job_type"},
)

// JobsReaped - задачи, помеченные failed по таймауту
var JobsReaped = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "feedback_jobs_reaped_total",
		Help: "Total number of stale running jobs marked failed",
	},
)
