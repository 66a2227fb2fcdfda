package metrics

import (
	"time"
)

type RedisOperation string

const (
	RedisOpSetNX RedisOperation = "setnx"
	RedisOpDel   RedisOperation = "del"
	RedisOpPing  RedisOperation = "ping"
)

type RedisTimer struct {
	service   string
	operation RedisOperation
	start     time.Time
}

func NewRedisTimer(service string, op RedisOperation) *RedisTimer {
	return &RedisTimer{
		service:   service,
		operation: op,
		start:     time.Now(),
	}
}

func (rt *RedisTimer) ObserveDuration() {
	RedisOperationDuration.WithLabelValues(rt.service, string(rt.operation)).Observe(time.Since(rt.start).Seconds())
}

func RecordRedisError(service string, op RedisOperation) {
	RedisErrors.WithLabelValues(service, string(op)).Inc()
}

func RecordKafkaMessageConsumed(service, topic, group string, processingDuration time.Duration) {
	KafkaMessagesConsumed.WithLabelValues(service, topic, group).Inc()
	KafkaConsumeDuration.WithLabelValues(service, topic).Observe(processingDuration.Seconds())
}

func RecordKafkaError(service, topic, operation string) {
	KafkaErrors.WithLabelValues(service, topic, operation).Inc()
}

type KafkaProduceTimer struct {
	service string
	topic   string
	start   time.Time
}

func NewKafkaProduceTimer(service, topic string) *KafkaProduceTimer {
	return &KafkaProduceTimer{
		service: service,
		topic:   topic,
		start:   time.Now(),
	}
}

func (kt *KafkaProduceTimer) Success() {
	KafkaMessagesProduced.WithLabelValues(kt.service, kt.topic).Inc()
	KafkaProduceDuration.WithLabelValues(kt.service, kt.topic).Observe(time.Since(kt.start).Seconds())
}

func (kt *KafkaProduceTimer) Error() {
	RecordKafkaError(kt.service, kt.topic, "produce")
}

type DbOperation string

const (
	DbOpSelect    DbOperation = "select"
	DbOpInsert    DbOperation = "insert"
	DbOpUpdate    DbOperation = "update"
	DbOpDelete    DbOperation = "delete"
	DbOpAggregate DbOperation = "aggregate"
)

// DbTimer измеряет длительность одного SQL запроса
//
//	timer := metrics.NewDbTimer(svc, metrics.DbOpSelect, "feedback_profile")
//	defer timer.ObserveDuration()
type DbTimer struct {
	service   string
	operation DbOperation
	table     string
	start     time.Time
}

func NewDbTimer(service string, op DbOperation, table string) *DbTimer {
	return &DbTimer{
		service:   service,
		operation: op,
		table:     table,
		start:     time.Now(),
	}
}

func (dt *DbTimer) ObserveDuration() {
	DbQueryDuration.WithLabelValues(dt.service, string(dt.operation), dt.table).Observe(time.Since(dt.start).Seconds())
}

func RecordDbError(service string, op DbOperation) {
	DbErrors.WithLabelValues(service, string(op)).Inc()
}

// RecordFeedbackCreated учитывает созданный отзыв и его общую оценку
func RecordFeedbackCreated(kind string, overall int) {
	FeedbackCreated.WithLabelValues(kind).Inc()
	FeedbackRating.WithLabelValues(kind).Observe(float64(overall))
}

func RecordWriteConflict(kind, reason string) {
	FeedbackConflicts.WithLabelValues(kind, reason).Inc()
}

func RecordNotModified(kind string) {
	FeedbackNotModified.WithLabelValues(kind).Inc()
}

func RecordJobProcessed(jobType, status string, duration time.Duration) {
	JobsProcessed.WithLabelValues(jobType, status).Inc()
	JobProcessingDuration.WithLabelValues(jobType).Observe(duration.Seconds())
}
