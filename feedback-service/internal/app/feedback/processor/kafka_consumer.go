package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/feedback-service/internal/app/feedback/service"
	"feedbackhub/pkg/logger"
	"feedbackhub/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

const metricsService = "feedback-worker"

// KafkaConsumer читает JOB_REQUESTED из топика задач и запускает их выполнение
type KafkaConsumer struct {
	reader   *kafka.Reader
	jobs     service.JobRunnerInterface
	topic    string
	groupID  string
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewKafkaConsumer создает новый Kafka consumer
func NewKafkaConsumer(
	brokers []string,
	topic string,
	groupID string,
	jobs service.JobRunnerInterface,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		// Задачи, поставленные пока воркер не работал, тоже должны выполниться
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
	})

	return &KafkaConsumer{
		reader:   reader,
		jobs:     jobs,
		topic:    topic,
		groupID:  groupID,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start запускает consumer в отдельной горутине
func (c *KafkaConsumer) Start(ctx context.Context) {
	logger.Info().Str("topic", c.topic).Str("group_id", c.groupID).Msg("Starting Kafka consumer")
	go c.consume(ctx)
}

// Stop останавливает consumer и дожидается завершения текущего сообщения
func (c *KafkaConsumer) Stop() {
	logger.Info().Msg("Stopping Kafka consumer")
	close(c.stopChan)
	<-c.doneChan
	if err := c.reader.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close Kafka reader")
	}
	logger.Info().Msg("Kafka consumer stopped")
}

func (c *KafkaConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		select {
		case <-c.stopChan:
			return
		default:
			readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			message, err := c.reader.FetchMessage(readCtx)
			cancel()

			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if readCtx.Err() == context.DeadlineExceeded {
					continue
				}

				metrics.RecordKafkaError(metricsService, c.topic, "fetch")
				logger.Error().Err(err).Msg("Error fetching message")
				time.Sleep(time.Second)
				continue
			}

			start := time.Now()
			if err := c.processMessage(ctx, message); err != nil {
				// Не коммитим offset при ошибке - сообщение будет повторно обработано
				metrics.RecordKafkaError(metricsService, c.topic, "process")
				logger.Error().Err(err).Int64("offset", message.Offset).Msg("Error processing message")
				continue
			}
			metrics.RecordKafkaMessageConsumed(metricsService, c.topic, c.groupID, time.Since(start))

			if err := c.reader.CommitMessages(ctx, message); err != nil {
				metrics.RecordKafkaError(metricsService, c.topic, "commit")
				logger.Error().Err(err).Msg("Error committing message")
			}
		}
	}
}

// processMessage разбирает сообщение и выполняет задачу.
// Неизвестные типы событий пропускаются, чтобы не блокировать партицию
func (c *KafkaConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var msg entity.JobMessage
	if err := json.Unmarshal(message.Value, &msg); err != nil {
		return fmt.Errorf("failed to unmarshal job message: %w", err)
	}

	if msg.EventType != entity.EventJobRequested {
		logger.Warn().Str("event_type", msg.EventType).Msg("Skipping unknown job event")
		return nil
	}

	logger.Debug().
		Str("job_id", msg.JobID.String()).
		Int64("offset", message.Offset).
		Int("partition", message.Partition).
		Msg("Received job")

	if err := c.jobs.Run(ctx, msg.JobID); err != nil {
		return fmt.Errorf("failed to run job %s: %w", msg.JobID, err)
	}
	return nil
}

func (c *KafkaConsumer) GetStats() kafka.ReaderStats {
	return c.reader.Stats()
}
