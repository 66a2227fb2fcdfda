package repository

import (
	"context"
	"fmt"
	"time"

	"feedbackhub/pkg/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type redisJobLock struct {
	client *redis.Client
}

// NewRedisJobLock создает блокировку задач на Redis (SET NX с TTL)
func NewRedisJobLock(client *redis.Client) JobLock {
	return &redisJobLock{client: client}
}

func jobLockKey(jobID uuid.UUID) string {
	// Ключ формата: job:lock:<job_id>
	return fmt.Sprintf("job:lock:%s", jobID.String())
}

// Acquire возвращает false, если задачу уже обрабатывает другой воркер.
// TTL освобождает блокировку, если воркер упал, не вызвав Release
func (l *redisJobLock) Acquire(ctx context.Context, jobID uuid.UUID, ttl time.Duration) (bool, error) {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpSetNX)
	defer timer.ObserveDuration()

	ok, err := l.client.SetNX(ctx, jobLockKey(jobID), time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpSetNX)
		return false, fmt.Errorf("failed to acquire job lock: %w", err)
	}

	return ok, nil
}

func (l *redisJobLock) Release(ctx context.Context, jobID uuid.UUID) error {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	if err := l.client.Del(ctx, jobLockKey(jobID)).Err(); err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpDel)
		return fmt.Errorf("failed to release job lock: %w", err)
	}

	return nil
}
