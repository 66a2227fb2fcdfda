package service

import (
	"context"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/feedback-service/internal/app/feedback/query"

	"github.com/google/uuid"
)

// StatsEngine считает агрегаты по предикату выборки (aggregate.Engine)
type StatsEngine interface {
	Compute(ctx context.Context, res query.Resource, pred query.Predicate) (*entity.Stats, error)
}

// JobRunnerInterface выполняет задачу аналитики по ID (воркер)
type JobRunnerInterface interface {
	Run(ctx context.Context, id uuid.UUID) error
}

// JobReaperInterface помечает failed зависшие задачи
type JobReaperInterface interface {
	ReapStale(ctx context.Context, timeout time.Duration) (int64, error)
}
