package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/feedback-service/internal/app/feedback/query"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate record")
	ErrConstraint = errors.New("constraint violation")
	ErrStale      = errors.New("record was modified concurrently")
)

const metricsService = "feedback-service"

// ProfileFeedbackRepository определяет методы для работы с отзывами о профилях в PostgreSQL
type ProfileFeedbackRepository interface {
	Create(ctx context.Context, f *entity.ProfileFeedback) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ProfileFeedback, error)
	// Update записывает только переданные в запросе поля и возвращает строку целиком.
	// Если expected != nil, запись обновляется только при совпадении updated_at, иначе ErrStale
	Update(ctx context.Context, id uuid.UUID, req *entity.UpdateProfileFeedbackRequest, expected *time.Time) (*entity.ProfileFeedback, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, pred query.Predicate, page query.PageRequest) ([]entity.ProfileFeedback, error)
	Count(ctx context.Context, pred query.Predicate) (int, error)
}

// AppFeedbackRepository определяет методы для работы с отзывами о приложении
type AppFeedbackRepository interface {
	Create(ctx context.Context, f *entity.AppFeedback) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.AppFeedback, error)
	Update(ctx context.Context, id uuid.UUID, req *entity.UpdateAppFeedbackRequest, expected *time.Time) (*entity.AppFeedback, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, pred query.Predicate, page query.PageRequest) ([]entity.AppFeedback, error)
	Count(ctx context.Context, pred query.Predicate) (int, error)
}

// AggregateRow - результат сгруппированного запроса по отзывам
type AggregateRow struct {
	Count   int
	Mean    *float64
	Buckets [5]int              // Buckets[k-1] - число отзывов с оценкой k
	Facets  map[string]*float64 // Среднее по каждой дополнительной оценке
}

// AggregateRepository выполняет агрегирующие запросы над предикатом выборки
type AggregateRepository interface {
	Aggregate(ctx context.Context, r query.Resource, pred query.Predicate) (*AggregateRow, error)
	TopTags(ctx context.Context, r query.Resource, pred query.Predicate, limit int) ([]entity.TagCount, error)
}

// JobRepository хранит задачи аналитики
type JobRepository interface {
	Create(ctx context.Context, job *entity.AnalysisJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.AnalysisJob, error)
	// MarkRunning переводит pending задачу в running; false, если задача уже не pending
	MarkRunning(ctx context.Context, id uuid.UUID) (bool, error)
	Complete(ctx context.Context, id uuid.UUID, result *entity.Stats) error
	Fail(ctx context.Context, id uuid.UUID, reason string) error
	// FailStale помечает failed задачи, которые находятся в running дольше допустимого
	FailStale(ctx context.Context, startedBefore time.Time, reason string) (int64, error)
}

// JobLock - распределенная блокировка выполнения задачи
type JobLock interface {
	Acquire(ctx context.Context, jobID uuid.UUID, ttl time.Duration) (bool, error)
	Release(ctx context.Context, jobID uuid.UUID) error
}

// mapWriteError переводит коды ошибок PostgreSQL в ошибки репозитория
func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case "23514": // check_violation
			return fmt.Errorf("%w: %s", ErrConstraint, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
