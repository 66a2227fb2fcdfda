package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// jobRepository реализует JobRepository для PostgreSQL через GORM
type jobRepository struct {
	db *gorm.DB
}

// NewJobRepository создает репозиторий задач аналитики
func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *entity.AnalysisJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = entity.JobStatusPending
	}

	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *jobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.AnalysisJob, error) {
	var job entity.AnalysisJob

	result := r.db.WithContext(ctx).Where("id = ?", id).First(&job)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", result.Error)
	}

	return &job, nil
}

// MarkRunning захватывает задачу условным UPDATE: повторная доставка сообщения не запустит ее снова
func (r *jobRepository) MarkRunning(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.AnalysisJob{}).
		Where("id = ? AND status = ?", id, entity.JobStatusPending).
		Updates(map[string]interface{}{
			"status": entity.JobStatusRunning,
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to mark job running: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (r *jobRepository) Complete(ctx context.Context, id uuid.UUID, result *entity.Stats) error {
	now := time.Now().UTC()
	return r.finish(ctx, id, &entity.AnalysisJob{
		Status:      entity.JobStatusSucceeded,
		Result:      result,
		CompletedAt: &now,
	}, "status", "result", "completed_at", "updated_at")
}

func (r *jobRepository) Fail(ctx context.Context, id uuid.UUID, reason string) error {
	now := time.Now().UTC()
	return r.finish(ctx, id, &entity.AnalysisJob{
		Status:      entity.JobStatusFailed,
		Error:       &reason,
		CompletedAt: &now,
	}, "status", "error", "completed_at", "updated_at")
}

// finish записывает терминальный статус. Select нужен, чтобы сериализатор json применился к result
func (r *jobRepository) finish(ctx context.Context, id uuid.UUID, values *entity.AnalysisJob, columns ...string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.AnalysisJob{}).
		Where("id = ?", id).
		Select(columns).
		Updates(values)

	if result.Error != nil {
		return fmt.Errorf("failed to finish job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *jobRepository) FailStale(ctx context.Context, startedBefore time.Time, reason string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.AnalysisJob{}).
		Where("status = ? AND updated_at < ?", entity.JobStatusRunning, startedBefore).
		Updates(map[string]interface{}{
			"status":       entity.JobStatusFailed,
			"error":        reason,
			"completed_at": time.Now().UTC(),
		})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to fail stale jobs: %w", result.Error)
	}

	return result.RowsAffected, nil
}
