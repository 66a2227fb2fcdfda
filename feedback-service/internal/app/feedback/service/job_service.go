package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/feedback-service/internal/app/feedback/infrastructure"
	"feedbackhub/feedback-service/internal/app/feedback/query"
	"feedbackhub/feedback-service/internal/app/feedback/repository"
	"feedbackhub/pkg/logger"
	"feedbackhub/pkg/metrics"

	"github.com/google/uuid"
)

const dispatchFailed = "failed to dispatch job"

// JobService управляет задачами аналитики: постановка, статус, выполнение воркером
type JobService struct {
	jobRepo       repository.JobRepository
	lock          repository.JobLock
	stats         StatsEngine
	kafkaProducer infrastructure.MessagePublisher
	lockTTL       time.Duration
}

// NewJobService создает сервис задач. lock и stats нужны только воркеру, в API могут быть nil.
// kafkaProducer нужен только для Create, воркер передает nil
func NewJobService(
	jobRepo repository.JobRepository,
	lock repository.JobLock,
	stats StatsEngine,
	kafkaProducer infrastructure.MessagePublisher,
	lockTTL time.Duration,
) *JobService {
	return &JobService{
		jobRepo:       jobRepo,
		lock:          lock,
		stats:         stats,
		kafkaProducer: kafkaProducer,
		lockTTL:       lockTTL,
	}
}

// Create сохраняет задачу в статусе pending и отправляет JOB_REQUESTED в топик задач.
// Если отправить не удалось, задача сразу помечается failed
func (s *JobService) Create(ctx context.Context, req *entity.CreateJobRequest) (*entity.AnalysisJob, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	job := &entity.AnalysisJob{
		ID:       uuid.New(),
		JobType:  req.JobType,
		TargetID: req.TargetID,
		Tags:     req.Tags,
		Since:    req.Since,
		Status:   entity.JobStatusPending,
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	if err := s.dispatch(ctx, job); err != nil {
		logger.Error().Err(err).Str("job_id", job.ID.String()).Msg("Failed to dispatch analysis job")

		if err := s.jobRepo.Fail(ctx, job.ID, dispatchFailed); err != nil {
			return nil, fmt.Errorf("failed to mark job failed: %w", err)
		}
		reason := dispatchFailed
		job.Status = entity.JobStatusFailed
		job.Error = &reason
	}

	return job, nil
}

func (s *JobService) Get(ctx context.Context, id uuid.UUID) (*entity.AnalysisJob, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// Run выполняет задачу в воркере.
// 1. Берет Redis блокировку, чтобы одну задачу не считали два воркера
// 2. Переводит pending -> running; повторная доставка сообщения ничего не делает
// 3. Считает агрегаты тем же движком, что и /stats, и сохраняет результат
// Ошибка возвращается только если задачу стоит доставить повторно
func (s *JobService) Run(ctx context.Context, id uuid.UUID) error {
	acquired, err := s.lock.Acquire(ctx, id, s.lockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire job lock: %w", err)
	}
	if !acquired {
		logger.Debug().Str("job_id", id.String()).Msg("Job is locked by another worker")
		return nil
	}
	defer func() {
		if err := s.lock.Release(ctx, id); err != nil {
			logger.Warn().Err(err).Str("job_id", id.String()).Msg("Failed to release job lock")
		}
	}()

	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn().Str("job_id", id.String()).Msg("Job not found, skipping")
			return nil
		}
		return fmt.Errorf("failed to get job: %w", err)
	}

	claimed, err := s.jobRepo.MarkRunning(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to mark job running: %w", err)
	}
	if !claimed {
		logger.Debug().Str("job_id", id.String()).Str("status", string(job.Status)).Msg("Job already taken")
		return nil
	}

	start := time.Now()
	logger.Info().Str("job_id", id.String()).Str("job_type", string(job.JobType)).Msg("Job started")

	stats, err := s.compute(ctx, job)
	if err != nil {
		metrics.RecordJobProcessed(string(job.JobType), string(entity.JobStatusFailed), time.Since(start))
		logger.Error().Err(err).Str("job_id", id.String()).Msg("Job failed")
		if err := s.jobRepo.Fail(ctx, id, err.Error()); err != nil {
			return fmt.Errorf("failed to mark job failed: %w", err)
		}
		return nil
	}

	if err := s.jobRepo.Complete(ctx, id, stats); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	metrics.RecordJobProcessed(string(job.JobType), string(entity.JobStatusSucceeded), time.Since(start))
	logger.Info().
		Str("job_id", id.String()).
		Int("count_total", stats.Count).
		Dur("duration", time.Since(start)).
		Msg("Job succeeded")
	return nil
}

// ReapStale помечает failed задачи, которые слишком долго находятся в running
// (воркер упал, не успев записать результат)
func (s *JobService) ReapStale(ctx context.Context, timeout time.Duration) (int64, error) {
	n, err := s.jobRepo.FailStale(ctx, time.Now().Add(-timeout), "job timed out")
	if err != nil {
		return 0, fmt.Errorf("failed to reap stale jobs: %w", err)
	}
	if n > 0 {
		metrics.JobsReaped.Add(float64(n))
		logger.Warn().Int64("count", n).Msg("Stale jobs marked failed")
	}
	return n, nil
}

// compute строит предикат задачи. Для app_stats target_id не используется
func (s *JobService) compute(ctx context.Context, job *entity.AnalysisJob) (*entity.Stats, error) {
	res := query.AppResource
	filters := []query.Filter{query.TagsOverlap{Tags: job.Tags}}

	if job.JobType == entity.JobTypeProfileStats {
		if job.TargetID == nil {
			return nil, ErrRevieweeRequired
		}
		res = query.ProfileResource
		filters = append(filters, query.Equals{Column: query.ColRevieweeProfileID, Value: *job.TargetID})
	}
	if job.Since != nil {
		filters = append(filters, query.CreatedSince{Since: *job.Since})
	}

	pred, err := query.Compile(res, filters...)
	if err != nil {
		return nil, err
	}
	return s.stats.Compute(ctx, res, pred)
}

func (s *JobService) dispatch(ctx context.Context, job *entity.AnalysisJob) error {
	data, err := json.Marshal(entity.JobMessage{
		EventType: entity.EventJobRequested,
		JobID:     job.ID,
		JobType:   job.JobType,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal job message: %w", err)
	}

	if err := s.kafkaProducer.PublishMessage(ctx, job.ID.String(), data); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}
	return nil
}
