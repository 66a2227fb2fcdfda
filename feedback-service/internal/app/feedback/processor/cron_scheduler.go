package processor

import (
	"context"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/service"
	"feedbackhub/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CronScheduler периодически помечает failed задачи, зависшие в running
type CronScheduler struct {
	cron    *cron.Cron
	reaper  service.JobReaperInterface
	timeout time.Duration
}

func NewCronScheduler(reaper service.JobReaperInterface, timeout time.Duration) *CronScheduler {
	l := logger.Logger()
	c := cron.New(cron.WithLogger(cron.PrintfLogger(&l)))

	return &CronScheduler{
		cron:    c,
		reaper:  reaper,
		timeout: timeout,
	}
}

func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Dur("job_timeout", s.timeout).Msg("Starting cron scheduler")

	if _, err := s.cron.AddFunc(schedule, func() { s.reap(ctx) }); err != nil {
		return err
	}

	s.cron.Start()

	// Задачи, зависшие пока воркер не работал
	s.reap(ctx)
	return nil
}

func (s *CronScheduler) reap(ctx context.Context) {
	if _, err := s.reaper.ReapStale(ctx, s.timeout); err != nil {
		logger.Error().Err(err).Msg("Failed to reap stale jobs")
	}
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
