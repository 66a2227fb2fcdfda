package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/concurrency"
	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/feedback-service/internal/app/feedback/infrastructure"
	"feedbackhub/feedback-service/internal/app/feedback/query"
	"feedbackhub/feedback-service/internal/app/feedback/repository"
	"feedbackhub/pkg/metrics"

	"github.com/google/uuid"
)

// AppFeedbackService обрабатывает бизнес-логику отзывов о приложении
type AppFeedbackService struct {
	repo          repository.AppFeedbackRepository
	stats         StatsEngine
	kafkaProducer infrastructure.MessagePublisher
}

func NewAppFeedbackService(
	repo repository.AppFeedbackRepository,
	stats StatsEngine,
	kafkaProducer infrastructure.MessagePublisher,
) *AppFeedbackService {
	return &AppFeedbackService{
		repo:          repo,
		stats:         stats,
		kafkaProducer: kafkaProducer,
	}
}

func (s *AppFeedbackService) Create(ctx context.Context, req *entity.CreateAppFeedbackRequest) (*entity.AppFeedback, string, error) {
	if err := req.Normalize(); err != nil {
		return nil, "", err
	}

	feedback := &entity.AppFeedback{
		ID:                uuid.New(),
		AuthorProfileID:   req.AuthorProfileID,
		Overall:           req.Overall,
		Usability:         req.Usability,
		Reliability:       req.Reliability,
		Performance:       req.Performance,
		SupportExperience: req.SupportExperience,
		Headline:          req.Headline,
		Comment:           req.Comment,
		Tags:              req.Tags,
	}

	if err := s.repo.Create(ctx, feedback); err != nil {
		return nil, "", mapWriteError(entity.KindApp, err)
	}

	metrics.RecordFeedbackCreated(string(entity.KindApp), feedback.Overall)
	s.publish(ctx, entity.EventFeedbackCreated, feedback)

	return feedback, concurrency.Fingerprint(feedback.ID, feedback.UpdatedAt), nil
}

func (s *AppFeedbackService) Get(ctx context.Context, id uuid.UUID) (*entity.AppFeedback, string, error) {
	feedback, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrFeedbackNotFound
		}
		return nil, "", fmt.Errorf("failed to get app feedback: %w", err)
	}

	return feedback, concurrency.Fingerprint(feedback.ID, feedback.UpdatedAt), nil
}

// Update - см. ProfileFeedbackService.Update
func (s *AppFeedbackService) Update(ctx context.Context, id uuid.UUID, req *entity.UpdateAppFeedbackRequest, ifMatch string) (*entity.AppFeedback, string, error) {
	feedback, etag, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	if err := checkPrecondition(entity.KindApp, ifMatch, etag); err != nil {
		return nil, "", err
	}

	if req.Empty() {
		return feedback, etag, nil
	}

	var expected *time.Time
	if concurrency.Pinned(ifMatch) {
		observed := feedback.UpdatedAt
		expected = &observed
	}

	updated, err := s.repo.Update(ctx, id, req, expected)
	if err != nil {
		return nil, "", mapWriteError(entity.KindApp, err)
	}

	s.publish(ctx, entity.EventFeedbackUpdated, updated)

	return updated, concurrency.Fingerprint(updated.ID, updated.UpdatedAt), nil
}

func (s *AppFeedbackService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete app feedback: %w", err)
	}

	publishEvent(ctx, s.kafkaProducer, entity.FeedbackEvent{
		EventType:  entity.EventFeedbackDeleted,
		Kind:       entity.KindApp,
		FeedbackID: id,
		Timestamp:  time.Now().UTC(),
	})
	return nil
}

func (s *AppFeedbackService) List(ctx context.Context, q *entity.AppListQuery) (*entity.Page[entity.AppFeedback], error) {
	pred, err := s.compile(q)
	if err != nil {
		return nil, err
	}

	return paginate(ctx, query.AppResource, pred, q.PageQuery, s.repo.List, s.repo.Count)
}

// Stats считает агрегаты по всем отзывам о приложении или по отзывам одного автора
func (s *AppFeedbackService) Stats(ctx context.Context, q *entity.AppListQuery) (*entity.Stats, error) {
	pred, err := s.compile(q)
	if err != nil {
		return nil, err
	}

	return s.stats.Compute(ctx, query.AppResource, pred)
}

func (s *AppFeedbackService) compile(q *entity.AppListQuery) (query.Predicate, error) {
	filters := commonFilters(query.AppResource, q.Tags, q.MinOverall, q.MaxOverall, q.Since, q.Search)

	filters, err := equalsFilter(filters, query.ColAuthorProfileID, q.AuthorProfileID)
	if err != nil {
		return query.Predicate{}, err
	}

	return query.Compile(query.AppResource, filters...)
}

func (s *AppFeedbackService) publish(ctx context.Context, eventType string, f *entity.AppFeedback) {
	publishEvent(ctx, s.kafkaProducer, entity.FeedbackEvent{
		EventType:  eventType,
		Kind:       entity.KindApp,
		FeedbackID: f.ID,
		SubjectID:  f.AuthorProfileID,
		Overall:    f.Overall,
		Timestamp:  time.Now().UTC(),
	})
}
