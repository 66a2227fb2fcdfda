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

// ProfileFeedbackService обрабатывает бизнес-логику отзывов о профилях
// Координирует работу репозитория, агрегатора и Kafka
type ProfileFeedbackService struct {
	repo          repository.ProfileFeedbackRepository
	stats         StatsEngine
	kafkaProducer infrastructure.MessagePublisher
}

// NewProfileFeedbackService создает сервис с внедрением зависимостей
func NewProfileFeedbackService(
	repo repository.ProfileFeedbackRepository,
	stats StatsEngine,
	kafkaProducer infrastructure.MessagePublisher,
) *ProfileFeedbackService {
	return &ProfileFeedbackService{
		repo:          repo,
		stats:         stats,
		kafkaProducer: kafkaProducer,
	}
}

// Create сохраняет отзыв и возвращает его вместе с ETag.
// Повтор (match_id, reviewer_profile_id) определяет хранилище по уникальному индексу
func (s *ProfileFeedbackService) Create(ctx context.Context, req *entity.CreateProfileFeedbackRequest) (*entity.ProfileFeedback, string, error) {
	if err := req.Normalize(); err != nil {
		return nil, "", err
	}

	feedback := &entity.ProfileFeedback{
		ID:                uuid.New(),
		ReviewerProfileID: req.ReviewerProfileID,
		RevieweeProfileID: req.RevieweeProfileID,
		MatchID:           req.MatchID,
		OverallExperience: req.OverallExperience,
		WouldMeetAgain:    req.WouldMeetAgain,
		SafetyFeeling:     req.SafetyFeeling,
		Respectfulness:    req.Respectfulness,
		Headline:          req.Headline,
		Comment:           req.Comment,
		Tags:              req.Tags,
	}

	if err := s.repo.Create(ctx, feedback); err != nil {
		return nil, "", mapWriteError(entity.KindProfile, err)
	}

	metrics.RecordFeedbackCreated(string(entity.KindProfile), feedback.OverallExperience)
	s.publish(ctx, entity.EventFeedbackCreated, feedback)

	return feedback, concurrency.Fingerprint(feedback.ID, feedback.UpdatedAt), nil
}

// Get возвращает отзыв и его текущий ETag
func (s *ProfileFeedbackService) Get(ctx context.Context, id uuid.UUID) (*entity.ProfileFeedback, string, error) {
	feedback, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrFeedbackNotFound
		}
		return nil, "", fmt.Errorf("failed to get profile feedback: %w", err)
	}

	return feedback, concurrency.Fingerprint(feedback.ID, feedback.UpdatedAt), nil
}

// Update применяет частичное обновление.
// 1. Проверяет If-Match по текущему ETag
// 2. Пустой запрос ничего не меняет и возвращает текущий ETag
// 3. Записывает только переданные поля, при конкретном If-Match - только если
// updated_at не изменился с момента чтения
func (s *ProfileFeedbackService) Update(ctx context.Context, id uuid.UUID, req *entity.UpdateProfileFeedbackRequest, ifMatch string) (*entity.ProfileFeedback, string, error) {
	feedback, etag, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	if err := checkPrecondition(entity.KindProfile, ifMatch, etag); err != nil {
		return nil, "", err
	}

	if req.Empty() {
		return feedback, etag, nil
	}

	observed := feedback.UpdatedAt

	// Ранняя проверка по прочитанной строке, при гонке сработает CHECK в базе
	req.ApplyTo(feedback)
	if feedback.ReviewerProfileID == feedback.RevieweeProfileID {
		return nil, "", fmt.Errorf("%w: reviewer_profile_id must not equal reviewee_profile_id", entity.ErrInvalidInput)
	}

	var expected *time.Time
	if concurrency.Pinned(ifMatch) {
		expected = &observed
	}

	updated, err := s.repo.Update(ctx, id, req, expected)
	if err != nil {
		return nil, "", mapWriteError(entity.KindProfile, err)
	}

	s.publish(ctx, entity.EventFeedbackUpdated, updated)

	return updated, concurrency.Fingerprint(updated.ID, updated.UpdatedAt), nil
}

// Delete удаляет отзыв. Повторное удаление не является ошибкой
func (s *ProfileFeedbackService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete profile feedback: %w", err)
	}

	publishEvent(ctx, s.kafkaProducer, entity.FeedbackEvent{
		EventType:  entity.EventFeedbackDeleted,
		Kind:       entity.KindProfile,
		FeedbackID: id,
		Timestamp:  time.Now().UTC(),
	})
	return nil
}

// List возвращает страницу отзывов, отфильтрованную и отсортированную по запросу
func (s *ProfileFeedbackService) List(ctx context.Context, q *entity.ProfileListQuery) (*entity.Page[entity.ProfileFeedback], error) {
	pred, err := s.compile(q)
	if err != nil {
		return nil, err
	}

	return paginate(ctx, query.ProfileResource, pred, q.PageQuery, s.repo.List, s.repo.Count)
}

// Stats считает агрегаты по отзывам о профиле. reviewee_profile_id обязателен,
// остальные фильтры те же, что у List
func (s *ProfileFeedbackService) Stats(ctx context.Context, q *entity.ProfileListQuery) (*entity.Stats, error) {
	if q.RevieweeProfileID == "" {
		return nil, ErrRevieweeRequired
	}

	pred, err := s.compile(q)
	if err != nil {
		return nil, err
	}

	return s.stats.Compute(ctx, query.ProfileResource, pred)
}

func (s *ProfileFeedbackService) compile(q *entity.ProfileListQuery) (query.Predicate, error) {
	filters := commonFilters(query.ProfileResource, q.Tags, q.MinOverall, q.MaxOverall, q.Since, q.Search)

	var err error
	if filters, err = equalsFilter(filters, query.ColRevieweeProfileID, q.RevieweeProfileID); err != nil {
		return query.Predicate{}, err
	}
	if filters, err = equalsFilter(filters, query.ColReviewerProfileID, q.ReviewerProfileID); err != nil {
		return query.Predicate{}, err
	}
	if filters, err = equalsFilter(filters, query.ColMatchID, q.MatchID); err != nil {
		return query.Predicate{}, err
	}

	return query.Compile(query.ProfileResource, filters...)
}

func (s *ProfileFeedbackService) publish(ctx context.Context, eventType string, f *entity.ProfileFeedback) {
	reviewee := f.RevieweeProfileID
	publishEvent(ctx, s.kafkaProducer, entity.FeedbackEvent{
		EventType:  eventType,
		Kind:       entity.KindProfile,
		FeedbackID: f.ID,
		SubjectID:  &reviewee,
		Overall:    f.OverallExperience,
		Timestamp:  time.Now().UTC(),
	})
}
