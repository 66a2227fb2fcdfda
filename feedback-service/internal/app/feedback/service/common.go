package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/concurrency"
	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/feedback-service/internal/app/feedback/infrastructure"
	"feedbackhub/feedback-service/internal/app/feedback/query"
	"feedbackhub/feedback-service/internal/app/feedback/repository"
	"feedbackhub/pkg/logger"
	"feedbackhub/pkg/metrics"

	"github.com/google/uuid"
)

// paginate выполняет выборку страницы и точный подсчет по одному и тому же предикату
func paginate[T any](
	ctx context.Context,
	res query.Resource,
	pred query.Predicate,
	pq entity.PageQuery,
	list func(context.Context, query.Predicate, query.PageRequest) ([]T, error),
	count func(context.Context, query.Predicate) (int, error),
) (*entity.Page[T], error) {
	sort, err := res.ParseSort(pq.Sort, pq.Order)
	if err != nil {
		return nil, err
	}

	page, err := query.NewPageRequest(pq.Limit, pq.Offset, pq.Cursor, sort)
	if err != nil {
		return nil, err
	}

	items, err := list(ctx, pred, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s feedback: %w", res.Name, err)
	}
	if items == nil {
		items = []T{}
	}

	total, err := count(ctx, pred)
	if err != nil {
		return nil, fmt.Errorf("failed to count %s feedback: %w", res.Name, err)
	}

	return &entity.Page[T]{
		Items:      items,
		Pagination: query.NewPageInfo(page, len(items), total),
	}, nil
}

// commonFilters - фильтры, общие для обоих видов отзывов
func commonFilters(res query.Resource, tags string, minOverall, maxOverall *int, since *time.Time, search string) []query.Filter {
	filters := []query.Filter{
		query.Range{Column: res.RatingColumn, Min: minOverall, Max: maxOverall},
		query.TagsOverlap{Tags: entity.ParseTagList(tags)},
		query.TextContains{Text: search},
	}
	if since != nil {
		filters = append(filters, query.CreatedSince{Since: *since})
	}
	return filters
}

// equalsFilter добавляет фильтр по идентификатору, если параметр передан
func equalsFilter(filters []query.Filter, col query.Column, raw string) ([]query.Filter, error) {
	if raw == "" {
		return filters, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a valid UUID", entity.ErrInvalidInput, col)
	}
	return append(filters, query.Equals{Column: col, Value: id}), nil
}

// mapWriteError переводит ошибки записи репозитория в ошибки сервиса
func mapWriteError(kind entity.Kind, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrFeedbackNotFound
	case errors.Is(err, repository.ErrDuplicate):
		metrics.RecordWriteConflict(string(kind), "duplicate")
		return fmt.Errorf("%w: %v", ErrDuplicateFeedback, err)
	case errors.Is(err, repository.ErrStale):
		metrics.RecordWriteConflict(string(kind), "stale")
		return fmt.Errorf("%w: %v", concurrency.ErrPreconditionFailed, err)
	case errors.Is(err, repository.ErrConstraint):
		return fmt.Errorf("%w: %v", entity.ErrInvalidInput, err)
	}
	return fmt.Errorf("failed to save %s feedback: %w", kind, err)
}

// checkPrecondition сверяет If-Match с текущим ETag
func checkPrecondition(kind entity.Kind, ifMatch, current string) error {
	if err := concurrency.CheckPrecondition(ifMatch, current); err != nil {
		metrics.RecordWriteConflict(string(kind), "etag_mismatch")
		return err
	}
	return nil
}

// publishEvent отправляет событие в Kafka. Ошибки только логируются:
// изменение уже сохранено, проблемы с Kafka не критичны
func publishEvent(ctx context.Context, publisher infrastructure.MessagePublisher, event entity.FeedbackEvent) {
	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", event.EventType).Msg("Failed to marshal feedback event")
		return
	}

	// Ключ = FeedbackID, все события одного отзыва попадают в одну партицию
	if err := publisher.PublishMessage(ctx, event.FeedbackID.String(), eventData); err != nil {
		logger.Warn().
			Err(err).
			Str("event_type", event.EventType).
			Str("feedback_id", event.FeedbackID.String()).
			Msg("Failed to publish feedback event")
	}
}
