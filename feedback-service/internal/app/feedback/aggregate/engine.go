package aggregate

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/feedback-service/internal/app/feedback/query"
	"feedbackhub/feedback-service/internal/app/feedback/repository"
)

// TopTagsLimit - сколько тегов попадает в рейтинг
const TopTagsLimit = 10

// Engine считает агрегаты по тому же предикату, что и выборка списка
type Engine struct {
	repo repository.AggregateRepository
}

func NewEngine(repo repository.AggregateRepository) *Engine {
	return &Engine{repo: repo}
}

// Compute выполняет один сгруппированный запрос и, если выборка не пуста, запрос рейтинга тегов
func (e *Engine) Compute(ctx context.Context, res query.Resource, pred query.Predicate) (*entity.Stats, error) {
	row, err := e.repo.Aggregate(ctx, res, pred)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s feedback: %w", res.Name, err)
	}

	stats := entity.EmptyStats(res.Facets)
	if row.Count == 0 {
		return stats, nil
	}

	stats.Count = row.Count
	stats.Mean = round3(row.Mean)
	for k, n := range row.Buckets {
		stats.Distribution[strconv.Itoa(k+1)] = n
	}
	for _, facet := range res.Facets {
		stats.Facets[facet] = round3(row.Facets[facet])
	}

	tags, err := e.repo.TopTags(ctx, res, pred, TopTagsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank %s feedback tags: %w", res.Name, err)
	}
	stats.TopTags = tags

	return stats, nil
}

// round3 округляет до трех знаков, половины - от нуля
func round3(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v*1000) / 1000
	return &r
}
