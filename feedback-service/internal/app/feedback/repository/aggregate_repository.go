package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/feedback-service/internal/app/feedback/query"
	"feedbackhub/pkg/metrics"
)

type aggregateRepository struct {
	db *sql.DB
}

// NewAggregateRepository создает репозиторий агрегирующих запросов
func NewAggregateRepository(db *sql.DB) AggregateRepository {
	return &aggregateRepository{db: db}
}

// Aggregate считает количество, среднее, распределение 1..5 и средние дополнительных оценок одним запросом
func (r *aggregateRepository) Aggregate(ctx context.Context, res query.Resource, pred query.Predicate) (*AggregateRow, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpAggregate, res.Table)
	defer timer.ObserveDuration()

	var (
		count  int
		mean   sql.NullFloat64
		facets = make([]sql.NullFloat64, len(res.Facets))
		row    AggregateRow
	)

	dest := []any{&count, &mean}
	for k := range row.Buckets {
		dest = append(dest, &row.Buckets[k])
	}
	for i := range facets {
		dest = append(dest, &facets[i])
	}

	if err := r.db.QueryRowContext(ctx, aggregateSQL(res, pred), pred.Args()...).Scan(dest...); err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpAggregate)
		return nil, fmt.Errorf("failed to aggregate %s: %w", res.Table, err)
	}

	row.Count = count
	if mean.Valid {
		row.Mean = &mean.Float64
	}
	row.Facets = make(map[string]*float64, len(res.Facets))
	for i, name := range res.Facets {
		if facets[i].Valid {
			v := facets[i].Float64
			row.Facets[name] = &v
		} else {
			row.Facets[name] = nil
		}
	}

	return &row, nil
}

// TopTags возвращает самые частые теги: по убыванию частоты, затем по алфавиту
func (r *aggregateRepository) TopTags(ctx context.Context, res query.Resource, pred query.Predicate, limit int) ([]entity.TagCount, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpAggregate, res.Table)
	defer timer.ObserveDuration()

	rows, err := r.db.QueryContext(ctx, topTagsSQL(res, pred), append(pred.Args(), limit)...)
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpAggregate)
		return nil, fmt.Errorf("failed to rank tags of %s: %w", res.Table, err)
	}
	defer rows.Close()

	tags := make([]entity.TagCount, 0, limit)
	for rows.Next() {
		var tc entity.TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan tag count: %w", err)
		}
		tags = append(tags, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tag counts: %w", err)
	}

	return tags, nil
}

func aggregateSQL(res query.Resource, pred query.Predicate) string {
	rating := string(res.RatingColumn)

	cols := []string{"COUNT(*)", "AVG(" + rating + ")::float8"}
	for k := 1; k <= 5; k++ {
		cols = append(cols, "COUNT(*) FILTER (WHERE "+rating+" = "+strconv.Itoa(k)+")")
	}
	for _, facet := range res.Facets {
		cols = append(cols, "AVG("+facet+")::float8")
	}

	stmt := "SELECT " + strings.Join(cols, ", ") + " FROM " + res.Table
	if where := pred.Where(); where != "" {
		stmt += " " + where
	}
	return stmt
}

func topTagsSQL(res query.Resource, pred query.Predicate) string {
	stmt := "SELECT t.tag, COUNT(*) AS cnt FROM " + res.Table +
		", jsonb_array_elements_text(" + res.Table + ".tags) AS t(tag)"
	if where := pred.Where(); where != "" {
		stmt += " " + where
	}
	return stmt + " GROUP BY t.tag ORDER BY cnt DESC, t.tag ASC LIMIT $" + strconv.Itoa(pred.NextPlaceholder())
}
