package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/feedback-service/internal/app/feedback/query"
	"feedbackhub/pkg/metrics"

	"github.com/google/uuid"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// encodeTags возвращает jsonb массив или NULL для отсутствующих тегов
func encodeTags(tags []string) (any, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}
	return string(data), nil
}

func decodeTags(raw []byte) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}

// listRows выполняет выборку страницы и сканирует строки функцией scan
func listRows[T any](
	ctx context.Context,
	db *sql.DB,
	table, columns string,
	pred query.Predicate,
	page query.PageRequest,
	scan func(rowScanner) (*T, error),
) ([]T, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpSelect, table)
	defer timer.ObserveDuration()

	window, windowArgs := page.Window(pred)
	stmt := "SELECT " + columns + " FROM " + table
	if where := pred.Where(); where != "" {
		stmt += " " + where
	}
	stmt += " " + window

	rows, err := db.QueryContext(ctx, stmt, append(pred.Args(), windowArgs...)...)
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	items := make([]T, 0, page.Limit)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", table, err)
	}

	return items, nil
}

// countRows считает точное число строк под предикатом
func countRows(ctx context.Context, db *sql.DB, table string, pred query.Predicate) (int, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpSelect, table)
	defer timer.ObserveDuration()

	stmt := "SELECT COUNT(*) FROM " + table
	if where := pred.Where(); where != "" {
		stmt += " " + where
	}

	var total int
	if err := db.QueryRowContext(ctx, stmt, pred.Args()...).Scan(&total); err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpSelect)
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return total, nil
}

func deleteByID(ctx context.Context, db *sql.DB, table string, id any) error {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpDelete, table)
	defer timer.ObserveDuration()

	// Повторное удаление не является ошибкой
	if _, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = $1", id); err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpDelete)
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}

// assignments - SET часть UPDATE, только из полей, переданных в PATCH
type assignments struct {
	columns []string
	args    []any
}

func assign[T any](a *assignments, column string, o entity.Optional[T]) {
	if !o.Set {
		return
	}
	var value any
	if o.Value != nil {
		value = *o.Value
	}
	a.columns = append(a.columns, column)
	a.args = append(a.args, value)
}

func assignTags(a *assignments, o entity.Optional[[]string]) error {
	if !o.Set {
		return nil
	}
	var tags []string
	if o.Value != nil {
		tags = *o.Value
	}
	value, err := encodeTags(tags)
	if err != nil {
		return err
	}
	a.columns = append(a.columns, "tags")
	a.args = append(a.args, value)
	return nil
}

// updateRow пишет только переданные столбцы, продвигает updated_at строго вперед
// и возвращает строку целиком. При expected != nil строка обновляется только
// если updated_at не изменился, иначе ErrStale
func updateRow[T any](
	ctx context.Context,
	db *sql.DB,
	table, columns string,
	id uuid.UUID,
	a assignments,
	expected *time.Time,
	scan func(rowScanner) (*T, error),
) (*T, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpUpdate, table)
	defer timer.ObserveDuration()

	set := make([]string, 0, len(a.columns)+1)
	args := make([]any, 0, len(a.args)+2)
	for i, column := range a.columns {
		set = append(set, column+" = $"+strconv.Itoa(i+1))
		args = append(args, a.args[i])
	}
	set = append(set, "updated_at = GREATEST(clock_timestamp(), updated_at + INTERVAL '1 microsecond')")

	args = append(args, id)
	stmt := "UPDATE " + table + " SET " + strings.Join(set, ", ") + " WHERE id = $" + strconv.Itoa(len(args))
	if expected != nil {
		args = append(args, *expected)
		stmt += " AND updated_at = $" + strconv.Itoa(len(args))
	}
	stmt += " RETURNING " + columns

	item, err := scan(db.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if expected != nil {
				return nil, ErrStale
			}
			return nil, ErrNotFound
		}
		metrics.RecordDbError(metricsService, metrics.DbOpUpdate)
		return nil, mapWriteError("update "+table, err)
	}
	return item, nil
}
