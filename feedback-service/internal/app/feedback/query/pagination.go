package query

import (
	"errors"
	"fmt"
	"strconv"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var ErrInvalidPage = errors.New("invalid pagination parameters")

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort - ключ сортировки; при равенстве порядок добивается id в том же направлении
type Sort struct {
	Column    Column
	Direction Direction
}

// ParseSort проверяет ключ и направление. Пустые значения: created_at, desc
func (r Resource) ParseSort(key, order string) (Sort, error) {
	s := Sort{Column: ColCreatedAt, Direction: Desc}

	switch Column(key) {
	case "":
	case ColCreatedAt, r.RatingColumn:
		s.Column = Column(key)
	default:
		return Sort{}, fmt.Errorf("%w: sort must be %s or %s", ErrInvalidPage, ColCreatedAt, r.RatingColumn)
	}

	switch Direction(order) {
	case "":
	case Asc, Desc:
		s.Direction = Direction(order)
	default:
		return Sort{}, fmt.Errorf("%w: order must be asc or desc", ErrInvalidPage)
	}

	return s, nil
}

func (s Sort) OrderBy() string {
	dir := "DESC"
	if s.Direction == Asc {
		dir = "ASC"
	}
	return "ORDER BY " + string(s.Column) + " " + dir + ", id " + dir
}

// PageRequest - окно выборки: эффективное смещение, лимит, порядок и режим пагинации
type PageRequest struct {
	Limit      int
	Offset     int
	CursorMode bool
	Sort       Sort
}

// NewPageRequest вычисляет эффективное смещение. Непустой курсор имеет приоритет над offset
func NewPageRequest(limit, offset *int, cursor string, sort Sort) (PageRequest, error) {
	req := PageRequest{Limit: DefaultLimit, Sort: sort}

	if limit != nil {
		if *limit < 1 || *limit > MaxLimit {
			return PageRequest{}, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidPage, MaxLimit)
		}
		req.Limit = *limit
	}

	if cursor != "" {
		off, err := DecodeCursor(cursor)
		if err != nil {
			return PageRequest{}, err
		}
		req.Offset = off
		req.CursorMode = true
		return req, nil
	}

	if offset != nil {
		if *offset < 0 {
			return PageRequest{}, fmt.Errorf("%w: offset must be non-negative", ErrInvalidPage)
		}
		req.Offset = *offset
	}
	return req, nil
}

// Window возвращает "ORDER BY ... LIMIT $n OFFSET $n+1" и его параметры,
// нумерация продолжает плейсхолдеры предиката
func (p PageRequest) Window(pred Predicate) (string, []any) {
	n := pred.NextPlaceholder()
	clause := p.Sort.OrderBy() + " LIMIT $" + strconv.Itoa(n) + " OFFSET $" + strconv.Itoa(n+1)
	return clause, []any{p.Limit, p.Offset}
}

// NewPageInfo строит метаданные страницы по числу полученных строк и точному total.
// Следующая страница есть, только если вернулось ровно limit строк и offset+returned < total
func NewPageInfo(req PageRequest, returned, total int) entity.Pagination {
	info := entity.Pagination{
		Limit:       req.Limit,
		Offset:      req.Offset,
		Count:       returned,
		Total:       total,
		HasNext:     req.Offset+returned < total,
		HasPrevious: req.Offset > 0,
		CursorMode:  req.CursorMode,
	}

	if returned == req.Limit && info.HasNext {
		next := req.Offset + returned
		if req.CursorMode {
			c := EncodeCursor(next)
			info.NextCursor = &c
		} else {
			info.NextOffset = &next
		}
	}

	if info.HasPrevious {
		prev := max(req.Offset-req.Limit, 0)
		if req.CursorMode {
			c := EncodeCursor(prev)
			info.PreviousCursor = &c
		} else {
			info.PreviousOffset = &prev
		}
	}

	return info
}
