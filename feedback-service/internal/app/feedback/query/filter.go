package query

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUnsupportedFilter - фильтр ссылается на колонку, которой нет у ресурса
var ErrUnsupportedFilter = errors.New("unsupported filter")

// Column - колонка, допустимая в фильтрах
type Column string

const (
	ColReviewerProfileID Column = "reviewer_profile_id"
	ColRevieweeProfileID Column = "reviewee_profile_id"
	ColMatchID           Column = "match_id"
	ColAuthorProfileID   Column = "author_profile_id"
	ColCreatedAt         Column = "created_at"
	ColOverallExperience Column = "overall_experience"
	ColOverall           Column = "overall"
)

// Resource описывает таблицу ресурса и закрытый набор ее колонок
type Resource struct {
	Name         string
	Table        string
	RatingColumn Column
	Facets       []string
	Equality     []Column
}

var ProfileResource = Resource{
	Name:         "profile",
	Table:        "feedback_profile",
	RatingColumn: ColOverallExperience,
	Facets:       []string{"safety_feeling", "respectfulness"},
	Equality:     []Column{ColReviewerProfileID, ColRevieweeProfileID, ColMatchID},
}

var AppResource = Resource{
	Name:         "app",
	Table:        "feedback_app",
	RatingColumn: ColOverall,
	Facets:       []string{"usability", "reliability", "performance", "support_experience"},
	Equality:     []Column{ColAuthorProfileID},
}

// Filter - один из фиксированного набора фильтров (Equals, Range, CreatedSince, TagsOverlap, TextContains)
type Filter interface {
	apply(r Resource, p *Predicate) error
}

// Equals - точное совпадение идентификатора
type Equals struct {
	Column Column
	Value  uuid.UUID
}

func (f Equals) apply(r Resource, p *Predicate) error {
	if !slices.Contains(r.Equality, f.Column) {
		return fmt.Errorf("%w: %s is not filterable on %s", ErrUnsupportedFilter, f.Column, r.Name)
	}
	p.add(string(f.Column)+" = "+p.bind(f.Value))
	return nil
}

// Range - включительный диапазон оценки. Nil граница не ограничивает
type Range struct {
	Column Column
	Min    *int
	Max    *int
}

func (f Range) apply(r Resource, p *Predicate) error {
	if f.Column != r.RatingColumn && !slices.Contains(r.Facets, string(f.Column)) {
		return fmt.Errorf("%w: %s is not a rating of %s", ErrUnsupportedFilter, f.Column, r.Name)
	}
	if f.Min != nil {
		p.add(string(f.Column)+" >= "+p.bind(*f.Min))
	}
	if f.Max != nil {
		p.add(string(f.Column)+" <= "+p.bind(*f.Max))
	}
	return nil
}

// CreatedSince - отзывы, созданные не раньше Since
type CreatedSince struct {
	Since time.Time
}

func (f CreatedSince) apply(_ Resource, p *Predicate) error {
	p.add(string(ColCreatedAt)+" >= "+p.bind(f.Since))
	return nil
}

// TagsOverlap - хотя бы один тег отзыва совпадает с одним из Tags.
// Ожидает уже нормализованные теги; пустой список не добавляет условия
type TagsOverlap struct {
	Tags []string
}

func (f TagsOverlap) apply(_ Resource, p *Predicate) error {
	if len(f.Tags) == 0 {
		return nil
	}
	p.add("tags ?| " + p.bind(f.Tags) + "::text[]")
	return nil
}

// TextContains - подстрока без учета регистра в headline или comment.
// Строка ищется как есть, вместе с пробелами; пустая строка не фильтрует.
// Используется strpos, поэтому % и _ в строке поиска не являются шаблонами
type TextContains struct {
	Text string
}

func (f TextContains) apply(_ Resource, p *Predicate) error {
	if f.Text == "" {
		return nil
	}
	ph := p.bind(strings.ToLower(f.Text))
	p.add("(strpos(lower(coalesce(headline, '')), " + ph + ") > 0 OR strpos(lower(coalesce(comment, '')), " + ph + ") > 0)")
	return nil
}

// Predicate - конъюнкция условий с позиционными параметрами $n.
// Значения никогда не подставляются в текст SQL
type Predicate struct {
	clauses []string
	args    []any
}

// Compile собирает предикат из фильтров для ресурса r
func Compile(r Resource, filters ...Filter) (Predicate, error) {
	var p Predicate
	for _, f := range filters {
		if f == nil {
			continue
		}
		if err := f.apply(r, &p); err != nil {
			return Predicate{}, err
		}
	}
	return p, nil
}

func (p *Predicate) add(clause string) {
	p.clauses = append(p.clauses, clause)
}

func (p *Predicate) bind(v any) string {
	p.args = append(p.args, v)
	return "$" + strconv.Itoa(len(p.args))
}

// Where возвращает "WHERE ..." или пустую строку
func (p Predicate) Where() string {
	if len(p.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(p.clauses, " AND ")
}

// Args возвращает копию параметров в порядке плейсхолдеров
func (p Predicate) Args() []any {
	return slices.Clone(p.args)
}

// NextPlaceholder - номер следующего свободного плейсхолдера
func (p Predicate) NextPlaceholder() int {
	return len(p.args) + 1
}

func (p Predicate) Empty() bool {
	return len(p.clauses) == 0
}
