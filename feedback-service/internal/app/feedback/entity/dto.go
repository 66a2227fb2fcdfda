package entity

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CreateProfileFeedbackRequest - запрос на создание отзыва о профиле
type CreateProfileFeedbackRequest struct {
	ReviewerProfileID uuid.UUID  `json:"reviewer_profile_id" validate:"required"`
	RevieweeProfileID uuid.UUID  `json:"reviewee_profile_id" validate:"required"`
	MatchID           *uuid.UUID `json:"match_id"`

	OverallExperience int   `json:"overall_experience" validate:"required,min=1,max=5"`
	WouldMeetAgain    *bool `json:"would_meet_again"`
	SafetyFeeling     *int  `json:"safety_feeling" validate:"omitempty,min=1,max=5"`
	Respectfulness    *int  `json:"respectfulness" validate:"omitempty,min=1,max=5"`

	Headline *string  `json:"headline" validate:"omitempty,min=1,max=120"`
	Comment  *string  `json:"comment" validate:"omitempty,min=1,max=2000"`
	Tags     []string `json:"tags"`
}

// Normalize проверяет правила, которые не выражаются тегами validate, и нормализует теги
func (r *CreateProfileFeedbackRequest) Normalize() error {
	if r.ReviewerProfileID == r.RevieweeProfileID {
		return fmt.Errorf("%w: reviewer_profile_id must not equal reviewee_profile_id", ErrInvalidInput)
	}

	tags, err := NormalizeTags(r.Tags)
	if err != nil {
		return err
	}
	r.Tags = tags
	return nil
}

// CreateAppFeedbackRequest - запрос на создание отзыва о приложении
type CreateAppFeedbackRequest struct {
	AuthorProfileID *uuid.UUID `json:"author_profile_id"`

	Overall           int  `json:"overall" validate:"required,min=1,max=5"`
	Usability         *int `json:"usability" validate:"omitempty,min=1,max=5"`
	Reliability       *int `json:"reliability" validate:"omitempty,min=1,max=5"`
	Performance       *int `json:"performance" validate:"omitempty,min=1,max=5"`
	SupportExperience *int `json:"support_experience" validate:"omitempty,min=1,max=5"`

	Headline *string  `json:"headline" validate:"omitempty,min=1,max=120"`
	Comment  *string  `json:"comment" validate:"omitempty,min=1,max=2000"`
	Tags     []string `json:"tags"`
}

func (r *CreateAppFeedbackRequest) Normalize() error {
	tags, err := NormalizeTags(r.Tags)
	if err != nil {
		return err
	}
	r.Tags = tags
	return nil
}

const (
	ratingRule   = "min=1,max=5"
	headlineRule = "min=1,max=120"
	commentRule  = "min=1,max=2000"
)

// UpdateProfileFeedbackRequest - частичное обновление (PATCH) отзыва о профиле
type UpdateProfileFeedbackRequest struct {
	ReviewerProfileID Optional[uuid.UUID] `json:"reviewer_profile_id"`
	RevieweeProfileID Optional[uuid.UUID] `json:"reviewee_profile_id"`
	MatchID           Optional[uuid.UUID] `json:"match_id"`

	OverallExperience Optional[int]  `json:"overall_experience"`
	WouldMeetAgain    Optional[bool] `json:"would_meet_again"`
	SafetyFeeling     Optional[int]  `json:"safety_feeling"`
	Respectfulness    Optional[int]  `json:"respectfulness"`

	Headline Optional[string]   `json:"headline"`
	Comment  Optional[string]   `json:"comment"`
	Tags     Optional[[]string] `json:"tags"`
}

// Validate проверяет переданные значения и нормализует теги.
// Очистка обязательных полей (null) считается невалидным вводом
func (r *UpdateProfileFeedbackRequest) Validate(v *validator.Validate) error {
	if err := requirePresent("reviewer_profile_id", r.ReviewerProfileID.Cleared()); err != nil {
		return err
	}
	if err := requirePresent("reviewee_profile_id", r.RevieweeProfileID.Cleared()); err != nil {
		return err
	}
	if err := requirePresent("overall_experience", r.OverallExperience.Cleared()); err != nil {
		return err
	}

	if r.ReviewerProfileID.Value != nil && r.RevieweeProfileID.Value != nil &&
		*r.ReviewerProfileID.Value == *r.RevieweeProfileID.Value {
		return fmt.Errorf("%w: reviewer_profile_id must not equal reviewee_profile_id", ErrInvalidInput)
	}

	if err := checkValue(v, "overall_experience", r.OverallExperience, ratingRule); err != nil {
		return err
	}
	if err := checkValue(v, "safety_feeling", r.SafetyFeeling, ratingRule); err != nil {
		return err
	}
	if err := checkValue(v, "respectfulness", r.Respectfulness, ratingRule); err != nil {
		return err
	}
	if err := checkValue(v, "headline", r.Headline, headlineRule); err != nil {
		return err
	}
	if err := checkValue(v, "comment", r.Comment, commentRule); err != nil {
		return err
	}

	return normalizeOptionalTags(&r.Tags)
}

// ApplyTo переносит переданные поля на текущее состояние отзыва
func (r *UpdateProfileFeedbackRequest) ApplyTo(f *ProfileFeedback) {
	if r.ReviewerProfileID.Value != nil {
		f.ReviewerProfileID = *r.ReviewerProfileID.Value
	}
	if r.RevieweeProfileID.Value != nil {
		f.RevieweeProfileID = *r.RevieweeProfileID.Value
	}
	if r.OverallExperience.Value != nil {
		f.OverallExperience = *r.OverallExperience.Value
	}
	applyOptional(&f.MatchID, r.MatchID)
	applyOptional(&f.WouldMeetAgain, r.WouldMeetAgain)
	applyOptional(&f.SafetyFeeling, r.SafetyFeeling)
	applyOptional(&f.Respectfulness, r.Respectfulness)
	applyOptional(&f.Headline, r.Headline)
	applyOptional(&f.Comment, r.Comment)
	if r.Tags.Set {
		f.Tags = nil
		if r.Tags.Value != nil {
			f.Tags = *r.Tags.Value
		}
	}
}

// Empty - в запросе нет ни одного поля
func (r *UpdateProfileFeedbackRequest) Empty() bool {
	return !r.ReviewerProfileID.Set && !r.RevieweeProfileID.Set && !r.MatchID.Set &&
		!r.OverallExperience.Set && !r.WouldMeetAgain.Set && !r.SafetyFeeling.Set && !r.Respectfulness.Set &&
		!r.Headline.Set && !r.Comment.Set && !r.Tags.Set
}

// UpdateAppFeedbackRequest - частичное обновление (PATCH) отзыва о приложении
type UpdateAppFeedbackRequest struct {
	AuthorProfileID Optional[uuid.UUID] `json:"author_profile_id"`

	Overall           Optional[int] `json:"overall"`
	Usability         Optional[int] `json:"usability"`
	Reliability       Optional[int] `json:"reliability"`
	Performance       Optional[int] `json:"performance"`
	SupportExperience Optional[int] `json:"support_experience"`

	Headline Optional[string]   `json:"headline"`
	Comment  Optional[string]   `json:"comment"`
	Tags     Optional[[]string] `json:"tags"`
}

func (r *UpdateAppFeedbackRequest) Validate(v *validator.Validate) error {
	if err := requirePresent("overall", r.Overall.Cleared()); err != nil {
		return err
	}

	ratings := []struct {
		name  string
		value Optional[int]
	}{
		{"overall", r.Overall},
		{"usability", r.Usability},
		{"reliability", r.Reliability},
		{"performance", r.Performance},
		{"support_experience", r.SupportExperience},
	}
	for _, rating := range ratings {
		if err := checkValue(v, rating.name, rating.value, ratingRule); err != nil {
			return err
		}
	}

	if err := checkValue(v, "headline", r.Headline, headlineRule); err != nil {
		return err
	}
	if err := checkValue(v, "comment", r.Comment, commentRule); err != nil {
		return err
	}

	return normalizeOptionalTags(&r.Tags)
}

func (r *UpdateAppFeedbackRequest) Empty() bool {
	return !r.AuthorProfileID.Set && !r.Overall.Set && !r.Usability.Set && !r.Reliability.Set &&
		!r.Performance.Set && !r.SupportExperience.Set && !r.Headline.Set && !r.Comment.Set && !r.Tags.Set
}

func requirePresent(field string, cleared bool) error {
	if cleared {
		return fmt.Errorf("%w: field '%s' cannot be null", ErrInvalidInput, field)
	}
	return nil
}

func checkValue[T any](v *validator.Validate, field string, o Optional[T], rule string) error {
	if o.Value == nil {
		return nil
	}
	if err := v.Var(*o.Value, rule); err != nil {
		return fmt.Errorf("%w: field '%s' failed validation '%s'", ErrInvalidInput, field, rule)
	}
	return nil
}

func normalizeOptionalTags(o *Optional[[]string]) error {
	if o.Value == nil {
		return nil
	}
	tags, err := NormalizeTags(*o.Value)
	if err != nil {
		return err
	}
	if tags == nil {
		o.Value = nil
		return nil
	}
	o.Value = &tags
	return nil
}

func applyOptional[T any](dst **T, o Optional[T]) {
	if !o.Set {
		return
	}
	if o.Value == nil {
		*dst = nil
		return
	}
	v := *o.Value
	*dst = &v
}

// ProfileListQuery - параметры выборки отзывов о профилях
type ProfileListQuery struct {
	RevieweeProfileID string     `form:"reviewee_profile_id" validate:"omitempty,uuid"`
	ReviewerProfileID string     `form:"reviewer_profile_id" validate:"omitempty,uuid"`
	MatchID           string     `form:"match_id" validate:"omitempty,uuid"`
	Tags              string     `form:"tags"` // Через запятую, семантика OR
	MinOverall        *int       `form:"min_overall" validate:"omitempty,min=1,max=5"`
	MaxOverall        *int       `form:"max_overall" validate:"omitempty,min=1,max=5"`
	Since             *time.Time `form:"since"`
	Search            string     `form:"search"`
	PageQuery
}

// AppListQuery - параметры выборки отзывов о приложении
type AppListQuery struct {
	AuthorProfileID string     `form:"author_profile_id" validate:"omitempty,uuid"`
	Tags            string     `form:"tags"`
	MinOverall      *int       `form:"min_overall" validate:"omitempty,min=1,max=5"`
	MaxOverall      *int       `form:"max_overall" validate:"omitempty,min=1,max=5"`
	Since           *time.Time `form:"since"`
	Search          string     `form:"search"`
	PageQuery
}

// PageQuery - сортировка и пагинация. Допустимые значения sort проверяются по типу ресурса
type PageQuery struct {
	Sort   string `form:"sort"`
	Order  string `form:"order" validate:"omitempty,oneof=asc desc"`
	Limit  *int   `form:"limit" validate:"omitempty,min=1,max=100"`
	Offset *int   `form:"offset" validate:"omitempty,min=0"`
	Cursor string `form:"cursor"` // Имеет приоритет над offset
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error string `json:"error"`
}

// ProfileFeedbackResponse - отзыв о профиле со ссылками на связанные ресурсы
type ProfileFeedbackResponse struct {
	ProfileFeedback
	Links map[string]string `json:"links"`
}

// AppFeedbackResponse - отзыв о приложении со ссылками
type AppFeedbackResponse struct {
	AppFeedback
	Links map[string]string `json:"links"`
}

// ListResponse - страница выборки
type ListResponse[T any] struct {
	Items      []T               `json:"items"`
	NextCursor *string           `json:"next_cursor"`
	Count      int               `json:"count"`
	Pagination Pagination        `json:"pagination"`
	Links      map[string]string `json:"links"`
}
