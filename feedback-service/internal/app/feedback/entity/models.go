package entity

import (
	"time"

	"github.com/google/uuid"
)

// Kind - тип ресурса обратной связи
type Kind string

const (
	KindProfile Kind = "profile" // Отзыв одного профиля о другом
	KindApp     Kind = "app"     // Отзыв о приложении
)

// ProfileFeedback представляет отзыв одного профиля о другом после встречи
type ProfileFeedback struct {
	ID                uuid.UUID  `json:"id"`
	ReviewerProfileID uuid.UUID  `json:"reviewer_profile_id"` // Кто оставил отзыв
	RevieweeProfileID uuid.UUID  `json:"reviewee_profile_id"` // О ком отзыв
	MatchID           *uuid.UUID `json:"match_id"`            // Встреча, к которой относится отзыв

	OverallExperience int   `json:"overall_experience"` // 1..5
	WouldMeetAgain    *bool `json:"would_meet_again"`
	SafetyFeeling     *int  `json:"safety_feeling"` // 1..5
	Respectfulness    *int  `json:"respectfulness"` // 1..5

	Headline *string  `json:"headline"`
	Comment  *string  `json:"comment"`
	Tags     []string `json:"tags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppFeedback представляет отзыв о приложении
type AppFeedback struct {
	ID              uuid.UUID  `json:"id"`
	AuthorProfileID *uuid.UUID `json:"author_profile_id"` // Может отсутствовать для анонимных отзывов

	Overall           int  `json:"overall"` // 1..5
	Usability         *int `json:"usability"`
	Reliability       *int `json:"reliability"`
	Performance       *int `json:"performance"`
	SupportExperience *int `json:"support_experience"`

	Headline *string  `json:"headline"`
	Comment  *string  `json:"comment"`
	Tags     []string `json:"tags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Event types для Kafka
const (
	EventFeedbackCreated = "FEEDBACK_CREATED"
	EventFeedbackUpdated = "FEEDBACK_UPDATED"
	EventFeedbackDeleted = "FEEDBACK_DELETED"
)

// FeedbackEvent представляет событие изменения отзыва для Kafka
type FeedbackEvent struct {
	EventType  string     `json:"event_type"` // FEEDBACK_CREATED, FEEDBACK_UPDATED, FEEDBACK_DELETED
	Kind       Kind       `json:"kind"`
	FeedbackID uuid.UUID  `json:"feedback_id"`
	SubjectID  *uuid.UUID `json:"subject_id,omitempty"` // reviewee для profile, author для app
	Overall    int        `json:"overall,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}
