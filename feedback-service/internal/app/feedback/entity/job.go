package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobType - тип задачи аналитики
type JobType string

const (
	JobTypeProfileStats JobType = "profile_stats" // Агрегаты отзывов о профиле (target_id обязателен)
	JobTypeAppStats     JobType = "app_stats"     // Агрегаты отзывов о приложении
)

// JobStatus - статусы задачи: pending -> running -> succeeded | failed
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// AnalysisJob - асинхронная задача расчета агрегатов
type AnalysisJob struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	JobType     JobType    `json:"job_type" gorm:"type:varchar(32);not null"`
	TargetID    *uuid.UUID `json:"target_id" gorm:"type:uuid"`
	Tags        []string   `json:"tags" gorm:"type:jsonb;serializer:json"`
	Since       *time.Time `json:"since"`
	Status      JobStatus  `json:"status" gorm:"type:varchar(16);not null;default:'pending'"`
	Result      *Stats     `json:"result" gorm:"type:jsonb;serializer:json"`
	Error       *string    `json:"error"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	CompletedAt *time.Time `json:"completed_at"`
}

// TableName указывает имя таблицы для GORM
func (AnalysisJob) TableName() string {
	return "feedback_jobs"
}

// Finished - задача в терминальном статусе
func (j *AnalysisJob) Finished() bool {
	return j.Status == JobStatusSucceeded || j.Status == JobStatusFailed
}

// CreateJobRequest - запрос на постановку задачи аналитики
type CreateJobRequest struct {
	JobType  JobType    `json:"job_type" validate:"required,oneof=profile_stats app_stats"`
	TargetID *uuid.UUID `json:"target_id"`
	Tags     []string   `json:"tags"`
	Since    *time.Time `json:"since"`
}

func (r *CreateJobRequest) Normalize() error {
	if r.JobType == JobTypeProfileStats && r.TargetID == nil {
		return fmt.Errorf("%w: target_id is required for profile_stats jobs", ErrInvalidInput)
	}

	tags, err := NormalizeTags(r.Tags)
	if err != nil {
		return err
	}
	r.Tags = tags
	return nil
}

// JobResponse - статус задачи со ссылками
type JobResponse struct {
	AnalysisJob
	Links map[string]string `json:"links"`
}

const EventJobRequested = "JOB_REQUESTED"

// JobMessage - сообщение в топик задач
type JobMessage struct {
	EventType string    `json:"event_type"` // JOB_REQUESTED
	JobID     uuid.UUID `json:"job_id"`
	JobType   JobType   `json:"job_type"`
	Timestamp time.Time `json:"timestamp"`
}
