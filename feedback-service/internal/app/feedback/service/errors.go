package service

import (
	"errors"
	"fmt"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrFeedbackNotFound  = errors.New("feedback not found")
	ErrDuplicateFeedback = errors.New("feedback for this match and reviewer already exists")
	ErrJobNotFound       = errors.New("job not found")
	ErrRevieweeRequired  = fmt.Errorf("%w: reviewee_profile_id is required", entity.ErrInvalidInput)
)
