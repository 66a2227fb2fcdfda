package handler

import (
	"errors"
	"net/http"

	"feedbackhub/feedback-service/internal/app/feedback/concurrency"
	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/feedback-service/internal/app/feedback/query"
	"feedbackhub/feedback-service/internal/app/feedback/service"
	"feedbackhub/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// writeError переводит ошибку сервиса в HTTP статус и тело {"error": "..."}
func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrFeedbackNotFound), errors.Is(err, service.ErrJobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, service.ErrDuplicateFeedback):
		c.JSON(http.StatusConflict, gin.H{"error": "Feedback for this match and reviewer already exists"})
	case errors.Is(err, concurrency.ErrPreconditionFailed):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": "If-Match precondition failed"})
	case errors.Is(err, entity.ErrInvalidInput),
		errors.Is(err, query.ErrInvalidCursor),
		errors.Is(err, query.ErrInvalidPage),
		errors.Is(err, query.ErrUnsupportedFilter):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			if fieldError.Param() != "" {
				return fieldError.Field() + " is " + fieldError.Tag() + "=" + fieldError.Param()
			}
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
