package handler

import (
	"context"
	"net/http"

	"feedbackhub/feedback-service/internal/app/feedback/concurrency"
	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type AppFeedbackServiceInterface interface {
	Create(ctx context.Context, req *entity.CreateAppFeedbackRequest) (*entity.AppFeedback, string, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.AppFeedback, string, error)
	Update(ctx context.Context, id uuid.UUID, req *entity.UpdateAppFeedbackRequest, ifMatch string) (*entity.AppFeedback, string, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q *entity.AppListQuery) (*entity.Page[entity.AppFeedback], error)
	Stats(ctx context.Context, q *entity.AppListQuery) (*entity.Stats, error)
}

type AppFeedbackHandler struct {
	feedbackService AppFeedbackServiceInterface
	validator       *validator.Validate
}

func NewAppFeedbackHandler(feedbackService AppFeedbackServiceInterface) *AppFeedbackHandler {
	return &AppFeedbackHandler{
		feedbackService: feedbackService,
		validator:       validator.New(),
	}
}

func (h *AppFeedbackHandler) Create(c *gin.Context) {
	var req entity.CreateAppFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	feedback, etag, err := h.feedbackService.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "Failed to create feedback")
		return
	}

	c.Header("ETag", etag)
	c.Header("Location", appCollectionPath+"/"+feedback.ID.String())
	c.JSON(http.StatusCreated, toAppResponse(feedback))
}

func (h *AppFeedbackHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	feedback, etag, err := h.feedbackService.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to get feedback")
		return
	}

	c.Header("ETag", etag)
	if concurrency.NotModified(c.GetHeader("If-None-Match"), etag) {
		metrics.RecordNotModified(string(entity.KindApp))
		c.Status(http.StatusNotModified)
		return
	}

	c.JSON(http.StatusOK, toAppResponse(feedback))
}

func (h *AppFeedbackHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req entity.UpdateAppFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := req.Validate(h.validator); err != nil {
		writeError(c, err, "Failed to update feedback")
		return
	}

	feedback, etag, err := h.feedbackService.Update(c.Request.Context(), id, &req, c.GetHeader("If-Match"))
	if err != nil {
		writeError(c, err, "Failed to update feedback")
		return
	}

	c.Header("ETag", etag)
	c.JSON(http.StatusOK, toAppResponse(feedback))
}

func (h *AppFeedbackHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.feedbackService.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err, "Failed to delete feedback")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AppFeedbackHandler) List(c *gin.Context) {
	var q entity.AppListQuery
	if !h.bindQuery(c, &q) {
		return
	}

	page, err := h.feedbackService.List(c.Request.Context(), &q)
	if err != nil {
		writeError(c, err, "Failed to list feedback")
		return
	}

	items := make([]entity.AppFeedbackResponse, len(page.Items))
	for i := range page.Items {
		items[i] = toAppResponse(&page.Items[i])
	}

	c.JSON(http.StatusOK, entity.ListResponse[entity.AppFeedbackResponse]{
		Items:      items,
		NextCursor: page.Pagination.NextCursor,
		Count:      len(items),
		Pagination: page.Pagination,
		Links:      collectionLinks(c.Request.URL.Path, c.Request.URL.Query(), page.Pagination),
	})
}

// Stats - агрегаты по всем отзывам о приложении или по автору (author_profile_id)
func (h *AppFeedbackHandler) Stats(c *gin.Context) {
	var q entity.AppListQuery
	if !h.bindQuery(c, &q) {
		return
	}

	stats, err := h.feedbackService.Stats(c.Request.Context(), &q)
	if err != nil {
		writeError(c, err, "Failed to compute stats")
		return
	}

	var author *uuid.UUID
	if id, err := uuid.Parse(q.AuthorProfileID); err == nil {
		author = &id
	}
	links := statsLinks(c.Request.URL.Path, appCollectionPath, c.Request.URL.Query())
	c.JSON(http.StatusOK, entity.NewAppStatsResponse(author, stats, links))
}

func (h *AppFeedbackHandler) bindQuery(c *gin.Context, q *entity.AppListQuery) bool {
	if err := c.ShouldBindQuery(q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return false
	}
	if err := h.validator.Struct(q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return false
	}
	return true
}

func toAppResponse(f *entity.AppFeedback) entity.AppFeedbackResponse {
	return entity.AppFeedbackResponse{AppFeedback: *f, Links: appLinks(f)}
}
