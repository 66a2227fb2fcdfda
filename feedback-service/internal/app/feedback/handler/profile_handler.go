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

type ProfileFeedbackServiceInterface interface {
	Create(ctx context.Context, req *entity.CreateProfileFeedbackRequest) (*entity.ProfileFeedback, string, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.ProfileFeedback, string, error)
	Update(ctx context.Context, id uuid.UUID, req *entity.UpdateProfileFeedbackRequest, ifMatch string) (*entity.ProfileFeedback, string, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q *entity.ProfileListQuery) (*entity.Page[entity.ProfileFeedback], error)
	Stats(ctx context.Context, q *entity.ProfileListQuery) (*entity.Stats, error)
}

type ProfileFeedbackHandler struct {
	feedbackService ProfileFeedbackServiceInterface
	validator       *validator.Validate
}

func NewProfileFeedbackHandler(feedbackService ProfileFeedbackServiceInterface) *ProfileFeedbackHandler {
	return &ProfileFeedbackHandler{
		feedbackService: feedbackService,
		validator:       validator.New(),
	}
}

func (h *ProfileFeedbackHandler) Create(c *gin.Context) {
	var req entity.CreateProfileFeedbackRequest
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
	c.Header("Location", profileCollectionPath+"/"+feedback.ID.String())
	c.JSON(http.StatusCreated, toProfileResponse(feedback))
}

// Get поддерживает условный запрос: при совпадении If-None-Match отвечает 304 с ETag
func (h *ProfileFeedbackHandler) Get(c *gin.Context) {
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
		metrics.RecordNotModified(string(entity.KindProfile))
		c.Status(http.StatusNotModified)
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(feedback))
}

func (h *ProfileFeedbackHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req entity.UpdateProfileFeedbackRequest
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
	c.JSON(http.StatusOK, toProfileResponse(feedback))
}

func (h *ProfileFeedbackHandler) Delete(c *gin.Context) {
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

func (h *ProfileFeedbackHandler) List(c *gin.Context) {
	var q entity.ProfileListQuery
	if !h.bindQuery(c, &q) {
		return
	}

	page, err := h.feedbackService.List(c.Request.Context(), &q)
	if err != nil {
		writeError(c, err, "Failed to list feedback")
		return
	}

	items := make([]entity.ProfileFeedbackResponse, len(page.Items))
	for i := range page.Items {
		items[i] = toProfileResponse(&page.Items[i])
	}

	c.JSON(http.StatusOK, entity.ListResponse[entity.ProfileFeedbackResponse]{
		Items:      items,
		NextCursor: page.Pagination.NextCursor,
		Count:      len(items),
		Pagination: page.Pagination,
		Links:      collectionLinks(c.Request.URL.Path, c.Request.URL.Query(), page.Pagination),
	})
}

func (h *ProfileFeedbackHandler) Stats(c *gin.Context) {
	var q entity.ProfileListQuery
	if !h.bindQuery(c, &q) {
		return
	}

	stats, err := h.feedbackService.Stats(c.Request.Context(), &q)
	if err != nil {
		writeError(c, err, "Failed to compute stats")
		return
	}

	// После успешного Stats идентификатор гарантированно валиден
	reviewee := uuid.MustParse(q.RevieweeProfileID)
	links := statsLinks(c.Request.URL.Path, profileCollectionPath, c.Request.URL.Query())
	c.JSON(http.StatusOK, entity.NewProfileStatsResponse(reviewee, stats, links))
}

func (h *ProfileFeedbackHandler) bindQuery(c *gin.Context, q *entity.ProfileListQuery) bool {
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

func toProfileResponse(f *entity.ProfileFeedback) entity.ProfileFeedbackResponse {
	return entity.ProfileFeedbackResponse{ProfileFeedback: *f, Links: profileLinks(f)}
}

// parseID разбирает :id; при ошибке ответ уже записан
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return uuid.Nil, false
	}
	return id, true
}
