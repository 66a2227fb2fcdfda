package handler

import (
	"context"
	"net/http"

	"feedbackhub/feedback-service/internal/app/feedback/entity"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type JobServiceInterface interface {
	Create(ctx context.Context, req *entity.CreateJobRequest) (*entity.AnalysisJob, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.AnalysisJob, error)
}

// JobHandler ставит задачи аналитики и отдает их статус; выполняет их воркер
type JobHandler struct {
	jobService JobServiceInterface
	validator  *validator.Validate
}

func NewJobHandler(jobService JobServiceInterface) *JobHandler {
	return &JobHandler{
		jobService: jobService,
		validator:  validator.New(),
	}
}

func (h *JobHandler) Create(c *gin.Context) {
	var req entity.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	job, err := h.jobService.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "Failed to create job")
		return
	}

	c.Header("Location", jobCollectionPath+"/"+job.ID.String())
	c.JSON(http.StatusAccepted, entity.JobResponse{AnalysisJob: *job, Links: jobLinks(job)})
}

func (h *JobHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	job, err := h.jobService.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to get job")
		return
	}

	c.JSON(http.StatusOK, entity.JobResponse{AnalysisJob: *job, Links: jobLinks(job)})
}
