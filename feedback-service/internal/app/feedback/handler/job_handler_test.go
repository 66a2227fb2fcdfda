package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/feedback-service/internal/app/feedback/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestJobCreate_Accepted(t *testing.T) {
	router, svc := setupTestRouter(nil, nil)
	target := uuid.New()
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	job := &entity.AnalysisJob{
		ID:       uuid.New(),
		JobType:  entity.JobTypeProfileStats,
		TargetID: &target,
		Tags:     []string{"funny", "punctual"},
		Since:    &since,
		Status:   entity.JobStatusPending,
	}

	svc.jobs.On("Create", mock.Anything, mock.MatchedBy(func(r *entity.CreateJobRequest) bool {
		return r.JobType == entity.JobTypeProfileStats && *r.TargetID == target
	})).Return(job, nil)

	w := serve(router, doJSON(t, http.MethodPost, "/feedback/jobs", map[string]any{
		"job_type":  "profile_stats",
		"target_id": target,
		"tags":      []string{"funny", "punctual"},
		"since":     since,
	}, nil))

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "/feedback/jobs/"+job.ID.String(), w.Header().Get("Location"))

	var resp entity.JobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, entity.JobStatusPending, resp.Status)
	assert.Equal(t, "/feedback/jobs/"+job.ID.String(), resp.Links["self"])
	assert.Equal(t,
		"/feedback/profile/stats?reviewee_profile_id="+target.String()+"&since=2026-01-01T00%3A00%3A00Z&tags=funny%2Cpunctual",
		resp.Links["stats"])
}

func TestJobCreate_UnknownType(t *testing.T) {
	router, svc := setupTestRouter(nil, nil)

	w := serve(router, doJSON(t, http.MethodPost, "/feedback/jobs", map[string]any{"job_type": "export"}, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "JobType is oneof=profile_stats app_stats")
	svc.jobs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestJobCreate_TargetRequired(t *testing.T) {
	router, svc := setupTestRouter(nil, nil)
	svc.jobs.On("Create", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: target_id is required for profile_stats jobs", entity.ErrInvalidInput))

	w := serve(router, doJSON(t, http.MethodPost, "/feedback/jobs", map[string]any{"job_type": "profile_stats"}, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "target_id is required")
}

func TestJobGet_Succeeded(t *testing.T) {
	router, svc := setupTestRouter(nil, nil)
	stats := entity.EmptyStats([]string{"usability"})
	job := &entity.AnalysisJob{ID: uuid.New(), JobType: entity.JobTypeAppStats, Status: entity.JobStatusSucceeded, Result: stats}
	svc.jobs.On("Get", mock.Anything, job.ID).Return(job, nil)

	w := serve(router, doJSON(t, http.MethodGet, "/feedback/jobs/"+job.ID.String(), nil, nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp entity.JobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, entity.JobStatusSucceeded, resp.Status)
	require.NotNil(t, resp.Result)
	assert.Equal(t, 0, resp.Result.Count)
	assert.Equal(t, "/feedback/app/stats", resp.Links["stats"])
}

func TestJobGet_NotFound(t *testing.T) {
	router, svc := setupTestRouter(nil, nil)
	id := uuid.New()
	svc.jobs.On("Get", mock.Anything, id).Return(nil, service.ErrJobNotFound)

	w := serve(router, doJSON(t, http.MethodGet, "/feedback/jobs/"+id.String(), nil, nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
