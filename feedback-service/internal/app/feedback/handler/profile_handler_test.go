package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/concurrency"
	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/feedback-service/internal/app/feedback/query"
	"feedbackhub/feedback-service/internal/app/feedback/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProfileFeedback() *entity.ProfileFeedback {
	match := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &entity.ProfileFeedback{
		ID:                uuid.New(),
		ReviewerProfileID: uuid.New(),
		RevieweeProfileID: uuid.New(),
		MatchID:           &match,
		OverallExperience: 5,
		Tags:              []string{"punctual"},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func doJSON(t *testing.T, method, path string, body any, headers map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ===================== Create =====================

func TestProfileCreate_Success(t *testing.T) {
	router, svc := setupTestRouter(nil, nil)
	fb := newProfileFeedback()

	svc.profile.On("Create", mock.Anything, mock.MatchedBy(func(r *entity.CreateProfileFeedbackRequest) bool {
		return r.OverallExperience == 5 && r.RevieweeProfileID == fb.RevieweeProfileID
	})).Return(fb, `"abc"`, nil)

	w := serve(router, doJSON(t, http.MethodPost, "/feedback/profile", map[string]any{
		"reviewer_profile_id": fb.ReviewerProfileID,
		"reviewee_profile_id": fb.RevieweeProfileID,
		"match_id":            fb.MatchID,
		"overall_experience":  5,
		"tags":                []string{"Punctual"},
	}, nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, `"abc"`, w.Header().Get("ETag"))
	assert.Equal(t, "/feedback/profile/"+fb.ID.String(), w.Header().Get("Location"))

	var resp entity.ProfileFeedbackResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, fb.ID, resp.ID)
	assert.Equal(t, "/feedback/profile/"+fb.ID.String(), resp.Links["self"])
	assert.Equal(t, "/feedback/profile?match_id="+fb.MatchID.String(), resp.Links["match_feedback"])
	assert.Equal(t, "/feedback/profile/stats?reviewee_profile_id="+fb.RevieweeProfileID.String(), resp.Links["stats"])
	svc.profile.AssertExpectations(t)
}

func TestProfileCreate_ValidationError(t *testing.T) {
	router, svc := setupTestRouter(nil, nil)

	w := serve(router, doJSON(t, http.MethodPost, "/feedback/profile", map[string]any{
		"reviewer_profile_id": uuid.New(),
		"reviewee_profile_id": uuid.New(),
		"overall_experience":  7,
	}, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "OverallExperience is max=5")
	svc.profile.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProfileCreate_MalformedBody(t *testing.T) {
	router, _ := setupTestRouter(nil, nil)

	w := serve(router, doJSON(t, http.MethodPost, "/feedback/profile", "{not json", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")
}

func TestProfileCreate_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"self review", fmt.Errorf("%w: reviewer_profile_id must not equal reviewee_profile_id", entity.ErrInvalidInput), http.StatusBadRequest},
		{"duplicate", service.ErrDuplicateFeedback, http.StatusConflict},
		{"database", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := setupTestRouter(nil, nil)
			svc.profile.On("Create", mock.Anything, mock.Anything).Return(nil, "", tt.err)

			w := serve(router, doJSON(t, http.MethodPost, "/feedback/profile", map[string]any{
				"reviewer_profile_id": uuid.New(),
				"reviewee_profile_id": uuid.New(),
				"overall_experience":  3,
			}, nil))

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

// ===================== Get =====================

func TestProfileGet_Success(t *testing.T) {
	router, svc := setupTestRouter(nil, nil)
	fb := newProfileFeedback()
	svc.profile.On("Get", mock.Anything, fb.ID).Return(fb, `"v1"`, nil)

	w := serve(router, doJSON(t, http.MethodGet, "/feedback/profile/"+fb.ID.String(), nil, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `"v1"`, w.Header().Get("ETag"))
}

func TestProfileGet_NotModified(t *testing.T) {
	router, svc := setupTestRouter(nil, nil)
	fb := newProfileFeedback()
	svc.profile.On("Get", mock.Anything, fb.ID).Return(fb, `"v1"`, nil)

	w := serve(router, doJSON(t, http.MethodGet, "/feedback/profile/"+fb.ID.String(), nil,
		map[string]string{"If-None-Match": `W/"v1"`}))

	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Equal(t, `"v1"`, w.Header().Get("ETag"))
	assert.Empty(t, w.Body.String())
}

func TestProfileGet_InvalidID(t *testing.T) {
	router, svc := setupTestRouter(nil, nil)

	w := serve(router, doJSON(t, http.MethodGet, "/feedback/profile/not-a-uuid", nil, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid ID")
	svc.profile.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestProfileGet_NotFound(t *testing.T) {
	router, svc := setupTestRouter(nil, nil)
	id := uuid.New()
	svc.profile.On("Get", mock.Anything, id).Return(nil, "", service.ErrFeedbackNotFound)

	w := serve(router, doJSON(t, http.MethodGet, "/feedback/profile/"+id.String(), nil, nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ===================== Update =====================

func TestProfileUpdate_PassesIfMatch(t *testing.T) {
	router, svc := setupTestRouter(nil, nil)
	fb := newProfileFeedback()
	fb.OverallExperience = 2

	svc.profile.On("Update", mock.Anything, fb.ID, mock.MatchedBy(func(r *entity.UpdateProfileFeedbackRequest) bool {
		return r.OverallExperience.Set && *r.OverallExperience.Value == 2 && r.Headline.Cleared()
	}), `"v1"`).Return(fb, `"v2"`, nil)

	w := serve(router, doJSON(t, http.MethodPatch, "/feedback/profile/"+fb.ID.String(),
		`{"overall_experience": 2, "headline": null}`, map[string]string{"If-Match": `"v1"`}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `"v2"`, w.Header().Get("ETag"))
	svc.profile.AssertExpectations(t)
}

func TestProfileUpdate_PreconditionFailed(t *testing.T) {
	router, svc := setupTestRouter(nil, nil)
	id := uuid.New()
	svc.profile.On("Update", mock.Anything, id, mock.Anything, `"stale"`).Return(nil, "", concurrency.ErrPreconditionFailed)

	w := serve(router, doJSON(t, http.MethodPatch, "/feedback/profile/"+id.String(),
		`{"overall_experience": 4}`, map[string]string{"If-Match": `"stale"`}))

	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	assert.Contains(t, w.Body.String(), "If-Match precondition failed")
}

func TestProfileUpdate_NullRequiredField(t *testing.T) {
	router, svc := setupTestRouter(nil, nil)

	w := serve(router, doJSON(t, http.MethodPatch, "/feedback/profile/"+uuid.NewString(),
		`{"overall_experience": null}`, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "overall_experience")
	svc.profile.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProfileUpdate_OutOfRange(t *testing.T) {
	router, _ := setupTestRouter(nil, nil)

	w := serve(router, doJSON(t, http.MethodPatch, "/feedback/profile/"+uuid.NewString(),
		`{"safety_feeling": 0}`, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ===================== Delete =====================

func TestProfileDelete(t *testing.T) {
	router, svc := setupTestRouter(nil, nil)
	id := uuid.New()
	svc.profile.On("Delete", mock.Anything, id).Return(nil)

	w := serve(router, doJSON(t, http.MethodDelete, "/feedback/profile/"+id.String(), nil, nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestProfileDelete_NotFound(t *testing.T) {
	router, svc := setupTestRouter(nil, nil)
	id := uuid.New()
	svc.profile.On("Delete", mock.Anything, id).Return(service.ErrFeedbackNotFound)

	w := serve(router, doJSON(t, http.MethodDelete, "/feedback/profile/"+id.String(), nil, nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ===================== List =====================

func TestProfileList_OffsetLinks(t *testing.T) {
	router, svc := setupTestRouter(nil, nil)
	reviewee := uuid.New()
	fb := newProfileFeedback()
	next := 2

	svc.profile.On("List", mock.Anything, mock.MatchedBy(func(q *entity.ProfileListQuery) bool {
		return q.RevieweeProfileID == reviewee.String() && q.Tags == "punctual,funny" && *q.Limit == 2
	})).Return(&entity.Page[entity.ProfileFeedback]{
		Items: []entity.ProfileFeedback{*fb},
		Pagination: entity.Pagination{
			Limit: 2, Count: 1, Total: 3, HasNext: true, NextOffset: &next,
		},
	}, nil)

	w := serve(router, doJSON(t, http.MethodGet,
		"/feedback/profile?reviewee_profile_id="+reviewee.String()+"&tags=punctual,funny&limit=2", nil, nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp entity.ListResponse[entity.ProfileFeedbackResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, 3, resp.Pagination.Total)
	assert.Nil(t, resp.NextCursor)
	assert.Equal(t, "/feedback/profile?limit=2&offset=2&reviewee_profile_id="+reviewee.String()+"&tags=punctual%2Cfunny",
		resp.Links["next"])
	assert.NotContains(t, resp.Links, "prev")
	assert.Equal(t, "/feedback/profile/"+fb.ID.String(), resp.Items[0].Links["self"])
}

func TestProfileList_CursorLinks(t *testing.T) {
	router, svc := setupTestRouter(nil, nil)
	cursor := "eyJ2IjoiNSJ9"

	svc.profile.On("List", mock.Anything, mock.Anything).Return(&entity.Page[entity.ProfileFeedback]{
		Items:      []entity.ProfileFeedback{},
		Pagination: entity.Pagination{Limit: 20, HasNext: true, NextCursor: &cursor, CursorMode: true},
	}, nil)

	w := serve(router, doJSON(t, http.MethodGet, "/feedback/profile?cursor=abc&offset=10", nil, nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp entity.ListResponse[entity.ProfileFeedbackResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.NextCursor)
	assert.Equal(t, cursor, *resp.NextCursor)
	assert.Equal(t, "/feedback/profile?cursor="+cursor, resp.Links["next"])
	assert.Empty(t, resp.Items)
}

func TestProfileList_InvalidQuery(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"limit too large", "/feedback/profile?limit=500"},
		{"bad order", "/feedback/profile?order=sideways"},
		{"bad uuid", "/feedback/profile?reviewer_profile_id=nope"},
		{"bad rating", "/feedback/profile?min_overall=9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := setupTestRouter(nil, nil)

			w := serve(router, doJSON(t, http.MethodGet, tt.url, nil, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			svc.profile.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
		})
	}
}

func TestProfileList_ServiceValidation(t *testing.T) {
	router, svc := setupTestRouter(nil, nil)
	svc.profile.On("List", mock.Anything, mock.Anything).Return(nil, query.ErrInvalidCursor)

	w := serve(router, doJSON(t, http.MethodGet, "/feedback/profile?cursor=garbage", nil, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ===================== Stats =====================

func TestProfileStats_Success(t *testing.T) {
	router, svc := setupTestRouter(nil, nil)
	reviewee := uuid.New()
	stats := entity.EmptyStats([]string{"safety_feeling", "respectfulness"})
	mean := 4.5
	stats.Count = 2
	stats.Mean = &mean
	stats.Distribution["4"] = 1
	stats.Distribution["5"] = 1

	svc.profile.On("Stats", mock.Anything, mock.MatchedBy(func(q *entity.ProfileListQuery) bool {
		return q.RevieweeProfileID == reviewee.String()
	})).Return(stats, nil)

	w := serve(router, doJSON(t, http.MethodGet, "/feedback/profile/stats?reviewee_profile_id="+reviewee.String(), nil, nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp entity.ProfileStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, reviewee, resp.RevieweeProfileID)
	assert.Equal(t, 2, resp.CountTotal)
	assert.Equal(t, 4.5, *resp.AvgOverall)
	assert.Equal(t, map[string]int{"1": 0, "2": 0, "3": 0, "4": 1, "5": 1}, resp.Distribution)
	assert.Equal(t, "/feedback/profile?reviewee_profile_id="+reviewee.String(), resp.Links["related_feedback"])
}

func TestProfileStats_RevieweeRequired(t *testing.T) {
	router, svc := setupTestRouter(nil, nil)
	svc.profile.On("Stats", mock.Anything, mock.Anything).Return(nil, service.ErrRevieweeRequired)

	w := serve(router, doJSON(t, http.MethodGet, "/feedback/profile/stats", nil, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "reviewee_profile_id is required")
}
