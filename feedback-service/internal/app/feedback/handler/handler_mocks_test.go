package handler

import (
	"context"

	"feedbackhub/feedback-service/internal/app/feedback/entity"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Create(ctx context.Context, req *entity.CreateProfileFeedbackRequest) (*entity.ProfileFeedback, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*entity.ProfileFeedback), args.String(1), args.Error(2)
}

func (m *MockProfileService) Get(ctx context.Context, id uuid.UUID) (*entity.ProfileFeedback, string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*entity.ProfileFeedback), args.String(1), args.Error(2)
}

func (m *MockProfileService) Update(ctx context.Context, id uuid.UUID, req *entity.UpdateProfileFeedbackRequest, ifMatch string) (*entity.ProfileFeedback, string, error) {
	args := m.Called(ctx, id, req, ifMatch)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*entity.ProfileFeedback), args.String(1), args.Error(2)
}

func (m *MockProfileService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProfileService) List(ctx context.Context, q *entity.ProfileListQuery) (*entity.Page[entity.ProfileFeedback], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[entity.ProfileFeedback]), args.Error(1)
}

func (m *MockProfileService) Stats(ctx context.Context, q *entity.ProfileListQuery) (*entity.Stats, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Stats), args.Error(1)
}

type MockAppService struct {
	mock.Mock
}

func (m *MockAppService) Create(ctx context.Context, req *entity.CreateAppFeedbackRequest) (*entity.AppFeedback, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*entity.AppFeedback), args.String(1), args.Error(2)
}

func (m *MockAppService) Get(ctx context.Context, id uuid.UUID) (*entity.AppFeedback, string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*entity.AppFeedback), args.String(1), args.Error(2)
}

func (m *MockAppService) Update(ctx context.Context, id uuid.UUID, req *entity.UpdateAppFeedbackRequest, ifMatch string) (*entity.AppFeedback, string, error) {
	args := m.Called(ctx, id, req, ifMatch)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*entity.AppFeedback), args.String(1), args.Error(2)
}

func (m *MockAppService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAppService) List(ctx context.Context, q *entity.AppListQuery) (*entity.Page[entity.AppFeedback], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[entity.AppFeedback]), args.Error(1)
}

func (m *MockAppService) Stats(ctx context.Context, q *entity.AppListQuery) (*entity.Stats, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Stats), args.Error(1)
}

type MockJobService struct {
	mock.Mock
}

func (m *MockJobService) Create(ctx context.Context, req *entity.CreateJobRequest) (*entity.AnalysisJob, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AnalysisJob), args.Error(1)
}

func (m *MockJobService) Get(ctx context.Context, id uuid.UUID) (*entity.AnalysisJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AnalysisJob), args.Error(1)
}

type testServices struct {
	profile *MockProfileService
	app     *MockAppService
	jobs    *MockJobService
}

// setupTestRouter собирает полный роутер поверх моков сервисов
func setupTestRouter(auth *AuthMiddleware, checks map[string]Check) (*gin.Engine, testServices) {
	gin.SetMode(gin.TestMode)

	svc := testServices{
		profile: new(MockProfileService),
		app:     new(MockAppService),
		jobs:    new(MockJobService),
	}
	router := SetupRoutes(Handlers{
		Profile: NewProfileFeedbackHandler(svc.profile),
		App:     NewAppFeedbackHandler(svc.app),
		Jobs:    NewJobHandler(svc.jobs),
		Health:  NewHealthHandler(checks),
	}, auth, []string{"http://localhost:3000"})
	return router, svc
}
