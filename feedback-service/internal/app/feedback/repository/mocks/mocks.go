package mocks

import (
	"context"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/feedback-service/internal/app/feedback/query"
	"feedbackhub/feedback-service/internal/app/feedback/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProfileFeedbackRepository мок для ProfileFeedbackRepository
type MockProfileFeedbackRepository struct {
	mock.Mock
}

func (m *MockProfileFeedbackRepository) Create(ctx context.Context, f *entity.ProfileFeedback) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockProfileFeedbackRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ProfileFeedback, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProfileFeedback), args.Error(1)
}

func (m *MockProfileFeedbackRepository) Update(ctx context.Context, id uuid.UUID, req *entity.UpdateProfileFeedbackRequest, expected *time.Time) (*entity.ProfileFeedback, error) {
	args := m.Called(ctx, id, req, expected)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProfileFeedback), args.Error(1)
}

func (m *MockProfileFeedbackRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProfileFeedbackRepository) List(ctx context.Context, pred query.Predicate, page query.PageRequest) ([]entity.ProfileFeedback, error) {
	args := m.Called(ctx, pred, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ProfileFeedback), args.Error(1)
}

func (m *MockProfileFeedbackRepository) Count(ctx context.Context, pred query.Predicate) (int, error) {
	args := m.Called(ctx, pred)
	return args.Int(0), args.Error(1)
}

// MockAppFeedbackRepository мок для AppFeedbackRepository
type MockAppFeedbackRepository struct {
	mock.Mock
}

func (m *MockAppFeedbackRepository) Create(ctx context.Context, f *entity.AppFeedback) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockAppFeedbackRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.AppFeedback, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AppFeedback), args.Error(1)
}

func (m *MockAppFeedbackRepository) Update(ctx context.Context, id uuid.UUID, req *entity.UpdateAppFeedbackRequest, expected *time.Time) (*entity.AppFeedback, error) {
	args := m.Called(ctx, id, req, expected)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AppFeedback), args.Error(1)
}

func (m *MockAppFeedbackRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAppFeedbackRepository) List(ctx context.Context, pred query.Predicate, page query.PageRequest) ([]entity.AppFeedback, error) {
	args := m.Called(ctx, pred, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.AppFeedback), args.Error(1)
}

func (m *MockAppFeedbackRepository) Count(ctx context.Context, pred query.Predicate) (int, error) {
	args := m.Called(ctx, pred)
	return args.Int(0), args.Error(1)
}

// MockAggregateRepository мок для AggregateRepository
type MockAggregateRepository struct {
	mock.Mock
}

func (m *MockAggregateRepository) Aggregate(ctx context.Context, r query.Resource, pred query.Predicate) (*repository.AggregateRow, error) {
	args := m.Called(ctx, r, pred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.AggregateRow), args.Error(1)
}

func (m *MockAggregateRepository) TopTags(ctx context.Context, r query.Resource, pred query.Predicate, limit int) ([]entity.TagCount, error) {
	args := m.Called(ctx, r, pred, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.TagCount), args.Error(1)
}

// MockJobRepository мок для JobRepository
type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) Create(ctx context.Context, job *entity.AnalysisJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.AnalysisJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AnalysisJob), args.Error(1)
}

func (m *MockJobRepository) MarkRunning(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockJobRepository) Complete(ctx context.Context, id uuid.UUID, result *entity.Stats) error {
	args := m.Called(ctx, id, result)
	return args.Error(0)
}

func (m *MockJobRepository) Fail(ctx context.Context, id uuid.UUID, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *MockJobRepository) FailStale(ctx context.Context, startedBefore time.Time, reason string) (int64, error) {
	args := m.Called(ctx, startedBefore, reason)
	return args.Get(0).(int64), args.Error(1)
}

// MockJobLock мок для JobLock
type MockJobLock struct {
	mock.Mock
}

func (m *MockJobLock) Acquire(ctx context.Context, jobID uuid.UUID, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, jobID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockJobLock) Release(ctx context.Context, jobID uuid.UUID) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

// MockMessagePublisher мок для Kafka MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
