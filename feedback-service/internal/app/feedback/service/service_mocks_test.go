package service

import (
	"context"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/feedback-service/internal/app/feedback/query"

	"github.com/stretchr/testify/mock"
)

// MockStatsEngine мок для StatsEngine
type MockStatsEngine struct {
	mock.Mock
}

func (m *MockStatsEngine) Compute(ctx context.Context, res query.Resource, pred query.Predicate) (*entity.Stats, error) {
	args := m.Called(ctx, res, pred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Stats), args.Error(1)
}

func intPtr(v int) *int { return &v }
