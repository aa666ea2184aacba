package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sajor2000/labmanager-sub005/internal/model"
)

type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) GetStats(ctx context.Context, labID string) (*model.StorageStats, error) {
	args := m.Called(ctx, labID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StorageStats), args.Error(1)
}
