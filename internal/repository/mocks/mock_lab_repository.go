package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sajor2000/labmanager-sub005/internal/model"
	"github.com/sajor2000/labmanager-sub005/internal/repository"
)

type MockLabRepository struct {
	mock.Mock
}

func (m *MockLabRepository) FindByID(ctx context.Context, id string) (*model.Lab, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lab), args.Error(1)
}

func (m *MockLabRepository) AddUsage(ctx context.Context, labID string, bytes int64) (int64, error) {
	args := m.Called(ctx, labID, bytes)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLabRepository) SubtractUsage(ctx context.Context, labID string, bytes int64) (repository.UsageDelta, error) {
	args := m.Called(ctx, labID, bytes)
	return args.Get(0).(repository.UsageDelta), args.Error(1)
}

func (m *MockLabRepository) SetUsage(ctx context.Context, labID string, bytes int64) error {
	args := m.Called(ctx, labID, bytes)
	return args.Error(0)
}

func (m *MockLabRepository) ListIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
