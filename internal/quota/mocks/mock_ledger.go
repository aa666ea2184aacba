package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) CheckCapacity(ctx context.Context, labID string, candidateBytes int64) (string, error) {
	args := m.Called(ctx, labID, candidateBytes)
	return args.String(0), args.Error(1)
}

func (m *MockLedger) CommitIncrement(ctx context.Context, labID string, bytes int64) error {
	args := m.Called(ctx, labID, bytes)
	return args.Error(0)
}

func (m *MockLedger) CommitDecrement(ctx context.Context, labID string, bytes int64) error {
	args := m.Called(ctx, labID, bytes)
	return args.Error(0)
}
