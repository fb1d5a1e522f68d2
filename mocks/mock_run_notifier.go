package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/SkiltonTrading/cmrv2/internal/port"
)

// MockRunNotifier is a mock implementation of port.RunNotifier.
type MockRunNotifier struct {
	mock.Mock
}

func (m *MockRunNotifier) NotifyRunCompleted(ctx context.Context, report port.RunReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}
