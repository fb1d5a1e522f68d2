package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/SkiltonTrading/cmrv2/internal/domain"
)

// MockRunService is a mock implementation of service.RunService.
type MockRunService struct {
	mock.Mock
}

func (m *MockRunService) Start(ctx context.Context) (domain.RunStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.RunStatus), args.Error(1)
}

func (m *MockRunService) Status(ctx context.Context) domain.RunStatus {
	args := m.Called(ctx)
	return args.Get(0).(domain.RunStatus)
}
