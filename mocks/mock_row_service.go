package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/SkiltonTrading/cmrv2/internal/domain"
	"github.com/SkiltonTrading/cmrv2/internal/results"
)

// MockRowService is a mock implementation of service.RowService.
type MockRowService struct {
	mock.Mock
}

func (m *MockRowService) List(ctx context.Context, opts results.ListOptions) ([]domain.DeliveryRow, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DeliveryRow), args.Error(1)
}

func (m *MockRowService) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRowService) Stats(ctx context.Context) domain.RowStats {
	args := m.Called(ctx)
	return args.Get(0).(domain.RowStats)
}
