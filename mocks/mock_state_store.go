package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStateStore is a mock implementation of port.StateStore.
type MockStateStore struct {
	mock.Mock
}

func (m *MockStateStore) Load(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStateStore) Save(ctx context.Context, data []byte) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockStateStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
