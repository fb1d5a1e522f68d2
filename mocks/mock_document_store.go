package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/SkiltonTrading/cmrv2/internal/port"
)

// MockDocumentStore is a mock implementation of port.DocumentStore.
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Put(ctx context.Context, input port.StoreInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockDocumentStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockDocumentStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
