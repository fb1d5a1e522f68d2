package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockPageRasterizer is a mock implementation of port.PageRasterizer.
type MockPageRasterizer struct {
	mock.Mock
}

func (m *MockPageRasterizer) PageCount(ctx context.Context, pdf []byte) (int, error) {
	args := m.Called(ctx, pdf)
	return args.Int(0), args.Error(1)
}

func (m *MockPageRasterizer) RenderPage(ctx context.Context, pdf []byte, page int) ([]byte, error) {
	args := m.Called(ctx, pdf, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
