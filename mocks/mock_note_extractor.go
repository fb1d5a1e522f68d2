package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/SkiltonTrading/cmrv2/internal/domain"
)

// MockNoteExtractor is a mock implementation of port.NoteExtractor.
type MockNoteExtractor struct {
	mock.Mock
}

func (m *MockNoteExtractor) Extract(ctx context.Context, image []byte, meta domain.PageMeta) ([]domain.RawNote, error) {
	args := m.Called(ctx, image, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawNote), args.Error(1)
}
