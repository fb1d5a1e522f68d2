package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/SkiltonTrading/cmrv2/internal/port"
)

// MockNoteParser is a mock implementation of port.NoteParser.
type MockNoteParser struct {
	mock.Mock
}

func (m *MockNoteParser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ParseOutput), args.Error(1)
}
