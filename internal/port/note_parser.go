package port

import (
	"context"
	"encoding/json"
)

// ParseInput carries one page image for vision-model parsing.
type ParseInput struct {
	ImageBytes  []byte
	ContentType string
}

// ParseOutput contains the raw structured result from a vision model. The
// payload is validated against the delivery-note schema before use.
type ParseOutput struct {
	StructuredData json.RawMessage
	ModelUsed      string
	PromptUsed     string
}

// NoteParser abstracts vision-model extraction of delivery notes from a page image.
type NoteParser interface {
	Parse(ctx context.Context, input ParseInput) (*ParseOutput, error)
}
