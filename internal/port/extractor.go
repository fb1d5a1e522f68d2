package port

import (
	"context"

	"github.com/SkiltonTrading/cmrv2/internal/domain"
)

// NoteExtractor submits one rasterized page to the extraction service and
// returns the delivery notes found on it. An empty slice is a valid result;
// an error means the page failed and produced no notes.
type NoteExtractor interface {
	Extract(ctx context.Context, image []byte, meta domain.PageMeta) ([]domain.RawNote, error)
}
