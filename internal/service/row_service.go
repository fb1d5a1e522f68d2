package service

import (
	"context"
	"log"

	"github.com/SkiltonTrading/cmrv2/internal/domain"
	"github.com/SkiltonTrading/cmrv2/internal/progress"
	"github.com/SkiltonTrading/cmrv2/internal/results"
)

// RowService exposes the derived-row table.
type RowService interface {
	List(ctx context.Context, opts results.ListOptions) ([]domain.DeliveryRow, error)
	// Clear empties the row table and the dedupe store together. Refused
	// while a run is active.
	Clear(ctx context.Context) error
	Stats(ctx context.Context) domain.RowStats
}

type rowService struct {
	session *Session
	tracker *progress.Tracker
}

// NewRowService creates a new RowService implementation.
func NewRowService(session *Session, tracker *progress.Tracker) RowService {
	return &rowService{session: session, tracker: tracker}
}

func (s *rowService) List(ctx context.Context, opts results.ListOptions) ([]domain.DeliveryRow, error) {
	return s.session.List(opts)
}

func (s *rowService) Clear(ctx context.Context) error {
	if s.tracker.Running() {
		return domain.ErrRunActive
	}
	log.Printf("rowService.Clear: clearing %d rows", s.session.Len())
	s.session.Clear(ctx)
	return nil
}

func (s *rowService) Stats(ctx context.Context) domain.RowStats {
	return s.session.Stats()
}
