package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/SkiltonTrading/cmrv2/internal/dedupe"
	"github.com/SkiltonTrading/cmrv2/internal/derive"
	"github.com/SkiltonTrading/cmrv2/internal/domain"
	"github.com/SkiltonTrading/cmrv2/internal/port"
	"github.com/SkiltonTrading/cmrv2/internal/results"
)

// Session owns the result table and the dedupe store for the lifetime of the
// process. One mutex guards both so that admitting a key and appending its
// row happen atomically, and clearing empties both together. Every mutation
// rewrites the whole persisted slot.
type Session struct {
	mu     sync.Mutex
	rows   *results.Store
	dedupe *dedupe.Store
	state  port.StateStore
}

// NewSession creates an empty Session backed by the given state slot.
func NewSession(state port.StateStore) *Session {
	return &Session{
		rows:   results.NewStore(),
		dedupe: dedupe.NewStore(),
		state:  state,
	}
}

// Restore loads previously persisted rows and rehydrates the dedupe store
// from them, so duplicates stay closed across restarts. A missing slot or a
// payload that does not parse is logged and treated as empty.
func (s *Session) Restore(ctx context.Context) error {
	data, err := s.state.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading persisted state: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var rows []domain.DeliveryRow
	if err := json.Unmarshal(data, &rows); err != nil {
		log.Printf("session.Restore: discarding unparseable state (%d bytes): %v", len(data), err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows.Replace(rows)
	s.dedupe.Reset()
	for _, row := range rows {
		s.dedupe.Admit(dedupe.RowKey(row))
	}
	log.Printf("session.Restore: restored %d rows, %d dedupe keys", len(rows), s.dedupe.Len())
	return nil
}

// AdmitPage runs every note of one page through the dedupe store and the
// derivation engine, appends the accepted rows and persists the table once.
// It returns the number of rows added. Notes whose key was already admitted
// are dropped silently.
func (s *Session) AdmitPage(ctx context.Context, task domain.PageTask, notes []domain.RawNote) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	now := time.Now().UTC()
	for i, note := range notes {
		key := dedupe.Key(task.FileName, task.PageIndex, note)
		if !s.dedupe.Admit(key) {
			continue
		}
		row := derive.Row(note, task, i)
		row.CreatedAt = now
		s.rows.Append(row)
		added++
	}

	if added > 0 {
		s.persistLocked(ctx)
	}
	return added
}

// Clear atomically empties the result table and the dedupe store, then
// persists the empty table.
func (s *Session) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows.Clear()
	s.dedupe.Reset()
	s.persistLocked(ctx)
}

// List returns a filtered, sorted copy of the rows.
func (s *Session) List(opts results.ListOptions) ([]domain.DeliveryRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows.List(opts)
}

// Snapshot returns all rows in arrival order.
func (s *Session) Snapshot() []domain.DeliveryRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows.Snapshot()
}

// Len reports the number of stored rows.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows.Len()
}

// Stats aggregates the stored rows.
func (s *Session) Stats() domain.RowStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := domain.RowStats{TotalRows: s.rows.Len()}
	for _, row := range s.rows.Snapshot() {
		if len(row.Warnings) > 0 {
			stats.RowsWithWarnings++
		}
		switch row.Pallet {
		case domain.PalletEuro:
			stats.EuroPallets++
		case domain.PalletBlok:
			stats.BlokPallets++
		}
		if row.AdjustedQuantity != nil {
			stats.AdjustedTotal += *row.AdjustedQuantity
		}
	}
	return stats
}

// persistLocked rewrites the full table into the state slot. Failures are
// logged and swallowed: losing a checkpoint must not fail the page that
// produced it. Callers hold s.mu.
func (s *Session) persistLocked(ctx context.Context) {
	data, err := json.Marshal(s.rows.Snapshot())
	if err != nil {
		log.Printf("session.persist: marshaling %d rows: %v", s.rows.Len(), err)
		return
	}
	if err := s.state.Save(ctx, data); err != nil {
		log.Printf("session.persist: saving state: %v", err)
	}
}
