// Package dedupe tracks composite keys of admitted delivery notes so the
// same note is never ingested twice, within a run or across restarts.
package dedupe

import (
	"fmt"

	"github.com/SkiltonTrading/cmrv2/internal/domain"
)

// Store remembers every admitted key. It is not safe for concurrent use;
// callers serialize access together with the result table they guard.
type Store struct {
	seen map[string]struct{}
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{seen: make(map[string]struct{})}
}

// Admit records the key and returns true if it was not seen before. A key
// already present is rejected silently; the caller drops the note without
// surfacing anything to the operator.
func (s *Store) Admit(key string) bool {
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Len reports the number of admitted keys.
func (s *Store) Len() int {
	return len(s.seen)
}

// Reset forgets all admitted keys.
func (s *Store) Reset() {
	s.seen = make(map[string]struct{})
}

// Key builds the composite key for a note on a page. All parts are taken
// verbatim, before any trimming or normalization, and are case-sensitive.
func Key(fileName string, pageIndex int, note domain.RawNote) string {
	return fmt.Sprintf("%s|%d|%s|%s|%s",
		fileName, pageIndex, note.DateValue(), note.QuantityValue(), note.UnitValue())
}

// RowKey recomputes the key for a persisted row, used to rehydrate the
// store at startup from previously saved rows.
func RowKey(row domain.DeliveryRow) string {
	return Key(row.FileName, row.PageIndex, row.Note)
}
