// Package results holds the ordered table of derived delivery rows.
package results

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/SkiltonTrading/cmrv2/internal/domain"
)

// SortFields lists the row fields accepted by ListOptions.SortField.
var SortFields = map[string]struct{}{
	"date":              {},
	"quantity":          {},
	"unit":              {},
	"single_height":     {},
	"stacked_height":    {},
	"adjusted_quantity": {},
	"pallet":            {},
	"file_name":         {},
	"page_index":        {},
	"created_at":        {},
}

// ListOptions control ordering and filtering of a listing. A zero value
// returns every row in insertion order.
type ListOptions struct {
	SortField  string
	Descending bool
	Filter     string
}

// Store is an append-only collection of rows in arrival order. It is not
// safe for concurrent use; callers serialize access together with the
// dedupe store guarding it.
type Store struct {
	rows []domain.DeliveryRow
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Append adds rows at the end, preserving arrival order.
func (s *Store) Append(rows ...domain.DeliveryRow) {
	s.rows = append(s.rows, rows...)
}

// Replace swaps the full contents, used when restoring persisted state.
func (s *Store) Replace(rows []domain.DeliveryRow) {
	s.rows = rows
}

// Len reports the number of stored rows.
func (s *Store) Len() int {
	return len(s.rows)
}

// Clear removes every row.
func (s *Store) Clear() {
	s.rows = nil
}

// Snapshot returns a copy of all rows in insertion order.
func (s *Store) Snapshot() []domain.DeliveryRow {
	out := make([]domain.DeliveryRow, len(s.rows))
	copy(out, s.rows)
	return out
}

// List returns a filtered, sorted copy of the rows. Ties keep arrival
// order. An unknown sort field returns domain.ErrInvalidSort.
func (s *Store) List(opts ListOptions) ([]domain.DeliveryRow, error) {
	if opts.SortField != "" {
		if _, ok := SortFields[opts.SortField]; !ok {
			return nil, fmt.Errorf("%w: unknown field %q", domain.ErrInvalidSort, opts.SortField)
		}
	}

	out := make([]domain.DeliveryRow, 0, len(s.rows))
	needle := strings.ToLower(strings.TrimSpace(opts.Filter))
	for _, row := range s.rows {
		if needle == "" || matchesFilter(row, needle) {
			out = append(out, row)
		}
	}

	if opts.SortField != "" {
		sort.SliceStable(out, func(i, j int) bool {
			c := compareField(opts.SortField, out[i], out[j])
			if opts.Descending {
				return c > 0
			}
			return c < 0
		})
	}
	return out, nil
}

// matchesFilter matches the lowercased needle against each visible column
// and warning on its own, so a filter never spans two fields.
func matchesFilter(row domain.DeliveryRow, needle string) bool {
	fields := []string{
		row.Date,
		row.Quantity,
		row.Unit,
		intPtrString(row.SingleHeight),
		intPtrString(row.StackedHeight),
		intPtrString(row.AdjustedQuantity),
		string(row.Pallet),
		row.FileName,
		strconv.Itoa(row.PageIndex),
	}
	fields = append(fields, row.Warnings...)
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func intPtrString(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// compareField orders two rows by the natural value of one field: numeric
// fields numerically, strings lexically. Absent values sort before present
// ones; a quantity that does not parse as a number sorts before one that does.
func compareField(field string, a, b domain.DeliveryRow) int {
	switch field {
	case "date":
		return strings.Compare(a.Date, b.Date)
	case "quantity":
		return compareQuantity(a.Quantity, b.Quantity)
	case "unit":
		return strings.Compare(a.Unit, b.Unit)
	case "single_height":
		return compareIntPtr(a.SingleHeight, b.SingleHeight)
	case "stacked_height":
		return compareIntPtr(a.StackedHeight, b.StackedHeight)
	case "adjusted_quantity":
		return compareIntPtr(a.AdjustedQuantity, b.AdjustedQuantity)
	case "pallet":
		return strings.Compare(string(a.Pallet), string(b.Pallet))
	case "file_name":
		return strings.Compare(a.FileName, b.FileName)
	case "page_index":
		return compareInt(a.PageIndex, b.PageIndex)
	case "created_at":
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1
		case a.CreatedAt.After(b.CreatedAt):
			return 1
		}
		return 0
	}
	return 0
}

func compareQuantity(a, b string) int {
	av, aok := parseNumber(a)
	bv, bok := parseNumber(b)
	switch {
	case aok && bok:
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case aok:
		return 1
	case bok:
		return -1
	}
	return strings.Compare(a, b)
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	return v, err == nil
}

func compareIntPtr(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return compareInt(*a, *b)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
