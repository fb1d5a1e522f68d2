package domain

import (
	"time"

	"github.com/google/uuid"
)

// QueuedFile represents an uploaded shipment document waiting to be processed.
type QueuedFile struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Size        int64      `json:"size"`
	ContentType string     `json:"content_type"`
	PageCount   int        `json:"page_count"`
	StorageKey  string     `json:"-"`
	Status      FileStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// PageTask identifies one page of one queued file. Tasks are created by
// flattening the queue in file order then page order, and each task is
// dispatched exactly once per run.
type PageTask struct {
	FileID     uuid.UUID `json:"file_id"`
	FileName   string    `json:"file_name"`
	FileIndex  int       `json:"file_index"`
	PageIndex  int       `json:"page_index"` // 1-based
	PageCount  int       `json:"page_count"`
	StorageKey string    `json:"-"`
}

// PageMeta is the metadata part sent alongside the page image on every
// extraction request. Field names are part of the wire contract.
type PageMeta struct {
	FileName  string `json:"fileName"`
	FileIndex int    `json:"fileIndex"`
	PageIndex int    `json:"pageIndex"`
}

// RawNote is one delivery-note entry as returned by the extraction service.
// Datum, aantal and eenheid are pointers so an absent field can be told apart
// from a field present but empty.
type RawNote struct {
	Date       *string  `json:"datum"`
	Quantity   *string  `json:"aantal"`
	Unit       *string  `json:"eenheid"`
	Confidence *float64 `json:"confidence,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// DateValue returns the raw date string, or "" when the field was absent.
func (n RawNote) DateValue() string {
	if n.Date == nil {
		return ""
	}
	return *n.Date
}

// QuantityValue returns the raw quantity string, or "" when the field was absent.
func (n RawNote) QuantityValue() string {
	if n.Quantity == nil {
		return ""
	}
	return *n.Quantity
}

// UnitValue returns the raw unit string, or "" when the field was absent.
func (n RawNote) UnitValue() string {
	if n.Unit == nil {
		return ""
	}
	return *n.Unit
}

// ExtractResult is the successful response body of the extraction service.
type ExtractResult struct {
	Notes []RawNote `json:"notes"`
	Meta  PageMeta  `json:"meta"`
}

// DeliveryRow is one validated, derived delivery-note record. Rows are kept
// in arrival order, which is not page order because pages are processed
// concurrently.
type DeliveryRow struct {
	ID               uuid.UUID `json:"id"`
	Date             string    `json:"date"`
	Quantity         string    `json:"quantity"`
	Unit             string    `json:"unit"`
	SingleHeight     *int      `json:"single_height"`
	StackedHeight    *int      `json:"stacked_height"`
	AdjustedQuantity *int      `json:"adjusted_quantity"`
	Pallet           Pallet    `json:"pallet"`
	Warnings         []string  `json:"warnings"`
	// Duplicate is reserved; rows for an already-admitted key are dropped
	// before creation, so it stays false.
	Duplicate bool      `json:"duplicate"`
	FileName  string    `json:"file_name"`
	PageIndex int       `json:"page_index"`
	NoteIndex int       `json:"note_index"`
	Note      RawNote   `json:"note"`
	Task      PageTask  `json:"task"`
	CreatedAt time.Time `json:"created_at"`
}

// RunStatus is a point-in-time snapshot of the current (or last) run.
type RunStatus struct {
	State          RunState       `json:"state"`
	TotalPages     int            `json:"total_pages"`
	ProcessedPages int            `json:"processed_pages"`
	Percentage     int            `json:"percentage"`
	CurrentFile    string         `json:"current_file"`
	CurrentPage    int            `json:"current_page"`
	FilePages      map[string]int `json:"file_pages,omitempty"`
	Notices        []string       `json:"notices"`
	StartedAt      *time.Time     `json:"started_at,omitempty"`
	FinishedAt     *time.Time     `json:"finished_at,omitempty"`
}

// RowStats aggregates the result table for the stats endpoint.
type RowStats struct {
	TotalRows        int `json:"total_rows"`
	RowsWithWarnings int `json:"rows_with_warnings"`
	EuroPallets      int `json:"euro_pallets"`
	BlokPallets      int `json:"blok_pallets"`
	AdjustedTotal    int `json:"adjusted_total"`
}
