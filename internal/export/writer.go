// Package export renders the delivery-row table as CSV, TSV and XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/SkiltonTrading/cmrv2/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the export header row. The labels match the on-screen
// table, Dutch like the waybills themselves.
var columns = []string{
	"Datum",
	"Aantal",
	"Eenheid",
	"Hoogte enkel",
	"Hoogte gestapeld",
	"Aantal aangepast",
	"Pallet",
}

// Writer wraps csv.Writer for exporting delivery rows.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes comma-separated output to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// NewTSVWriter creates a Writer that writes tab-separated output to w.
func NewTSVWriter(w io.Writer) *Writer {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	return &Writer{csv: cw}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteRows converts delivery rows to records and writes them in order.
func (w *Writer) WriteRows(rows []domain.DeliveryRow) error {
	for i := range rows {
		if err := w.csv.Write(rowToRecord(&rows[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// rowToRecord converts one row to its export record. Date, Aantal and
// Eenheid are exported exactly as extracted; absent derived values stay
// empty rather than zero.
func rowToRecord(row *domain.DeliveryRow) []string {
	return []string{
		row.Date,
		row.Quantity,
		row.Unit,
		formatIntPtr(row.SingleHeight),
		formatIntPtr(row.StackedHeight),
		formatIntPtr(row.AdjustedQuantity),
		string(row.Pallet),
	}
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string) string {
	sanitized := SanitizeFilename(name)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
