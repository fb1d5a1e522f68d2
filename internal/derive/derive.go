// Package derive turns raw extracted delivery notes into validated rows with
// computed height, quantity and pallet fields. Everything here is pure: a
// failed check becomes a warning on the row, never an error.
package derive

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/SkiltonTrading/cmrv2/internal/domain"
)

// Warning messages attached to derived rows. The wording is load-bearing:
// operators filter on these strings.
const (
	WarnMissingQuantity = "Missing aantal."
	WarnQuantityNaN     = "Aantal is not a number."
	WarnUnitFormat      = "Unit format invalid."
	WarnUnitNoHeight    = "Unit invalid; hoogte_enkel missing."
)

// unitPattern matches a unit code: one uppercase letter followed by exactly
// two digits, e.g. "E28".
var unitPattern = regexp.MustCompile(`^[A-Z][0-9]{2}$`)

// singleHeightStackLimit is the tallest single height (cm) that still gets
// doubled when stacked; taller tiers ship unstacked.
const singleHeightStackLimit = 150

// Row derives one DeliveryRow from a raw note. Warnings returned by the
// extraction service come first, followed by local checks in a fixed order:
// quantity, unit format, single height.
func Row(note domain.RawNote, task domain.PageTask, noteIndex int) domain.DeliveryRow {
	warnings := make([]string, 0, len(note.Warnings)+2)
	warnings = append(warnings, note.Warnings...)

	quantity, warnings := parseQuantity(note.QuantityValue(), warnings)

	unit := strings.TrimSpace(note.UnitValue())
	unitValid := unitPattern.MatchString(unit)
	if !unitValid {
		warnings = append(warnings, WarnUnitFormat)
	}

	letter := ""
	if unit != "" {
		letter = string([]rune(unit)[0])
	}

	var singleHeight *int
	if unitValid {
		digits, _ := strconv.Atoi(unit[1:])
		singleHeight = intp(digits * 10)
	} else {
		warnings = append(warnings, WarnUnitNoHeight)
	}

	var stackedHeight *int
	if singleHeight != nil {
		if *singleHeight <= singleHeightStackLimit {
			stackedHeight = intp(*singleHeight * 2)
		} else {
			stackedHeight = intp(*singleHeight)
		}
	}

	var adjusted *int
	if quantity != nil {
		if singleHeight != nil && *singleHeight <= singleHeightStackLimit {
			adjusted = intp(roundHalfUp(*quantity / 2))
		} else {
			adjusted = intp(roundHalfUp(*quantity))
		}
	}

	pallet := domain.PalletEuro
	if letter == "M" {
		pallet = domain.PalletBlok
	}

	return domain.DeliveryRow{
		ID:               uuid.New(),
		Date:             note.DateValue(),
		Quantity:         note.QuantityValue(),
		Unit:             note.UnitValue(),
		SingleHeight:     singleHeight,
		StackedHeight:    stackedHeight,
		AdjustedQuantity: adjusted,
		Pallet:           pallet,
		Warnings:         warnings,
		Duplicate:        false,
		FileName:         task.FileName,
		PageIndex:        task.PageIndex,
		NoteIndex:        noteIndex,
		Note:             note,
		Task:             task,
	}
}

// parseQuantity trims the raw value and parses it as a decimal number,
// accepting a comma as the decimal separator.
func parseQuantity(raw string, warnings []string) (*float64, []string) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, append(warnings, WarnMissingQuantity)
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	// ParseFloat also accepts "NaN", "Inf" and 0x hex floats; a quantity
	// must be a plain decimal number.
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || hexNumber(s) {
		return nil, append(warnings, WarnQuantityNaN)
	}
	return &v, warnings
}

// hexNumber reports whether s uses the 0x hex-float syntax.
func hexNumber(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")
}

// roundHalfUp rounds to the nearest integer with halves going up,
// so 4.5 becomes 5 and -0.5 becomes 0.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func intp(v int) *int { return &v }
