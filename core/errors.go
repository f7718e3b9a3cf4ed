package core

import (
	"errors"
	"fmt"
)

// ErrEmptyBatch is returned when a generation run receives no rows.
var ErrEmptyBatch = errors.New("no orbital rows to generate")

// MalformedRowError reports a source row that is missing a required column or
// decodes to a physically invalid altitude pair.
type MalformedRowError struct {
	Row    int    // zero-based row index in the source table
	Column string // column name, or the field name when no header exists
	Value  any
	Reason string
}

func (e *MalformedRowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("malformed row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("malformed row %d: column %q (value %v): %s", e.Row, e.Column, e.Value, e.Reason)
}

// InvalidOrbitError reports a derived or angular quantity outside its
// physically valid range.
type InvalidOrbitError struct {
	Row    int
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidOrbitError) Error() string {
	return fmt.Sprintf("invalid orbit in row %d: %s=%v: %s", e.Row, e.Field, e.Value, e.Reason)
}

// FieldOverflowError reports a value whose integer part does not fit its
// fixed TLE column width.
type FieldOverflowError struct {
	Row   int
	Field string
	Value string
	Width int
}

func (e *FieldOverflowError) Error() string {
	return fmt.Sprintf("field %s overflows width %d in row %d: %q", e.Field, e.Width, e.Row, e.Value)
}

// LineWidthError reports an assembled line that violates the 69 column layout.
type LineWidthError struct {
	Row   int
	Line  int // 1 or 2
	Field string
	Want  int
	Got   int
}

func (e *LineWidthError) Error() string {
	return fmt.Sprintf("line %d of row %d: %s spans %d columns, want %d", e.Line, e.Row, e.Field, e.Got, e.Want)
}

// VerificationError reports a generated element set that fails re-parsing or
// produces a non-physical state when propagated.
type VerificationError struct {
	CatalogNumber int
	Reason        string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("element set %05d failed verification: %s", e.CatalogNumber, e.Reason)
}

// withRow stamps the source row index onto a core error so that errors raised
// by row-agnostic helpers carry full context once they reach the batch layer.
func withRow(err error, row int) error {
	var (
		malformed *MalformedRowError
		orbit     *InvalidOrbitError
		overflow  *FieldOverflowError
		width     *LineWidthError
	)
	switch {
	case errors.As(err, &malformed):
		malformed.Row = row
	case errors.As(err, &orbit):
		orbit.Row = row
	case errors.As(err, &overflow):
		overflow.Row = row
	case errors.As(err, &width):
		width.Row = row
	}
	return err
}

// ErrorKind returns a short, stable label for a core error, suitable for
// metric labels and log fields.
func ErrorKind(err error) string {
	var (
		malformed *MalformedRowError
		orbit     *InvalidOrbitError
		overflow  *FieldOverflowError
		width     *LineWidthError
		verify    *VerificationError
	)
	switch {
	case err == nil:
		return "none"
	case errors.As(err, &malformed):
		return "malformed_row"
	case errors.As(err, &orbit):
		return "invalid_orbit"
	case errors.As(err, &overflow):
		return "field_overflow"
	case errors.As(err, &width):
		return "line_width"
	case errors.As(err, &verify):
		return "verification"
	case errors.Is(err, ErrEmptyBatch):
		return "empty_batch"
	default:
		return "other"
	}
}
