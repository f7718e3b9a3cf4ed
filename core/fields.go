package core

import (
	"strconv"
	"strings"
)

// FieldSpec describes how a decimal quantity is rendered into a fixed TLE
// column: the integer part is right-justified in IntWidth characters using
// IntPad, followed by a literal '.', followed by exactly FracDigits fractional
// digits. Fractional digits are truncated, never rounded.
type FieldSpec struct {
	Name       string
	IntWidth   int
	IntPad     byte
	FracDigits int
}

// Width returns the total number of columns the rendered field occupies.
func (f FieldSpec) Width() int {
	return f.IntWidth + 1 + f.FracDigits
}

// Decimal field layouts of a TLE.
var (
	InclinationField = FieldSpec{Name: "inclination", IntWidth: 3, IntPad: ' ', FracDigits: 4}
	RAANField        = FieldSpec{Name: "raan", IntWidth: 3, IntPad: '0', FracDigits: 4}
	ArgPerigeeField  = FieldSpec{Name: "arg_perigee", IntWidth: 3, IntPad: '0', FracDigits: 4}
	MeanAnomalyField = FieldSpec{Name: "mean_anomaly", IntWidth: 3, IntPad: '0', FracDigits: 4}
	MeanMotionField  = FieldSpec{Name: "mean_motion", IntWidth: 2, IntPad: '0', FracDigits: 8}
	EpochDayField    = FieldSpec{Name: "epoch_day", IntWidth: 3, IntPad: ' ', FracDigits: 8}
)

// Fixed widths of the integer and implied-decimal fields.
const (
	CatalogNumberWidth    = 5
	ElementSetNumberWidth = 4
	RevolutionNumberWidth = 5
	LaunchNumberWidth     = 3
	LaunchPieceWidth      = 3
	EpochYearWidth        = 2
	EccentricityDigits    = 7

	maxCatalogNumber = 99999
)

// Placeholder values for quantities the source data gives no basis to
// estimate. They encode zero.
const (
	MeanMotionDotPlaceholder   = "-.00000000"
	MeanMotionDDotPlaceholder  = "000000-0"
	BStarPlaceholder           = "-00000-0"
	ClassificationUnclassified = "U"
	EphemerisTypeDefault       = "0"
)

// FormatDecimal renders v according to f.
func FormatDecimal(f FieldSpec, v float64) (string, error) {
	intPart, fracPart := splitDecimal(v)
	if len(intPart) > f.IntWidth {
		return "", &FieldOverflowError{Field: f.Name, Value: intPart + "." + fracPart, Width: f.IntWidth}
	}
	return padInteger(intPart, f.IntWidth, f.IntPad) + "." + fitFraction(fracPart, f.FracDigits), nil
}

// FormatInteger renders a non-negative integer right-justified and
// zero-padded to width.
func FormatInteger(field string, v, width int) (string, error) {
	s := strconv.Itoa(v)
	if v < 0 || len(s) > width {
		return "", &FieldOverflowError{Field: field, Value: s, Width: width}
	}
	return padInteger(s, width, '0'), nil
}

// FormatEccentricity renders an eccentricity as its first seven fractional
// digits, with the leading "0." implied.
func FormatEccentricity(e float64) (string, error) {
	intPart, fracPart := splitDecimal(e)
	if intPart != "0" {
		return "", &FieldOverflowError{Field: "eccentricity", Value: intPart + "." + fracPart, Width: 0}
	}
	return fitFraction(fracPart, EccentricityDigits), nil
}

// FormatLaunchPiece left-justifies the launch piece letters in three columns.
func FormatLaunchPiece(piece string) (string, error) {
	piece = strings.TrimSpace(piece)
	if piece == "" || len(piece) > LaunchPieceWidth {
		return "", &FieldOverflowError{Field: "launch_piece", Value: piece, Width: LaunchPieceWidth}
	}
	return piece + strings.Repeat(" ", LaunchPieceWidth-len(piece)), nil
}

// splitDecimal returns the shortest exact decimal representation of v split
// at the decimal point. The fractional part is empty for integral values.
func splitDecimal(v float64) (string, string) {
	if v == 0 {
		v = 0 // drop the sign of negative zero
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	intPart, fracPart, _ := strings.Cut(s, ".")
	return intPart, fracPart
}

func padInteger(s string, width int, pad byte) string {
	if len(s) >= width {
		return s
	}
	fill := strings.Repeat(string(pad), width-len(s))
	if pad == '0' && strings.HasPrefix(s, "-") {
		return "-" + fill + s[1:]
	}
	return fill + s
}

func fitFraction(s string, digits int) string {
	if len(s) >= digits {
		return s[:digits]
	}
	return s + strings.Repeat("0", digits-len(s))
}
