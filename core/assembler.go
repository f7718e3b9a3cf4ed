package core

import (
	"bytes"
	"fmt"

	"github.com/signalsfoundry/tle-generator/model"
)

// LineWidth is the fixed width of TLE lines 1 and 2, checksum included.
const LineWidth = 69

// checksumColumn is the 0-indexed column holding the checksum digit.
const checksumColumn = LineWidth - 1

// Checksum returns the mod-10 checksum of the first 68 columns of line:
// digits count their value, '-' counts 1, everything else counts 0.
func Checksum(line string) int {
	sum := 0
	for i := 0; i < len(line) && i < checksumColumn; i++ {
		switch c := line[i]; {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	return sum % 10
}

// lineBuilder places fields into a blank, space-filled line at fixed columns.
type lineBuilder struct {
	line int
	buf  []byte
	err  error
}

func newLineBuilder(line int) *lineBuilder {
	return &lineBuilder{line: line, buf: bytes.Repeat([]byte{' '}, LineWidth)}
}

// put writes value into columns [start, end). The value must fill the span
// exactly.
func (b *lineBuilder) put(field string, start, end int, value string) {
	if b.err != nil {
		return
	}
	if start < 0 || end > checksumColumn || end-start != len(value) {
		b.err = &LineWidthError{Line: b.line, Field: field, Want: end - start, Got: len(value)}
		return
	}
	copy(b.buf[start:end], value)
}

// at returns a setter for columns [start, end) that accepts the result of a
// formatter directly, recording its error if it failed.
func (b *lineBuilder) at(field string, start, end int) func(string, error) {
	return func(value string, err error) {
		if b.err != nil {
			return
		}
		if err != nil {
			b.err = err
			return
		}
		b.put(field, start, end, value)
	}
}

// finish appends the checksum and enforces the line width.
func (b *lineBuilder) finish() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	if len(b.buf) != LineWidth {
		return "", &LineWidthError{Line: b.line, Field: "line", Want: LineWidth, Got: len(b.buf)}
	}
	b.buf[checksumColumn] = byte('0' + Checksum(string(b.buf)))
	return string(b.buf), nil
}

// TitleLine returns the human-readable name line of an element set.
func TitleLine(in model.OrbitalInputRecord) string {
	return fmt.Sprintf("%s Plane %d Sat %d", in.SystemName, in.PlaneIndex, in.SatelliteIndex)
}

// Assemble builds the title line and both element lines for one derived
// record. catalog is the 1-based satellite catalog number.
func Assemble(cfg Config, d model.DerivedOrbitalRecord, catalog int) (model.TleRecord, error) {
	rec := model.TleRecord{
		CatalogNumber:      catalog,
		EpochYearTwoDigit:  cfg.EpochYearTwoDigit(),
		EpochDayFractional: cfg.EpochDay(),
		TitleLine:          TitleLine(d.OrbitalInputRecord),
	}

	catalogStr, err := FormatInteger("catalog_number", catalog, CatalogNumberWidth)
	if err != nil {
		return rec, err
	}
	year, err := FormatInteger("epoch_year", rec.EpochYearTwoDigit, EpochYearWidth)
	if err != nil {
		return rec, err
	}

	l1 := newLineBuilder(1)
	l1.put("line_number", 0, 1, "1")
	l1.put("catalog_number", 2, 7, catalogStr)
	l1.put("classification", 7, 8, ClassificationUnclassified)
	l1.put("launch_year", 9, 11, year)
	l1.at("launch_number", 11, 14)(FormatInteger("launch_number", cfg.LaunchNumber, LaunchNumberWidth))
	l1.at("launch_piece", 14, 17)(FormatLaunchPiece(cfg.LaunchPiece))
	l1.put("epoch_year", 18, 20, year)
	l1.at("epoch_day", 20, 32)(FormatDecimal(EpochDayField, rec.EpochDayFractional))
	l1.put("mean_motion_dot", 33, 43, MeanMotionDotPlaceholder)
	l1.put("mean_motion_ddot", 44, 52, MeanMotionDDotPlaceholder)
	l1.put("bstar", 53, 61, BStarPlaceholder)
	l1.put("ephemeris_type", 62, 63, EphemerisTypeDefault)
	l1.at("element_set_number", 64, 68)(FormatInteger("element_set_number", cfg.ElementSetNumber, ElementSetNumberWidth))
	if rec.Line1, err = l1.finish(); err != nil {
		return rec, err
	}

	l2 := newLineBuilder(2)
	l2.put("line_number", 0, 1, "2")
	l2.put("catalog_number", 2, 7, catalogStr)
	l2.at("inclination", 8, 16)(FormatDecimal(InclinationField, d.InclinationDeg))
	l2.at("raan", 17, 25)(FormatDecimal(RAANField, d.RAANNormalizedDeg))
	l2.at("eccentricity", 26, 33)(FormatEccentricity(d.Eccentricity))
	l2.at("arg_perigee", 34, 42)(FormatDecimal(ArgPerigeeField, d.ArgPerigeeNormalizedDeg))
	l2.at("mean_anomaly", 43, 51)(FormatDecimal(MeanAnomalyField, d.MeanAnomalyNormalizedDeg))
	l2.at("mean_motion", 52, 63)(FormatDecimal(MeanMotionField, d.MeanMotionRevPerDay))
	l2.at("revolution_number", 63, 68)(FormatInteger("revolution_number", cfg.RevolutionNumber, RevolutionNumberWidth))
	if rec.Line2, err = l2.finish(); err != nil {
		return rec, err
	}

	return rec, nil
}
