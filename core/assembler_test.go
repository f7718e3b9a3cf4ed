package core

import (
	"errors"
	"strconv"
	"strings"
	"testing"
)

const (
	wantLine1 = "1 00001U 21001A   21335.00000000 -.00000000 000000-0 -00000-0 0 00015"
	wantLine2 = "2 00001  53.0000 015.0000 0000000 000.0000 330.0000 15.21915017000016"
)

func assembleTestRecord(t *testing.T, catalog int) (title, line1, line2 string) {
	t.Helper()
	cfg := DefaultConfig(testEpoch)
	d, err := Derive(cfg, testInput())
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	rec, err := Assemble(cfg, d, catalog)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return rec.TitleLine, rec.Line1, rec.Line2
}

func TestAssembleGoldenLines(t *testing.T) {
	title, line1, line2 := assembleTestRecord(t, 1)
	if title != "TestSys Plane 2 Sat 5" {
		t.Fatalf("title = %q", title)
	}
	if line1 != wantLine1 {
		t.Fatalf("line 1:\n got %q\nwant %q", line1, wantLine1)
	}
	if line2 != wantLine2 {
		t.Fatalf("line 2:\n got %q\nwant %q", line2, wantLine2)
	}
}

func TestAssembledLinesCarryValidChecksums(t *testing.T) {
	for _, catalog := range []int{1, 42, 99999} {
		_, line1, line2 := assembleTestRecord(t, catalog)
		for i, line := range []string{line1, line2} {
			if err := CheckLine(i+1, line); err != nil {
				t.Fatalf("catalog %d: %v", catalog, err)
			}
			if got := line[2:7]; got != padInteger(strconv.Itoa(catalog), 5, '0') {
				t.Fatalf("catalog %d: catalog columns = %q", catalog, got)
			}
		}
	}
}

func TestAssembleNeverWritesFullTurn(t *testing.T) {
	cfg := DefaultConfig(testEpoch)
	for _, ma := range []float64{-1e-14, -1e-9, 0, 359.99999} {
		in := testInput()
		in.MeanAnomalyDeg, in.RAANDeg, in.ArgPerigeeDeg = ma, ma, ma
		d, err := Derive(cfg, in)
		if err != nil {
			t.Fatalf("Derive(%v): %v", ma, err)
		}
		rec, err := Assemble(cfg, d, 1)
		if err != nil {
			t.Fatalf("Assemble(%v): %v", ma, err)
		}
		for _, cols := range [][2]int{{17, 25}, {34, 42}, {43, 51}} {
			if got := rec.Line2[cols[0]:cols[1]]; strings.HasPrefix(got, "360") {
				t.Fatalf("angle %v written as %q at columns %d:%d", ma, got, cols[0], cols[1])
			}
		}
	}
}

func TestLine2RoundTrip(t *testing.T) {
	cfg := DefaultConfig(testEpoch)
	in := testInput()
	in.RAANDeg, in.ArgPerigeeDeg, in.InclinationDeg = 123.45678, 271.5, 97.6543
	in.ApoAltitudeMantissa = 12
	d, err := Derive(cfg, in)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	rec, err := Assemble(cfg, d, 7)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	field := func(start, end int) float64 {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec.Line2[start:end]), 64)
		if err != nil {
			t.Fatalf("parse columns %d:%d of %q: %v", start, end, rec.Line2, err)
		}
		return v
	}
	checks := []struct {
		name      string
		got, want float64
		tolerance float64
	}{
		{"inclination", field(8, 16), d.InclinationDeg, 1e-4},
		{"raan", field(17, 25), d.RAANNormalizedDeg, 1e-4},
		{"eccentricity", field(26, 33) / 1e7, d.Eccentricity, 1e-7},
		{"arg_perigee", field(34, 42), d.ArgPerigeeNormalizedDeg, 1e-4},
		{"mean_anomaly", field(43, 51), d.MeanAnomalyNormalizedDeg, 1e-4},
		{"mean_motion", field(52, 63), d.MeanMotionRevPerDay, 1e-8},
	}
	for _, c := range checks {
		diff := c.want - c.got
		if diff < 0 || diff >= c.tolerance {
			t.Fatalf("%s: decoded %v from %v, want truncation within %v", c.name, c.got, c.want, c.tolerance)
		}
	}
}

func TestAssembleLaunchDesignator(t *testing.T) {
	cfg := DefaultConfig(testEpoch)
	cfg.LaunchNumber = 123
	cfg.LaunchPiece = "BC"
	d, err := Derive(cfg, testInput())
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	rec, err := Assemble(cfg, d, 1)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got := rec.Line1[9:17]; got != "21123BC " {
		t.Fatalf("designator = %q, want %q", got, "21123BC ")
	}
}

func TestAssembleOverflow(t *testing.T) {
	cfg := DefaultConfig(testEpoch)
	d, err := Derive(cfg, testInput())
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}

	if _, err := Assemble(cfg, d, 100000); !errors.As(err, new(*FieldOverflowError)) {
		t.Fatalf("expected FieldOverflowError for catalog 100000, got %v", err)
	}

	// Mean motion above 99 rev/day cannot be written.
	d.MeanMotionRevPerDay = 120
	_, err = Assemble(cfg, d, 1)
	var overflow *FieldOverflowError
	if !errors.As(err, &overflow) || overflow.Field != "mean_motion" {
		t.Fatalf("expected mean_motion overflow, got %v", err)
	}
}

func TestChecksum(t *testing.T) {
	// Published ISS element set.
	line1 := "1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927"
	line2 := "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391563537"
	for i, line := range []string{line1, line2} {
		if got, want := Checksum(line), int(line[68]-'0'); got != want {
			t.Fatalf("line %d checksum = %d, want %d", i+1, got, want)
		}
	}
}

func TestLineBuilderRejectsMisplacedField(t *testing.T) {
	b := newLineBuilder(1)
	b.put("catalog_number", 2, 7, "123")
	_, err := b.finish()
	var width *LineWidthError
	if !errors.As(err, &width) || width.Field != "catalog_number" || width.Want != 5 || width.Got != 3 {
		t.Fatalf("expected LineWidthError for catalog_number, got %v", err)
	}

	b = newLineBuilder(2)
	b.put("checksum", 68, 69, "0")
	if _, err := b.finish(); err == nil {
		t.Fatalf("expected error writing into the checksum column")
	}
}
