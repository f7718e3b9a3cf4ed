package core

import (
	"errors"
	"testing"
)

func TestFormatDecimal(t *testing.T) {
	cases := []struct {
		name string
		spec FieldSpec
		in   float64
		want string
	}{
		{"zero-padded angle", RAANField, 7.5, "007.5000"},
		{"space-padded inclination", InclinationField, 53, " 53.0000"},
		{"truncates not rounds", InclinationField, 123.456789, "123.4567"},
		{"truncates 0.99999", MeanAnomalyField, 359.99999, "359.9999"},
		{"short fraction", MeanAnomalyField, 0.1, "000.1000"},
		{"negative zero", MeanAnomalyField, negZero(), "000.0000"},
		{"mean motion", MeanMotionField, 15.219150179262977, "15.21915017"},
		{"mean motion single digit", MeanMotionField, 1.23456789012, "01.23456789"},
		{"epoch day", EpochDayField, 335, "335.00000000"},
		{"epoch day fraction", EpochDayField, 1.5, "  1.50000000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FormatDecimal(tc.spec, tc.in)
			if err != nil {
				t.Fatalf("FormatDecimal(%v): %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("FormatDecimal(%v) = %q, want %q", tc.in, got, tc.want)
			}
			if len(got) != tc.spec.Width() {
				t.Fatalf("width = %d, want %d", len(got), tc.spec.Width())
			}
		})
	}
}

func TestFormatDecimalOverflow(t *testing.T) {
	_, err := FormatDecimal(MeanMotionField, 123.4)
	var overflow *FieldOverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("expected FieldOverflowError, got %v", err)
	}
	if overflow.Field != "mean_motion" || overflow.Width != 2 {
		t.Fatalf("unexpected overflow detail: %+v", overflow)
	}
}

func TestFormatInteger(t *testing.T) {
	if got, err := FormatInteger("catalog_number", 42, CatalogNumberWidth); err != nil || got != "00042" {
		t.Fatalf("FormatInteger(42) = %q, %v", got, err)
	}
	if got, err := FormatInteger("catalog_number", 99999, CatalogNumberWidth); err != nil || got != "99999" {
		t.Fatalf("FormatInteger(99999) = %q, %v", got, err)
	}
	for _, v := range []int{100000, -1} {
		if _, err := FormatInteger("catalog_number", v, CatalogNumberWidth); err == nil {
			t.Fatalf("expected overflow for %d", v)
		}
	}
}

func TestFormatEccentricity(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0000000"},
		{0.048421882429732666, "0484218"},
		{0.0035954994127112005, "0035954"},
		{0.5, "5000000"},
	}
	for _, tc := range cases {
		got, err := FormatEccentricity(tc.in)
		if err != nil || got != tc.want {
			t.Fatalf("FormatEccentricity(%v) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
	if _, err := FormatEccentricity(1.2); err == nil {
		t.Fatalf("expected overflow for eccentricity above 1")
	}
}

func TestFormatLaunchPiece(t *testing.T) {
	if got, _ := FormatLaunchPiece("A"); got != "A  " {
		t.Fatalf("FormatLaunchPiece(A) = %q", got)
	}
	if got, _ := FormatLaunchPiece("ABC"); got != "ABC" {
		t.Fatalf("FormatLaunchPiece(ABC) = %q", got)
	}
	if _, err := FormatLaunchPiece("ABCD"); err == nil {
		t.Fatalf("expected overflow for four-letter piece")
	}
}

func negZero() float64 {
	z := 0.0
	return -z
}
