package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{&MalformedRowError{}, "malformed_row"},
		{fmt.Errorf("wrapped: %w", &InvalidOrbitError{}), "invalid_orbit"},
		{&FieldOverflowError{}, "field_overflow"},
		{&LineWidthError{}, "line_width"},
		{&VerificationError{}, "verification"},
		{ErrEmptyBatch, "empty_batch"},
		{errors.New("disk full"), "other"},
	}
	for _, tc := range cases {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestWithRowStampsWrappedErrors(t *testing.T) {
	err := withRow(fmt.Errorf("field: %w", &FieldOverflowError{Field: "mean_motion", Width: 2}), 12)
	var overflow *FieldOverflowError
	if !errors.As(err, &overflow) || overflow.Row != 12 {
		t.Fatalf("row not stamped: %v", err)
	}
	if got := (&VerificationError{CatalogNumber: 7, Reason: "checksum"}).Error(); got != "element set 00007 failed verification: checksum" {
		t.Fatalf("VerificationError.Error() = %q", got)
	}
}
