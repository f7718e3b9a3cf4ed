package core

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/signalsfoundry/tle-generator/internal/logging"
	"github.com/signalsfoundry/tle-generator/model"
	"github.com/signalsfoundry/tle-generator/timectrl"
)

// DefaultVerifyStep is the propagation step used when sweeping one orbit.
const DefaultVerifyStep = time.Minute

// Verifier re-reads generated element sets the way a propagator would and
// sweeps each one over a full orbit with SGP4.
type Verifier struct {
	// Step between propagated samples.
	Step time.Duration
	// MinRadiusKm is the geocentric distance below which a propagated state
	// is treated as re-entered.
	MinRadiusKm float64

	log logging.Logger
}

// NewVerifier returns a Verifier sampling every step.
func NewVerifier(step time.Duration, log logging.Logger) *Verifier {
	if step <= 0 {
		step = DefaultVerifyStep
	}
	if log == nil {
		log = logging.Noop()
	}
	return &Verifier{Step: step, MinRadiusKm: 0.99 * DefaultEarthRadiusKm, log: log}
}

// CheckLine validates the width, line number and checksum of one element line.
func CheckLine(lineNo int, line string) error {
	if len(line) != LineWidth {
		return &LineWidthError{Line: lineNo, Field: "line", Want: LineWidth, Got: len(line)}
	}
	if want := byte('0' + lineNo); line[0] != want {
		return fmt.Errorf("line %d starts with %q", lineNo, line[0])
	}
	got := line[checksumColumn]
	if want := byte('0' + Checksum(line)); got != want {
		return fmt.Errorf("line %d checksum is %q, computed %q", lineNo, got, want)
	}
	return nil
}

// EpochFromLine1 decodes the epoch columns of line 1. Two-digit years below
// 57 belong to the 21st century.
func EpochFromLine1(line1 string) (time.Time, error) {
	if len(line1) < 32 {
		return time.Time{}, fmt.Errorf("line 1 too short for epoch: %d columns", len(line1))
	}
	yy, err := strconv.Atoi(strings.TrimSpace(line1[18:20]))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch year %q: %w", line1[18:20], err)
	}
	day, err := strconv.ParseFloat(strings.TrimSpace(line1[20:32]), 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch day %q: %w", line1[20:32], err)
	}
	year := 1900 + yy
	if yy < 57 {
		year = 2000 + yy
	}
	whole := math.Floor(day)
	nanos := math.Round((day - whole) * secondsPerDay * 1e9)
	base := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(whole)-1)
	return base.Add(time.Duration(nanos)), nil
}

// MeanMotionFromLine2 decodes the mean motion columns of line 2.
func MeanMotionFromLine2(line2 string) (float64, error) {
	if len(line2) < 63 {
		return 0, fmt.Errorf("line 2 too short for mean motion: %d columns", len(line2))
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(line2[52:63]), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid mean motion %q: %w", line2[52:63], err)
	}
	return n, nil
}

// VerifyRecord checks one element set's fixed-column layout and propagates it
// from its epoch over one orbital period.
func (v *Verifier) VerifyRecord(rec model.TleRecord) error {
	fail := func(format string, args ...any) error {
		return &VerificationError{CatalogNumber: rec.CatalogNumber, Reason: fmt.Sprintf(format, args...)}
	}

	for i, line := range []string{rec.Line1, rec.Line2} {
		if err := CheckLine(i+1, line); err != nil {
			return fail("%v", err)
		}
	}
	if rec.Line1[2:7] != rec.Line2[2:7] {
		return fail("catalog numbers differ between lines: %q vs %q", rec.Line1[2:7], rec.Line2[2:7])
	}

	epoch, err := EpochFromLine1(rec.Line1)
	if err != nil {
		return fail("%v", err)
	}
	n, err := MeanMotionFromLine2(rec.Line2)
	if err != nil {
		return fail("%v", err)
	}
	if n <= 0 {
		return fail("mean motion %v rev/day is not positive", n)
	}
	period := time.Duration(secondsPerDay / n * float64(time.Second))

	prop, err := NewOrbitalModelFromTLE(rec.Line1, rec.Line2)
	if err != nil {
		return fail("%v", err)
	}

	var sweepErr error
	tc := timectrl.NewTimeController(epoch, v.Step, timectrl.Accelerated)
	tc.AddListener(func(simTime time.Time) {
		if sweepErr != nil {
			return
		}
		r := prop.PositionAt(simTime).Norm()
		switch {
		case !isFinite(r):
			sweepErr = fail("propagation at %s produced a non-finite position", simTime.Format(time.RFC3339))
		case r < v.MinRadiusKm:
			sweepErr = fail("propagated radius %.1f km at %s is below %.1f km", r, simTime.Format(time.RFC3339), v.MinRadiusKm)
		}
	})
	<-tc.Start(period)
	return sweepErr
}

// VerifyBatch verifies every record of batch in order and also checks that
// catalog numbers run 1..N.
func (v *Verifier) VerifyBatch(ctx context.Context, batch *model.Batch) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "tlegen.Verify")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.Int("tlegen.records", batch.Len()))

	if batch.Len() == 0 {
		return ErrEmptyBatch
	}
	for i, rec := range batch.Records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if rec.CatalogNumber != i+1 {
			return &VerificationError{CatalogNumber: rec.CatalogNumber, Reason: fmt.Sprintf("expected catalog number %d at position %d", i+1, i)}
		}
		if err := v.VerifyRecord(rec); err != nil {
			return err
		}
	}
	v.log.Info(ctx, "verified element sets",
		logging.Int("records", batch.Len()),
		logging.Duration("step", v.Step))
	return nil
}
