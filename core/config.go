package core

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Physical defaults. The gravitational parameter is G·M_earth in SI units,
// converted to km³/s² by Config.MuKm3PerS2.
const (
	DefaultGravitationalConstant = 6.67430e-11 // m³ kg⁻¹ s⁻²
	DefaultEarthMassKg           = 5.972e24
	DefaultEarthRadiusKm         = 6378.137 // WGS-84 equatorial radius

	secondsPerDay = 86400.0
)

// Config is the immutable run-level configuration shared by every record of
// a batch. Batches with different configs can run concurrently.
type Config struct {
	// Epoch applied to every element set in the batch.
	Epoch time.Time

	GravitationalConstant float64
	EarthMassKg           float64
	EarthRadiusKm         float64

	// Synthetic international designator; the source data carries no launch
	// information, so the launch year follows the epoch year.
	LaunchNumber int
	LaunchPiece  string

	ElementSetNumber int
	RevolutionNumber int

	// SpareSlotsPerPlane is carried through configuration but not applied to
	// catalog numbering.
	SpareSlotsPerPlane int
}

// DefaultConfig returns the configuration used by the command line tool for
// the given epoch.
func DefaultConfig(epoch time.Time) Config {
	return Config{
		Epoch:                 epoch.UTC(),
		GravitationalConstant: DefaultGravitationalConstant,
		EarthMassKg:           DefaultEarthMassKg,
		EarthRadiusKm:         DefaultEarthRadiusKm,
		LaunchNumber:          1,
		LaunchPiece:           "A",
		ElementSetNumber:      1,
		RevolutionNumber:      1,
	}
}

// MuKm3PerS2 returns the Earth's gravitational parameter in km³/s².
func (c Config) MuKm3PerS2() float64 {
	return c.GravitationalConstant * c.EarthMassKg / 1e9
}

// EpochYearTwoDigit returns the last two digits of the epoch year.
func (c Config) EpochYearTwoDigit() int {
	return c.Epoch.UTC().Year() % 100
}

// EpochDay returns the epoch as a fractional day of year, where 00:00 UTC on
// January 1st is day 1.0.
func (c Config) EpochDay() float64 {
	t := c.Epoch.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return float64(t.YearDay()) + t.Sub(midnight).Seconds()/secondsPerDay
}

// Validate checks that the configuration can produce well-formed lines.
func (c Config) Validate() error {
	if c.Epoch.IsZero() {
		return fmt.Errorf("config: epoch is required")
	}
	if c.Epoch.UTC().Year() < 1957 {
		return fmt.Errorf("config: epoch year %d predates the TLE format", c.Epoch.UTC().Year())
	}
	mu := c.MuKm3PerS2()
	if mu <= 0 || math.IsNaN(mu) || math.IsInf(mu, 0) {
		return fmt.Errorf("config: gravitational parameter must be positive, got %v", mu)
	}
	if c.EarthRadiusKm < 0 || math.IsNaN(c.EarthRadiusKm) || math.IsInf(c.EarthRadiusKm, 0) {
		return fmt.Errorf("config: earth radius must be non-negative, got %v", c.EarthRadiusKm)
	}
	piece := strings.TrimSpace(c.LaunchPiece)
	if len(piece) < 1 || len(piece) > 3 {
		return fmt.Errorf("config: launch piece must be 1-3 characters, got %q", c.LaunchPiece)
	}
	if c.SpareSlotsPerPlane < 0 {
		return fmt.Errorf("config: spare slots per plane must be non-negative, got %d", c.SpareSlotsPerPlane)
	}
	return nil
}
