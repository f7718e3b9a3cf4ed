package core

import (
	"fmt"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// Vec3 is an ECI position in kilometres.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// OrbitalSGP4MotionModel propagates a parsed element set with SGP4/SDP4.
type OrbitalSGP4MotionModel struct {
	sat satellite.Satellite
}

// NewOrbitalModelFromTLE constructs an orbital model from TLE lines. The
// underlying parser slices fixed columns, so both lines must already be
// full width; parser panics are reported as errors.
func NewOrbitalModelFromTLE(line1, line2 string) (m *OrbitalSGP4MotionModel, err error) {
	if len(line1) != LineWidth || len(line2) != LineWidth {
		return nil, fmt.Errorf("element lines must be %d columns, got %d and %d", LineWidth, len(line1), len(line2))
	}
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("parse element set: %v", r)
		}
	}()
	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)
	return &OrbitalSGP4MotionModel{sat: sat}, nil
}

// PositionAt propagates the satellite to t and returns its ECI position.
// go-satellite works in whole seconds and kilometres.
func (m *OrbitalSGP4MotionModel) PositionAt(t time.Time) Vec3 {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	pos, _ := satellite.Propagate(m.sat, year, int(month), day, hour, min, sec)
	return Vec3{X: pos.X, Y: pos.Y, Z: pos.Z}
}
