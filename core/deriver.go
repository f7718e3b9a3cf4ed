package core

import (
	"math"

	"github.com/signalsfoundry/tle-generator/model"
)

// Derive computes semi-major axis, eccentricity, period and mean motion for
// one record, and brings its angles into their canonical ranges.
//
// Altitudes are measured from the Earth's surface; they are converted to
// geocentric distances with cfg.EarthRadiusKm before Kepler's third law is
// applied.
func Derive(cfg Config, in model.OrbitalInputRecord) (model.DerivedOrbitalRecord, error) {
	out := model.DerivedOrbitalRecord{OrbitalInputRecord: in}

	for _, a := range []struct {
		field string
		value float64
	}{
		{"raan", in.RAANDeg},
		{"inclination", in.InclinationDeg},
		{"arg_perigee", in.ArgPerigeeDeg},
		{"mean_anomaly", in.MeanAnomalyDeg},
	} {
		if !isFinite(a.value) {
			return out, &InvalidOrbitError{Field: a.field, Value: a.value, Reason: "angle must be finite"}
		}
	}
	if in.InclinationDeg < 0 || in.InclinationDeg > 180 {
		return out, &InvalidOrbitError{Field: "inclination", Value: in.InclinationDeg, Reason: "inclination must lie in [0, 180] degrees"}
	}

	out.PerigeeAltitudeKm = DecodeAltitude(in.PeriAltitudeMantissa, in.PeriAltitudeExponent)
	out.ApogeeAltitudeKm = DecodeAltitude(in.ApoAltitudeMantissa, in.ApoAltitudeExponent)
	out.PerigeeKm = out.PerigeeAltitudeKm + cfg.EarthRadiusKm
	out.ApogeeKm = out.ApogeeAltitudeKm + cfg.EarthRadiusKm

	out.SemiMajorAxisKm = (out.PerigeeKm + out.ApogeeKm) / 2
	if !isFinite(out.SemiMajorAxisKm) || out.SemiMajorAxisKm <= 0 {
		return out, &InvalidOrbitError{Field: "semi_major_axis", Value: out.SemiMajorAxisKm, Reason: "semi-major axis must be positive"}
	}

	out.Eccentricity = out.ApogeeKm/out.SemiMajorAxisKm - 1
	if !isFinite(out.Eccentricity) || out.Eccentricity < 0 || out.Eccentricity >= 1 {
		return out, &InvalidOrbitError{Field: "eccentricity", Value: out.Eccentricity, Reason: "eccentricity must lie in [0, 1)"}
	}

	out.PeriodSeconds = 2 * math.Pi * math.Sqrt(math.Pow(out.SemiMajorAxisKm, 3)/cfg.MuKm3PerS2())
	out.MeanMotionRevPerDay = secondsPerDay / out.PeriodSeconds
	if !isFinite(out.MeanMotionRevPerDay) || out.MeanMotionRevPerDay <= 0 {
		return out, &InvalidOrbitError{Field: "mean_motion", Value: out.MeanMotionRevPerDay, Reason: "mean motion must be positive"}
	}

	var err error
	if out.RAANNormalizedDeg, err = normalizeAngle("raan", in.RAANDeg); err != nil {
		return out, err
	}
	if out.ArgPerigeeNormalizedDeg, err = normalizeAngle("arg_perigee", in.ArgPerigeeDeg); err != nil {
		return out, err
	}
	if out.MeanAnomalyNormalizedDeg, err = normalizeAngle("mean_anomaly", in.MeanAnomalyDeg); err != nil {
		return out, err
	}
	return out, nil
}

// normalizeAngle brings deg into [0, 360) by adding at most one full turn.
// Angles below -360 or at 360 and above are rejected.
func normalizeAngle(field string, deg float64) (float64, error) {
	if deg >= 360 {
		return deg, &InvalidOrbitError{Field: field, Value: deg, Reason: "angle must be below 360 degrees"}
	}
	if deg >= 0 {
		return deg, nil
	}
	if deg < -360 {
		return deg, &InvalidOrbitError{Field: field, Value: deg, Reason: "angle below -360 degrees"}
	}
	deg += 360
	// Tiny negative inputs round up to a full turn.
	if deg >= 360 {
		deg = 0
	}
	return deg, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
