package core

import (
	"time"

	"github.com/signalsfoundry/tle-generator/model"
)

var testEpoch = time.Date(2021, time.December, 1, 0, 0, 0, 0, time.UTC)

// joinRow builds a row in DefaultSchema layout with 100 km altitude units.
func joinRow(system string, plane, sat int, meanAnomaly, raan, inc, apoMantissa, periMantissa, argp float64) []any {
	row := make([]any, DefaultSchema.Width())
	row[DefaultSchema.Plane] = plane
	row[DefaultSchema.Satellite] = sat
	row[DefaultSchema.MeanAnomaly] = meanAnomaly
	row[DefaultSchema.SystemName] = system
	row[DefaultSchema.RAAN] = raan
	row[DefaultSchema.Inclination] = inc
	row[DefaultSchema.ApoMantissa] = apoMantissa
	row[DefaultSchema.ApoExponent] = 2
	row[DefaultSchema.PeriMantissa] = periMantissa
	row[DefaultSchema.PeriExponent] = 2
	row[DefaultSchema.ArgPerigee] = argp
	return row
}

func circularRow(system string, plane, sat int, meanAnomaly float64) []any {
	return joinRow(system, plane, sat, meanAnomaly, 15, 53, 5, 5, 0)
}

func testInput() model.OrbitalInputRecord {
	return model.OrbitalInputRecord{
		PlaneIndex:           2,
		SatelliteIndex:       5,
		SystemName:           "TestSys",
		PeriAltitudeMantissa: 5,
		PeriAltitudeExponent: 2,
		ApoAltitudeMantissa:  5,
		ApoAltitudeExponent:  2,
		RAANDeg:              15,
		InclinationDeg:       53,
		ArgPerigeeDeg:        0,
		MeanAnomalyDeg:       -30,
	}
}
