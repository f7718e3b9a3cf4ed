package model

import "time"

// Table is a materialized tabular result: parallel column names plus rows of
// untyped values, as produced by a CSV file or a database query.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// OrbitalInputRecord is one satellite row after normalization.
// Altitudes are encoded as mantissa × 10^exponent kilometres.
type OrbitalInputRecord struct {
	PlaneIndex     int
	SatelliteIndex int
	SystemName     string

	PeriAltitudeMantissa float64
	PeriAltitudeExponent float64
	ApoAltitudeMantissa  float64
	ApoAltitudeExponent  float64

	RAANDeg        float64
	InclinationDeg float64
	ArgPerigeeDeg  float64
	MeanAnomalyDeg float64
}

// DerivedOrbitalRecord carries the Keplerian quantities computed from an
// OrbitalInputRecord. It is never mutated once produced.
type DerivedOrbitalRecord struct {
	OrbitalInputRecord

	PerigeeAltitudeKm float64
	ApogeeAltitudeKm  float64

	// Geocentric distances (altitude plus Earth radius).
	PerigeeKm float64
	ApogeeKm  float64

	SemiMajorAxisKm     float64
	Eccentricity        float64
	PeriodSeconds       float64
	MeanMotionRevPerDay float64

	RAANNormalizedDeg        float64
	ArgPerigeeNormalizedDeg  float64
	MeanAnomalyNormalizedDeg float64
}

// TleRecord is a single fully assembled element set.
type TleRecord struct {
	CatalogNumber      int
	EpochYearTwoDigit  int
	EpochDayFractional float64

	TitleLine string
	Line1     string
	Line2     string
}

// Batch is the ordered output of one generation run.
type Batch struct {
	SystemName string
	Epoch      time.Time
	Records    []TleRecord
}

// Len returns the number of records in the batch.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Records)
}
