package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/signalsfoundry/tle-generator/model"
)

// Schema fixes the positional column layout of the source table. Positions
// are resolved once for the whole table; rows are never inspected to infer
// their layout.
type Schema struct {
	Plane        int
	Satellite    int
	MeanAnomaly  int
	SystemName   int
	RAAN         int
	Inclination  int
	ApoMantissa  int
	ApoExponent  int
	PeriMantissa int
	PeriExponent int
	ArgPerigee   int
}

// DefaultSchema is the layout of the orbit⋈phase join: the phase columns come
// first, followed by the orbit columns.
var DefaultSchema = Schema{
	Plane:        1,
	Satellite:    2,
	MeanAnomaly:  3,
	SystemName:   5,
	RAAN:         10,
	Inclination:  11,
	ApoMantissa:  15,
	ApoExponent:  16,
	PeriMantissa: 17,
	PeriExponent: 18,
	ArgPerigee:   19,
}

// Width returns the minimum number of columns a row must have.
func (s Schema) Width() int {
	widest := 0
	for _, idx := range []int{
		s.Plane, s.Satellite, s.MeanAnomaly, s.SystemName, s.RAAN, s.Inclination,
		s.ApoMantissa, s.ApoExponent, s.PeriMantissa, s.PeriExponent, s.ArgPerigee,
	} {
		if idx > widest {
			widest = idx
		}
	}
	return widest + 1
}

// columnReader extracts typed values from one row, recording the first
// failure as a MalformedRowError.
type columnReader struct {
	columns []string
	row     []any
	index   int
	err     error
}

func (r *columnReader) name(idx int, field string) string {
	if idx >= 0 && idx < len(r.columns) && r.columns[idx] != "" {
		return r.columns[idx]
	}
	return field
}

func (r *columnReader) fail(idx int, field string, value any, reason string) {
	if r.err != nil {
		return
	}
	r.err = &MalformedRowError{Row: r.index, Column: r.name(idx, field), Value: value, Reason: reason}
}

func (r *columnReader) raw(idx int, field string) (any, bool) {
	if idx < 0 || idx >= len(r.row) {
		r.fail(idx, field, nil, fmt.Sprintf("required column %d is absent (row has %d columns)", idx, len(r.row)))
		return nil, false
	}
	v := r.row[idx]
	if v == nil {
		r.fail(idx, field, nil, "required column is NULL")
		return nil, false
	}
	return v, true
}

func (r *columnReader) floatAt(idx int, field string) float64 {
	v, ok := r.raw(idx, field)
	if !ok {
		return 0
	}
	f, err := toFloat(v)
	if err != nil {
		r.fail(idx, field, v, err.Error())
		return 0
	}
	return f
}

func (r *columnReader) intAt(idx int, field string) int {
	f := r.floatAt(idx, field)
	if r.err != nil {
		return 0
	}
	if f != math.Trunc(f) {
		r.fail(idx, field, f, "expected an integer")
		return 0
	}
	// float64(math.MaxInt) rounds up to 2^63, which int cannot hold.
	if f < math.MinInt || f >= math.MaxInt {
		r.fail(idx, field, f, "integer out of range")
		return 0
	}
	return int(f)
}

func (r *columnReader) stringAt(idx int, field string) string {
	v, ok := r.raw(idx, field)
	if !ok {
		return ""
	}
	s := strings.TrimSpace(toString(v))
	if s == "" {
		r.fail(idx, field, v, "required column is empty")
	}
	return s
}

// NormalizeRow converts one untyped source row into an OrbitalInputRecord.
// columns may be nil; it is only used to name the offending column in errors.
func NormalizeRow(schema Schema, columns []string, row []any, index int) (model.OrbitalInputRecord, error) {
	r := &columnReader{columns: columns, row: row, index: index}

	if len(row) < schema.Width() {
		return model.OrbitalInputRecord{}, &MalformedRowError{
			Row:    index,
			Reason: fmt.Sprintf("row has %d columns, schema requires %d", len(row), schema.Width()),
		}
	}

	rec := model.OrbitalInputRecord{
		PlaneIndex:           r.intAt(schema.Plane, "plane"),
		SatelliteIndex:       r.intAt(schema.Satellite, "satellite"),
		SystemName:           r.stringAt(schema.SystemName, "system_name"),
		PeriAltitudeMantissa: r.floatAt(schema.PeriMantissa, "perigee_mantissa"),
		PeriAltitudeExponent: r.floatAt(schema.PeriExponent, "perigee_exponent"),
		ApoAltitudeMantissa:  r.floatAt(schema.ApoMantissa, "apogee_mantissa"),
		ApoAltitudeExponent:  r.floatAt(schema.ApoExponent, "apogee_exponent"),
		RAANDeg:              r.floatAt(schema.RAAN, "raan"),
		InclinationDeg:       r.floatAt(schema.Inclination, "inclination"),
		ArgPerigeeDeg:        r.floatAt(schema.ArgPerigee, "arg_perigee"),
		MeanAnomalyDeg:       r.floatAt(schema.MeanAnomaly, "mean_anomaly"),
	}
	if r.err != nil {
		return model.OrbitalInputRecord{}, r.err
	}

	peri := DecodeAltitude(rec.PeriAltitudeMantissa, rec.PeriAltitudeExponent)
	apo := DecodeAltitude(rec.ApoAltitudeMantissa, rec.ApoAltitudeExponent)
	switch {
	case math.IsNaN(peri) || math.IsInf(peri, 0) || peri < 0:
		r.fail(schema.PeriMantissa, "perigee_mantissa", peri, "perigee altitude must be a non-negative finite distance")
	case math.IsNaN(apo) || math.IsInf(apo, 0) || apo < 0:
		r.fail(schema.ApoMantissa, "apogee_mantissa", apo, "apogee altitude must be a non-negative finite distance")
	case apo < peri:
		r.fail(schema.ApoMantissa, "apogee_mantissa", apo, fmt.Sprintf("apogee altitude %v km is below perigee altitude %v km", apo, peri))
	}
	if r.err != nil {
		return model.OrbitalInputRecord{}, r.err
	}
	return rec, nil
}

// DecodeAltitude returns mantissa × 10^exponent.
func DecodeAltitude(mantissa, exponent float64) float64 {
	return mantissa * math.Pow(10, exponent)
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int8:
		return float64(t), nil
	case int16:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint8:
		return float64(t), nil
	case uint16:
		return float64(t), nil
	case uint32:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return parseNumber(string(t))
	case string:
		return parseNumber(t)
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("required column is empty")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return f, nil
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
