// Package features turns a trip request into the fixed-schema record
// consumed by fare models.
//
// The schema is positional: models are trained against the exact column
// names and order listed in Names. Reordering or renaming a column does not
// fail at inference time, it silently produces wrong fares.
package features

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/kilianp07/taxifare/core/model"
)

// Column names of the feature schema, in model order.
const (
	PassengerCount = "passenger_count"
	Hour           = "hour"
	DayOfWeek      = "day_of_week"
	IsWeekend      = "is_weekend"
	DistanceKm     = "distance_km"
)

// Names lists the schema columns in model order.
var Names = [...]string{PassengerCount, Hour, DayOfWeek, IsWeekend, DistanceKm}

// Width is the number of columns in the schema.
const Width = len(Names)

// ErrSchemaMismatch is returned when a model declares input columns that do
// not match Names.
var ErrSchemaMismatch = errors.New("feature schema mismatch")

// Record is one model input row.
type Record struct {
	PassengerCount int
	Hour           int
	DayOfWeek      int
	IsWeekend      bool
	DistanceKm     float64
}

// Build maps a trip request and its geodesic distance to a Record.
func Build(req model.TripRequest, distanceKm float64) Record {
	return Record{
		PassengerCount: req.PassengerCount,
		Hour:           req.Hour,
		DayOfWeek:      req.DayOfWeek,
		IsWeekend:      req.IsWeekend(),
		DistanceKm:     distanceKm,
	}
}

// Values returns the record as a numeric vector ordered like Names.
// IsWeekend is encoded as 0 or 1.
func (r Record) Values() []float64 {
	weekend := 0.0
	if r.IsWeekend {
		weekend = 1
	}
	return []float64{
		float64(r.PassengerCount),
		float64(r.Hour),
		float64(r.DayOfWeek),
		weekend,
		r.DistanceKm,
	}
}

// Map returns the record keyed by column name.
func (r Record) Map() map[string]float64 {
	vals := r.Values()
	out := make(map[string]float64, Width)
	for i, name := range Names {
		out[name] = vals[i]
	}
	return out
}

// MarshalJSON emits the columns in schema order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	fields := []struct {
		name string
		val  string
	}{
		{PassengerCount, strconv.Itoa(r.PassengerCount)},
		{Hour, strconv.Itoa(r.Hour)},
		{DayOfWeek, strconv.Itoa(r.DayOfWeek)},
		{IsWeekend, strconv.FormatBool(r.IsWeekend)},
		{DistanceKm, strconv.FormatFloat(r.DistanceKm, 'f', -1, 64)},
	}
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:%s", f.name, f.val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a record written by MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		PassengerCount int     `json:"passenger_count"`
		Hour           int     `json:"hour"`
		DayOfWeek      int     `json:"day_of_week"`
		IsWeekend      bool    `json:"is_weekend"`
		DistanceKm     float64 `json:"distance_km"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Record(raw)
	return nil
}

// ValidateSchema checks that names matches the schema exactly, including order.
func ValidateSchema(names []string) error {
	if len(names) != Width {
		return fmt.Errorf("%w: expected %d columns %v, got %d %v", ErrSchemaMismatch, Width, Names, len(names), names)
	}
	for i, n := range names {
		if n != Names[i] {
			return fmt.Errorf("%w: column %d is %q, expected %q", ErrSchemaMismatch, i, n, Names[i])
		}
	}
	return nil
}
