package features

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/taxifare/core/model"
)

func TestNames_Pinned(t *testing.T) {
	// Models are trained against this exact order.
	want := []string{"passenger_count", "hour", "day_of_week", "is_weekend", "distance_km"}
	assert.Equal(t, want, Names[:])
	assert.Equal(t, 5, Width)
}

func TestBuild_Weekday(t *testing.T) {
	req := model.TripRequest{PassengerCount: 1, Hour: 14, DayOfWeek: 2}
	rec := Build(req, 13.0)
	assert.Equal(t, Record{PassengerCount: 1, Hour: 14, DayOfWeek: 2, IsWeekend: false, DistanceKm: 13.0}, rec)
	assert.Equal(t, []float64{1, 14, 2, 0, 13.0}, rec.Values())
}

func TestBuild_Sunday(t *testing.T) {
	rec := Build(model.TripRequest{PassengerCount: 3, Hour: 2, DayOfWeek: 6}, 4.2)
	assert.True(t, rec.IsWeekend)
	assert.Equal(t, 1.0, rec.Values()[3])
}

func TestBuild_WeekendDerivation(t *testing.T) {
	for day := 0; day <= 6; day++ {
		rec := Build(model.TripRequest{PassengerCount: 1, DayOfWeek: day}, 1)
		assert.Equal(t, day >= 5, rec.IsWeekend, "day %d", day)
	}
}

func TestRecord_MarshalJSONOrder(t *testing.T) {
	rec := Record{PassengerCount: 1, Hour: 14, DayOfWeek: 2, DistanceKm: 13}
	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"passenger_count":1,"hour":14,"day_of_week":2,"is_weekend":false,"distance_km":13}`, string(b))

	var back Record
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, rec, back)
}

func TestRecord_SchemaStableAcrossInputs(t *testing.T) {
	for passengers := 1; passengers <= 6; passengers++ {
		for hour := 0; hour < 24; hour += 7 {
			for day := 0; day <= 6; day++ {
				rec := Build(model.TripRequest{PassengerCount: passengers, Hour: hour, DayOfWeek: day}, float64(hour)/3)
				m := rec.Map()
				vals := rec.Values()
				require.Len(t, vals, Width)
				require.Len(t, m, Width)
				for i, name := range Names {
					require.Equal(t, vals[i], m[name])
				}
			}
		}
	}
}

func TestValidateSchema(t *testing.T) {
	require.NoError(t, ValidateSchema(Names[:]))

	swapped := []string{"hour", "passenger_count", "day_of_week", "is_weekend", "distance_km"}
	err := ValidateSchema(swapped)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))

	err = ValidateSchema([]string{"passenger_count", "hour"})
	assert.True(t, errors.Is(err, ErrSchemaMismatch))

	renamed := []string{"passenger_count", "hour", "day_of_week", "weekend", "distance_km"}
	assert.ErrorIs(t, ValidateSchema(renamed), ErrSchemaMismatch)
}
