package model

import "testing"

func TestTripRequest_IsWeekend(t *testing.T) {
	for day := 0; day <= 6; day++ {
		r := TripRequest{DayOfWeek: day}
		want := day == 5 || day == 6
		if r.IsWeekend() != want {
			t.Fatalf("day %d: expected weekend=%v", day, want)
		}
	}
}

func TestTripRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TripRequest)
		wantErr bool
	}{
		{"defaults", func(*TripRequest) {}, false},
		{"six passengers", func(r *TripRequest) { r.PassengerCount = 6 }, false},
		{"no passengers", func(r *TripRequest) { r.PassengerCount = 0 }, true},
		{"seven passengers", func(r *TripRequest) { r.PassengerCount = 7 }, true},
		{"hour 23", func(r *TripRequest) { r.Hour = 23 }, false},
		{"hour 24", func(r *TripRequest) { r.Hour = 24 }, true},
		{"negative day", func(r *TripRequest) { r.DayOfWeek = -1 }, true},
		{"day 7", func(r *TripRequest) { r.DayOfWeek = 7 }, true},
		{"pickup latitude", func(r *TripRequest) { r.Pickup.Lat = 91 }, true},
		{"dropoff longitude", func(r *TripRequest) { r.Dropoff.Lon = -181 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultTripRequest()
			tt.mutate(&r)
			err := r.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
