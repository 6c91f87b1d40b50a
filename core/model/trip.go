package model

import (
	"fmt"
	"math"
)

// Coordinate is a WGS84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate reports coordinates outside the WGS84 range.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90,90]", c.Lat)
	}
	if math.IsNaN(c.Lon) || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180,180]", c.Lon)
	}
	return nil
}

// TripRequest holds the raw inputs of one render cycle.
type TripRequest struct {
	Pickup         Coordinate `json:"pickup"`
	Dropoff        Coordinate `json:"dropoff"`
	PassengerCount int        `json:"passenger_count"`
	Hour           int        `json:"hour"`
	// DayOfWeek is 0 for Monday through 6 for Sunday.
	DayOfWeek int `json:"day_of_week"`
}

const (
	MinPassengers = 1
	MaxPassengers = 6
)

// DefaultTripRequest returns the values the input form starts with.
func DefaultTripRequest() TripRequest {
	return TripRequest{
		Pickup:         Coordinate{Lat: 40.761432, Lon: -73.979815},
		Dropoff:        Coordinate{Lat: 40.651311, Lon: -73.880333},
		PassengerCount: 1,
		Hour:           14,
		DayOfWeek:      0,
	}
}

// IsWeekend returns true on Saturday and Sunday.
func (r TripRequest) IsWeekend() bool {
	return r.DayOfWeek == 5 || r.DayOfWeek == 6
}

// Validate checks the request against the domains enforced by the input
// collaborators. The prediction pipeline itself does not call it.
func (r TripRequest) Validate() error {
	if err := r.Pickup.Validate(); err != nil {
		return fmt.Errorf("pickup: %w", err)
	}
	if err := r.Dropoff.Validate(); err != nil {
		return fmt.Errorf("dropoff: %w", err)
	}
	if r.PassengerCount < MinPassengers || r.PassengerCount > MaxPassengers {
		return fmt.Errorf("passenger_count %d out of range [%d,%d]", r.PassengerCount, MinPassengers, MaxPassengers)
	}
	if r.Hour < 0 || r.Hour > 23 {
		return fmt.Errorf("hour %d out of range [0,23]", r.Hour)
	}
	if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
		return fmt.Errorf("day_of_week %d out of range [0,6]", r.DayOfWeek)
	}
	return nil
}
