// Package display builds the user-visible outputs of a render cycle: the
// trip map description and the fare and model messages.
package display

import (
	"fmt"

	"github.com/kilianp07/taxifare/core/model"
)

// DefaultZoom is the initial map zoom level.
const DefaultZoom = 12

// Marker is a labelled point on the map.
type Marker struct {
	Position model.Coordinate `json:"position"`
	Label    string           `json:"label"`
	Color    string           `json:"color"`
}

// Polyline joins the pickup and dropoff points.
type Polyline struct {
	Points []model.Coordinate `json:"points"`
	Color  string             `json:"color"`
	Weight int                `json:"weight"`
}

// MapView describes the trip map. Tile rendering is left to the client.
type MapView struct {
	Center  model.Coordinate `json:"center"`
	Zoom    int              `json:"zoom"`
	Markers []Marker         `json:"markers"`
	Line    Polyline         `json:"line"`
}

// NewMapView centres the map on pickup and draws a straight line to dropoff.
func NewMapView(pickup, dropoff model.Coordinate) MapView {
	return MapView{
		Center: pickup,
		Zoom:   DefaultZoom,
		Markers: []Marker{
			{Position: pickup, Label: "Pickup", Color: "green"},
			{Position: dropoff, Label: "Dropoff", Color: "red"},
		},
		Line: Polyline{
			Points: []model.Coordinate{pickup, dropoff},
			Color:  "blue",
			Weight: 2,
		},
	}
}

// FareText formats the cached fare. It returns an empty string until a
// prediction has been cached.
func FareText(lastFare *float64) string {
	if lastFare == nil {
		return ""
	}
	return fmt.Sprintf("Estimated Fare: $%.2f", *lastFare)
}

// ModelMissingText is shown instead of a fare when the artifact is absent.
func ModelMissingText(path string) string {
	return fmt.Sprintf("Model file '%s' not found. Please make sure it's in the app folder.", path)
}
