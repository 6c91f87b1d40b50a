package events

import (
	"time"

	"github.com/kilianp07/taxifare/core/features"
	"github.com/kilianp07/taxifare/core/model"
)

// Outcome classifies a prediction attempt.
type Outcome string

const (
	OutcomeOK               Outcome = "ok"
	OutcomeInferenceError   Outcome = "inference_error"
	OutcomeModelUnavailable Outcome = "model_unavailable"
)

// PredictionEvent is published after every explicit predict action.
type PredictionEvent struct {
	ID           string            `json:"id"`
	SessionID    string            `json:"session_id"`
	Request      model.TripRequest `json:"request"`
	Features     features.Record   `json:"features"`
	Fare         float64           `json:"fare"`
	Outcome      Outcome           `json:"outcome"`
	Error        string            `json:"error,omitempty"`
	ModelVersion string            `json:"model_version,omitempty"`
	Latency      time.Duration     `json:"latency"`
	Time         time.Time         `json:"time"`
}

// RenderEvent is published for every render cycle.
type RenderEvent struct {
	SessionID        string
	PredictRequested bool
	HasResult        bool
	DistanceKm       float64
	Time             time.Time
}

// ModelLoadEvent reports the state of the model handle after startup.
type ModelLoadEvent struct {
	Path    string
	Type    string
	Version string
	State   string
	Time    time.Time
}
