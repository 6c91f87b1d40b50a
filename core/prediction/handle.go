package prediction

import (
	"errors"
	"fmt"

	"github.com/kilianp07/taxifare/core/features"
)

// State is the lifecycle state of a Handle.
type State int

const (
	Uninitialized State = iota
	ModelLoaded
	ModelUnavailable
)

func (s State) String() string {
	switch s {
	case ModelLoaded:
		return "loaded"
	case ModelUnavailable:
		return "unavailable"
	default:
		return "uninitialized"
	}
}

// Handle owns a loaded model for the lifetime of the process. It is immutable
// once built and may be shared across goroutines.
type Handle struct {
	path     string
	state    State
	model    FareModel
	artifact Artifact
	err      error
}

// LoadHandle loads the artifact at path. A missing artifact yields a handle
// in the ModelUnavailable state and a nil error; any other failure (bad
// format, unknown type, schema mismatch) is returned.
func LoadHandle(path string) (*Handle, error) {
	art, err := LoadArtifact(path)
	if err != nil {
		if errors.Is(err, ErrModelNotFound) {
			return &Handle{path: path, state: ModelUnavailable, err: err}, nil
		}
		return nil, err
	}
	m, err := art.Build()
	if err != nil {
		return nil, fmt.Errorf("build model %s: %w", path, err)
	}
	return &Handle{path: path, state: ModelLoaded, model: m, artifact: art}, nil
}

// NewHandle wraps an in-memory model.
func NewHandle(m FareModel, art Artifact) *Handle {
	if m == nil {
		return &Handle{state: ModelUnavailable, artifact: art, err: ErrModelNotFound}
	}
	return &Handle{state: ModelLoaded, model: m, artifact: art}
}

func (h *Handle) State() State { return h.state }

// Err returns the load error of an unavailable handle.
func (h *Handle) Err() error { return h.err }

func (h *Handle) Path() string { return h.path }

// Artifact returns the metadata of the loaded artifact.
func (h *Handle) Artifact() Artifact { return h.artifact }

// Available reports whether predictions can be made.
func (h *Handle) Available() bool { return h != nil && h.state == ModelLoaded }

// Predict runs the model on a single record and returns its fare.
func (h *Handle) Predict(rec features.Record) (float64, error) {
	if !h.Available() {
		if h != nil && h.err != nil {
			return 0, h.err
		}
		return 0, ErrModelNotFound
	}
	out, err := h.model.Predict([]features.Record{rec})
	if err != nil {
		if IsInferenceError(err) {
			return 0, err
		}
		return 0, &InferenceError{Model: h.artifact.Type, Err: err}
	}
	if len(out) == 0 {
		return 0, &InferenceError{Model: h.artifact.Type, Err: errors.New("model returned no prediction")}
	}
	return out[0], nil
}
