package prediction

import (
	"errors"
	"fmt"

	"github.com/kilianp07/taxifare/core/features"
)

// FareModel is a trained regression model. Implementations must be safe for
// concurrent use and must not mutate their state during Predict.
type FareModel interface {
	// Predict returns one fare per input row, in row order.
	Predict(rows []features.Record) ([]float64, error)
}

// ErrModelNotFound is returned when the configured artifact does not exist.
var ErrModelNotFound = errors.New("model artifact not found")

// InferenceError reports that a model rejected its input. It signals a
// broken feature contract rather than a runtime condition and is never
// retried.
type InferenceError struct {
	Model string
	Err   error
}

func (e *InferenceError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("inference: %v", e.Err)
	}
	return fmt.Sprintf("inference (%s): %v", e.Model, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// IsInferenceError reports whether err wraps an InferenceError.
func IsInferenceError(err error) bool {
	var ie *InferenceError
	return errors.As(err, &ie)
}
