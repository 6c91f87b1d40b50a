package metrics

import (
	"errors"

	"github.com/kilianp07/taxifare/core/events"
)

// MultiSink fans out events to multiple sinks. Every sink receives the
// event even if an earlier one fails; the errors are joined.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPrediction forwards the event to all sinks.
func (m *MultiSink) RecordPrediction(ev events.PredictionEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordPrediction(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordRender forwards render events to sinks that support them.
func (m *MultiSink) RecordRender(ev events.RenderEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(RenderRecorder); ok {
			if err := r.RecordRender(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecordModelLoad forwards model load events to sinks that support them.
func (m *MultiSink) RecordModelLoad(ev events.ModelLoadEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(ModelLoadRecorder); ok {
			if err := r.RecordModelLoad(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that holds a client.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
