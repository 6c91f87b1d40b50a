package metrics

import "github.com/kilianp07/taxifare/core/events"

// MetricsSink records prediction outcomes for observability purposes.
type MetricsSink interface {
	RecordPrediction(ev events.PredictionEvent) error
}

// RenderRecorder records render cycles.
type RenderRecorder interface {
	RecordRender(ev events.RenderEvent) error
}

// ModelLoadRecorder records the model state reached at startup.
type ModelLoadRecorder interface {
	RecordModelLoad(ev events.ModelLoadEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordPrediction(events.PredictionEvent) error { return nil }
func (NopSink) RecordRender(events.RenderEvent) error         { return nil }
func (NopSink) RecordModelLoad(events.ModelLoadEvent) error   { return nil }
