package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/taxifare/core/events"
	coremetrics "github.com/kilianp07/taxifare/core/metrics"
)

// DefaultNamespace prefixes every metric registered by PromSink.
const DefaultNamespace = "taxifare"

// PromSink records fare predictions in Prometheus metrics.
type PromSink struct {
	predictions *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	fares       prometheus.Histogram
	distance    prometheus.Histogram
	renders     *prometheus.CounterVec
	modelState  *prometheus.GaugeVec
}

// NewPromSink registers fare metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(DefaultNamespace, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered under the same name are reused.
func NewPromSinkWithRegistry(namespace string, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Total number of explicit fare predictions by outcome",
		}, []string{"outcome", "model_version"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_latency_seconds",
			Help:      "Time spent in model inference",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		}, []string{"outcome"}),
		fares: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fare_estimate_dollars",
			Help:      "Distribution of estimated fares",
			Buckets:   []float64{5, 10, 15, 20, 30, 40, 60, 80, 100, 150},
		}),
		distance: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "trip_distance_km",
			Help:      "Geodesic distance of predicted trips",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 50, 100},
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Total number of render cycles",
		}, []string{"predict"}),
		modelState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_loaded",
			Help:      "1 when the fare model is loaded, 0 when unavailable",
		}, []string{"type", "version"}),
	}
	var err error
	if s.predictions, err = register(reg, s.predictions); err != nil {
		return nil, err
	}
	if s.latency, err = register(reg, s.latency); err != nil {
		return nil, err
	}
	if s.fares, err = register(reg, s.fares); err != nil {
		return nil, err
	}
	if s.distance, err = register(reg, s.distance); err != nil {
		return nil, err
	}
	if s.renders, err = register(reg, s.renders); err != nil {
		return nil, err
	}
	if s.modelState, err = register(reg, s.modelState); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPrediction counts the prediction and observes its latency. Fare
// and distance are only observed for successful predictions.
func (s *PromSink) RecordPrediction(ev events.PredictionEvent) error {
	s.predictions.WithLabelValues(string(ev.Outcome), ev.ModelVersion).Inc()
	s.latency.WithLabelValues(string(ev.Outcome)).Observe(ev.Latency.Seconds())
	if ev.Outcome == events.OutcomeOK {
		s.fares.Observe(ev.Fare)
		s.distance.Observe(ev.Features.DistanceKm)
	}
	return nil
}

// RecordRender counts a render cycle.
func (s *PromSink) RecordRender(ev events.RenderEvent) error {
	s.renders.WithLabelValues(strconv.FormatBool(ev.PredictRequested)).Inc()
	return nil
}

// RecordModelLoad sets the model gauge.
func (s *PromSink) RecordModelLoad(ev events.ModelLoadEvent) error {
	v := 0.0
	if ev.State == "loaded" {
		v = 1
	}
	s.modelState.WithLabelValues(ev.Type, ev.Version).Set(v)
	return nil
}

var (
	_ coremetrics.MetricsSink       = (*PromSink)(nil)
	_ coremetrics.RenderRecorder    = (*PromSink)(nil)
	_ coremetrics.ModelLoadRecorder = (*PromSink)(nil)
)
