package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/taxifare/core/factory"
	coremetrics "github.com/kilianp07/taxifare/core/metrics"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("prometheus", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			Namespace string `json:"namespace"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Namespace == "" {
			c.Namespace = DefaultNamespace
		}
		// The /metrics endpoint is started by the service from metrics.prometheus_port.
		return NewPromSinkWithRegistry(c.Namespace, prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c), nil
	})
}
