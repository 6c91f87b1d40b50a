// Package metrics defines the sink interfaces used to observe fare
// predictions. Sinks such as the Prometheus and InfluxDB implementations in
// infra/metrics are built from configuration through a factory registry;
// NewMetricsSink wraps several configured sinks in a MultiSink. Optional
// recorder interfaces let a sink opt in to render and model load events.
package metrics
