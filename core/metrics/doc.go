// Package metrics defines the events emitted by compliance runs and the sink
// interfaces that record them. Sinks like the Prometheus and InfluxDB ones in
// infra/metrics implement ReportSink and any of the optional recorder
// interfaces; MultiSink fans events out to several sinks. NewMetricsSink
// builds the configured sinks through the module registry.
package metrics
