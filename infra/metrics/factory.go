package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/fleetpool/core/factory"
	coremetrics "github.com/kilianp07/fleetpool/core/metrics"
)

// init registers the built-in report sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.ReportSink, error) {
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.ReportSink, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c), nil
	})
}
