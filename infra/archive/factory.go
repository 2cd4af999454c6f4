package archive

import (
	"github.com/kilianp07/fleetpool/core/factory"
	coremetrics "github.com/kilianp07/fleetpool/core/metrics"
)

func init() {
	_ = coremetrics.RegisterMetricsSink("archive", func(conf map[string]any) (coremetrics.ReportSink, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return Open(c)
	})
}
