package metrics

import "github.com/kilianp07/fleetpool/core/factory"

var sinkRegistry = factory.NewRegistry[ReportSink]()

func init() {
	sinkRegistry.MustRegister("nop", func(map[string]any) (ReportSink, error) { return NopSink{}, nil })
}

// RegisterMetricsSink adds a sink factory identified by name.
func RegisterMetricsSink(name string, f factory.Factory[ReportSink]) error {
	return sinkRegistry.Register(name, f)
}

// NewMetricsSink creates a ReportSink from the provided configuration.
func NewMetricsSink(cfgs []factory.ModuleConfig) (ReportSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]ReportSink, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			return nil, err
		}
		sinks[i] = s
	}
	return NewMultiSink(sinks...), nil
}
