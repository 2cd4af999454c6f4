package metrics

import "errors"

// MultiSink fans events out to multiple sinks. Every sink sees the event even
// when an earlier one fails; the errors are joined.
type MultiSink struct {
	Sinks []ReportSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...ReportSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordReport(ev ReportEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordReport(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordPoolSimulation forwards to the sinks that support it.
func (m *MultiSink) RecordPoolSimulation(ev PoolSimulationEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(PoolSimulationRecorder); ok {
			if err := r.RecordPoolSimulation(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecordPrediction forwards to the sinks that support it.
func (m *MultiSink) RecordPrediction(ev PredictionEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(PredictionRecorder); ok {
			if err := r.RecordPrediction(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes the sinks holding connections.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
