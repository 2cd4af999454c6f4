package metrics

import (
	"time"

	"github.com/kilianp07/fleetpool/core/model"
)

// ReportEvent is emitted once per compliance report.
type ReportEvent struct {
	RunID                string
	Time                 time.Time
	FleetAvgIntensity    float64
	TargetIntensity      float64
	TotalVessels         int
	SurplusVessels       int
	DeficitVessels       int
	TotalFinancialImpact float64
	ZeroDistanceJourneys int
	Vessels              []model.VesselSummary
	Pools                []model.PoolOutcome
}

// ReportSink records compliance reports.
type ReportSink interface {
	RecordReport(ev ReportEvent) error
}

// PoolSimulationEvent captures an on-demand pooling simulation.
type PoolSimulationEvent struct {
	Outcome model.PoolOutcome
	Time    time.Time
}

// PoolSimulationRecorder records pooling simulations.
type PoolSimulationRecorder interface {
	RecordPoolSimulation(ev PoolSimulationEvent) error
}

// PredictionEvent summarises a batch of CO2 predictions.
type PredictionEvent struct {
	Requested int
	// Failed counts the rows left without a prediction.
	Failed   int
	Duration time.Duration
	Time     time.Time
}

// PredictionRecorder records prediction batches.
type PredictionRecorder interface {
	RecordPrediction(ev PredictionEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordReport(ReportEvent) error                 { return nil }
func (NopSink) RecordPoolSimulation(PoolSimulationEvent) error { return nil }
func (NopSink) RecordPrediction(PredictionEvent) error         { return nil }
