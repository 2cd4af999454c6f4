package compliance

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetpool/core/metrics"
	"github.com/kilianp07/fleetpool/core/model"
	"github.com/kilianp07/fleetpool/core/prediction"
	"github.com/kilianp07/fleetpool/internal/eventbus"
)

type recordingSink struct {
	reports     []metrics.ReportEvent
	pools       []metrics.PoolSimulationEvent
	predictions []metrics.PredictionEvent
}

func (s *recordingSink) RecordReport(ev metrics.ReportEvent) error {
	s.reports = append(s.reports, ev)
	return nil
}

func (s *recordingSink) RecordPoolSimulation(ev metrics.PoolSimulationEvent) error {
	s.pools = append(s.pools, ev)
	return nil
}

func (s *recordingSink) RecordPrediction(ev metrics.PredictionEvent) error {
	s.predictions = append(s.predictions, ev)
	return nil
}

type warnCounter struct {
	warns int
}

func (w *warnCounter) Debugf(string, ...any)         {}
func (w *warnCounter) Debugw(string, map[string]any) {}
func (w *warnCounter) Infof(string, ...any)          {}
func (w *warnCounter) Infow(string, map[string]any)  {}
func (w *warnCounter) Warnf(string, ...any)          { w.warns++ }
func (w *warnCounter) Warnw(string, map[string]any)  { w.warns++ }
func (w *warnCounter) Errorf(string, ...any)         {}

type failingPredictor struct{}

func (failingPredictor) Predict(prediction.Features) (float64, error) {
	return 0, prediction.ErrUnknownCategory
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReductionFraction = -1
	_, err := NewEngine(cfg)
	assert.ErrorIs(t, err, ErrInvalidReduction)
}

func TestEngine_ReportRecords(t *testing.T) {
	sink := &recordingSink{}
	log := &warnCounter{}

	eng, err := NewEngine(DefaultConfig(), WithSink(sink), WithLogger(log))
	require.NoError(t, err)

	js := append(sampleFleet(), journey("NG006", "Bulk", 10, 0))
	r, err := eng.Report(js)
	require.NoError(t, err)
	assert.Equal(t, 1, r.ZeroDistanceJourneys)
	assert.Equal(t, 1, log.warns)

	require.Len(t, sink.reports, 1)
	ev := sink.reports[0]
	assert.NotEmpty(t, ev.RunID)
	assert.Equal(t, r.TotalVessels, ev.TotalVessels)
	assert.Equal(t, r.TargetIntensity, ev.TargetIntensity)

	r2, err := eng.Report(js)
	require.NoError(t, err)
	assert.Equal(t, r, r2)
	require.Len(t, sink.reports, 2)
	assert.NotEqual(t, sink.reports[0].RunID, sink.reports[1].RunID)
}

func TestEngine_ReportPublishesOnBus(t *testing.T) {
	sink := &recordingSink{}
	bus := eventbus.NewTyped[metrics.ReportEvent]()
	sub := bus.Subscribe()

	eng, err := NewEngine(DefaultConfig(), WithSink(sink), WithBus(bus))
	require.NoError(t, err)

	r, err := eng.Report(sampleFleet())
	require.NoError(t, err)
	assert.Empty(t, sink.reports)

	select {
	case got := <-sub:
		assert.NotEmpty(t, got.RunID)
		assert.Equal(t, r.TotalVessels, got.TotalVessels)
	case <-time.After(time.Second):
		t.Fatal("report event not published")
	}
}

func TestEngine_Vessel(t *testing.T) {
	eng, err := NewEngine(DefaultConfig())
	require.NoError(t, err)

	v, own, err := eng.Vessel(sampleFleet(), "NG005")
	require.NoError(t, err)
	assert.Equal(t, "NG005", v.VesselID)
	require.Len(t, own, 2)
	assert.Equal(t, 90.0, own[0].CO2KG)

	_, _, err = eng.Vessel(sampleFleet(), "NG404")
	assert.True(t, errors.Is(err, ErrVesselNotFound))
}

func TestEngine_SimulatePool(t *testing.T) {
	sink := &recordingSink{}
	eng, err := NewEngine(DefaultConfig(), WithSink(sink))
	require.NoError(t, err)

	out, err := eng.SimulatePool(sampleFleet(), "NG003", "NG001")
	require.NoError(t, err)
	assert.Equal(t, "NG003", out.Vessel1ID)
	assert.Equal(t, model.StatusDeficit, out.Vessel1Status)
	assert.Equal(t, model.StatusSurplus, out.Vessel2Status)
	require.Len(t, sink.pools, 1)

	_, err = eng.SimulatePool(sampleFleet(), "NG003", "NG404")
	assert.ErrorIs(t, err, ErrVesselNotFound)
	_, err = eng.SimulatePool(sampleFleet(), "NG404", "NG001")
	assert.ErrorIs(t, err, ErrVesselNotFound)
}

func TestEngine_OptimalPools(t *testing.T) {
	eng, err := NewEngine(DefaultConfig())
	require.NoError(t, err)

	pools, err := eng.OptimalPools(sampleFleet(), 3, false)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(pools), 3)

	excl, err := eng.OptimalPools(sampleFleet(), 10, true)
	require.NoError(t, err)
	assert.True(t, isExclusive(excl))

	_, err = eng.OptimalPools(nil, 3, false)
	assert.ErrorIs(t, err, ErrEmptyFleet)
}

func TestEngine_Predict(t *testing.T) {
	eng, err := NewEngine(DefaultConfig())
	require.NoError(t, err)
	assert.False(t, eng.PredictionAvailable())
	_, err = eng.Predict([]prediction.Features{{DistanceNM: 10}})
	assert.ErrorIs(t, err, prediction.ErrUnavailable)

	sink := &recordingSink{}
	eng, err = NewEngine(DefaultConfig(),
		WithPredictor(prediction.Mock{KgPerNM: map[string]float64{"Tanker": 2}, Default: 1}),
		WithSink(sink))
	require.NoError(t, err)
	assert.True(t, eng.PredictionAvailable())

	out, err := eng.Predict([]prediction.Features{
		{VesselType: "Tanker", DistanceNM: 100, FuelConsumption: 40},
		{VesselType: "Ferry", DistanceNM: 0},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 200.0, out[0].CO2KG)
	assert.Equal(t, 2000.0, out[0].Intensity)
	assert.Equal(t, 40.0, out[0].FuelConsumption)
	assert.Equal(t, 0.0, out[1].Intensity)
	require.Len(t, sink.predictions, 1)
	assert.Equal(t, 2, sink.predictions[0].Requested)
	assert.Equal(t, 0, sink.predictions[0].Failed)

	eng, err = NewEngine(DefaultConfig(), WithPredictor(failingPredictor{}))
	require.NoError(t, err)
	_, err = eng.Predict([]prediction.Features{{}})
	assert.ErrorIs(t, err, prediction.ErrUnknownCategory)
}

// Compliance does not depend on the predictor.
func TestEngine_ReportWithoutPredictor(t *testing.T) {
	eng, err := NewEngine(DefaultConfig(), WithPredictor(nil))
	require.NoError(t, err)
	_, err = eng.Report(sampleFleet())
	assert.NoError(t, err)
}
