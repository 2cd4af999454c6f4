package compliance

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/fleetpool/core/logger"
	"github.com/kilianp07/fleetpool/core/metrics"
	"github.com/kilianp07/fleetpool/core/model"
	"github.com/kilianp07/fleetpool/core/prediction"
	"github.com/kilianp07/fleetpool/internal/eventbus"
)

// Engine runs the compliance pipeline with its collaborators: an optional CO2
// predictor, a logger, a report sink and an event bus. It holds no journey
// state; every call works on the snapshot it is given.
type Engine struct {
	cfg       Config
	predictor prediction.Predictor
	log       logger.Logger
	sink      metrics.ReportSink
	bus       *eventbus.TypedBus[metrics.ReportEvent]
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithPredictor injects the CO2 predictor.
func WithPredictor(p prediction.Predictor) Option {
	return func(e *Engine) {
		if p != nil {
			e.predictor = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithSink records pool simulations and prediction batches, and every report
// when no bus is set.
func WithSink(s metrics.ReportSink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sink = s
		}
	}
}

// WithBus publishes every report event on bus instead of recording it on the
// sink. A collector subscribed to the bus records it asynchronously.
func WithBus(bus *eventbus.TypedBus[metrics.ReportEvent]) Option {
	return func(e *Engine) { e.bus = bus }
}

// NewEngine validates cfg and builds an Engine. Without options the engine
// has no predictor and discards logs and metrics.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:       cfg,
		predictor: prediction.Unavailable{},
		log:       logger.Nop{},
		sink:      metrics.NopSink{},
		now:       time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Report builds the compliance report of the journeys, logs degenerate
// input, then records and publishes the run.
func (e *Engine) Report(journeys []model.Journey) (Report, error) {
	r, err := BuildReport(journeys, e.cfg)
	if err != nil {
		return Report{}, err
	}
	e.warnDegenerate(r.Vessels, r.SkippedPairs)

	ev := metrics.ReportEvent{
		RunID:                uuid.NewString(),
		Time:                 e.now(),
		FleetAvgIntensity:    r.FleetAvgIntensity,
		TargetIntensity:      r.TargetIntensity,
		TotalVessels:         r.TotalVessels,
		SurplusVessels:       r.SurplusVessels,
		DeficitVessels:       r.DeficitVessels,
		TotalFinancialImpact: r.TotalFinancialImpact,
		ZeroDistanceJourneys: r.ZeroDistanceJourneys,
		Vessels:              r.Vessels,
		Pools:                r.OptimalPools,
	}
	if e.bus != nil {
		e.bus.Publish(ev)
	} else if err := e.sink.RecordReport(ev); err != nil {
		e.log.Errorf("record report %s: %v", ev.RunID, err)
	}
	e.log.Infow("compliance report", map[string]any{
		"run_id":        ev.RunID,
		"vessels":       r.TotalVessels,
		"surplus":       r.SurplusVessels,
		"deficit":       r.DeficitVessels,
		"target":        r.TargetIntensity,
		"total_impact":  r.TotalFinancialImpact,
		"optimal_pools": len(r.OptimalPools),
	})
	return r, nil
}

// Fleet aggregates and classifies the journeys.
func (e *Engine) Fleet(journeys []model.Journey) (Fleet, error) {
	fleet, err := Evaluate(journeys, e.cfg)
	if err != nil {
		return Fleet{}, err
	}
	e.warnDegenerate(fleet.Vessels, nil)
	return fleet, nil
}

// Vessel returns the summary of one vessel together with its journeys in
// input order.
func (e *Engine) Vessel(journeys []model.Journey, id string) (model.VesselSummary, []model.Journey, error) {
	fleet, err := e.Fleet(journeys)
	if err != nil {
		return model.VesselSummary{}, nil, err
	}
	v, err := fleet.Find(id)
	if err != nil {
		return model.VesselSummary{}, nil, err
	}
	var own []model.Journey
	for _, j := range journeys {
		if j.VesselID == id {
			own = append(own, j)
		}
	}
	return v, own, nil
}

// SimulatePool pools two vessels of the fleet by id. Either vessel may be
// in surplus or deficit.
func (e *Engine) SimulatePool(journeys []model.Journey, id1, id2 string) (model.PoolOutcome, error) {
	fleet, err := e.Fleet(journeys)
	if err != nil {
		return model.PoolOutcome{}, err
	}
	a, err := fleet.Find(id1)
	if err != nil {
		return model.PoolOutcome{}, err
	}
	b, err := fleet.Find(id2)
	if err != nil {
		return model.PoolOutcome{}, err
	}
	out, err := SimulatePool(a, b, e.cfg.PenaltyRatePerTon)
	if err != nil {
		return model.PoolOutcome{}, err
	}
	if r, ok := e.sink.(metrics.PoolSimulationRecorder); ok {
		if err := r.RecordPoolSimulation(metrics.PoolSimulationEvent{Outcome: out, Time: e.now()}); err != nil {
			e.log.Errorf("record pool simulation: %v", err)
		}
	}
	return out, nil
}

// OptimalPools ranks the deficit × surplus pairs of the fleet. With exclusive
// set, each vessel appears in at most one returned pool.
func (e *Engine) OptimalPools(journeys []model.Journey, maxResults int, exclusive bool) ([]model.PoolOutcome, error) {
	fleet, err := e.Fleet(journeys)
	if err != nil {
		return nil, err
	}
	pools, skipped, err := searchPools(fleet.Vessels, PoolOptions{
		PenaltyRate: e.cfg.PenaltyRatePerTon,
		Workers:     e.cfg.Workers,
		MinSavings:  e.cfg.MinSavings,
	})
	if err != nil {
		return nil, err
	}
	e.warnDegenerate(nil, skipped)
	if exclusive {
		pools = ExclusivePools(pools)
	}
	return truncate(pools, maxResults), nil
}

// Prediction is the estimate for one journey.
type Prediction struct {
	CO2KG           float64 `json:"co2_emissions"`
	Intensity       float64 `json:"ghg_intensity"`
	DistanceNM      float64 `json:"distance"`
	FuelConsumption float64 `json:"fuel_consumption"`
}

// PredictionAvailable reports whether a predictor is configured.
func (e *Engine) PredictionAvailable() bool {
	_, none := e.predictor.(prediction.Unavailable)
	return !none
}

// Predict estimates the CO2 of each feature row and derives its intensity.
// It fails on the first row the predictor rejects.
func (e *Engine) Predict(rows []prediction.Features) ([]Prediction, error) {
	if !e.PredictionAvailable() {
		return nil, prediction.ErrUnavailable
	}
	start := e.now()
	out := make([]Prediction, 0, len(rows))
	var failErr error
	for i, f := range rows {
		co2, err := e.predictor.Predict(f)
		if err != nil {
			if errors.Is(err, prediction.ErrUnavailable) {
				failErr = err
			} else {
				failErr = fmt.Errorf("row %d: %w", i, err)
			}
			break
		}
		out = append(out, Prediction{
			CO2KG:           co2,
			Intensity:       Intensity(co2, f.DistanceNM, 1),
			DistanceNM:      f.DistanceNM,
			FuelConsumption: f.FuelConsumption,
		})
	}
	if r, ok := e.sink.(metrics.PredictionRecorder); ok {
		ev := metrics.PredictionEvent{
			Requested: len(rows),
			Failed:    len(rows) - len(out),
			Duration:  e.now().Sub(start),
			Time:      e.now(),
		}
		if err := r.RecordPrediction(ev); err != nil {
			e.log.Errorf("record prediction: %v", err)
		}
	}
	if failErr != nil {
		return nil, failErr
	}
	return out, nil
}

func (e *Engine) warnDegenerate(vessels []model.VesselSummary, skipped []SkippedPair) {
	for _, v := range vessels {
		if v.ZeroDistanceJourneys > 0 {
			e.log.Warnw("zero-distance journeys scored as zero intensity", map[string]any{
				"vessel":   v.VesselID,
				"journeys": v.ZeroDistanceJourneys,
			})
		}
	}
	for _, s := range skipped {
		e.log.Warnw("pool skipped: no combined distance", map[string]any{
			"deficit": s.DeficitID,
			"surplus": s.SurplusID,
		})
	}
}
