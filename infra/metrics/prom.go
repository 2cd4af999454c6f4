package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/fleetpool/core/metrics"
)

// PromSink exposes the latest compliance report as Prometheus gauges and
// counts pool simulations and prediction batches.
type PromSink struct {
	reports     prometheus.Counter
	avg         prometheus.Gauge
	target      prometheus.Gauge
	impact      prometheus.Gauge
	vessels     *prometheus.GaugeVec
	intensity   *prometheus.GaugeVec
	balance     *prometheus.GaugeVec
	savings     prometheus.Histogram
	simulations *prometheus.CounterVec
	predictions *prometheus.CounterVec
	predictLat  prometheus.Histogram
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Metrics that
// are already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.reports, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fleet_compliance_reports_total",
		Help: "Number of compliance reports built",
	})); err != nil {
		return nil, err
	}
	if s.avg, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_avg_intensity_grams_per_nm",
		Help: "Fleet mean GHG intensity over all journeys",
	})); err != nil {
		return nil, err
	}
	if s.target, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_target_intensity_grams_per_nm",
		Help: "Target GHG intensity of the last report",
	})); err != nil {
		return nil, err
	}
	if s.impact, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_financial_impact",
		Help: "Sum of vessel penalties and credits",
	})); err != nil {
		return nil, err
	}
	if s.vessels, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fleet_vessels",
		Help: "Vessels per compliance status",
	}, []string{"status"})); err != nil {
		return nil, err
	}
	if s.intensity, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vessel_intensity_grams_per_nm",
		Help: "Mean GHG intensity per vessel",
	}, []string{"vessel_id", "vessel_type"})); err != nil {
		return nil, err
	}
	if s.balance, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vessel_compliance_balance",
		Help: "Intensity minus target per vessel; negative is a surplus",
	}, []string{"vessel_id", "status"})); err != nil {
		return nil, err
	}
	if s.savings, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pool_savings",
		Help:    "Savings of the pools returned by the optimizer",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})); err != nil {
		return nil, err
	}
	if s.simulations, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pool_simulations_total",
		Help: "On-demand pooling simulations",
	}, []string{"successful"})); err != nil {
		return nil, err
	}
	if s.predictions, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "co2_predictions_total",
		Help: "CO2 predictions requested",
	}, []string{"result"})); err != nil {
		return nil, err
	}
	if s.predictLat, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "co2_prediction_batch_seconds",
		Help:    "Time spent predicting one batch",
		Buckets: prometheus.DefBuckets,
	})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordReport replaces the fleet and vessel gauges with the report values.
func (s *PromSink) RecordReport(ev coremetrics.ReportEvent) error {
	s.reports.Inc()
	s.avg.Set(ev.FleetAvgIntensity)
	s.target.Set(ev.TargetIntensity)
	s.impact.Set(ev.TotalFinancialImpact)
	s.vessels.WithLabelValues("Surplus").Set(float64(ev.SurplusVessels))
	s.vessels.WithLabelValues("Deficit").Set(float64(ev.DeficitVessels))

	s.intensity.Reset()
	s.balance.Reset()
	for _, v := range ev.Vessels {
		s.intensity.WithLabelValues(v.VesselID, v.VesselType).Set(v.Intensity)
		s.balance.WithLabelValues(v.VesselID, v.Status.String()).Set(v.Balance)
	}
	for _, p := range ev.Pools {
		s.savings.Observe(p.Savings)
	}
	return nil
}

// RecordPoolSimulation counts a simulation by outcome.
func (s *PromSink) RecordPoolSimulation(ev coremetrics.PoolSimulationEvent) error {
	s.simulations.WithLabelValues(strconv.FormatBool(ev.Outcome.Successful)).Inc()
	return nil
}

// RecordPrediction counts predicted and failed rows.
func (s *PromSink) RecordPrediction(ev coremetrics.PredictionEvent) error {
	s.predictions.WithLabelValues("ok").Add(float64(ev.Requested - ev.Failed))
	s.predictions.WithLabelValues("failed").Add(float64(ev.Failed))
	s.predictLat.Observe(ev.Duration.Seconds())
	return nil
}
