package mqtt

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	coremetrics "github.com/kilianp07/fleetpool/core/metrics"
	"github.com/kilianp07/fleetpool/core/model"
	coremqtt "github.com/kilianp07/fleetpool/core/mqtt"
)

// ReportMessage is the payload published on <prefix>/report.
type ReportMessage struct {
	MessageID            string              `json:"message_id"`
	RunID                string              `json:"run_id"`
	Timestamp            int64               `json:"timestamp"`
	FleetAvgIntensity    float64             `json:"fleet_avg_intensity"`
	TargetIntensity      float64             `json:"target_intensity"`
	TotalVessels         int                 `json:"total_vessels"`
	SurplusVessels       int                 `json:"surplus_vessels"`
	DeficitVessels       int                 `json:"deficit_vessels"`
	TotalFinancialImpact float64             `json:"total_financial_impact"`
	OptimalPools         []model.PoolOutcome `json:"optimal_pools"`
}

// VesselMessage is the retained per-vessel status on <prefix>/vessels/<id>.
type VesselMessage struct {
	MessageID string `json:"message_id"`
	RunID     string `json:"run_id"`
	Timestamp int64  `json:"timestamp"`
	model.VesselSummary
}

// SimulationMessage is published on <prefix>/pool/simulation.
type SimulationMessage struct {
	MessageID string            `json:"message_id"`
	Timestamp int64             `json:"timestamp"`
	Outcome   model.PoolOutcome `json:"outcome"`
}

// ReportPublisher broadcasts compliance reports to MQTT subscribers. It
// satisfies coremetrics.ReportSink so it can be configured like any other
// sink.
type ReportPublisher struct {
	pub    coremqtt.Publisher
	prefix string
}

// NewReportPublisher wraps pub. An empty prefix selects DefaultTopicPrefix.
func NewReportPublisher(pub coremqtt.Publisher, prefix string) *ReportPublisher {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return &ReportPublisher{pub: pub, prefix: prefix}
}

// Close disconnects the underlying client when it supports it.
func (r *ReportPublisher) Close() {
	if d, ok := r.pub.(interface{ Disconnect() }); ok {
		d.Disconnect()
	}
}

// ReportTopic returns the topic carrying fleet reports.
func (r *ReportPublisher) ReportTopic() string { return r.prefix + "/report" }

// VesselTopic returns the retained status topic of a vessel.
func (r *ReportPublisher) VesselTopic(id string) string { return r.prefix + "/vessels/" + id }

// SimulationTopic returns the topic carrying pool simulations.
func (r *ReportPublisher) SimulationTopic() string { return r.prefix + "/pool/simulation" }

// RecordReport publishes the fleet report, then one retained message per
// vessel. Vessel failures do not stop the remaining vessels.
func (r *ReportPublisher) RecordReport(ev coremetrics.ReportEvent) error {
	ts := ev.Time.UnixMilli()
	pools := ev.Pools
	if pools == nil {
		pools = []model.PoolOutcome{}
	}
	msg := ReportMessage{
		MessageID:            uuid.NewString(),
		RunID:                ev.RunID,
		Timestamp:            ts,
		FleetAvgIntensity:    ev.FleetAvgIntensity,
		TargetIntensity:      ev.TargetIntensity,
		TotalVessels:         ev.TotalVessels,
		SurplusVessels:       ev.SurplusVessels,
		DeficitVessels:       ev.DeficitVessels,
		TotalFinancialImpact: ev.TotalFinancialImpact,
		OptimalPools:         pools,
	}
	if err := r.publishJSON(r.ReportTopic(), msg, true); err != nil {
		return err
	}
	var errs []error
	for _, v := range ev.Vessels {
		vm := VesselMessage{MessageID: uuid.NewString(), RunID: ev.RunID, Timestamp: ts, VesselSummary: v}
		if err := r.publishJSON(r.VesselTopic(v.VesselID), vm, true); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordPoolSimulation publishes an on-demand simulation.
func (r *ReportPublisher) RecordPoolSimulation(ev coremetrics.PoolSimulationEvent) error {
	msg := SimulationMessage{MessageID: uuid.NewString(), Timestamp: ev.Time.UnixMilli(), Outcome: ev.Outcome}
	return r.publishJSON(r.SimulationTopic(), msg, false)
}

func (r *ReportPublisher) publishJSON(topic string, v any, retained bool) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.pub.Publish(topic, payload, retained)
}
