package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/fleetpool/core/metrics"
	"github.com/kilianp07/fleetpool/infra/logger"
)

// InfluxConfig holds the InfluxDB connection settings.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes compliance reports to InfluxDB: one fleet point, one
// point per vessel and one per returned pool, all stamped with the run time.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.ReportSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordReport writes the fleet, vessel and pool points of a run.
func (s *InfluxSink) RecordReport(ev coremetrics.ReportEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	points := make([]*write.Point, 0, 1+len(ev.Vessels)+len(ev.Pools))
	points = append(points, write.NewPointWithMeasurement("fleet_compliance").
		AddTag("run_id", ev.RunID).
		AddField("avg_intensity", round3(ev.FleetAvgIntensity)).
		AddField("target_intensity", round3(ev.TargetIntensity)).
		AddField("total_vessels", ev.TotalVessels).
		AddField("surplus_vessels", ev.SurplusVessels).
		AddField("deficit_vessels", ev.DeficitVessels).
		AddField("financial_impact", round3(ev.TotalFinancialImpact)).
		AddField("zero_distance_journeys", ev.ZeroDistanceJourneys).
		SetTime(ev.Time))
	for _, v := range ev.Vessels {
		points = append(points, write.NewPointWithMeasurement("vessel_compliance").
			AddTag("run_id", ev.RunID).
			AddTag("vessel_id", v.VesselID).
			AddTag("vessel_type", v.VesselType).
			AddTag("status", v.Status.String()).
			AddField("intensity", round3(v.Intensity)).
			AddField("balance", round3(v.Balance)).
			AddField("excess_co2_tons", round3(v.ExcessCO2Tons)).
			AddField("financial_impact", round3(v.FinancialImpact)).
			AddField("co2_kg", round3(v.TotalCO2KG)).
			AddField("distance_nm", round3(v.TotalDistanceNM)).
			SetTime(ev.Time))
	}
	for i, p := range ev.Pools {
		points = append(points, write.NewPointWithMeasurement("pool_opportunity").
			AddTag("run_id", ev.RunID).
			AddTag("rank", strconv.Itoa(i+1)).
			AddTag("deficit_vessel", p.Vessel1ID).
			AddTag("surplus_vessel", p.Vessel2ID).
			AddField("weighted_intensity", round3(p.WeightedIntensity)).
			AddField("successful", p.Successful).
			AddField("savings", round3(p.Savings)).
			SetTime(ev.Time))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordPoolSimulation writes an on-demand simulation.
func (s *InfluxSink) RecordPoolSimulation(ev coremetrics.PoolSimulationEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	o := ev.Outcome
	p := write.NewPointWithMeasurement("pool_simulation").
		AddTag("vessel1_id", o.Vessel1ID).
		AddTag("vessel2_id", o.Vessel2ID).
		AddField("weighted_intensity", round3(o.WeightedIntensity)).
		AddField("successful", o.Successful).
		AddField("financial_impact", round3(o.FinancialImpact)).
		AddField("savings", round3(o.Savings)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
