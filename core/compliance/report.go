package compliance

import (
	"sort"

	"github.com/kilianp07/fleetpool/core/model"
)

// FleetSummary holds the headline figures of a compliance run.
type FleetSummary struct {
	TotalVessels         int     `json:"total_vessels"`
	SurplusVessels       int     `json:"surplus_vessels"`
	DeficitVessels       int     `json:"deficit_vessels"`
	FleetAvgIntensity    float64 `json:"fleet_avg_intensity"`
	TargetIntensity      float64 `json:"target_intensity"`
	TotalFinancialImpact float64 `json:"total_financial_impact"`
}

// Report is the assembled result of a compliance run.
type Report struct {
	FleetSummary
	TopPerformers        []model.Performer     `json:"top_performers"`
	WorstPerformers      []model.Performer     `json:"worst_performers"`
	OptimalPools         []model.PoolOutcome   `json:"optimal_pools"`
	Vessels              []model.VesselSummary `json:"compliance_details"`
	ZeroDistanceJourneys int                   `json:"zero_distance_journeys"`
	SkippedPairs         []SkippedPair         `json:"skipped_pairs,omitempty"`
}

// BuildReport runs the whole pipeline over a journey snapshot. It keeps no
// state between calls: the same journeys and configuration always produce
// the same report.
func BuildReport(journeys []model.Journey, cfg Config) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	fleet, err := Evaluate(journeys, cfg)
	if err != nil {
		return Report{}, err
	}
	pools, skipped, err := searchPools(fleet.Vessels, PoolOptions{PenaltyRate: cfg.PenaltyRatePerTon, Workers: cfg.Workers, MinSavings: cfg.MinSavings})
	if err != nil {
		return Report{}, err
	}
	if cfg.Exclusive {
		pools = ExclusivePools(pools)
	}
	return assemble(fleet, truncate(pools, cfg.MaxPools), skipped, cfg.Performers), nil
}

// Summarize computes the headline figures of an evaluated fleet.
func Summarize(fleet Fleet) FleetSummary {
	s := FleetSummary{
		TotalVessels:      len(fleet.Vessels),
		FleetAvgIntensity: fleet.MeanIntensity,
		TargetIntensity:   fleet.TargetIntensity,
	}
	for _, v := range fleet.Vessels {
		if v.Status == model.StatusSurplus {
			s.SurplusVessels++
		} else {
			s.DeficitVessels++
		}
		s.TotalFinancialImpact += v.FinancialImpact
	}
	return s
}

func assemble(fleet Fleet, pools []model.PoolOutcome, skipped []SkippedPair, performers int) Report {
	r := Report{
		FleetSummary:         Summarize(fleet),
		OptimalPools:         pools,
		Vessels:              fleet.Vessels,
		ZeroDistanceJourneys: fleet.ZeroDistanceJourneys,
		SkippedPairs:         skipped,
	}
	r.TopPerformers, r.WorstPerformers = rankPerformers(fleet.Vessels, performers)
	return r
}

// rankPerformers returns the n lowest-intensity vessels ascending and the n
// highest-intensity vessels descending. Equal intensities rank by vessel id.
func rankPerformers(vessels []model.VesselSummary, n int) (top, worst []model.Performer) {
	ranked := make([]model.VesselSummary, len(vessels))
	copy(ranked, vessels)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Intensity != ranked[j].Intensity {
			return ranked[i].Intensity < ranked[j].Intensity
		}
		return ranked[i].VesselID < ranked[j].VesselID
	})
	if n > len(ranked) {
		n = len(ranked)
	}
	top = make([]model.Performer, 0, n)
	worst = make([]model.Performer, 0, n)
	for i := 0; i < n; i++ {
		top = append(top, ranked[i].Performer())
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Intensity != ranked[j].Intensity {
			return ranked[i].Intensity > ranked[j].Intensity
		}
		return ranked[i].VesselID < ranked[j].VesselID
	})
	for i := 0; i < n; i++ {
		worst = append(worst, ranked[i].Performer())
	}
	return top, worst
}
