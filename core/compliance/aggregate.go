package compliance

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/fleetpool/core/model"
)

// Fleet is the aggregated view of a journey snapshot.
type Fleet struct {
	// Vessels holds one summary per vessel id, ordered by id.
	Vessels []model.VesselSummary
	// MeanIntensity is the mean of all per-journey intensities.
	MeanIntensity float64
	// TargetIntensity is MeanIntensity lowered by the reduction fraction.
	TargetIntensity float64
	// Journeys is the number of journeys aggregated.
	Journeys int
	// ZeroDistanceJourneys counts journeys whose intensity was defined as zero.
	ZeroDistanceJourneys int
}

type vesselAcc struct {
	vesselType  string
	intensities []float64
	co2         float64
	distance    float64
	zero        int
}

// Aggregate groups journeys by vessel and computes the fleet benchmark. The
// fleet mean is taken over journeys, not over vessel means, so vessels with
// more journeys weigh more. Summaries carry the aggregated figures and the
// target; use Classify (or Evaluate) to annotate them.
func Aggregate(journeys []model.Journey, reduction float64) (Fleet, error) {
	if reduction < 0 || reduction >= 1 {
		return Fleet{}, fmt.Errorf("%w: got %v", ErrInvalidReduction, reduction)
	}
	if len(journeys) == 0 {
		return Fleet{}, ErrEmptyFleet
	}

	all := make([]float64, 0, len(journeys))
	groups := make(map[string]*vesselAcc)
	var zero int
	for i, j := range journeys {
		if err := j.Validate(); err != nil {
			return Fleet{}, fmt.Errorf("journey %d: %w", i, err)
		}
		in := Intensity(j.CO2KG, j.DistanceNM, 1)
		all = append(all, in)

		acc, ok := groups[j.VesselID]
		if !ok {
			// first occurrence wins when a vessel's type drifts between journeys
			acc = &vesselAcc{vesselType: j.VesselType}
			groups[j.VesselID] = acc
		}
		acc.intensities = append(acc.intensities, in)
		acc.co2 += j.CO2KG
		acc.distance += j.DistanceNM
		if j.DistanceNM == 0 {
			acc.zero++
			zero++
		}
	}

	mean := stat.Mean(all, nil)
	target := mean * (1 - reduction)

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	vessels := make([]model.VesselSummary, 0, len(ids))
	for _, id := range ids {
		acc := groups[id]
		vessels = append(vessels, model.VesselSummary{
			VesselID:             id,
			VesselType:           acc.vesselType,
			Journeys:             len(acc.intensities),
			Intensity:            stat.Mean(acc.intensities, nil),
			TotalCO2KG:           acc.co2,
			TotalDistanceNM:      acc.distance,
			TargetIntensity:      target,
			ZeroDistanceJourneys: acc.zero,
		})
	}

	return Fleet{
		Vessels:              vessels,
		MeanIntensity:        mean,
		TargetIntensity:      target,
		Journeys:             len(journeys),
		ZeroDistanceJourneys: zero,
	}, nil
}

// Evaluate aggregates the journeys and classifies every vessel.
func Evaluate(journeys []model.Journey, cfg Config) (Fleet, error) {
	fleet, err := Aggregate(journeys, cfg.ReductionFraction)
	if err != nil {
		return Fleet{}, err
	}
	for i, v := range fleet.Vessels {
		fleet.Vessels[i] = Classify(v, fleet.TargetIntensity, cfg.PenaltyRatePerTon)
	}
	return fleet, nil
}

// Find returns the summary of the given vessel.
func (f Fleet) Find(vesselID string) (model.VesselSummary, error) {
	i := sort.Search(len(f.Vessels), func(i int) bool { return f.Vessels[i].VesselID >= vesselID })
	if i < len(f.Vessels) && f.Vessels[i].VesselID == vesselID {
		return f.Vessels[i], nil
	}
	return model.VesselSummary{}, fmt.Errorf("%w: %s", ErrVesselNotFound, vesselID)
}
