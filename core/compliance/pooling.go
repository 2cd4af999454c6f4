package compliance

import (
	"fmt"

	"github.com/kilianp07/fleetpool/core/model"
)

// SimulatePool merges the compliance balances of two vessels from the same
// run. The pooled intensity is the distance-weighted mean of both intensities;
// when it reaches the target the pool owes nothing, otherwise the residual
// excess is charged over the combined distance.
func SimulatePool(a, b model.VesselSummary, penaltyRate float64) (model.PoolOutcome, error) {
	if a.TargetIntensity != b.TargetIntensity {
		return model.PoolOutcome{}, fmt.Errorf("%w: %s=%v %s=%v", ErrTargetMismatch,
			a.VesselID, a.TargetIntensity, b.VesselID, b.TargetIntensity)
	}
	distance := a.TotalDistanceNM + b.TotalDistanceNM
	if distance == 0 {
		return model.PoolOutcome{}, fmt.Errorf("%w: %s and %s", ErrZeroCombinedDistance, a.VesselID, b.VesselID)
	}
	target := a.TargetIntensity
	weighted := (a.Intensity*a.TotalDistanceNM + b.Intensity*b.TotalDistanceNM) / distance

	out := model.PoolOutcome{
		Vessel1ID:         a.VesselID,
		Vessel2ID:         b.VesselID,
		Vessel1Status:     a.Status,
		Vessel2Status:     b.Status,
		Vessel1Balance:    a.Balance,
		Vessel2Balance:    b.Balance,
		CombinedBalance:   a.Balance + b.Balance,
		CombinedDistance:  distance,
		WeightedIntensity: weighted,
		TargetIntensity:   target,
		Successful:        weighted <= target,
	}
	if !out.Successful {
		out.ExcessCO2Tons = excessTons(weighted-target, distance)
		out.FinancialImpact = out.ExcessCO2Tons * penaltyRate
	}
	out.Savings = a.FinancialImpact + b.FinancialImpact - out.FinancialImpact
	return out, nil
}
