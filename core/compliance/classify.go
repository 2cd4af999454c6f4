package compliance

import "github.com/kilianp07/fleetpool/core/model"

// Classify annotates a vessel summary against the target intensity. Surplus
// vessels get a negative excess and a negative impact, which is the credit
// pooling relies on.
func Classify(v model.VesselSummary, target, penaltyRate float64) model.VesselSummary {
	v.TargetIntensity = target
	v.Balance = v.Intensity - target
	v.Status = statusOf(v.Balance)
	v.ExcessCO2Tons = excessTons(v.Balance, v.TotalDistanceNM)
	v.FinancialImpact = v.ExcessCO2Tons * penaltyRate
	return v
}

func statusOf(difference float64) model.ComplianceStatus {
	if difference >= 0 {
		return model.StatusDeficit
	}
	return model.StatusSurplus
}

// Partition splits classified summaries by status, preserving input order.
func Partition(vessels []model.VesselSummary) (deficit, surplus []model.VesselSummary) {
	for _, v := range vessels {
		if v.Status == model.StatusDeficit {
			deficit = append(deficit, v)
		} else {
			surplus = append(surplus, v)
		}
	}
	return deficit, surplus
}
