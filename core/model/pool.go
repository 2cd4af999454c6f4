package model

// PoolOutcome is the simulated result of merging the compliance balances of
// two vessels. It is recomputed on demand and never stored.
type PoolOutcome struct {
	Vessel1ID         string           `json:"vessel1_id"`
	Vessel2ID         string           `json:"vessel2_id"`
	Vessel1Status     ComplianceStatus `json:"vessel1_status"`
	Vessel2Status     ComplianceStatus `json:"vessel2_status"`
	Vessel1Balance    float64          `json:"vessel1_balance"`
	Vessel2Balance    float64          `json:"vessel2_balance"`
	CombinedBalance   float64          `json:"combined_balance"`
	CombinedDistance  float64          `json:"combined_distance"`
	WeightedIntensity float64          `json:"weighted_intensity"`
	TargetIntensity   float64          `json:"target_intensity"`
	Successful        bool             `json:"pooling_successful"`
	ExcessCO2Tons     float64          `json:"excess_co2_tons"`
	FinancialImpact   float64          `json:"financial_impact"`
	Savings           float64          `json:"savings"`
}

// Involves reports whether the vessel takes part in the pool.
func (p PoolOutcome) Involves(vesselID string) bool {
	return p.Vessel1ID == vesselID || p.Vessel2ID == vesselID
}
