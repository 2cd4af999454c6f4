package model

import (
	"encoding/json"
	"fmt"
)

// ComplianceStatus tells whether a vessel sits below (Surplus) or at/above
// (Deficit) the target intensity.
type ComplianceStatus int

const (
	StatusDeficit ComplianceStatus = iota
	StatusSurplus
)

// String returns the label used in reports.
func (s ComplianceStatus) String() string {
	switch s {
	case StatusSurplus:
		return "Surplus"
	case StatusDeficit:
		return "Deficit"
	default:
		return "unknown"
	}
}

// ParseComplianceStatus converts a report label back to a status.
func ParseComplianceStatus(s string) (ComplianceStatus, error) {
	switch s {
	case "Surplus":
		return StatusSurplus, nil
	case "Deficit":
		return StatusDeficit, nil
	default:
		return 0, fmt.Errorf("unknown compliance status %q", s)
	}
}

func (s ComplianceStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ComplianceStatus) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	v, err := ParseComplianceStatus(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// VesselSummary is the per-vessel compliance view derived from a journey
// snapshot. Balance is negative for a surplus and non-negative for a deficit.
type VesselSummary struct {
	VesselID             string           `json:"ship_id"`
	VesselType           string           `json:"ship_type"`
	Journeys             int              `json:"journeys"`
	Intensity            float64          `json:"ghg_intensity"` // gCO2 per nm, mean over journeys
	TotalCO2KG           float64          `json:"CO2_emissions"`
	TotalDistanceNM      float64          `json:"total_distance"`
	TargetIntensity      float64          `json:"target_intensity"`
	Balance              float64          `json:"compliance_balance"`
	Status               ComplianceStatus `json:"compliance_status"`
	ExcessCO2Tons        float64          `json:"excess_co2_tons"`
	FinancialImpact      float64          `json:"financial_impact"`
	ZeroDistanceJourneys int              `json:"zero_distance_journeys,omitempty"`
}

// Performer is the reduced vessel view used in top/worst rankings.
type Performer struct {
	VesselID   string           `json:"ship_id"`
	VesselType string           `json:"ship_type"`
	Intensity  float64          `json:"ghg_intensity"`
	Status     ComplianceStatus `json:"compliance_status"`
}

// Performer returns the ranking view of the summary.
func (v VesselSummary) Performer() Performer {
	return Performer{VesselID: v.VesselID, VesselType: v.VesselType, Intensity: v.Intensity, Status: v.Status}
}
