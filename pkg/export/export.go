// Package export renders compliance results as CSV or JSON files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/fleetpool/core/model"
)

// VesselCSVName is the conventional file name of the per-vessel export.
const VesselCSVName = "compliance_report.csv"

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var vesselHeader = []string{
	"ship_id", "ship_type", "journeys", "ghg_intensity", "CO2_emissions", "total_distance",
	"target_intensity", "compliance_balance", "compliance_status", "excess_co2_tons",
	"financial_impact", "zero_distance_journeys",
}

// WriteVesselsCSV writes one row per vessel summary.
func WriteVesselsCSV(w io.Writer, vessels []model.VesselSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(vesselHeader); err != nil {
		return err
	}
	for _, v := range vessels {
		rec := []string{
			v.VesselID,
			v.VesselType,
			strconv.Itoa(v.Journeys),
			formatFloat(v.Intensity),
			formatFloat(v.TotalCO2KG),
			formatFloat(v.TotalDistanceNM),
			formatFloat(v.TargetIntensity),
			formatFloat(v.Balance),
			v.Status.String(),
			formatFloat(v.ExcessCO2Tons),
			formatFloat(v.FinancialImpact),
			strconv.Itoa(v.ZeroDistanceJourneys),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePoolsCSV writes pool outcomes in the given order with a 1-based rank.
func WritePoolsCSV(w io.Writer, pools []model.PoolOutcome) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rank", "vessel1_id", "vessel2_id", "vessel1_status", "vessel2_status",
		"combined_balance", "weighted_intensity", "pooling_successful", "financial_impact", "savings"}); err != nil {
		return err
	}
	for i, p := range pools {
		rec := []string{
			strconv.Itoa(i + 1),
			p.Vessel1ID,
			p.Vessel2ID,
			p.Vessel1Status.String(),
			p.Vessel2Status.String(),
			formatFloat(p.CombinedBalance),
			formatFloat(p.WeightedIntensity),
			strconv.FormatBool(p.Successful),
			formatFloat(p.FinancialImpact),
			formatFloat(p.Savings),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
