package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJourneyValidate(t *testing.T) {
	ok := Journey{VesselID: "S1", DistanceNM: 10, FuelConsumption: 2, CO2KG: 5}
	require.NoError(t, ok.Validate())

	zero := ok
	zero.DistanceNM = 0
	assert.NoError(t, zero.Validate(), "zero distance is a flagged degenerate case, not an error")

	cases := map[string]Journey{
		"empty id":     {DistanceNM: 1},
		"neg distance": {VesselID: "S1", DistanceNM: -1},
		"neg co2":      {VesselID: "S1", DistanceNM: 1, CO2KG: -3},
		"nan fuel":     {VesselID: "S1", DistanceNM: 1, FuelConsumption: math.NaN()},
		"inf distance": {VesselID: "S1", DistanceNM: math.Inf(1)},
	}
	for name, j := range cases {
		err := j.Validate()
		if !errors.Is(err, ErrInvalidJourney) {
			t.Errorf("%s: expected ErrInvalidJourney, got %v", name, err)
		}
	}
}

func TestComplianceStatusJSON(t *testing.T) {
	b, err := json.Marshal(VesselSummary{VesselID: "S1", Status: StatusSurplus})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"compliance_status":"Surplus"`)

	var out VesselSummary
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, StatusSurplus, out.Status)

	var st ComplianceStatus
	assert.Error(t, json.Unmarshal([]byte(`"Neutral"`), &st))
}

func TestPoolOutcomeInvolves(t *testing.T) {
	p := PoolOutcome{Vessel1ID: "A", Vessel2ID: "B"}
	assert.True(t, p.Involves("A"))
	assert.True(t, p.Involves("B"))
	assert.False(t, p.Involves("C"))
}
