package compliance

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetpool/core/model"
)

func journey(id, vesselType string, co2, distance float64) model.Journey {
	return model.Journey{
		VesselID:        id,
		VesselType:      vesselType,
		RouteID:         "R1",
		Period:          "2024-01",
		DistanceNM:      distance,
		FuelType:        "HFO",
		FuelConsumption: co2 / 3,
		Weather:         "Calm",
		CO2KG:           co2,
	}
}

// sampleFleet has vessels with unequal journey counts so the journey mean
// and the mean of vessel means differ.
func sampleFleet() []model.Journey {
	return []model.Journey{
		journey("NG003", "Tanker", 1000, 100), // 10000
		journey("NG001", "Ferry", 100, 100),   // 1000
		journey("NG001", "Ferry", 400, 100),   // 4000
		journey("NG002", "Bulk", 600, 100),    // 6000
		journey("NG004", "Tanker", 250, 50),   // 5000
		journey("NG005", "Ferry", 90, 30),     // 3000
		journey("NG005", "Ferry", 700, 100),   // 7000
	}
}

func TestIntensity(t *testing.T) {
	assert.Equal(t, 0.0, Intensity(1234, 0, 1))
	assert.Equal(t, 0.0, Intensity(0, 0, 0))
	assert.Equal(t, 10000.0, Intensity(1000, 100, 1))
	assert.Equal(t, 5000.0, Intensity(1000, 100, 2))
	assert.Equal(t, 10000.0, Intensity(1000, 100, 0))
	assert.Equal(t, 10000.0, Intensity(1000, 100, -3))
}

func TestAggregate_ZeroDistanceJourneys(t *testing.T) {
	js := []model.Journey{
		journey("A", "Tanker", 500, 0),
		journey("A", "Tanker", 1000, 100),
		journey("B", "Ferry", 100, 100),
	}
	fleet, err := Aggregate(js, 0.05)
	require.NoError(t, err)
	assert.Equal(t, 1, fleet.ZeroDistanceJourneys)

	a, err := fleet.Find("A")
	require.NoError(t, err)
	assert.Equal(t, 1, a.ZeroDistanceJourneys)
	// (0 + 10000) / 2
	assert.Equal(t, 5000.0, a.Intensity)
	assert.Equal(t, 1500.0, a.TotalCO2KG)
	assert.Equal(t, 100.0, a.TotalDistanceNM)
}

func TestAggregate_TargetUsesJourneyMean(t *testing.T) {
	for _, r := range []float64{0, 0.05, 0.2, 0.999} {
		fleet, err := Aggregate(sampleFleet(), r)
		require.NoError(t, err)
		// journeys: 10000 1000 4000 6000 5000 3000 7000
		assert.InDelta(t, 36000.0/7, fleet.MeanIntensity, 1e-9)
		assert.InDelta(t, fleet.MeanIntensity*(1-r), fleet.TargetIntensity, 1e-9)
	}

	fleet, err := Aggregate(sampleFleet(), 0.05)
	require.NoError(t, err)
	var sum float64
	for _, v := range fleet.Vessels {
		sum += v.Intensity
	}
	vesselMean := sum / float64(len(fleet.Vessels))
	assert.NotEqual(t, vesselMean, fleet.MeanIntensity)
}

func TestAggregate_GroupsByVesselInIDOrder(t *testing.T) {
	js := append(sampleFleet(), journey("NG001", "Bulk", 100, 100))
	fleet, err := Aggregate(js, 0.05)
	require.NoError(t, err)

	ids := make([]string, len(fleet.Vessels))
	for i, v := range fleet.Vessels {
		ids[i] = v.VesselID
	}
	assert.Equal(t, []string{"NG001", "NG002", "NG003", "NG004", "NG005"}, ids)

	ng1 := fleet.Vessels[0]
	assert.Equal(t, "Ferry", ng1.VesselType, "first-seen type wins")
	assert.Equal(t, 3, ng1.Journeys)
	assert.InDelta(t, 2000.0, ng1.Intensity, 1e-9)
	assert.Equal(t, 8, fleet.Journeys)
}

func TestAggregate_Errors(t *testing.T) {
	_, err := Aggregate(nil, 0.05)
	assert.ErrorIs(t, err, ErrEmptyFleet)

	for _, r := range []float64{-0.1, 1, 1.5} {
		_, err = Aggregate(sampleFleet(), r)
		assert.ErrorIs(t, err, ErrInvalidReduction)
	}

	bad := sampleFleet()
	bad[2].CO2KG = -1
	_, err = Aggregate(bad, 0.05)
	assert.ErrorIs(t, err, model.ErrInvalidJourney)
	assert.Contains(t, err.Error(), "journey 2")
}

func TestEvaluate_StatusPartitionsFleet(t *testing.T) {
	fleet, err := Evaluate(sampleFleet(), DefaultConfig())
	require.NoError(t, err)

	deficit, surplus := Partition(fleet.Vessels)
	assert.Equal(t, len(fleet.Vessels), len(deficit)+len(surplus))
	seen := map[string]bool{}
	for _, v := range deficit {
		assert.GreaterOrEqual(t, v.Intensity, v.TargetIntensity)
		assert.Equal(t, model.StatusDeficit, v.Status)
		seen[v.VesselID] = true
	}
	for _, v := range surplus {
		assert.Less(t, v.Intensity, v.TargetIntensity)
		assert.Equal(t, model.StatusSurplus, v.Status)
		assert.Less(t, v.FinancialImpact, 0.0, "surplus carries a credit")
		assert.False(t, seen[v.VesselID])
	}
}

func TestClassify(t *testing.T) {
	v := Classify(model.VesselSummary{VesselID: "A", Intensity: 10000, TotalDistanceNM: 100}, 6000, 100)
	assert.Equal(t, 4000.0, v.Balance)
	assert.Equal(t, model.StatusDeficit, v.Status)
	assert.InDelta(t, 0.4, v.ExcessCO2Tons, 1e-12)
	assert.InDelta(t, 40.0, v.FinancialImpact, 1e-9)

	on := Classify(model.VesselSummary{VesselID: "B", Intensity: 6000, TotalDistanceNM: 100}, 6000, 100)
	assert.Equal(t, model.StatusDeficit, on.Status, "zero difference is a deficit")

	s := Classify(model.VesselSummary{VesselID: "C", Intensity: 1000, TotalDistanceNM: 100}, 6000, 100)
	assert.Equal(t, model.StatusSurplus, s.Status)
	assert.InDelta(t, -50.0, s.FinancialImpact, 1e-9)
}

func TestSingleVesselFleet(t *testing.T) {
	js := []model.Journey{journey("SOLO", "Tanker", 1000, 100), journey("SOLO", "Tanker", 300, 100)}

	cfg := DefaultConfig()
	fleet, err := Evaluate(js, cfg)
	require.NoError(t, err)
	v := fleet.Vessels[0]
	assert.Equal(t, fleet.MeanIntensity, v.Intensity)
	assert.InDelta(t, v.Intensity*cfg.ReductionFraction, v.Balance, 1e-9)
	assert.Equal(t, model.StatusDeficit, v.Status)

	cfg.ReductionFraction = 0
	fleet, err = Evaluate(js, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0.0, fleet.Vessels[0].Balance)
	assert.Equal(t, model.StatusDeficit, fleet.Vessels[0].Status)
}

func TestFleetFind(t *testing.T) {
	fleet, err := Evaluate(sampleFleet(), DefaultConfig())
	require.NoError(t, err)
	v, err := fleet.Find("NG004")
	require.NoError(t, err)
	assert.Equal(t, "NG004", v.VesselID)

	_, err = fleet.Find("NG999")
	assert.True(t, errors.Is(err, ErrVesselNotFound))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	cases := map[string]func(*Config){
		"reduction": func(c *Config) { c.ReductionFraction = 1 },
		"penalty":   func(c *Config) { c.PenaltyRatePerTon = -1 },
		"max_pools": func(c *Config) { c.MaxPools = -1 },
		"perform":   func(c *Config) { c.Performers = -1 },
		"savings":   func(c *Config) { c.MinSavings = -1 },
	}
	for name, mutate := range cases {
		cfg := DefaultConfig()
		mutate(&cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}
