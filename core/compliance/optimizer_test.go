package compliance

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetpool/core/model"
)

// summary builds a vessel whose impact is set directly, as if it had been
// classified under a higher penalty rate than the pool is charged at.
func summary(id string, status model.ComplianceStatus, intensity, distance, impact float64) model.VesselSummary {
	return model.VesselSummary{
		VesselID:        id,
		Intensity:       intensity,
		TotalDistanceNM: distance,
		TargetIntensity: 1000,
		Balance:         intensity - 1000,
		Status:          status,
		FinancialImpact: impact,
	}
}

// Pools at rate 100: D1+S2=24, D1+S1=20, D2+S2=18, D2+S1=15.
func rankingFleet() []model.VesselSummary {
	return []model.VesselSummary{
		summary("S2", model.StatusSurplus, 800, 300, -2),
		summary("D2", model.StatusDeficit, 1500, 100, 20),
		summary("S1", model.StatusSurplus, 500, 100, -5),
		summary("D1", model.StatusDeficit, 2000, 100, 30),
	}
}

func pairs(pools []model.PoolOutcome) []string {
	out := make([]string, len(pools))
	for i, p := range pools {
		out[i] = p.Vessel1ID + "+" + p.Vessel2ID
	}
	return out
}

func TestFindBestPools_Ranking(t *testing.T) {
	pools, err := FindBestPools(rankingFleet(), 10, PoolOptions{PenaltyRate: 100})
	require.NoError(t, err)
	assert.Equal(t, []string{"D1+S2", "D1+S1", "D2+S2", "D2+S1"}, pairs(pools))
	assert.InDelta(t, 24.0, pools[0].Savings, 1e-9)
	assert.InDelta(t, 20.0, pools[1].Savings, 1e-9)
	assert.InDelta(t, 18.0, pools[2].Savings, 1e-9)
	assert.InDelta(t, 15.0, pools[3].Savings, 1e-9)

	// the same vessel may appear in several pools
	assert.Equal(t, "D1", pools[0].Vessel1ID)
	assert.Equal(t, "D1", pools[1].Vessel1ID)
}

func TestFindBestPools_Truncation(t *testing.T) {
	pools, err := FindBestPools(rankingFleet(), 2, PoolOptions{PenaltyRate: 100})
	require.NoError(t, err)
	assert.Equal(t, []string{"D1+S2", "D1+S1"}, pairs(pools))

	for _, n := range []int{0, -1} {
		pools, err = FindBestPools(rankingFleet(), n, PoolOptions{PenaltyRate: 100})
		require.NoError(t, err)
		assert.NotNil(t, pools)
		assert.Empty(t, pools)
	}
}

func TestFindBestPools_MinSavings(t *testing.T) {
	pools, err := FindBestPools(rankingFleet(), 10, PoolOptions{PenaltyRate: 100, MinSavings: 19})
	require.NoError(t, err)
	assert.Equal(t, []string{"D1+S2", "D1+S1"}, pairs(pools))
}

func TestFindBestPools_DropsNonPositiveSavings(t *testing.T) {
	fleet := []model.VesselSummary{
		summary("D1", model.StatusDeficit, 2000, 100, 1),
		summary("S1", model.StatusSurplus, 500, 100, -5),
	}
	pools, err := FindBestPools(fleet, 10, PoolOptions{PenaltyRate: 100})
	require.NoError(t, err)
	assert.Empty(t, pools)
}

func TestFindBestPools_TiesKeepEnumerationOrder(t *testing.T) {
	fleet := []model.VesselSummary{
		summary("S2", model.StatusSurplus, 500, 100, -5),
		summary("D2", model.StatusDeficit, 2000, 100, 30),
		summary("S1", model.StatusSurplus, 500, 100, -5),
		summary("D1", model.StatusDeficit, 2000, 100, 30),
	}
	pools, err := FindBestPools(fleet, 10, PoolOptions{PenaltyRate: 100})
	require.NoError(t, err)
	assert.Equal(t, []string{"D1+S1", "D1+S2", "D2+S1", "D2+S2"}, pairs(pools))
}

func TestFindBestPools_NoSurplus(t *testing.T) {
	fleet := []model.VesselSummary{summary("D1", model.StatusDeficit, 2000, 100, 30)}
	pools, err := FindBestPools(fleet, 10, PoolOptions{PenaltyRate: 100})
	require.NoError(t, err)
	assert.NotNil(t, pools)
	assert.Empty(t, pools)
}

func TestFindBestPools_SkipsZeroDistancePairs(t *testing.T) {
	fleet := append(rankingFleet(),
		summary("D0", model.StatusDeficit, 0, 0, 0),
		summary("S0", model.StatusSurplus, 0, 0, 0),
	)
	var skipped []string
	pools, err := FindBestPools(fleet, 10, PoolOptions{
		PenaltyRate: 100,
		OnSkip:      func(d, s string) { skipped = append(skipped, d+"+"+s) },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"D0+S0"}, skipped)
	// D1+S0 and D2+S0 still save: the zero-distance surplus carries no credit.
	assert.Len(t, pools, 6)
}

func TestFindBestPools_TargetMismatchFails(t *testing.T) {
	fleet := rankingFleet()
	fleet[0].TargetIntensity = 999
	_, err := FindBestPools(fleet, 10, PoolOptions{PenaltyRate: 100, Workers: 3})
	assert.True(t, errors.Is(err, ErrTargetMismatch))
}

func TestFindBestPools_ParallelMatchesSequential(t *testing.T) {
	var fleet []model.VesselSummary
	for i := 0; i < 30; i++ {
		id := fmt.Sprintf("V%02d", i)
		if i%3 == 0 {
			fleet = append(fleet, summary(id, model.StatusSurplus, 400+float64(i), 50+float64(i%7)*10, -float64(i%4)))
		} else {
			// identical impacts on purpose to create ties
			fleet = append(fleet, summary(id, model.StatusDeficit, 1200+float64(i%5)*100, 80, 25+float64(i%2)))
		}
	}
	seq, err := FindBestPools(fleet, 1000, PoolOptions{PenaltyRate: 100})
	require.NoError(t, err)
	require.NotEmpty(t, seq)
	for _, w := range []int{2, 4, 16} {
		par, err := FindBestPools(fleet, 1000, PoolOptions{PenaltyRate: 100, Workers: w})
		require.NoError(t, err)
		assert.Equal(t, seq, par, "workers=%d", w)
	}
	for i, p := range seq {
		assert.Greater(t, p.Savings, 0.0)
		if i > 0 {
			assert.GreaterOrEqual(t, seq[i-1].Savings, p.Savings)
		}
	}
}

func TestFindBestPools_DoesNotMutateInput(t *testing.T) {
	fleet := rankingFleet()
	before := append([]model.VesselSummary(nil), fleet...)
	_, err := FindBestPools(fleet, 10, PoolOptions{PenaltyRate: 100, Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, before, fleet)
}

// Classified impacts are linear in the intensity gap, so a pair's own impacts
// already sum to the pooled one: unsuccessful pools save nothing beyond float
// noise and successful pools never save more than zero.
func TestFindBestPools_ClassifiedFleet(t *testing.T) {
	cfg := DefaultConfig()
	fleet, err := Evaluate(sampleFleet(), cfg)
	require.NoError(t, err)

	deficit, surplus := Partition(fleet.Vessels)
	require.NotEmpty(t, deficit)
	require.NotEmpty(t, surplus)
	var successful int
	for _, d := range deficit {
		for _, s := range surplus {
			p, err := SimulatePool(d, s, cfg.PenaltyRatePerTon)
			require.NoError(t, err)
			if p.Successful {
				successful++
				assert.LessOrEqual(t, p.Savings, 1e-9, "%s+%s", d.VesselID, s.VesselID)
			} else {
				assert.InDelta(t, 0, p.Savings, 1e-9, "%s+%s", d.VesselID, s.VesselID)
			}
		}
	}
	assert.Positive(t, successful)

	pools, err := FindBestPools(fleet.Vessels, cfg.MaxPools, PoolOptions{PenaltyRate: cfg.PenaltyRatePerTon})
	require.NoError(t, err)
	for _, p := range pools {
		assert.False(t, p.Successful)
		assert.Less(t, p.Savings, 1e-9)
	}

	pools, err = FindBestPools(fleet.Vessels, cfg.MaxPools, PoolOptions{PenaltyRate: cfg.PenaltyRatePerTon, MinSavings: 1e-6})
	require.NoError(t, err)
	assert.Empty(t, pools)
}
