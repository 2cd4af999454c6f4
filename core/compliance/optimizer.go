package compliance

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/fleetpool/core/model"
)

// PoolOptions tunes the pair search.
type PoolOptions struct {
	PenaltyRate float64
	// Workers bounds the goroutines simulating pairs; below 2 runs sequentially.
	Workers int
	// MinSavings is the savings a pool must exceed to be kept. Zero keeps every
	// pool with positive savings.
	MinSavings float64
	// OnSkip is called for every pair that could not be simulated because both
	// vessels logged zero distance. It is invoked from the calling goroutine.
	OnSkip func(deficitID, surplusID string)
}

// SkippedPair identifies a deficit/surplus pair left out of the search.
type SkippedPair struct {
	DeficitID string `json:"deficit_id"`
	SurplusID string `json:"surplus_id"`
}

type pairResult struct {
	outcome model.PoolOutcome
	skipped bool
}

// FindBestPools simulates every deficit × surplus pair and returns the pools
// with positive savings, best first, truncated to maxResults.
//
// This is a ranking of independent pairs, not a matching: one vessel can
// appear in several returned pools. Ties keep the enumeration order, deficit
// vessels in the outer loop and surplus vessels in the inner one, both by
// ascending vessel id. Parallel enumeration yields the same order.
func FindBestPools(vessels []model.VesselSummary, maxResults int, opts PoolOptions) ([]model.PoolOutcome, error) {
	pools, skipped, err := searchPools(vessels, opts)
	if err != nil {
		return nil, err
	}
	if opts.OnSkip != nil {
		for _, s := range skipped {
			opts.OnSkip(s.DeficitID, s.SurplusID)
		}
	}
	return truncate(pools, maxResults), nil
}

// searchPools returns every pool with positive savings sorted by savings, and
// the pairs that were skipped as degenerate.
func searchPools(vessels []model.VesselSummary, opts PoolOptions) ([]model.PoolOutcome, []SkippedPair, error) {
	sorted := make([]model.VesselSummary, len(vessels))
	copy(sorted, vessels)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].VesselID < sorted[j].VesselID })
	deficit, surplus := Partition(sorted)
	if len(deficit) == 0 || len(surplus) == 0 {
		return nil, nil, nil
	}

	results := make([]pairResult, len(deficit)*len(surplus))
	row := func(i int) error {
		for k, s := range surplus {
			out, err := SimulatePool(deficit[i], s, opts.PenaltyRate)
			switch {
			case errors.Is(err, ErrZeroCombinedDistance):
				results[i*len(surplus)+k] = pairResult{skipped: true}
			case err != nil:
				return fmt.Errorf("simulate %s/%s: %w", deficit[i].VesselID, s.VesselID, err)
			default:
				results[i*len(surplus)+k] = pairResult{outcome: out}
			}
		}
		return nil
	}

	if opts.Workers < 2 {
		for i := range deficit {
			if err := row(i); err != nil {
				return nil, nil, err
			}
		}
	} else {
		var g errgroup.Group
		g.SetLimit(opts.Workers)
		for i := range deficit {
			i := i
			g.Go(func() error { return row(i) })
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
	}

	var (
		pools   []model.PoolOutcome
		skipped []SkippedPair
	)
	for idx, r := range results {
		if r.skipped {
			skipped = append(skipped, SkippedPair{
				DeficitID: deficit[idx/len(surplus)].VesselID,
				SurplusID: surplus[idx%len(surplus)].VesselID,
			})
			continue
		}
		if r.outcome.Savings > opts.MinSavings {
			pools = append(pools, r.outcome)
		}
	}
	sort.SliceStable(pools, func(i, j int) bool { return pools[i].Savings > pools[j].Savings })
	return pools, skipped, nil
}

func truncate(pools []model.PoolOutcome, n int) []model.PoolOutcome {
	if n <= 0 {
		return []model.PoolOutcome{}
	}
	if len(pools) > n {
		pools = pools[:n]
	}
	if pools == nil {
		return []model.PoolOutcome{}
	}
	return pools
}
