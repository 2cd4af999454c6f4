package compliance

import (
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/fleetpool/core/model"
)

// exclusiveSolve points to the LP used by ExclusivePools. Tests override it to
// exercise the greedy fallback.
var exclusiveSolve = solveAssignmentLP

// ExclusivePools selects pools so that every vessel takes part in at most one
// of them, maximising the summed savings. Candidates are the ranked outcomes
// of FindBestPools. The selection is solved as an assignment LP; if the solver
// fails or returns a worse selection than the greedy pass, the greedy pass
// wins. The result keeps the savings-descending order of the input.
func ExclusivePools(candidates []model.PoolOutcome) []model.PoolOutcome {
	var pos []model.PoolOutcome
	for _, c := range candidates {
		if c.Savings > 0 {
			pos = append(pos, c)
		}
	}
	if len(pos) == 0 {
		return []model.PoolOutcome{}
	}
	greedy := greedyExclusive(pos)

	picked, err := exclusiveSolve(pos)
	if err != nil || !isExclusive(picked) || totalSavings(picked) < totalSavings(greedy) {
		return greedy
	}
	sort.SliceStable(picked, func(i, j int) bool { return picked[i].Savings > picked[j].Savings })
	return picked
}

// greedyExclusive walks the candidates best first and accepts a pool when
// neither vessel has been used yet.
func greedyExclusive(candidates []model.PoolOutcome) []model.PoolOutcome {
	ranked := make([]model.PoolOutcome, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Savings > ranked[j].Savings })

	used := make(map[string]bool)
	out := []model.PoolOutcome{}
	for _, p := range ranked {
		if used[p.Vessel1ID] || used[p.Vessel2ID] {
			continue
		}
		used[p.Vessel1ID] = true
		used[p.Vessel2ID] = true
		out = append(out, p)
	}
	return out
}

// solveAssignmentLP maximises Σ savings·x subject to Σ x ≤ 1 per vessel. The
// LP is written in standard form with one slack per vessel so the all-slack
// basis is a known feasible start. The vessel/pool incidence matrix of a
// bipartite graph is totally unimodular, so the optimal vertex is integral.
func solveAssignmentLP(candidates []model.PoolOutcome) ([]model.PoolOutcome, error) {
	row := make(map[string]int)
	for _, p := range candidates {
		for _, id := range []string{p.Vessel1ID, p.Vessel2ID} {
			if _, ok := row[id]; !ok {
				row[id] = len(row)
			}
		}
	}
	nPools, nVessels := len(candidates), len(row)
	nVar := nPools + nVessels

	c := make([]float64, nVar)
	a := mat.NewDense(nVessels, nVar, nil)
	b := make([]float64, nVessels)
	for k, p := range candidates {
		c[k] = -p.Savings
		a.Set(row[p.Vessel1ID], k, 1)
		a.Set(row[p.Vessel2ID], k, 1)
	}
	basic := make([]int, nVessels)
	for i := 0; i < nVessels; i++ {
		a.Set(i, nPools+i, 1)
		b[i] = 1
		basic[i] = nPools + i
	}

	_, x, err := lp.Simplex(c, a, b, 1e-9, basic)
	if err != nil {
		return nil, err
	}
	var picked []model.PoolOutcome
	for k := 0; k < nPools; k++ {
		if x[k] > 0.5 {
			picked = append(picked, candidates[k])
		}
	}
	return picked, nil
}

func isExclusive(pools []model.PoolOutcome) bool {
	seen := make(map[string]bool)
	for _, p := range pools {
		if seen[p.Vessel1ID] || seen[p.Vessel2ID] {
			return false
		}
		seen[p.Vessel1ID] = true
		seen[p.Vessel2ID] = true
	}
	return true
}

func totalSavings(pools []model.PoolOutcome) float64 {
	var sum float64
	for _, p := range pools {
		sum += p.Savings
	}
	return sum
}
