package vamana

import "math/rand"

// MedoidMap assigns each filter label a representative start vertex for
// greedy search. The sentinel NoFilter label is never placed in the map;
// unfiltered queries consult every registered medoid at search time.
type MedoidMap map[float32]uint32

// FindMedoid implements the tau-sample best-cover heuristic of C3: for each
// filter label f with index set Pf, it samples up to tau candidates without
// replacement and picks one uniformly at random. This is the "Uniform"
// strategy (as opposed to a balanced pick-counter strategy) and is the one
// this repository follows throughout, matching the reference implementation
// that resolves filter medoids.
//
// FindMedoid is deliberately approximate: the true medoid is O(|Pf|^2) to
// compute exactly, and tau caps the work spent per filter.
func FindMedoid(store *VectorStore, tau int, rng *rand.Rand) (MedoidMap, error) {
	if tau < 1 {
		return nil, &ShapeError{Msg: "tau must be at least 1"}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	m := make(MedoidMap)
	for _, label := range store.Filters() {
		pf := store.FilterIndices(label)
		if len(pf) == 0 {
			continue
		}

		pool := make([]uint32, 0, len(pf))
		for idx := range pf {
			pool = append(pool, idx)
		}

		m[label] = SampleMedoidFromSubset(pool, tau, rng)
	}

	return m, nil
}

// SampleMedoidFromSubset applies the same tau-sample uniform pick to an
// arbitrary vertex subset, independent of any filter label. Stitched-Vamana
// uses this to pick a per-filter subgraph's local start point.
func SampleMedoidFromSubset(subset []uint32, tau int, rng *rand.Rand) uint32 {
	pool := make([]uint32, len(subset))
	copy(pool, subset)

	n := tau
	if n > len(pool) {
		n = len(pool)
	}

	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[rng.Intn(n)]
}
