package vamana

import "math/rand"

// BuildParams configures a Vamana build (filtered or stitched).
type BuildParams struct {
	R     int     // out-degree cap
	L     int     // search list size used while building
	Alpha float32 // diversification factor, must be >= 1
	Tau   int     // medoid sample size
}

// BuildFilteredVamana runs the single-pass Filtered-Vamana construction of
// C6: random R-regular init within each filter label, medoid selection per
// filter, then one greedy search + robust-prune + reverse-edge pass per vertex
// in random order.
func BuildFilteredVamana(store *VectorStore, params BuildParams, rng *rand.Rand) (*Graph, MedoidMap, error) {
	if params.R < 1 {
		return nil, nil, &ShapeError{Msg: "R must be >= 1"}
	}
	if params.L < 1 {
		return nil, nil, &ShapeError{Msg: "L must be >= 1"}
	}
	if params.Alpha < 1 {
		return nil, nil, &ShapeError{Msg: "alpha must be >= 1"}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	n := store.Size()
	g := NewGraph(n)
	// The random init links vertices only within one label, so no edge of the
	// built graph joins two incompatible filters.
	for _, label := range store.Filters() {
		pf := store.FilterIndices(label)
		subset := make([]uint32, 0, len(pf))
		for idx := range pf {
			subset = append(subset, idx)
		}
		if err := RandomRRegularGraph(g, subset, params.R, rng); err != nil {
			return nil, nil, err
		}
	}

	medoids, err := FindMedoid(store, params.Tau, rng)
	if err != nil {
		return nil, nil, err
	}

	sigma := RandomPermutation(int(n), rng)
	for _, p := range sigma {
		start, ok := medoids[store.Filter(p)]
		if !ok {
			continue
		}

		result := Search(g, store, []uint32{start}, p, 1, params.L, 0)

		if err := RobustPrune(g, store, p, result.Visited, params.Alpha, params.R, true); err != nil {
			return nil, nil, err
		}

		for _, j := range g.NeighborSlice(p) {
			if err := g.Insert(j, p); err != nil {
				return nil, nil, err
			}
			if g.OutDegree(j) > params.R {
				pool := make([]Candidate, 0, g.OutDegree(j))
				for w := range g.Neighbors(j) {
					pool = append(pool, Candidate{Dist: store.Distance(j, w), Vertex: w})
				}
				if err := RobustPrune(g, store, j, pool, params.Alpha, params.R, true); err != nil {
					return nil, nil, err
				}
			}
		}
	}

	return g, medoids, nil
}
