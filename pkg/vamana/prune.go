package vamana

import "sort"

// RobustPrune reselects out(p) to be at most R well-diversified neighbors
// from the candidate pool. filtered controls whether the filter-compatibility
// skip test (step 3c of the design) is applied; pass false for the plain
// Vamana variant. Stitched-Vamana passes true for its per-filter subgraphs as
// well, where every candidate shares p's label and the skip test never fires.
//
// pool need not be pre-sorted; RobustPrune sorts its own working copy. alpha
// must be >= 1 and R >= 1.
func RobustPrune(g *Graph, store *VectorStore, p uint32, pool []Candidate, alpha float32, r int, filtered bool) error {
	if alpha < 1 {
		return &ShapeError{Msg: "alpha must be >= 1"}
	}
	if r < 1 {
		return &ShapeError{Msg: "R must be >= 1"}
	}

	// V <- (V U Nout(p)) \ {p}
	v := newBeam()
	for _, c := range pool {
		if c.Vertex == p {
			continue
		}
		v.insert(c)
	}
	for w := range g.Neighbors(p) {
		if w == p {
			continue
		}
		v.insert(Candidate{Dist: store.Distance(p, w), Vertex: w})
	}
	sort.Slice(v.items, func(i, j int) bool { return less(v.items[i], v.items[j]) })

	// Nout(p) <- empty set
	g.replaceNeighbors(p, nil)

	selected := make([]uint32, 0, r)
	for len(v.items) > 0 && len(selected) < r {
		pStar := v.items[0]
		v.items = v.items[1:]
		delete(v.present, pStar.Vertex)

		selected = append(selected, pStar.Vertex)
		if len(selected) == r {
			break
		}

		kept := v.items[:0]
		for _, cand := range v.items {
			pPrime := cand.Vertex

			if filtered && store.SameFilter(pPrime, p) && !store.SameFilter(pPrime, pStar.Vertex) {
				kept = append(kept, cand)
				continue
			}

			if alpha*store.Distance(pStar.Vertex, pPrime) <= store.Distance(p, pPrime) {
				delete(v.present, pPrime)
				continue
			}
			kept = append(kept, cand)
		}
		v.items = kept
	}

	g.replaceNeighbors(p, selected)
	return nil
}
