package vamana

import (
	"math/rand"
	"sync"
)

// StitchedBuildParams configures C7: a small per-filter subgraph degree, a
// stitched-and-repruned final degree, and the search-list size used in both
// passes.
type StitchedBuildParams struct {
	RSmall    int // out-degree cap used while building each per-filter subgraph
	RStitched int // out-degree cap after stitching and the final reprune
	L         int
	Alpha     float32
	Tau       int
}

// BuildStitchedVamana implements C7: build one unfiltered Vamana subgraph per
// filter label (concurrently, one goroutine per label), stitch every
// subgraph's edges into a shared graph under a mutex, then run a global
// filtered robust-prune pass to bring every vertex back under RStitched.
func BuildStitchedVamana(store *VectorStore, params StitchedBuildParams, rng *rand.Rand) (*Graph, MedoidMap, error) {
	if params.RSmall < 1 {
		return nil, nil, &ShapeError{Msg: "RSmall must be >= 1"}
	}
	if params.RStitched < 1 {
		return nil, nil, &ShapeError{Msg: "RStitched must be >= 1"}
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
	labels := store.Filters()

	g := NewGraph(n)
	medoids := make(MedoidMap)

	// local subgraphs are already sized and addressed to the full store, so
	// stitching one into g is an identity remap.
	identityRemap := make([]uint32, n)
	for i := range identityRemap {
		identityRemap[i] = uint32(i)
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	errs := make([]error, len(labels))

	for li, label := range labels {
		pf := store.FilterIndices(label)
		subset := make([]uint32, 0, len(pf))
		for idx := range pf {
			subset = append(subset, idx)
		}
		if len(subset) == 0 {
			continue
		}

		// Each goroutine gets its own RNG stream (seeded off the shared rng
		// under the caller's control before the fan-out, not concurrently)
		// so subgraph construction order doesn't create a data race on rng.
		localSeed := rng.Int63()

		wg.Add(1)
		go func(li int, label float32, subset []uint32, seed int64) {
			defer wg.Done()

			localRng := rand.New(rand.NewSource(seed))
			local := NewGraph(n)
			if err := RandomRRegularGraph(local, subset, params.RSmall, localRng); err != nil {
				errs[li] = err
				return
			}
			medoid := SampleMedoidFromSubset(subset, params.Tau, localRng)

			sigma := make([]uint32, len(subset))
			copy(sigma, subset)
			shuffle(sigma, localRng)

			for _, p := range sigma {
				result := Search(local, store, []uint32{medoid}, p, 1, params.L, 0)
				if err := RobustPrune(local, store, p, result.Visited, params.Alpha, params.RSmall, true); err != nil {
					errs[li] = err
					return
				}
				for _, j := range local.NeighborSlice(p) {
					if err := local.Insert(j, p); err != nil {
						errs[li] = err
						return
					}
					if local.OutDegree(j) > params.RSmall {
						pool := make([]Candidate, 0, local.OutDegree(j))
						for w := range local.Neighbors(j) {
							pool = append(pool, Candidate{Dist: store.Distance(j, w), Vertex: w})
						}
						if err := RobustPrune(local, store, j, pool, params.Alpha, params.RSmall, true); err != nil {
							errs[li] = err
							return
						}
					}
				}
			}

			mu.Lock()
			defer mu.Unlock()
			medoids[label] = medoid
			g.Stitch(local, identityRemap)
		}(li, label, subset, localSeed)
	}

	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}

	for v := uint32(0); v < n; v++ {
		if g.OutDegree(v) <= params.RStitched {
			continue
		}
		pool := make([]Candidate, 0, g.OutDegree(v))
		for w := range g.Neighbors(v) {
			pool = append(pool, Candidate{Dist: store.Distance(v, w), Vertex: w})
		}
		if err := RobustPrune(g, store, v, pool, params.Alpha, params.RStitched, true); err != nil {
			return nil, nil, err
		}
	}

	return g, medoids, nil
}

func shuffle(s []uint32, rng *rand.Rand) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
