package vamana

import "math/rand"

// RandomRRegularGraph initializes g in place so that every vertex in
// vertices has exactly min(r, len(vertices)-1) distinct out-neighbors drawn
// uniformly from the other vertices in the set, with no self-loops. vertices
// restricts initialization to a subset (used by Stitched-Vamana's per-filter
// subgraphs); pass nil to initialize every vertex of g.
func RandomRRegularGraph(g *Graph, vertices []uint32, r int, rng *rand.Rand) error {
	if r < 1 {
		return &ShapeError{Msg: "R must be >= 1"}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	if vertices == nil {
		vertices = make([]uint32, g.Size())
		for i := range vertices {
			vertices[i] = uint32(i)
		}
	}

	for _, v := range vertices {
		pool := make([]uint32, 0, len(vertices)-1)
		for _, w := range vertices {
			if w != v {
				pool = append(pool, w)
			}
		}

		n := r
		if n > len(pool) {
			n = len(pool)
		}
		for i := 0; i < n; i++ {
			j := i + rng.Intn(len(pool)-i)
			pool[i], pool[j] = pool[j], pool[i]
		}

		for i := 0; i < n; i++ {
			if err := g.Insert(v, pool[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// RandomPermutation returns a uniformly random permutation of [0, n).
func RandomPermutation(n int, rng *rand.Rand) []uint32 {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	perm := make([]uint32, n)
	for i := range perm {
		perm[i] = uint32(i)
	}
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}
