package vamana

import "math/rand"

// newSyntheticStore replicates the reference benchmark's synthetic vector
// generator used throughout the end-to-end scenarios: N points in dim
// dimensions, vectors[i][j] = i*dim + j + 1, filters[i] = i % 2.
func newSyntheticStore(n, dim int) *VectorStore {
	s := &VectorStore{
		dim:        dim,
		nBase:      uint32(n),
		vectors:    make([][]float32, n),
		filters:    make([]float32, n),
		filtersMap: make(map[float32]map[uint32]struct{}),
		cache:      make([]float32, triIndex(uint32(n), uint32(n))+1),
	}
	for i := range s.cache {
		s.cache[i] = -1
	}
	for i := 0; i < n; i++ {
		s.cache[triIndex(uint32(i), uint32(i))] = 0

		values := make([]float32, dim)
		for j := 0; j < dim; j++ {
			values[j] = float32(i*dim + j + 1)
		}
		s.vectors[i] = values

		filter := float32(i % 2)
		s.filters[i] = filter
		s.addToFiltersMap(filter, uint32(i))
	}
	return s
}

func newRng(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
