package vamana

import "testing"

func TestRobustPruneCapsOutDegree(t *testing.T) {
	n := 20
	store := newSyntheticStore(n, 3)

	g := NewGraph(uint32(n))
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				g.Insert(uint32(i), uint32(j))
			}
		}
	}

	for v := 0; v < n; v++ {
		if err := RobustPrune(g, store, uint32(v), nil, 1.5, 3, true); err != nil {
			t.Fatalf("RobustPrune(%d): %v", v, err)
		}
	}

	for v := 0; v < n; v++ {
		if d := g.OutDegree(uint32(v)); d > 3 {
			t.Errorf("vertex %d has out-degree %d, want <= 3", v, d)
		}
		if _, ok := g.Neighbors(uint32(v))[uint32(v)]; ok {
			t.Errorf("vertex %d has a self-loop after prune", v)
		}
	}
}

func TestRobustPruneRejectsBadParams(t *testing.T) {
	store := newSyntheticStore(5, 2)
	g := NewGraph(5)

	if err := RobustPrune(g, store, 0, nil, 0.9, 3, true); err == nil {
		t.Error("expected error for alpha < 1")
	}
	if err := RobustPrune(g, store, 0, nil, 1.2, 0, true); err == nil {
		t.Error("expected error for R < 1")
	}
}

func TestRobustPruneFilterSkipPrecedesAlphaTest(t *testing.T) {
	// Two points sharing p's label should never be pruned away in favor of a
	// closer point carrying a different label, even though the alpha test
	// alone would have removed them.
	s := newSyntheticStore(6, 1)
	// Overwrite with a layout that makes the ordering obvious: p=0 (filter 0),
	// a=2 (filter 0, far), b=1 (filter 1, close to both p and a).
	s.vectors[0] = []float32{0}
	s.vectors[1] = []float32{1}
	s.vectors[2] = []float32{10}
	s.filters[0] = 0
	s.filters[1] = 1
	s.filters[2] = 0

	g := NewGraph(6)
	pool := []Candidate{
		{Dist: s.Distance(0, 1), Vertex: 1},
		{Dist: s.Distance(0, 2), Vertex: 2},
	}

	if err := RobustPrune(g, s, 0, pool, 1.1, 2, true); err != nil {
		t.Fatalf("RobustPrune: %v", err)
	}

	if _, ok := g.Neighbors(0)[2]; !ok {
		t.Error("expected same-filter candidate 2 to survive the filter-skip rule")
	}
}
