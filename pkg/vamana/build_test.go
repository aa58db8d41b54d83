package vamana

import "testing"

func TestBuildFilteredVamanaInvariants(t *testing.T) {
	store := newSyntheticStore(80, 4)
	params := BuildParams{R: 6, L: 20, Alpha: 1.2, Tau: 10}

	g, medoids, err := BuildFilteredVamana(store, params, newRng(42))
	if err != nil {
		t.Fatalf("BuildFilteredVamana: %v", err)
	}

	if len(medoids) != 2 {
		t.Fatalf("len(medoids) = %d, want 2", len(medoids))
	}

	for v := uint32(0); v < store.Size(); v++ {
		if d := g.OutDegree(v); d > params.R {
			t.Errorf("vertex %d has out-degree %d, want <= %d", v, d, params.R)
		}
		if _, ok := g.Neighbors(v)[v]; ok {
			t.Errorf("vertex %d has a self-loop", v)
		}
		for w := range g.Neighbors(v) {
			if !store.SameFilter(v, w) {
				t.Errorf("edge (%d,%d) violates same_filter: filters %v vs %v", v, w, store.Filter(v), store.Filter(w))
			}
		}
	}
}

func TestBuildFilteredVamanaRejectsBadParams(t *testing.T) {
	store := newSyntheticStore(10, 2)
	if _, _, err := BuildFilteredVamana(store, BuildParams{R: 0, L: 5, Alpha: 1.1, Tau: 2}, newRng(1)); err == nil {
		t.Error("expected error for R=0")
	}
	if _, _, err := BuildFilteredVamana(store, BuildParams{R: 3, L: 5, Alpha: 0.5, Tau: 2}, newRng(1)); err == nil {
		t.Error("expected error for alpha<1")
	}
}

func TestBuildStitchedVamanaInvariants(t *testing.T) {
	store := newSyntheticStore(60, 4)
	params := StitchedBuildParams{RSmall: 4, RStitched: 6, L: 16, Alpha: 1.2, Tau: 8}

	g, medoids, err := BuildStitchedVamana(store, params, newRng(7))
	if err != nil {
		t.Fatalf("BuildStitchedVamana: %v", err)
	}
	if len(medoids) != 2 {
		t.Fatalf("len(medoids) = %d, want 2", len(medoids))
	}

	for v := uint32(0); v < store.Size(); v++ {
		if d := g.OutDegree(v); d > params.RStitched {
			t.Errorf("vertex %d has out-degree %d, want <= %d", v, d, params.RStitched)
		}
		if _, ok := g.Neighbors(v)[v]; ok {
			t.Errorf("vertex %d has a self-loop", v)
		}
	}
}
