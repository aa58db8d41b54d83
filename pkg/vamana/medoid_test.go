package vamana

import "testing"

func TestFindMedoidCoversEveryFilter(t *testing.T) {
	s := newSyntheticStore(20, 3)

	m, err := FindMedoid(s, 5, newRng(1))
	if err != nil {
		t.Fatalf("FindMedoid: %v", err)
	}

	if len(m) != 2 {
		t.Fatalf("len(medoids) = %d, want 2 (filters 0 and 1)", len(m))
	}
	for label, v := range m {
		if s.Filter(v) != label {
			t.Errorf("medoid %d for label %v actually has label %v", v, label, s.Filter(v))
		}
	}
}

func TestFindMedoidRejectsInvalidTau(t *testing.T) {
	s := newSyntheticStore(4, 2)
	if _, err := FindMedoid(s, 0, newRng(1)); err == nil {
		t.Fatal("expected error for tau=0")
	}
}

func TestFindMedoidTauLargerThanPool(t *testing.T) {
	s := newSyntheticStore(4, 2)
	m, err := FindMedoid(s, 1000, newRng(1))
	if err != nil {
		t.Fatalf("FindMedoid: %v", err)
	}
	if len(m) != 2 {
		t.Fatalf("len(medoids) = %d, want 2", len(m))
	}
}

func TestFindMedoidTau17Fixture(t *testing.T) {
	s := newSyntheticStore(50, 3)

	m, err := FindMedoid(s, 17, newRng(3))
	if err != nil {
		t.Fatalf("FindMedoid: %v", err)
	}
	if len(m) != 2 {
		t.Fatalf("len(medoids) = %d, want 2", len(m))
	}
	if m[0]%2 != 0 {
		t.Errorf("filter-0 medoid %d is not an even index", m[0])
	}
	if m[1]%2 != 1 {
		t.Errorf("filter-1 medoid %d is not an odd index", m[1])
	}
}

func TestSampleMedoidFromSubsetDeterministic(t *testing.T) {
	subset := []uint32{10, 20, 30, 40, 50}
	a := SampleMedoidFromSubset(subset, 3, newRng(7))
	b := SampleMedoidFromSubset(subset, 3, newRng(7))
	if a != b {
		t.Errorf("same seed produced different picks: %d vs %d", a, b)
	}
	found := false
	for _, v := range subset {
		if v == a {
			found = true
		}
	}
	if !found {
		t.Errorf("picked vertex %d is not in the subset", a)
	}
}
