package vamana

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func writeBaseFile(t *testing.T, records [][3]float32, dim int, values [][]float32) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, int32(len(records)))
	for i, rec := range records {
		binary.Write(buf, binary.LittleEndian, rec[0]) // filter
		binary.Write(buf, binary.LittleEndian, rec[1]) // timestamp
		binary.Write(buf, binary.LittleEndian, values[i])
	}
	return buf.Bytes()
}

func TestVectorStoreLoad(t *testing.T) {
	dim := 2
	values := [][]float32{{1, 2}, {3, 4}, {5, 6}}
	records := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 0, 0}}
	data := writeBaseFile(t, records, dim, values)

	s, err := NewVectorStore(dim)
	if err != nil {
		t.Fatalf("NewVectorStore: %v", err)
	}
	if err := s.Load(bytes.NewReader(data), 3, 0); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if s.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", s.Size())
	}
	if got := s.Get(1); got[0] != 3 || got[1] != 4 {
		t.Errorf("Get(1) = %v, want [3 4]", got)
	}
	if s.Filter(1) != 1 {
		t.Errorf("Filter(1) = %v, want 1", s.Filter(1))
	}
}

func TestVectorStoreLoadClampsToFileCount(t *testing.T) {
	dim := 1
	values := [][]float32{{1}, {2}}
	records := [][3]float32{{0, 0, 0}, {0, 0, 0}}
	data := writeBaseFile(t, records, dim, values)

	s, _ := NewVectorStore(dim)
	if err := s.Load(bytes.NewReader(data), 10, 0); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Size() != 2 {
		t.Errorf("Size() = %d, want 2 (clamped to file record count)", s.Size())
	}
}

func TestVectorStoreSameFilter(t *testing.T) {
	dim := 1
	values := [][]float32{{1}, {2}, {3}}
	records := [][3]float32{{0, 0, 0}, {1, 0, 0}, {NoFilter, 0, 0}}
	data := writeBaseFile(t, records, dim, values)

	s, _ := NewVectorStore(dim)
	if err := s.Load(bytes.NewReader(data), 3, 0); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if s.SameFilter(0, 1) {
		t.Error("filters 0 and 1 should not match")
	}
	if !s.SameFilter(0, 2) {
		t.Error("NoFilter should match any label")
	}
	if !s.SameFilter(0, 0) {
		t.Error("a filter should match itself")
	}
}

func TestVectorStoreReadQueries(t *testing.T) {
	dim := 1
	baseValues := [][]float32{{1}, {2}}
	baseRecords := [][3]float32{{0, 0, 0}, {1, 0, 0}}
	baseData := writeBaseFile(t, baseRecords, dim, baseValues)

	s, _ := NewVectorStore(dim)
	if err := s.Load(bytes.NewReader(baseData), 2, 2); err != nil {
		t.Fatalf("Load: %v", err)
	}

	qbuf := &bytes.Buffer{}
	binary.Write(qbuf, binary.LittleEndian, int32(3)) // file claims 3 records

	// record 1: a real filtered query (type 1, filter 1)
	binary.Write(qbuf, binary.LittleEndian, float32(1))
	binary.Write(qbuf, binary.LittleEndian, float32(1)) // filter
	binary.Write(qbuf, binary.LittleEndian, float32(0)) // ts1
	binary.Write(qbuf, binary.LittleEndian, float32(0)) // ts2
	binary.Write(qbuf, binary.LittleEndian, []float32{9})

	// record 2: an ignored timestamp-only record (type 2)
	binary.Write(qbuf, binary.LittleEndian, float32(2))
	binary.Write(qbuf, binary.LittleEndian, []float32{0, 0, 0, 9}) // dim+3 skipped floats

	// record 3: an unfiltered query (type 0) whose file filter should be overridden to NoFilter
	binary.Write(qbuf, binary.LittleEndian, float32(0))
	binary.Write(qbuf, binary.LittleEndian, float32(1)) // filter in file (should be discarded)
	binary.Write(qbuf, binary.LittleEndian, float32(0)) // ts1
	binary.Write(qbuf, binary.LittleEndian, float32(0)) // ts2
	binary.Write(qbuf, binary.LittleEndian, []float32{8})

	n, err := s.ReadQueries(bytes.NewReader(qbuf.Bytes()), 3)
	if err != nil {
		t.Fatalf("ReadQueries: %v", err)
	}
	if n != 2 {
		t.Fatalf("ReadQueries appended = %d, want 2 (one record ignored)", n)
	}

	if s.Filter(2) != 1 {
		t.Errorf("query 0 filter = %v, want 1", s.Filter(2))
	}
	if s.Filter(3) != NoFilter {
		t.Errorf("query 1 filter = %v, want NoFilter (type 0 override)", s.Filter(3))
	}
}

func TestVectorStoreDistanceCache(t *testing.T) {
	dim := 2
	values := [][]float32{{0, 0}, {3, 4}}
	records := [][3]float32{{0, 0, 0}, {0, 0, 0}}
	data := writeBaseFile(t, records, dim, values)

	s, _ := NewVectorStore(dim)
	s.Load(bytes.NewReader(data), 2, 0)

	if d := s.Distance(0, 1); d != 25 {
		t.Errorf("Distance(0,1) = %v, want 25", d)
	}
	// Second read should hit the cache and return the same value.
	if d := s.Distance(1, 0); d != 25 {
		t.Errorf("Distance(1,0) = %v, want 25 (cache symmetry)", d)
	}
	if d := s.Distance(0, 0); d != 0 {
		t.Errorf("Distance(0,0) = %v, want 0", d)
	}
}

func TestQueryGroundtruthNoHeader(t *testing.T) {
	cfg := GroundtruthConfig{K: 2, HasHeader: false}
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, []int32{10, 20}) // query 0
	binary.Write(buf, binary.LittleEndian, []int32{30, -1}) // query 1, padded

	r := bytes.NewReader(buf.Bytes())

	got, err := QueryGroundtruth(r, cfg, 1)
	if err != nil {
		t.Fatalf("QueryGroundtruth: %v", err)
	}
	if got[0] != 30 {
		t.Errorf("got[0] = %d, want 30", got[0])
	}
	if got[1] != ^uint32(0) {
		t.Errorf("got[1] = %d, want sentinel", got[1])
	}
}

func TestQueryGroundtruthWithHeader(t *testing.T) {
	cfg := GroundtruthConfig{K: 1, HasHeader: true}
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, int32(1)) // header
	binary.Write(buf, binary.LittleEndian, int32(42))

	got, err := QueryGroundtruth(bytes.NewReader(buf.Bytes()), cfg, 0)
	if err != nil {
		t.Fatalf("QueryGroundtruth: %v", err)
	}
	if got[0] != 42 {
		t.Errorf("got[0] = %d, want 42", got[0])
	}
}
