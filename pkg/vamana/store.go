package vamana

import (
	"encoding/binary"
	"io"
	"sync"
)

// NoFilter is the sentinel filter label meaning "matches anything."
const NoFilter float32 = -1

// VectorStore owns the raw vectors, per-point filter labels, the inverse
// filter->index map, and a squared-Euclidean distance cache. Base vectors
// occupy indices [0, nBase); query vectors appended via ReadQueries occupy
// [nBase, nBase+nQuery) in the same index space.
//
// A VectorStore is built once and is read-only thereafter except for the
// fill-on-read distance cache, which is safe for concurrent use.
type VectorStore struct {
	dim     int
	nBase   uint32
	vectors [][]float32
	filters []float32

	filtersMap map[float32]map[uint32]struct{}

	cacheMu sync.Mutex
	cache   []float32 // triangular, index via triIndex; -1 means uncomputed
}

// NewVectorStore creates an empty store for dim-dimensional vectors.
func NewVectorStore(dim int) (*VectorStore, error) {
	if dim <= 0 {
		return nil, &ShapeError{Msg: "dimension must be positive"}
	}
	return &VectorStore{
		dim:        dim,
		vectors:    nil,
		filters:    nil,
		filtersMap: make(map[float32]map[uint32]struct{}),
	}, nil
}

// triIndex maps (i, j) to a single offset into the symmetric triangular cache.
func triIndex(i, j uint32) int {
	if i > j {
		i, j = j, i
	}
	return int(j)*int(j+1)/2 + int(i)
}

// Load ingests nBase base vectors (plus room for nQuery queries) from source.
// Each base record is: f32 filter, f32 timestamp (ignored), dim x f32 values.
func (s *VectorStore) Load(source io.Reader, nBase, nQuery int) error {
	if nBase <= 0 {
		return &ShapeError{Msg: "n_base must be positive"}
	}
	if nQuery < 0 {
		return &ShapeError{Msg: "n_query cannot be negative"}
	}

	var fileCount uint32
	if err := binary.Read(source, binary.LittleEndian, &fileCount); err != nil {
		return &IoError{Op: "read base count", Err: err}
	}
	if int(fileCount) < nBase {
		nBase = int(fileCount)
	}

	total := nBase + nQuery
	s.vectors = make([][]float32, total)
	s.filters = make([]float32, total)
	s.cache = make([]float32, triIndex(uint32(total), uint32(total))+1)
	for i := range s.cache {
		s.cache[i] = -1
	}
	for i := 0; i < total; i++ {
		s.cache[triIndex(uint32(i), uint32(i))] = 0
	}

	for i := 0; i < nBase; i++ {
		var filter, timestamp float32
		if err := binary.Read(source, binary.LittleEndian, &filter); err != nil {
			return &IoError{Op: "read base filter", Err: err}
		}
		if err := binary.Read(source, binary.LittleEndian, &timestamp); err != nil {
			return &IoError{Op: "read base timestamp", Err: err}
		}

		values := make([]float32, s.dim)
		if err := binary.Read(source, binary.LittleEndian, &values); err != nil {
			return &IoError{Op: "read base values", Err: err}
		}

		s.filters[i] = filter
		s.vectors[i] = values
		s.addToFiltersMap(filter, uint32(i))
	}

	s.nBase = uint32(nBase)
	return nil
}

// ReadQueries appends up to m query records, skipping timestamp-only records
// (type > 1). Surviving queries are numbered consecutively from the base
// size, Size(). Returns the number of queries actually appended.
func (s *VectorStore) ReadQueries(source io.Reader, m int) (int, error) {
	if s.vectors == nil {
		return 0, &ShapeError{Msg: "store must be loaded before reading queries"}
	}

	var fileCount uint32
	if err := binary.Read(source, binary.LittleEndian, &fileCount); err != nil {
		return 0, &IoError{Op: "read query count", Err: err}
	}
	if int(fileCount) < m {
		m = int(fileCount)
	}

	appended := 0
	next := int(s.nBase) + s.countQueries()
	for appended < m {
		var qtype float32
		if err := binary.Read(source, binary.LittleEndian, &qtype); err != nil {
			if err == io.EOF {
				break
			}
			return appended, &IoError{Op: "read query type", Err: err}
		}

		if qtype > 1 {
			if err := skipFloats(source, s.dim+3); err != nil {
				return appended, &IoError{Op: "skip ignored query", Err: err}
			}
			continue
		}

		var filter, ts1, ts2 float32
		if err := binary.Read(source, binary.LittleEndian, &filter); err != nil {
			return appended, &IoError{Op: "read query filter", Err: err}
		}
		if err := binary.Read(source, binary.LittleEndian, &ts1); err != nil {
			return appended, &IoError{Op: "read query timestamp", Err: err}
		}
		if err := binary.Read(source, binary.LittleEndian, &ts2); err != nil {
			return appended, &IoError{Op: "read query timestamp", Err: err}
		}

		values := make([]float32, s.dim)
		if err := binary.Read(source, binary.LittleEndian, &values); err != nil {
			return appended, &IoError{Op: "read query values", Err: err}
		}

		if qtype == 0 {
			filter = NoFilter
		}

		if next >= len(s.vectors) {
			return appended, &ShapeError{Msg: "more queries read than reserved via nQuery"}
		}
		s.filters[next] = filter
		s.vectors[next] = values
		next++
		appended++
	}

	return appended, nil
}

func skipFloats(source io.Reader, n int) error {
	buf := make([]float32, n)
	return binary.Read(source, binary.LittleEndian, &buf)
}

func (s *VectorStore) countQueries() int {
	count := 0
	for i := int(s.nBase); i < len(s.vectors); i++ {
		if s.vectors[i] != nil {
			count++
		}
	}
	return count
}

func (s *VectorStore) addToFiltersMap(filter float32, idx uint32) {
	set, ok := s.filtersMap[filter]
	if !ok {
		set = make(map[uint32]struct{})
		s.filtersMap[filter] = set
	}
	set[idx] = struct{}{}
}

// Dim returns the vector dimension.
func (s *VectorStore) Dim() int { return s.dim }

// Size returns the number of base vectors (Nbase).
func (s *VectorStore) Size() uint32 { return s.nBase }

// Len returns the total number of vectors currently held (base + queries).
func (s *VectorStore) Len() int { return len(s.vectors) }

// Get returns the raw vector at index i.
func (s *VectorStore) Get(i uint32) []float32 { return s.vectors[i] }

// Filter returns the filter label of index i.
func (s *VectorStore) Filter(i uint32) float32 { return s.filters[i] }

// SameFilter reports whether i and j are filter-compatible: their labels are
// equal, or at least one is the NoFilter sentinel.
func (s *VectorStore) SameFilter(i, j uint32) bool {
	fi, fj := s.filters[i], s.filters[j]
	return fi == fj || fi == NoFilter || fj == NoFilter
}

// FilterIndices returns the set of base indices carrying the given label.
func (s *VectorStore) FilterIndices(label float32) map[uint32]struct{} {
	return s.filtersMap[label]
}

// Filters returns every distinct filter label present in the base set,
// excluding NoFilter (base vectors labelled NoFilter get no label of their own).
func (s *VectorStore) Filters() []float32 {
	labels := make([]float32, 0, len(s.filtersMap))
	for label := range s.filtersMap {
		if label == NoFilter {
			continue
		}
		labels = append(labels, label)
	}
	return labels
}

// Distance returns the squared Euclidean distance between i and j, filling
// the triangular cache on first access. Safe for concurrent readers.
func (s *VectorStore) Distance(i, j uint32) float32 {
	idx := triIndex(i, j)

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if s.cache[idx] >= 0 {
		return s.cache[idx]
	}

	d := squaredEuclidean(s.vectors[i], s.vectors[j])
	s.cache[idx] = d
	return d
}

// DistanceTo computes the squared Euclidean distance from index i to an
// arbitrary query vector not resident in the store (no caching).
func (s *VectorStore) DistanceTo(i uint32, query []float32) float32 {
	return squaredEuclidean(s.vectors[i], query)
}

func squaredEuclidean(a, b []float32) float32 {
	var sum float32
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}

// GroundtruthConfig controls how QueryGroundtruth interprets the groundtruth
// binary format. Some producers prefix the file with a single K:int32
// header; others concatenate fixed-size K-int32 blocks with no header at
// all. This must be agreed between producer and consumer rather than
// auto-detected (see the open question in the format notes).
type GroundtruthConfig struct {
	K         int  // neighbors per query record (benchmark convention: 100)
	HasHeader bool // whether a single leading int32 K header precedes the records
}

// DefaultGroundtruthConfig is the headerless layout with K=100.
func DefaultGroundtruthConfig() GroundtruthConfig {
	return GroundtruthConfig{K: 100, HasHeader: false}
}

// QueryGroundtruth reads the K nearest groundtruth indices for the q-th query
// record from a random-access groundtruth file.
func QueryGroundtruth(source io.ReaderAt, cfg GroundtruthConfig, q int) ([]uint32, error) {
	if cfg.K <= 0 {
		return nil, &ShapeError{Msg: "groundtruth K must be positive"}
	}

	var base int64
	if cfg.HasHeader {
		base = 4
	}
	offset := base + int64(q)*int64(cfg.K)*4

	buf := make([]byte, cfg.K*4)
	if _, err := source.ReadAt(buf, offset); err != nil {
		return nil, &IoError{Op: "read groundtruth record", Err: err}
	}

	result := make([]uint32, cfg.K)
	for i := 0; i < cfg.K; i++ {
		raw := int32(binary.LittleEndian.Uint32(buf[i*4 : i*4+4]))
		result[i] = uint32(raw) // -1 sentinel padding becomes 0xffffffff; callers check against len
		if raw < 0 {
			result[i] = ^uint32(0)
		}
	}
	return result, nil
}
