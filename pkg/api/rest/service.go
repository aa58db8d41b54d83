package rest

import (
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/therealutkarshpriyadarshi/vamana/pkg/observability"
	"github.com/therealutkarshpriyadarshi/vamana/pkg/vamana"
)

// Service holds the in-process vamana index state the REST handlers operate
// on: a loaded vector store, the active graph and medoid map, and a build
// lock so at most one build runs at a time.
type Service struct {
	mu sync.RWMutex

	store   *vamana.VectorStore
	graph   *vamana.Graph
	medoids vamana.MedoidMap

	buildMu sync.Mutex

	logger  *observability.Logger
	metrics *observability.Metrics
	rng     *rand.Rand
}

// NewService creates an empty service; LoadDataset and one of the Build
// methods must run before Search will return results.
func NewService(logger *observability.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		logger:  logger,
		metrics: metrics,
		rng:     rand.New(rand.NewSource(1)),
	}
}

// LoadDataset opens a base vector file (and, if queryPath is non-empty, a
// query file) and replaces the service's vector store.
func (s *Service) LoadDataset(basePath, queryPath string, dim, nBase, nQuery int) error {
	store, err := vamana.NewVectorStore(dim)
	if err != nil {
		return err
	}

	baseFile, err := os.Open(basePath)
	if err != nil {
		return &vamana.IoError{Op: "open base file", Err: err}
	}
	defer baseFile.Close()

	if err := store.Load(baseFile, nBase, nQuery); err != nil {
		return err
	}

	if queryPath != "" && nQuery > 0 {
		queryFile, err := os.Open(queryPath)
		if err != nil {
			return &vamana.IoError{Op: "open query file", Err: err}
		}
		defer queryFile.Close()

		if _, err := store.ReadQueries(queryFile, nQuery); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.store = store
	s.graph = nil
	s.medoids = nil
	s.mu.Unlock()

	s.logger.Info("dataset loaded", map[string]interface{}{
		"base_path":  basePath,
		"query_path": queryPath,
		"n_base":     nBase,
		"n_query":    nQuery,
	})
	return nil
}

// BuildFiltered runs a Filtered-Vamana build and installs the result.
func (s *Service) BuildFiltered(params vamana.BuildParams) error {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	if store == nil {
		return &vamana.ShapeError{Msg: "no dataset loaded"}
	}

	s.logger.Info("starting filtered-vamana build", map[string]interface{}{"r": params.R, "l": params.L, "alpha": params.Alpha})
	start := time.Now()
	graph, medoids, err := vamana.BuildFilteredVamana(store, params, s.rng)
	if err != nil {
		s.logger.Errorf("filtered-vamana build failed: %v", err)
		return err
	}
	duration := time.Since(start)

	s.mu.Lock()
	s.graph = graph
	s.medoids = medoids
	s.mu.Unlock()

	s.metrics.RecordBuild("filtered", duration, int(graph.Size()), len(medoids), outDegrees(graph))
	s.logger.Info("filtered-vamana build complete", map[string]interface{}{
		"duration": duration,
		"vertices": graph.Size(),
		"medoids":  len(medoids),
	})
	return nil
}

// BuildStitched runs a Stitched-Vamana build and installs the result.
func (s *Service) BuildStitched(params vamana.StitchedBuildParams) error {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	if store == nil {
		return &vamana.ShapeError{Msg: "no dataset loaded"}
	}

	s.logger.Info("starting stitched-vamana build", map[string]interface{}{"r_small": params.RSmall, "r_stitched": params.RStitched, "l": params.L})
	start := time.Now()
	graph, medoids, err := vamana.BuildStitchedVamana(store, params, s.rng)
	if err != nil {
		s.logger.Errorf("stitched-vamana build failed: %v", err)
		s.metrics.RecordFilteredSubgraph(false)
		return err
	}
	duration := time.Since(start)

	s.mu.Lock()
	s.graph = graph
	s.medoids = medoids
	s.mu.Unlock()

	s.metrics.RecordFilteredSubgraph(true)
	s.metrics.RecordBuild("stitched", duration, int(graph.Size()), len(medoids), outDegrees(graph))
	s.logger.Info("stitched-vamana build complete", map[string]interface{}{
		"duration": duration,
		"vertices": graph.Size(),
		"medoids":  len(medoids),
	})
	return nil
}

// outDegrees collects the out-degree of every vertex in g, for feeding the
// build out-degree histogram.
func outDegrees(g *vamana.Graph) []int {
	degrees := make([]int, g.Size())
	for v := uint32(0); v < g.Size(); v++ {
		degrees[v] = g.OutDegree(v)
	}
	return degrees
}

// LoadGraph deserializes a previously saved graph file and installs it,
// paired with a freshly recomputed medoid map (the medoid map itself isn't
// part of the serialized format, per the graph serializer design).
func (s *Service) LoadGraph(path string, tau int) error {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	if store == nil {
		return &vamana.ShapeError{Msg: "no dataset loaded"}
	}

	f, err := os.Open(path)
	if err != nil {
		return &vamana.IoError{Op: "open graph file", Err: err}
	}
	defer f.Close()

	graph, err := vamana.ReadGraph(f)
	if err != nil {
		return err
	}

	medoids, err := vamana.FindMedoid(store, tau, s.rng)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.graph = graph
	s.medoids = medoids
	s.mu.Unlock()

	s.logger.Info("graph loaded", map[string]interface{}{"path": path, "vertices": graph.Size()})
	return nil
}

// SaveGraph serializes the active graph to path.
func (s *Service) SaveGraph(path string) error {
	s.mu.RLock()
	graph := s.graph
	s.mu.RUnlock()
	if graph == nil {
		return &vamana.ShapeError{Msg: "no graph built"}
	}

	f, err := os.Create(path)
	if err != nil {
		return &vamana.IoError{Op: "create graph file", Err: err}
	}
	defer f.Close()

	if err := vamana.WriteGraph(f, graph); err != nil {
		return err
	}
	s.logger.Info("graph saved", map[string]interface{}{"path": path, "vertices": graph.Size()})
	return nil
}

// SearchRequest is the parsed body of a search call.
type SearchRequest struct {
	Query     uint32  `json:"query"`
	K         int     `json:"k"`
	L         int     `json:"l"`
	StepLimit int     `json:"step_limit"`
	Filter    float32 `json:"filter"`
}

// SearchResponse is the body returned by a search call.
type SearchResponse struct {
	TopK    []uint32 `json:"top_k"`
	Visited int      `json:"visited"`
}

// Search runs a filtered or unfiltered greedy search against the active
// graph. If req.Filter is vamana.NoFilter, the search dispatches against
// every registered medoid and merges the candidate set; otherwise it starts
// from the single medoid for req.Filter and returns NoMedoidError if none is
// registered.
func (s *Service) Search(req SearchRequest) (SearchResponse, error) {
	start := time.Now()

	s.mu.RLock()
	store, graph, medoids := s.store, s.graph, s.medoids
	s.mu.RUnlock()

	if store == nil || graph == nil {
		s.metrics.RecordRequest("search", "error", time.Since(start))
		s.metrics.RecordError("search", "no_graph")
		return SearchResponse{}, &vamana.ShapeError{Msg: "no graph built"}
	}

	filtered := req.Filter != vamana.NoFilter
	var starts []uint32
	if !filtered {
		for _, m := range medoids {
			starts = append(starts, m)
		}
	} else {
		m, ok := medoids[req.Filter]
		if !ok {
			s.metrics.RecordNoMedoid()
			s.metrics.RecordRequest("search", "error", time.Since(start))
			s.metrics.RecordError("search", "no_medoid")
			return SearchResponse{}, &vamana.NoMedoidError{Filter: req.Filter}
		}
		starts = []uint32{m}
	}

	result := vamana.Search(graph, store, starts, req.Query, req.K, req.L, req.StepLimit)
	duration := time.Since(start)

	s.metrics.RecordSearch(filtered, duration, len(result.TopK), len(result.Visited))
	s.metrics.RecordRequest("search", "ok", duration)
	s.logger.Info("search complete", map[string]interface{}{
		"query":    req.Query,
		"k":        req.K,
		"filtered": filtered,
		"duration": duration,
		"visited":  len(result.Visited),
	})
	return SearchResponse{TopK: result.TopK, Visited: len(result.Visited)}, nil
}

// Ready reports whether a dataset and graph are both loaded.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store != nil && s.graph != nil
}
