package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/therealutkarshpriyadarshi/vamana/pkg/observability"
	"github.com/therealutkarshpriyadarshi/vamana/pkg/vamana"
)

const version = "1.0.0"

func main() {
	var (
		baseFile        = flag.String("base", "", "base vector file (required)")
		queryFile       = flag.String("query", "", "query vector file (required)")
		groundtruthFile = flag.String("groundtruth", "", "groundtruth file (required)")
		n               = flag.Int("n", 0, "number of base vectors (required)")
		m               = flag.Int("m", 0, "vector dimensionality (required)")
		alpha           = flag.Float64("alpha", 1.2, "robust-prune diversification factor")
		l               = flag.Int("l", 150, "build/search candidate list size")
		tau             = flag.Int("tau", 20, "medoid sample size")
		queryIndex      = flag.Int("query-index", -1, "single query index to run, or -1 for a full recall sweep")

		algorithm = flag.String("algorithm", "filtered", "filtered or stitched")
		r         = flag.Int("r", 32, "out-degree cap (Filtered-Vamana)")
		lSmall    = flag.Int("lsmall", 100, "per-filter build candidate list size (Stitched-Vamana)")
		rSmall    = flag.Int("rsmall", 16, "per-filter subgraph out-degree cap (Stitched-Vamana)")
		rStitched = flag.Int("rstitched", 32, "post-stitch out-degree cap (Stitched-Vamana)")

		k = flag.Int("k", 10, "top-K for search")

		preloadedGraph     = flag.String("preloaded-graph", "", "skip build and load a serialized graph from this path")
		saveGraph          = flag.String("save-graph", "", "save the built graph to this path")
		randomGraph        = flag.Bool("random-graph", false, "skip the Vamana construction and search a random R-regular graph as a recall baseline")
		randomMedoid       = flag.Bool("random-medoid", false, "pick each filter's medoid uniformly at random instead of the tau-sample heuristic")
		randomSubsetMedoid = flag.Bool("random-subset-medoid", false, "degenerate the tau-sample heuristic to a single uniform draw per filter subset")
		limit              = flag.Int("limit", 0, "limit the number of queries evaluated in a recall sweep (0 = all)")
		seed               = flag.Int64("seed", 1, "RNG seed")

		groundtruthHasHeader = flag.Bool("groundtruth-has-header", false, "whether the groundtruth file carries a leading K header")
		groundtruthK         = flag.Int("groundtruth-k", 100, "K stored per groundtruth record")
	)
	flag.Parse()

	if *baseFile == "" || *queryFile == "" || *groundtruthFile == "" || *n <= 0 || *m <= 0 {
		fmt.Fprintln(os.Stderr, "base, query, groundtruth, n, and m are required")
		flag.Usage()
		os.Exit(2)
	}

	rng := rand.New(rand.NewSource(*seed))
	metrics := observability.NewMetrics()

	store, err := vamana.NewVectorStore(*m)
	if err != nil {
		fatal(err)
	}

	base, err := os.Open(*baseFile)
	if err != nil {
		fatal(err)
	}
	defer base.Close()
	if err := store.Load(base, *n, 10000); err != nil {
		fatal(err)
	}

	query, err := os.Open(*queryFile)
	if err != nil {
		fatal(err)
	}
	defer query.Close()
	nQueries, err := store.ReadQueries(query, 10000)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("loaded %d base vectors, %d queries\n", store.Size(), nQueries)

	var graph *vamana.Graph
	var medoids vamana.MedoidMap

	switch {
	case *preloadedGraph != "":
		f, err := os.Open(*preloadedGraph)
		if err != nil {
			fatal(err)
		}
		defer f.Close()
		graph, err = vamana.ReadGraph(f)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("loaded graph with %d vertices from %s\n", graph.Size(), *preloadedGraph)
	case *randomGraph:
		degree := *r
		if *algorithm == "stitched" {
			degree = *rStitched
		}
		graph = vamana.NewGraph(store.Size())
		if err := vamana.RandomRRegularGraph(graph, nil, degree, rng); err != nil {
			fatal(err)
		}
		fmt.Printf("initialized random %d-regular graph with %d vertices (no build pass)\n", degree, graph.Size())
	default:
		graph, medoids, err = buildGraph(store, *algorithm, rng, buildFlags{
			alpha: *alpha, l: *l, r: *r, tau: *tau,
			lSmall: *lSmall, rSmall: *rSmall, rStitched: *rStitched,
		})
		if err != nil {
			fatal(err)
		}
		fmt.Printf("built %s graph with %d vertices, %d medoids\n", *algorithm, graph.Size(), len(medoids))
	}

	if medoids == nil {
		medoids, err = pickMedoids(store, *tau, rng, *randomMedoid, *randomSubsetMedoid)
		if err != nil {
			fatal(err)
		}
	}

	if *saveGraph != "" {
		f, err := os.Create(*saveGraph)
		if err != nil {
			fatal(err)
		}
		if err := vamana.WriteGraph(f, graph); err != nil {
			f.Close()
			fatal(err)
		}
		f.Close()
		fmt.Printf("saved graph to %s\n", *saveGraph)
	}

	gtFile, err := os.Open(*groundtruthFile)
	if err != nil {
		fatal(err)
	}
	defer gtFile.Close()
	gtCfg := vamana.GroundtruthConfig{K: *groundtruthK, HasHeader: *groundtruthHasHeader}

	if *queryIndex >= 0 {
		runSingleQuery(graph, store, medoids, gtFile, gtCfg, uint32(store.Size())+uint32(*queryIndex), *queryIndex, *k, *l, metrics)
		return
	}

	runRecallSweep(graph, store, medoids, gtFile, gtCfg, nQueries, *k, *l, *limit, metrics)
}

type buildFlags struct {
	alpha              float64
	l, r, tau          int
	lSmall, rSmall, rStitched int
}

func buildGraph(store *vamana.VectorStore, algorithm string, rng *rand.Rand, f buildFlags) (*vamana.Graph, vamana.MedoidMap, error) {
	switch algorithm {
	case "stitched":
		return vamana.BuildStitchedVamana(store, vamana.StitchedBuildParams{
			RSmall:    f.rSmall,
			RStitched: f.rStitched,
			L:         f.lSmall,
			Alpha:     float32(f.alpha),
			Tau:       f.tau,
		}, rng)
	default:
		return vamana.BuildFilteredVamana(store, vamana.BuildParams{
			R:     f.r,
			L:     f.l,
			Alpha: float32(f.alpha),
			Tau:   f.tau,
		}, rng)
	}
}

func runSingleQuery(g *vamana.Graph, store *vamana.VectorStore, medoids vamana.MedoidMap, gt *os.File, gtCfg vamana.GroundtruthConfig, query uint32, queryIdx, k, l int, metrics *observability.Metrics) {
	starts := startsFor(store, medoids, query)
	result := vamana.Search(g, store, starts, query, k, l, 0)

	want, err := vamana.QueryGroundtruth(gt, gtCfg, queryIdx)
	if err != nil {
		fatal(err)
	}

	recall := recallAtK(result.TopK, want, k)
	metrics.RecordRecall(recall)
	fmt.Printf("query %d: top-%d = %v, recall@%d = %.4f\n", queryIdx, k, result.TopK, k, recall)
}

func runRecallSweep(g *vamana.Graph, store *vamana.VectorStore, medoids vamana.MedoidMap, gt *os.File, gtCfg vamana.GroundtruthConfig, nQueries, k, l, limit int, metrics *observability.Metrics) {
	if limit > 0 && limit < nQueries {
		nQueries = limit
	}

	var total float64
	for i := 0; i < nQueries; i++ {
		query := store.Size() + uint32(i)
		starts := startsFor(store, medoids, query)
		result := vamana.Search(g, store, starts, query, k, l, 0)

		want, err := vamana.QueryGroundtruth(gt, gtCfg, i)
		if err != nil {
			fatal(err)
		}
		recall := recallAtK(result.TopK, want, k)
		metrics.RecordRecall(recall)
		total += recall
	}

	if nQueries == 0 {
		fmt.Println("no queries evaluated")
		return
	}
	fmt.Printf("evaluated %d queries, mean recall@%d = %.4f\n", nQueries, k, total/float64(nQueries))
}

// pickMedoids resolves the medoid map for a graph that wasn't produced by
// one of the Build* passes (a preloaded or random-graph baseline). The
// random flags trade FindMedoid's tau-sample-then-pick heuristic for a
// cheaper uniform draw, for recall-sensitivity comparisons.
func pickMedoids(store *vamana.VectorStore, tau int, rng *rand.Rand, randomMedoid, randomSubsetMedoid bool) (vamana.MedoidMap, error) {
	switch {
	case randomMedoid:
		m := make(vamana.MedoidMap)
		for _, label := range store.Filters() {
			pf := store.FilterIndices(label)
			if len(pf) == 0 {
				continue
			}
			pool := make([]uint32, 0, len(pf))
			for idx := range pf {
				pool = append(pool, idx)
			}
			m[label] = pool[rng.Intn(len(pool))]
		}
		return m, nil
	case randomSubsetMedoid:
		m := make(vamana.MedoidMap)
		for _, label := range store.Filters() {
			pf := store.FilterIndices(label)
			if len(pf) == 0 {
				continue
			}
			pool := make([]uint32, 0, len(pf))
			for idx := range pf {
				pool = append(pool, idx)
			}
			m[label] = vamana.SampleMedoidFromSubset(pool, 1, rng)
		}
		return m, nil
	default:
		return vamana.FindMedoid(store, tau, rng)
	}
}

func startsFor(store *vamana.VectorStore, medoids vamana.MedoidMap, query uint32) []uint32 {
	filter := store.Filter(query)
	if filter == vamana.NoFilter {
		starts := make([]uint32, 0, len(medoids))
		for _, m := range medoids {
			starts = append(starts, m)
		}
		return starts
	}
	if m, ok := medoids[filter]; ok {
		return []uint32{m}
	}
	return nil
}

func recallAtK(got []uint32, want []uint32, k int) float64 {
	if k > len(want) {
		k = len(want)
	}
	if k == 0 {
		return 0
	}
	wantSet := make(map[uint32]struct{}, k)
	for i := 0; i < k; i++ {
		wantSet[want[i]] = struct{}{}
	}
	hits := 0
	for _, v := range got {
		if _, ok := wantSet[v]; ok {
			hits++
		}
	}
	return float64(hits) / float64(k)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
