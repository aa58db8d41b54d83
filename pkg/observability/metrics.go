package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the vamana build/search service
type Metrics struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestErrors   *prometheus.CounterVec

	// Build metrics
	BuildsTotal       *prometheus.CounterVec
	BuildDuration     *prometheus.HistogramVec
	BuildGraphSize    *prometheus.GaugeVec
	BuildOutDegree    *prometheus.HistogramVec
	BuildMedoidCount  *prometheus.GaugeVec
	FilteredSubgraphs *prometheus.CounterVec

	// Search metrics
	SearchesTotal    *prometheus.CounterVec
	SearchLatency    *prometheus.HistogramVec
	SearchRecall     prometheus.Histogram
	SearchResultSize prometheus.Histogram
	SearchVisited    prometheus.Histogram
	NoMedoidTotal    prometheus.Counter

	// System metrics
	GoroutinesCount prometheus.Gauge
	MemoryUsage     prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		// Request metrics
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vamana_requests_total",
				Help: "Total number of requests by method and status",
			},
			[]string{"method", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vamana_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		RequestErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vamana_request_errors_total",
				Help: "Total number of request errors by method and error type",
			},
			[]string{"method", "error_type"},
		),

		// Build metrics
		BuildsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vamana_builds_total",
				Help: "Total number of graph builds by algorithm",
			},
			[]string{"algorithm"},
		),
		BuildDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vamana_build_duration_seconds",
				Help:    "Graph build duration in seconds by algorithm",
				Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"algorithm"},
		),
		BuildGraphSize: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vamana_build_graph_vertices",
				Help: "Number of vertices in the most recently built graph",
			},
			[]string{"algorithm"},
		),
		BuildOutDegree: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vamana_build_out_degree",
				Help:    "Distribution of final out-degree across vertices",
				Buckets: []float64{1, 2, 4, 8, 12, 16, 24, 32, 48, 64},
			},
			[]string{"algorithm"},
		),
		BuildMedoidCount: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vamana_build_medoid_count",
				Help: "Number of distinct filter medoids registered",
			},
			[]string{"algorithm"},
		),
		FilteredSubgraphs: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vamana_stitched_subgraphs_total",
				Help: "Total number of per-filter subgraphs built by Stitched-Vamana",
			},
			[]string{"status"},
		),

		// Search metrics
		SearchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vamana_searches_total",
				Help: "Total number of search operations by filter mode",
			},
			[]string{"filtered"},
		),
		SearchLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vamana_search_latency_seconds",
				Help:    "Search latency in seconds by filter mode",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"filtered"},
		),
		SearchRecall: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vamana_search_recall",
				Help:    "Recall@K against groundtruth (0-1)",
				Buckets: []float64{.8, .85, .9, .92, .94, .95, .96, .97, .98, .99, 1.0},
			},
		),
		SearchResultSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vamana_search_result_size",
				Help:    "Number of results returned by search",
				Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
			},
		),
		SearchVisited: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vamana_search_visited_count",
				Help:    "Number of vertices visited per search before termination",
				Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600},
			},
		),
		NoMedoidTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "vamana_no_medoid_total",
				Help: "Total number of searches that hit a filter label with no registered medoid",
			},
		),

		// System metrics
		GoroutinesCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "vamana_goroutines",
				Help: "Current number of goroutines",
			},
		),
		MemoryUsage: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "vamana_memory_bytes",
				Help: "Memory usage in bytes",
			},
		),
	}

	return m
}

// RecordRequest records a request with duration and status
func (m *Metrics) RecordRequest(method, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, status).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordError records an error
func (m *Metrics) RecordError(method, errorType string) {
	m.RequestErrors.WithLabelValues(method, errorType).Inc()
}

// RecordBuild records a completed graph build
func (m *Metrics) RecordBuild(algorithm string, duration time.Duration, vertices int, medoids int, outDegrees []int) {
	m.BuildsTotal.WithLabelValues(algorithm).Inc()
	m.BuildDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
	m.BuildGraphSize.WithLabelValues(algorithm).Set(float64(vertices))
	m.BuildMedoidCount.WithLabelValues(algorithm).Set(float64(medoids))
	for _, d := range outDegrees {
		m.BuildOutDegree.WithLabelValues(algorithm).Observe(float64(d))
	}
}

// RecordFilteredSubgraph records the completion (or failure) of one
// Stitched-Vamana per-filter subgraph build.
func (m *Metrics) RecordFilteredSubgraph(ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	m.FilteredSubgraphs.WithLabelValues(status).Inc()
}

// RecordSearch records a search operation
func (m *Metrics) RecordSearch(filtered bool, duration time.Duration, resultSize, visited int) {
	label := "false"
	if filtered {
		label = "true"
	}
	m.SearchesTotal.WithLabelValues(label).Inc()
	m.SearchLatency.WithLabelValues(label).Observe(duration.Seconds())
	m.SearchResultSize.Observe(float64(resultSize))
	m.SearchVisited.Observe(float64(visited))
}

// RecordRecall records an observed recall@K sample against groundtruth
func (m *Metrics) RecordRecall(recall float64) {
	m.SearchRecall.Observe(recall)
}

// RecordNoMedoid records a search whose filter label had no registered medoid
func (m *Metrics) RecordNoMedoid() {
	m.NoMedoidTotal.Inc()
}

// UpdateGoroutineCount updates goroutine count
func (m *Metrics) UpdateGoroutineCount(count int) {
	m.GoroutinesCount.Set(float64(count))
}

// UpdateMemoryUsage updates memory usage
func (m *Metrics) UpdateMemoryUsage(bytes uint64) {
	m.MemoryUsage.Set(float64(bytes))
}
