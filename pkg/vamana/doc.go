// Package vamana implements filter-aware approximate nearest neighbor graph
// construction and search: Filtered-Vamana and Stitched-Vamana index builds
// over a squared-Euclidean vector store, a directed index-addressed proximity
// graph, and the greedy search / robust-prune routines that build and query
// it.
package vamana
