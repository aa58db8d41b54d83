package vamana

import "sort"

// Candidate pairs a vertex with its distance to the active query. Ordering
// is lexicographic on (Dist, Vertex) so that search results are reproducible
// when distances tie.
type Candidate struct {
	Dist   float32
	Vertex uint32
}

func less(a, b Candidate) bool {
	if a.Dist != b.Dist {
		return a.Dist < b.Dist
	}
	return a.Vertex < b.Vertex
}

// beam is the bounded, sorted frontier maintained by Search. It is backed by
// a slice kept in (Dist, Vertex) order rather than a balanced tree: L is
// small in practice (100-200) so linear-cost insertion is not a bottleneck,
// and it keeps the membership test O(1) via the companion set.
type beam struct {
	items   []Candidate
	present map[uint32]struct{}
}

func newBeam() *beam {
	return &beam{present: make(map[uint32]struct{})}
}

func (b *beam) insert(c Candidate) {
	if _, ok := b.present[c.Vertex]; ok {
		return
	}
	i := sort.Search(len(b.items), func(i int) bool { return less(c, b.items[i]) })
	b.items = append(b.items, Candidate{})
	copy(b.items[i+1:], b.items[i:])
	b.items[i] = c
	b.present[c.Vertex] = struct{}{}
}

func (b *beam) truncate(l int) {
	if len(b.items) <= l {
		return
	}
	for _, c := range b.items[l:] {
		delete(b.present, c.Vertex)
	}
	b.items = b.items[:l]
}

// firstUnvisited returns the index of the closest candidate not yet visited,
// or -1 if every candidate has been visited.
func (b *beam) firstUnvisited(visited []bool) int {
	for i, c := range b.items {
		if !visited[c.Vertex] {
			return i
		}
	}
	return -1
}

// SearchResult is the outcome of a filtered greedy search.
type SearchResult struct {
	TopK    []uint32
	Visited []Candidate // the candidate pool consumed by robust-prune during construction
}

// Search runs the filtered beam-style greedy search of C4. starts seeds the
// beam with every vertex that is filter-compatible with query; a filtered
// query typically passes a single medoid, an unfiltered query passes every
// registered medoid. stepLimit caps the number of expansion iterations (0 or
// negative means unbounded).
func Search(g *Graph, store *VectorStore, starts []uint32, query uint32, k, l, stepLimit int) SearchResult {
	n := g.Size()
	visited := make([]bool, n)
	b := newBeam()

	qVec := store.Get(query)

	for _, s := range starts {
		if !store.SameFilter(query, s) {
			continue
		}
		b.insert(Candidate{Dist: store.DistanceTo(s, qVec), Vertex: s})
	}

	steps := 0
	for {
		if stepLimit > 0 && steps >= stepLimit {
			break
		}
		steps++

		idx := b.firstUnvisited(visited)
		if idx == -1 {
			break
		}
		pStar := b.items[idx].Vertex
		visited[pStar] = true

		for w := range g.Neighbors(pStar) {
			if visited[w] {
				continue
			}
			if !store.SameFilter(query, w) {
				continue
			}
			b.insert(Candidate{Dist: store.DistanceTo(w, qVec), Vertex: w})
		}

		if len(b.items) > l {
			b.truncate(l)
		}
	}

	topK := make([]uint32, 0, k)
	for i := 0; i < k && i < len(b.items); i++ {
		topK = append(topK, b.items[i].Vertex)
	}

	// The candidate pool handed to robust-prune is the surviving beam plus
	// every vertex visited along the way (even if later truncated out).
	pool := newBeam()
	for _, c := range b.items {
		pool.insert(c)
	}
	for v := uint32(0); v < n; v++ {
		if visited[v] {
			pool.insert(Candidate{Dist: store.DistanceTo(v, qVec), Vertex: v})
		}
	}

	return SearchResult{TopK: topK, Visited: pool.items}
}
