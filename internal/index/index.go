// Package index maintains the hypergraph's lookup structures (spec §3
// Indexes): by-type, by-argument (backed by a directed adjacency graph so
// the propagator can walk neighbors), structural, temporal-interval, and
// concept-popularity.
package index

import (
	"strings"
	"sync"

	"github.com/dominikbraun/graph"
)

func identity(s string) string { return s }

// Index holds every lookup structure the kernel's store and propagator
// need. It is safe for concurrent readers; the kernel serializes writers
// through the event loop (spec §5).
type Index struct {
	mu sync.RWMutex

	byType map[string]map[string]struct{}
	byArg  map[string]map[string]struct{}
	// structural maps a "type|arg1,arg2,..." key (args in order) back to the
	// canonical edge ID, letting rules ask "does an edge like this already
	// exist" without rebuilding the exact ID string.
	structural map[string]string

	temporalIntervals map[string]struct{ Start, End int64 }
	popularity        map[string]int

	// neighbors is a directed graph over edge IDs: an edge from A to B
	// means B references A as one of its arguments. It backs propagation's
	// neighbor enumeration (spec §4.2 step 4) with a real graph library
	// instead of a hand-rolled adjacency map.
	neighbors graph.Graph[string, string]
}

// New creates an empty index set.
func New() *Index {
	return &Index{
		byType:            make(map[string]map[string]struct{}),
		byArg:             make(map[string]map[string]struct{}),
		structural:        make(map[string]string),
		temporalIntervals: make(map[string]struct{ Start, End int64 }),
		popularity:        make(map[string]int),
		neighbors:         graph.New(identity, graph.Directed()),
	}
}

func addEdgeID(m map[string]map[string]struct{}, key, id string) {
	s, ok := m[key]
	if !ok {
		s = make(map[string]struct{})
		m[key] = s
	}
	s[id] = struct{}{}
}

func removeEdgeID(m map[string]map[string]struct{}, key, id string) {
	if s, ok := m[key]; ok {
		delete(s, id)
		if len(s) == 0 {
			delete(m, key)
		}
	}
}

// Add registers a newly created edge with every applicable index.
func (ix *Index) Add(id, typ string, args []string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	addEdgeID(ix.byType, typ, id)
	ix.structural[typ+"|"+strings.Join(args, ",")] = id

	_ = ix.neighbors.AddVertex(id)
	for _, a := range args {
		addEdgeID(ix.byArg, a, id)
		_ = ix.neighbors.AddVertex(a)
		_ = ix.neighbors.AddEdge(a, id)
	}
}

// Remove clears every index entry referencing id (spec §8: "after
// removeHyperedge, no index contains id").
func (ix *Index) Remove(id, typ string, args []string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	removeEdgeID(ix.byType, typ, id)
	delete(ix.structural, typ+"|"+strings.Join(args, ","))
	delete(ix.popularity, id)
	delete(ix.temporalIntervals, id)
	for _, a := range args {
		removeEdgeID(ix.byArg, a, id)
		_ = ix.neighbors.RemoveEdge(a, id)
	}
	_ = ix.neighbors.RemoveVertex(id)
}

// ByType returns a snapshot of the edge IDs registered under typ.
func (ix *Index) ByType(typ string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return keysOf(ix.byType[typ])
}

// ByArg returns a snapshot of the edge IDs referencing token.
func (ix *Index) ByArg(token string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return keysOf(ix.byArg[token])
}

// ByPrefix returns every indexed argument token starting with prefix, for
// wildcard query support (spec §4.7).
func (ix *Index) ByPrefix(prefix string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var out []string
	for token := range ix.byArg {
		if strings.HasPrefix(token, prefix) {
			out = append(out, token)
		}
	}
	return out
}

// Structural looks up an existing edge ID by its (type, args) shape.
func (ix *Index) Structural(typ string, args []string) (string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	id, ok := ix.structural[typ+"|"+strings.Join(args, ",")]
	return id, ok
}

// Neighbors returns the edge IDs whose arguments reference id, plus the
// edge IDs that id itself references as arguments — the propagation wave's
// candidate set (spec §4.2 step 4).
func (ix *Index) Neighbors(id string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	seen := make(map[string]struct{})
	adj, err := ix.neighbors.AdjacencyMap()
	if err == nil {
		for target := range adj[id] {
			seen[target] = struct{}{}
		}
	}
	pred, err := ix.neighbors.PredecessorMap()
	if err == nil {
		for source := range pred[id] {
			seen[source] = struct{}{}
		}
	}
	delete(seen, id)
	return keysOf(seen)
}

// SetTemporalInterval records (or updates) the [start,end] span of a
// TimeInterval edge.
func (ix *Index) SetTemporalInterval(id string, start, end int64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.temporalIntervals[id] = struct{ Start, End int64 }{start, end}
}

// TemporalInterval returns the recorded span for id, if any.
func (ix *Index) TemporalInterval(id string) (start, end int64, ok bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	v, ok := ix.temporalIntervals[id]
	return v.Start, v.End, ok
}

// BumpPopularity increments id's reference counter, used by the memory
// manager's retention score (spec §4.5).
func (ix *Index) BumpPopularity(id string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.popularity[id]++
}

// Popularity returns id's current reference counter.
func (ix *Index) Popularity(id string) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.popularity[id]
}

// DecayPopularity scales every popularity counter by factor, called on
// maintenance ticks.
func (ix *Index) DecayPopularity(factor float64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for id, v := range ix.popularity {
		nv := int(float64(v) * factor)
		if nv <= 0 {
			delete(ix.popularity, id)
		} else {
			ix.popularity[id] = nv
		}
	}
}

func keysOf(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
