package term

import (
	"sync"

	"github.com/automenta/hypernars1-sub000/internal/budget"
	"github.com/automenta/hypernars1-sub000/internal/index"
	"github.com/automenta/hypernars1-sub000/internal/truth"
)

// AddOptions carries the optional fields accepted by Store.AddHyperedge
// (spec §4.1).
type AddOptions struct {
	Truth     *truth.Value
	Budget    *budget.Value
	Premises  []string
	DerivedBy string
	Context   string
	Timestamp int64
}

// AddResult reports what AddHyperedge did, so the kernel can decide whether
// to run contradiction detection and enqueue a propagation event.
type AddResult struct {
	ID          string
	Edge        *Hyperedge
	Created     bool
	NeedsUpdate bool
	NewBelief   *Belief
}

// Store is the hypergraph: a map from content-addressed ID to Hyperedge,
// together with the indexes needed to find edges by type, argument, or
// structure (spec §3 Hypergraph + Indexes).
type Store struct {
	mu             sync.RWMutex
	edges          map[string]*Hyperedge
	Index          *index.Index
	BeliefCapacity int
}

// NewStore creates an empty hypergraph with the given per-edge belief
// capacity (spec config `beliefCapacity`, default 8).
func NewStore(beliefCapacity int) *Store {
	return &Store{
		edges:          make(map[string]*Hyperedge),
		Index:          index.New(),
		BeliefCapacity: beliefCapacity,
	}
}

// Get returns the edge for id, or (nil, false) if absent.
func (s *Store) Get(id string) (*Hyperedge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.edges[id]
	return e, ok
}

// Len returns the number of edges currently held (used by the memory
// manager's size thresholds, spec §4.5).
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}

// IDs returns a snapshot of every edge ID, for sampling by the memory
// manager's forgetter.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.edges))
	for id := range s.edges {
		out = append(out, id)
	}
	return out
}

// IDsByType returns a snapshot of every edge ID registered under typ, for
// the question handler's full-store scan.
func (s *Store) IDsByType(typ string) []string {
	return s.Index.ByType(typ)
}

// AddHyperedge implements spec §4.1: locate or create the edge addressed
// by (typ, args), then revise it with the supplied (or defaulted) belief.
// It never fails — reviewing a belief is always well-defined once the edge
// exists, and the edge is created on first reference.
func (s *Store) AddHyperedge(typ string, args []string, opts AddOptions) AddResult {
	id := ID(typ, args)

	s.mu.Lock()
	defer s.mu.Unlock()

	edge, created := s.edges[id]
	if !created {
		edge = &Hyperedge{ID: id, Type: typ, Args: args}
		s.edges[id] = edge
		s.Index.Add(id, typ, args)
	}
	s.Index.BumpPopularity(id)

	t := truth.Certain()
	if opts.Truth != nil {
		t = *opts.Truth
	}
	b := budget.Full()
	if opts.Budget != nil {
		b = *opts.Budget
	}

	nb := &Belief{
		Truth:     t,
		Budget:    b,
		Premises:  opts.Premises,
		DerivedBy: opts.DerivedBy,
		Context:   opts.Context,
		Timestamp: opts.Timestamp,
	}
	rr := edge.Revise(nb, s.BeliefCapacity)

	return AddResult{ID: id, Edge: edge, Created: !created, NeedsUpdate: rr.NeedsUpdate, NewBelief: rr.NewBelief}
}

// Revise applies a belief update to an already-existing edge (public
// `revise` operation, spec §6). It is a no-op returning ok=false if the
// edge does not exist (spec §4.1 "revise on a non-existent edge returns
// without effect").
func (s *Store) Revise(id string, t *truth.Value, b *budget.Value) (AddResult, bool) {
	s.mu.Lock()
	edge, ok := s.edges[id]
	s.mu.Unlock()
	if !ok {
		return AddResult{}, false
	}
	return s.AddHyperedge(edge.Type, edge.Args, AddOptions{Truth: t, Budget: b}), true
}

// Remove deletes an edge and every index entry referencing it (spec §8:
// "after removeHyperedge, no index contains id").
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	edge, ok := s.edges[id]
	if !ok {
		return false
	}
	s.Index.Remove(id, edge.Type, edge.Args)
	delete(s.edges, id)
	return true
}

// PopWeakestBelief removes the lowest-priority belief from id's belief
// list, used by the memory manager when an edge carries more than one
// belief and only needs thinning (spec §4.5).
func (s *Store) PopWeakestBelief(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	edge, ok := s.edges[id]
	if !ok || len(edge.Beliefs) < 2 {
		return false
	}
	edge.Beliefs = edge.Beliefs[:len(edge.Beliefs)-1]
	return true
}
