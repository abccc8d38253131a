// Package question implements the kernel's question handler: pattern
// canonicalization, unification against new beliefs, and a pending-question
// table with timeouts (spec §4.7).
package question

import (
	"fmt"
	"sort"
	"sync"

	"github.com/automenta/hypernars1-sub000/internal/term"
	"github.com/automenta/hypernars1-sub000/internal/truth"
)

// Pattern is a query shape: a hyperedge type plus argument tokens that may
// be literals, binding variables ($x, ?x), or the non-binding wildcard "*"
// (Open Question (iii) resolved: $/? bind, * does not).
type Pattern struct {
	Type string
	Args []string
}

// CanonicalID renders pattern as the Question(...) edge ID the kernel
// asserts when a question is asked, so repeated identical questions share
// one pending entry.
func CanonicalID(p Pattern) string {
	return term.ID(term.TypeQuestion, append([]string{p.Type}, p.Args...))
}

// IsWildcard reports whether a pattern token is the non-binding wildcard.
func IsWildcard(token string) bool {
	return token == "*"
}

// Unify attempts to match a candidate edge's (type, args) against pattern,
// returning the variable bindings on success.
func Unify(p Pattern, candidateType string, candidateArgs []string) (map[string]string, bool) {
	if p.Type != candidateType || len(p.Args) != len(candidateArgs) {
		return nil, false
	}
	bindings := make(map[string]string)
	for i, pa := range p.Args {
		ca := candidateArgs[i]
		switch {
		case IsWildcard(pa):
			continue
		case term.IsVariable(pa):
			if existing, bound := bindings[pa]; bound {
				if existing != ca {
					return nil, false
				}
				continue
			}
			bindings[pa] = ca
		default:
			if pa != ca {
				return nil, false
			}
		}
	}
	return bindings, true
}

// Answer is one matching edge found for a pending question.
type Answer struct {
	EdgeID   string
	Bindings map[string]string
	Truth    truth.Value
}

// Pending is a question awaiting an answer.
type Pending struct {
	ID        string
	Pattern   Pattern
	CreatedAt int64
	TimeoutNS int64
	Answers   []Answer
	Resolved  bool
}

// Store for looking up candidate edges; satisfied by *term.Store.
type Store interface {
	IDsByType(typ string) []string
	Get(id string) (*term.Hyperedge, bool)
}

// Manager tracks pending questions and resolves them against the
// hypergraph, either eagerly (as new beliefs arrive) or via periodic sweep
// (spec §4.7).
type Manager struct {
	mu      sync.Mutex
	pending map[string]*Pending
}

// NewManager creates an empty question manager.
func NewManager() *Manager {
	return &Manager{pending: make(map[string]*Pending)}
}

// Ask registers a new pending question, or returns the existing handle if
// an identical pattern is already pending (spec §4.7 canonicalization).
func (m *Manager) Ask(p Pattern, nowNS, timeoutNS int64) *Pending {
	id := CanonicalID(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.pending[id]; ok && !existing.Resolved {
		return existing
	}
	pq := &Pending{ID: id, Pattern: p, CreatedAt: nowNS, TimeoutNS: timeoutNS}
	m.pending[id] = pq
	return pq
}

// IsPending reports whether id names a currently unresolved question.
func (m *Manager) IsPending(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	pq, ok := m.pending[id]
	return ok && !pq.Resolved
}

// PendingIDs returns the edge IDs of every question still awaiting
// resolution, for the memory manager's importance override.
func (m *Manager) PendingIDs() map[string]bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]bool, len(m.pending))
	for id, pq := range m.pending {
		if !pq.Resolved {
			out[id] = true
		}
	}
	return out
}

// ProtectedEdgeIDs returns the union of every unresolved pending question's
// own canonical ID plus every edge ID it has matched so far, for the memory
// manager's importance override (spec §4.5 Importance override: "referenced
// by a pending question" covers both the question record and its current
// candidate answers).
func (m *Manager) ProtectedEdgeIDs() map[string]bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]bool, len(m.pending))
	for id, pq := range m.pending {
		if pq.Resolved {
			continue
		}
		out[id] = true
		for _, a := range pq.Answers {
			out[a.EdgeID] = true
		}
	}
	return out
}

// Get returns the pending question by ID.
func (m *Manager) Get(id string) (*Pending, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pq, ok := m.pending[id]
	return pq, ok
}

// TryAnswer checks a single newly-revised edge against every pending
// question, recording a match where one unifies (spec §4.7 eager
// resolution on new beliefs).
func (m *Manager) TryAnswer(edge *term.Hyperedge) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []string
	for _, pq := range m.pending {
		if pq.Resolved {
			continue
		}
		bindings, ok := Unify(pq.Pattern, edge.Type, edge.Args)
		if !ok {
			continue
		}
		pq.Answers = append(pq.Answers, Answer{
			EdgeID:   edge.ID,
			Bindings: bindings,
			Truth:    edge.GetTruth(),
		})
		matched = append(matched, pq.ID)
	}
	return matched
}

// Sweep resolves any pending question that has either gathered an answer or
// exceeded its timeout, returning the IDs it resolved (spec §4.7 periodic
// resolver). Questions with answers resolve to their highest-expectation
// answer; questions that time out with no answer resolve unanswered.
func (m *Manager) Sweep(nowNS int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var resolved []string
	for id, pq := range m.pending {
		if pq.Resolved {
			continue
		}
		expired := nowNS-pq.CreatedAt >= pq.TimeoutNS
		if len(pq.Answers) > 0 || expired {
			sort.SliceStable(pq.Answers, func(i, j int) bool {
				return pq.Answers[i].Truth.Expectation() > pq.Answers[j].Truth.Expectation()
			})
			pq.Resolved = true
			resolved = append(resolved, id)
		}
	}
	return resolved
}

// FullScan searches the whole store for matches, used when a question is
// first asked against an already-populated hypergraph rather than waiting
// for future belief revisions.
func (m *Manager) FullScan(s Store, pq *Pending) {
	for _, id := range s.IDsByType(pq.Pattern.Type) {
		edge, ok := s.Get(id)
		if !ok {
			continue
		}
		bindings, ok := Unify(pq.Pattern, edge.Type, edge.Args)
		if !ok {
			continue
		}
		m.mu.Lock()
		pq.Answers = append(pq.Answers, Answer{EdgeID: edge.ID, Bindings: bindings, Truth: edge.GetTruth()})
		m.mu.Unlock()
	}
}

// FormatBindings renders a binding map deterministically for explain/debug
// output.
func FormatBindings(b map[string]string) string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s=%s", k, b[k])
	}
	return out
}
