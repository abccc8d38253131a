// Package memory implements the kernel's memory manager: importance
// scoring, forgetting, and dynamic resource allocation (spec §4.5).
package memory

import (
	"math"
	"sync"
	"time"

	"github.com/automenta/hypernars1-sub000/internal/budget"
	"github.com/automenta/hypernars1-sub000/internal/term"
)

// SeenTracker is an optional durable audit log the forgetting pass consults
// so an edge this process (or a prior one, across a restart) already
// sampled is not immediately sampled again. *persist.Store implements it.
type SeenTracker interface {
	MarkSeen(id string, nowNS int64) error
	RecentlySeen(id string, nowNS, withinNS int64) (bool, error)
}

// recentlySeenWindow is how long a sampled edge is skipped on subsequent
// forgetting passes when a SeenTracker is attached.
const recentlySeenWindow = int64(2 * time.Second)

// TaskType names the work category passed to AllocateResources (spec §4.5).
type TaskType string

const (
	TaskQuestion      TaskType = "question"
	TaskCriticalEvent TaskType = "critical-event"
	TaskGoal          TaskType = "goal"
	TaskDerivation    TaskType = "derivation"
	TaskRevision      TaskType = "revision"
	TaskDefault       TaskType = "default"
)

// AllocationContext carries the optional signals AllocateResources blends
// into its base priority (spec §4.5).
type AllocationContext struct {
	Urgency        float64
	Importance     float64
	SuccessHistory float64
	NoveltyScore   float64
	QueueSize      int
}

// Manager scores edge importance, forgets low-value edges, and allocates
// budgets for new work (spec §4.5).
type Manager struct {
	mu sync.Mutex

	MinConceptsForForgetting int
	ForgettingCheckSampleSize int
	ForgettingThreshold      float64

	importance      map[string]float64
	activeConcepts  []string // LRU ring, most-recent last
	activeCap       int
	contextStack    []string
	recentSuccesses map[string]bool

	// sampleCursor rotates the in-process forgetting sample across calls.
	sampleCursor int

	// seen, if attached via SetSeenTracker, additionally skips an edge
	// sampled within recentlySeenWindow (spec §4.5 "avoid re-sampling the
	// same edge twice in a row").
	seen SeenTracker
}

// SetSeenTracker attaches the optional durable sampling audit log.
func (m *Manager) SetSeenTracker(s SeenTracker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = s
}

// NewManager creates a memory manager with spec defaults.
func NewManager(minConcepts, sampleSize int, forgettingThreshold float64) *Manager {
	return &Manager{
		MinConceptsForForgetting:  minConcepts,
		ForgettingCheckSampleSize: sampleSize,
		ForgettingThreshold:       forgettingThreshold,
		importance:                make(map[string]float64),
		activeCap:                 64,
		recentSuccesses:           make(map[string]bool),
	}
}

// Importance returns id's current importance score (0 if never scored).
func (m *Manager) Importance(id string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.importance[id]
}

// PushContext adds id to the current context stack (e.g. a question or goal
// currently being worked), whose members get a flat importance bump.
func (m *Manager) PushContext(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contextStack = append(m.contextStack, id)
}

// PopContext removes the most recently pushed context entry.
func (m *Manager) PopContext() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.contextStack) > 0 {
		m.contextStack = m.contextStack[:len(m.contextStack)-1]
	}
}

// Touch records id as recently accessed, feeding the activeConcepts LRU
// ring used by the importance-override check.
func (m *Manager) Touch(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.activeConcepts {
		if existing == id {
			m.activeConcepts = append(m.activeConcepts[:i], m.activeConcepts[i+1:]...)
			break
		}
	}
	m.activeConcepts = append(m.activeConcepts, id)
	if len(m.activeConcepts) > m.activeCap {
		m.activeConcepts = m.activeConcepts[1:]
	}
}

// MarkRecentSuccess flags id as a recent success for the learner's
// importance bump (spec §4.5 step 4).
func (m *Manager) MarkRecentSuccess(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recentSuccesses[id] = true
}

func (m *Manager) isActiveConcept(id string) bool {
	for _, c := range m.activeConcepts {
		if c == id {
			return true
		}
	}
	return false
}

func (m *Manager) inContextStack(id string) bool {
	for _, c := range m.contextStack {
		if c == id {
			return true
		}
	}
	return false
}

// GoalRef pairs a referenced edge ID with the priority of the goal
// referencing it, for the goal-activity importance bump.
type GoalRef struct {
	EdgeID   string
	Priority float64
}

// Tick runs one importance-scoring pass over every edge currently tracked
// by activation (spec §4.5 steps 1-6). pendingQuestionEdges and goalRefs are
// supplied by the question handler and (if present) a goal tracker.
func (m *Manager) Tick(activations map[string]float64, pendingQuestionEdges map[string]bool, goalRefs []GoalRef) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id := range m.importance {
		m.importance[id] *= 0.995
	}
	for id, act := range activations {
		m.importance[id] = 0.8*m.importance[id] + 0.2*act
	}
	for id := range pendingQuestionEdges {
		m.importance[id] = math.Min(1, m.importance[id]+0.2)
	}
	for id := range m.recentSuccesses {
		m.importance[id] = math.Min(1, m.importance[id]+0.1)
	}
	for _, id := range m.contextStack {
		m.importance[id] = math.Min(1, m.importance[id]+0.3)
	}
	for _, g := range goalRefs {
		m.importance[g.EdgeID] = math.Min(1, m.importance[g.EdgeID]+0.4*g.Priority)
	}
	m.recentSuccesses = make(map[string]bool)
}

// IsImportant reports whether id must be protected from forgetting: it is
// referenced by a pending question, sits in the active-concepts ring, or
// has importance above 0.8 (spec §4.5 Importance override).
func (m *Manager) IsImportant(id string, pendingQuestionEdges map[string]bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pendingQuestionEdges[id] {
		return true
	}
	if m.isActiveConcept(id) {
		return true
	}
	return m.importance[id] > 0.8
}

// ForgetResult reports what Forget did to a single sampled edge.
type ForgetResult struct {
	EdgeID       string
	PoppedBelief bool
	Deleted      bool
}

// Forget samples up to ForgettingCheckSampleSize edges from the store and,
// for each non-important one, computes a retention score and probabilistically
// thins or deletes it (spec §4.5 Forgetting). It only runs once the store
// holds at least MinConceptsForForgetting edges. nowNS is used to consult
// and update the attached SeenTracker, if any.
func (m *Manager) Forget(store *term.Store, activations map[string]float64, pendingQuestionEdges map[string]bool, rng func() float64, nowNS int64) []ForgetResult {
	if store.Len() < m.MinConceptsForForgetting {
		return nil
	}
	ids := store.IDs()

	m.mu.Lock()
	n := m.ForgettingCheckSampleSize
	if n > len(ids) {
		n = len(ids)
	}
	seen := m.seen
	start := m.sampleCursor % len(ids)
	sample := make([]string, 0, n)
	tried := 0
	for tried < len(ids) && len(sample) < n {
		id := ids[(start+tried)%len(ids)]
		tried++
		if seen != nil {
			if recently, err := seen.RecentlySeen(id, nowNS, recentlySeenWindow); err == nil && recently {
				continue
			}
		}
		sample = append(sample, id)
	}
	m.sampleCursor = (start + tried) % len(ids)
	m.mu.Unlock()

	var results []ForgetResult
	for _, id := range sample {
		if seen != nil {
			_ = seen.MarkSeen(id, nowNS)
		}
		if m.IsImportant(id, pendingQuestionEdges) {
			continue
		}
		edge, ok := store.Get(id)
		if !ok {
			continue
		}
		imp := m.Importance(id)
		act := activations[id]
		pop := float64(store.Index.Popularity(id))
		retention := 0.6*imp + 0.3*act + 0.1*math.Min(1, pop/100)
		forgettingProbability := math.Pow(1-retention, 2)
		if rng() >= forgettingProbability {
			continue
		}
		if len(edge.Beliefs) > 1 {
			store.PopWeakestBelief(id)
			results = append(results, ForgetResult{EdgeID: id, PoppedBelief: true})
		} else if retention < m.ForgettingThreshold {
			store.Remove(id)
			results = append(results, ForgetResult{EdgeID: id, Deleted: true})
		}
	}
	return results
}

// DynamicBeliefCapacity recomputes beliefCapacity from hypergraph size
// (spec §4.5 Dynamic belief capacity).
func DynamicBeliefCapacity(current, hypergraphSize int) int {
	switch {
	case hypergraphSize > 10000:
		nc := int(float64(current) * 0.95)
		if nc < 4 {
			nc = 4
		}
		return nc
	case hypergraphSize < 5000:
		nc := int(math.Ceil(float64(current) * 1.05))
		if nc > 12 {
			nc = 12
		}
		return nc
	default:
		return current
	}
}

// basePriority returns spec §4.5's per-task-type base priority.
func basePriority(t TaskType) float64 {
	switch t {
	case TaskQuestion:
		return 0.9
	case TaskCriticalEvent:
		return 0.95
	case TaskGoal:
		return 0.85
	case TaskDerivation:
		return 0.6
	case TaskRevision:
		return 0.7
	default:
		return 0.5
	}
}

// AllocateResources computes a budget for a new task following spec §4.5's
// priority/durability/quality formulas.
func AllocateResources(t TaskType, ctx AllocationContext) budget.Value {
	p := basePriority(t)
	p += ctx.Urgency*0.3 + ctx.Importance*0.2 + ctx.NoveltyScore*0.15

	availability := math.Max(0.1, 1-math.Min(float64(ctx.QueueSize)/1000, 1)*0.7)
	p *= availability
	if p < 0.01 {
		p = 0.01
	}

	var d float64
	switch t {
	case TaskQuestion, TaskCriticalEvent, TaskGoal:
		d = 0.9
	default:
		d = 0.6
	}
	d += ctx.SuccessHistory * 0.2
	if d < 0.01 {
		d = 0.01
	}

	q := math.Sqrt(availability)*0.8 + ctx.NoveltyScore*0.1

	return budget.Value{
		Priority:   budget.Clamp01(p),
		Durability: budget.Clamp01(d),
		Quality:    budget.Clamp01(q),
	}
}
