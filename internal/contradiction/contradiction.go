// Package contradiction implements detection and resolution of conflicting
// beliefs on the same hyperedge (spec §4.4).
package contradiction

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/automenta/hypernars1-sub000/internal/budget"
	"github.com/automenta/hypernars1-sub000/internal/term"
	"github.com/automenta/hypernars1-sub000/internal/truth"
)

// Strategy names a resolution strategy (spec §4.4).
type Strategy string

const (
	DominantEvidence  Strategy = "dominant-evidence"
	Merge             Strategy = "merge"
	Recency           Strategy = "recency"
	EvidenceWeighted  Strategy = "evidence-weighted"
	SourceReliability Strategy = "source-reliability"
	Specialize        Strategy = "specialize"
)

// defaultOrder is the fixed priority order strategies are tried in (Open
// Question (iv): exactly one strategy wins per resolution call).
var defaultOrder = []Strategy{DominantEvidence, Merge, Recency, EvidenceWeighted, SourceReliability, Specialize}

// Record describes one detected contradiction (spec §3 Contradiction table).
type Record struct {
	ID          string
	HyperedgeID string
	BeliefA     *term.Belief
	BeliefB     *term.Belief
	Severity    float64
	Resolved    bool
	Strategy    Strategy
}

// Manager tracks detected contradictions and resolves them with a
// configurable set of strategies.
type Manager struct {
	Threshold float64
	// SourceReliability maps a belief's Context field to a trust
	// multiplier, used by the source-reliability strategy.
	SourceReliability map[string]float64

	byKey    map[string]*Record
	byEdgeID map[string][]*Record
}

// NewManager creates a contradiction manager with the given detection
// threshold (spec default 0.7).
func NewManager(threshold float64) *Manager {
	return &Manager{
		Threshold:         threshold,
		SourceReliability: make(map[string]float64),
		byKey:             make(map[string]*Record),
		byEdgeID:          make(map[string][]*Record),
	}
}

func signature(b *term.Belief) string {
	return term.ID("truth", []string{
		string(rune(int(b.Truth.F * 1000))),
		string(rune(int(b.Truth.C * 1000))),
	})
}

// Detect compares the edge's strongest belief against every other belief on
// the edge, recording a contradiction wherever frequencies diverge by more
// than Threshold and both confidences exceed 0.5 (spec §4.4). Detection is
// idempotent: repeat calls for the same pair of truth signatures return the
// existing record rather than duplicating it.
func (m *Manager) Detect(edge *term.Hyperedge) []*Record {
	if len(edge.Beliefs) < 2 {
		return nil
	}
	strongest := edge.Beliefs[0]
	var found []*Record
	for _, other := range edge.Beliefs[1:] {
		if math.Abs(strongest.Truth.F-other.Truth.F) <= m.Threshold {
			continue
		}
		if strongest.Truth.C <= 0.5 || other.Truth.C <= 0.5 {
			continue
		}
		key := edge.ID + "|" + signature(strongest) + "|" + signature(other)
		if rec, ok := m.byKey[key]; ok {
			found = append(found, rec)
			continue
		}
		rec := &Record{
			ID:          uuid.NewString(),
			HyperedgeID: edge.ID,
			BeliefA:     strongest,
			BeliefB:     other,
			Severity:    math.Abs(strongest.Truth.F - other.Truth.F),
		}
		m.byKey[key] = rec
		m.byEdgeID[edge.ID] = append(m.byEdgeID[edge.ID], rec)
		found = append(found, rec)
	}
	return found
}

// Pending returns every unresolved contradiction.
func (m *Manager) Pending() []*Record {
	var out []*Record
	for _, rec := range m.byKey {
		if !rec.Resolved {
			out = append(out, rec)
		}
	}
	return out
}

// ForEdge returns every contradiction (resolved or not) recorded against edgeID.
func (m *Manager) ForEdge(edgeID string) []*Record {
	return m.byEdgeID[edgeID]
}

// Resolve applies the first applicable strategy from defaultOrder to rec's
// edge and marks the record resolved. It returns the strategy used, or ""
// if the edge is missing (spec §4.4 "absent/unparsable edges are ignored").
func (m *Manager) Resolve(store *term.Store, rec *Record) Strategy {
	edge, ok := store.Get(rec.HyperedgeID)
	if !ok {
		return ""
	}
	for _, s := range defaultOrder {
		if m.tryStrategy(s, edge, rec) {
			rec.Resolved = true
			rec.Strategy = s
			return s
		}
	}
	return ""
}

func (m *Manager) tryStrategy(s Strategy, edge *term.Hyperedge, rec *Record) bool {
	switch s {
	case DominantEvidence:
		return m.dominantEvidence(edge, rec)
	case Merge:
		m.merge(edge, rec)
		return true
	case Recency:
		m.recency(edge, rec)
		return true
	case EvidenceWeighted:
		m.evidenceWeighted(edge)
		return true
	case SourceReliability:
		return m.sourceReliability(edge, rec)
	case Specialize:
		return false // requires store access for a new edge; handled by manager.Specialize
	}
	return false
}

func evidenceStrength(b *term.Belief) float64 {
	return b.Budget.Priority * b.Truth.C
}

// dominantEvidence: if the strongest belief's evidence strength exceeds the
// next-strongest's by more than 1.5x, weaken every other belief; otherwise
// this strategy does not apply (fall through to the next).
func (m *Manager) dominantEvidence(edge *term.Hyperedge, rec *Record) bool {
	strongest := evidenceStrength(rec.BeliefA)
	next := evidenceStrength(rec.BeliefB)
	if next == 0 || strongest <= next*1.5 {
		return false
	}
	for _, b := range edge.Beliefs {
		if b == rec.BeliefA {
			continue
		}
		b.Truth.C *= 0.5
		b.Budget = b.Budget.Scale(0.5)
	}
	return true
}

// merge replaces the contradictory pair with their revision, attenuating
// confidence by 0.8.
func (m *Manager) merge(edge *term.Hyperedge, rec *Record) {
	merged := truth.Revise(rec.BeliefA.Truth, rec.BeliefB.Truth, rec.BeliefA.Budget.Priority, rec.BeliefB.Budget.Priority)
	merged.C *= 0.8
	rec.BeliefA.Truth = merged
	removeBelief(edge, rec.BeliefB)
}

// recency keeps the belief with the latest timestamp, discarding the other.
func (m *Manager) recency(edge *term.Hyperedge, rec *Record) {
	if rec.BeliefA.Timestamp >= rec.BeliefB.Timestamp {
		removeBelief(edge, rec.BeliefB)
	} else {
		removeBelief(edge, rec.BeliefA)
	}
}

// evidenceWeighted replaces all beliefs on the edge with a single truth
// whose (f,c) is the evidence-weighted mean across every belief.
func (m *Manager) evidenceWeighted(edge *term.Hyperedge) {
	var totalW, f, c float64
	for _, b := range edge.Beliefs {
		w := evidenceStrength(b)
		if w == 0 {
			w = 0.01
		}
		f += b.Truth.F * w
		c += b.Truth.C * w
		totalW += w
	}
	if totalW == 0 {
		return
	}
	merged := &term.Belief{
		Truth:     truth.Value{F: budget.Clamp01(f / totalW), C: budget.Clamp01(c / totalW)},
		Budget:    edge.Beliefs[0].Budget,
		Premises:  nil,
		DerivedBy: "contradiction:evidence-weighted",
		Timestamp: time.Now().UnixNano(),
	}
	edge.Beliefs = []*term.Belief{merged}
}

// sourceReliability keeps whichever of the two beliefs has the higher
// source-reliability multiplier (looked up by Context) and removes the
// other. It does not apply when no multipliers are configured or neither
// belief's context has one.
func (m *Manager) sourceReliability(edge *term.Hyperedge, rec *Record) bool {
	if len(m.SourceReliability) == 0 {
		return false
	}
	relA := m.SourceReliability[rec.BeliefA.Context]
	relB := m.SourceReliability[rec.BeliefB.Context]
	if relA == 0 && relB == 0 {
		return false
	}
	if relA >= relB {
		removeBelief(edge, rec.BeliefB)
	} else {
		removeBelief(edge, rec.BeliefA)
	}
	return true
}

// Specialize implements the split strategy: move the minority belief to a
// new context-qualified edge and assert a Similarity back to the original
// (spec §4.4). It needs write access to the store to create the new edge,
// so it is called explicitly rather than through the default ordering.
func (m *Manager) Specialize(store *term.Store, rec *Record) (newEdgeID string, ok bool) {
	edge, exists := store.Get(rec.HyperedgeID)
	if !exists {
		return "", false
	}
	ctxID := DetermineContext(rec.BeliefA, rec.BeliefB)
	newID := rec.HyperedgeID + "|context:" + ctxID

	minority := rec.BeliefB
	if evidenceStrength(rec.BeliefA) < evidenceStrength(rec.BeliefB) {
		minority = rec.BeliefA
	}
	store.AddHyperedge(edge.Type, edge.Args, term.AddOptions{
		Truth:     &minority.Truth,
		Budget:    &minority.Budget,
		Premises:  minority.Premises,
		DerivedBy: "contradiction:specialize",
		Context:   ctxID,
	})
	removeBelief(edge, minority)

	simTruth := truth.Value{F: 0.7, C: 0.9}
	simBudget := budget.Full()
	store.AddHyperedge(term.TypeSimilarity, []string{newID, rec.HyperedgeID}, term.AddOptions{
		Truth:     &simTruth,
		Budget:    &simBudget,
		DerivedBy: "contradiction:specialize",
	})
	rec.Resolved = true
	rec.Strategy = Specialize
	return newID, true
}

// DetermineContext classifies a contradiction's split context: "temporal"
// when the two beliefs' timestamps differ by more than 10s, else "default"
// (spec §4.4).
func DetermineContext(a, b *term.Belief) string {
	delta := a.Timestamp - b.Timestamp
	if delta < 0 {
		delta = -delta
	}
	if delta > int64(10*time.Second) {
		return "temporal"
	}
	return "default"
}

func removeBelief(edge *term.Hyperedge, target *term.Belief) {
	out := edge.Beliefs[:0]
	for _, b := range edge.Beliefs {
		if b != target {
			out = append(out, b)
		}
	}
	edge.Beliefs = out
}
