package contradiction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/automenta/hypernars1-sub000/internal/budget"
	"github.com/automenta/hypernars1-sub000/internal/term"
	"github.com/automenta/hypernars1-sub000/internal/truth"
)

func TestDetectFindsDivergentBeliefs(t *testing.T) {
	s := term.NewStore(8)
	b1 := budget.Value{Priority: 0.8, Durability: 0.8, Quality: 0.8}
	s.AddHyperedge(term.TypeTerm, []string{"a"}, term.AddOptions{Truth: &truth.Value{F: 0.9, C: 0.9}, Budget: &b1})
	s.AddHyperedge(term.TypeTerm, []string{"a"}, term.AddOptions{Truth: &truth.Value{F: 0.1, C: 0.9}, Budget: &b1})

	edge, _ := s.Get(term.Atom("a"))
	assert.Len(t, edge.Beliefs, 2, "direct assertions with no premises should not auto-merge")

	m := NewManager(0.7)
	recs := m.Detect(edge)
	assert.Len(t, recs, 1)
	assert.False(t, recs[0].Resolved)
}

func TestDetectIsIdempotent(t *testing.T) {
	s := term.NewStore(8)
	b1 := budget.Value{Priority: 0.8, Durability: 0.8, Quality: 0.8}
	s.AddHyperedge(term.TypeTerm, []string{"a"}, term.AddOptions{Truth: &truth.Value{F: 0.9, C: 0.9}, Budget: &b1})
	s.AddHyperedge(term.TypeTerm, []string{"a"}, term.AddOptions{Truth: &truth.Value{F: 0.1, C: 0.9}, Budget: &b1})
	edge, _ := s.Get(term.Atom("a"))

	m := NewManager(0.7)
	first := m.Detect(edge)
	second := m.Detect(edge)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestResolveByMergeProducesModerateBelief(t *testing.T) {
	s := term.NewStore(8)
	b1 := budget.Value{Priority: 0.8, Durability: 0.8, Quality: 0.8}
	s.AddHyperedge(term.TypeTerm, []string{"a"}, term.AddOptions{Truth: &truth.Value{F: 0.9, C: 0.9}, Budget: &b1})
	s.AddHyperedge(term.TypeTerm, []string{"a"}, term.AddOptions{Truth: &truth.Value{F: 0.1, C: 0.9}, Budget: &b1})
	edge, _ := s.Get(term.Atom("a"))

	m := NewManager(0.7)
	recs := m.Detect(edge)
	m.Resolve(s, recs[0])

	assert.Equal(t, Merge, recs[0].Strategy, "equal evidence strength should fall through dominant-evidence to merge")
	assert.Len(t, edge.Beliefs, 1)
	assert.Greater(t, edge.Beliefs[0].Truth.F, 0.2)
	assert.Less(t, edge.Beliefs[0].Truth.F, 0.8)
	assert.Less(t, edge.Beliefs[0].Truth.C, 0.9)
}

func TestDominantEvidenceWinsWhenLopsided(t *testing.T) {
	s := term.NewStore(8)
	strong := budget.Value{Priority: 0.9, Durability: 0.9, Quality: 0.9}
	weak := budget.Value{Priority: 0.1, Durability: 0.1, Quality: 0.1}
	s.AddHyperedge(term.TypeTerm, []string{"a"}, term.AddOptions{Truth: &truth.Value{F: 0.9, C: 0.9}, Budget: &strong})
	s.AddHyperedge(term.TypeTerm, []string{"a"}, term.AddOptions{Truth: &truth.Value{F: 0.1, C: 0.9}, Budget: &weak})
	edge, _ := s.Get(term.Atom("a"))

	m := NewManager(0.7)
	recs := m.Detect(edge)
	m.Resolve(s, recs[0])

	assert.Equal(t, DominantEvidence, recs[0].Strategy)
	assert.Len(t, edge.Beliefs, 2, "dominant-evidence weakens others, it does not remove them")
	assert.Less(t, edge.Beliefs[1].Truth.C, 0.9)
}

func TestSpecializeContextDetection(t *testing.T) {
	a := &term.Belief{Timestamp: 0}
	b := &term.Belief{Timestamp: 1}
	assert.Equal(t, "default", DetermineContext(a, b))

	b.Timestamp = int64(20_000_000_000) // 20s in ns
	assert.Equal(t, "temporal", DetermineContext(a, b))
}
