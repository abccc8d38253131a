package question

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/automenta/hypernars1-sub000/internal/term"
	"github.com/automenta/hypernars1-sub000/internal/truth"
)

func TestUnifyBindsVariablesConsistently(t *testing.T) {
	p := Pattern{Type: term.TypeInheritance, Args: []string{"$x", "animal"}}
	bindings, ok := Unify(p, term.TypeInheritance, []string{"cat", "animal"})
	assert.True(t, ok)
	assert.Equal(t, "cat", bindings["$x"])
}

func TestUnifyRejectsInconsistentRepeatedVariable(t *testing.T) {
	p := Pattern{Type: term.TypeInheritance, Args: []string{"$x", "$x"}}
	_, ok := Unify(p, term.TypeInheritance, []string{"cat", "dog"})
	assert.False(t, ok)
}

func TestUnifyWildcardMatchesWithoutBinding(t *testing.T) {
	p := Pattern{Type: term.TypeInheritance, Args: []string{"*", "animal"}}
	bindings, ok := Unify(p, term.TypeInheritance, []string{"cat", "animal"})
	assert.True(t, ok)
	assert.Empty(t, bindings)
}

func TestUnifyRejectsMismatchedTypeOrArity(t *testing.T) {
	p := Pattern{Type: term.TypeInheritance, Args: []string{"$x", "animal"}}
	_, ok := Unify(p, term.TypeSimilarity, []string{"cat", "animal"})
	assert.False(t, ok)
	_, ok = Unify(p, term.TypeInheritance, []string{"cat"})
	assert.False(t, ok)
}

func TestAskReturnsSameHandleForIdenticalPendingPattern(t *testing.T) {
	m := NewManager()
	p := Pattern{Type: term.TypeInheritance, Args: []string{"$x", "animal"}}
	a := m.Ask(p, 0, 1000)
	b := m.Ask(p, 0, 1000)
	assert.Same(t, a, b)
}

func TestTryAnswerRecordsMatchingEdge(t *testing.T) {
	m := NewManager()
	p := Pattern{Type: term.TypeInheritance, Args: []string{"$x", "animal"}}
	m.Ask(p, 0, 1000)

	edge := &term.Hyperedge{
		ID:   term.ID(term.TypeInheritance, []string{"cat", "animal"}),
		Type: term.TypeInheritance,
		Args: []string{"cat", "animal"},
		Beliefs: []*term.Belief{{Truth: truth.Value{F: 0.9, C: 0.9}}},
	}
	matched := m.TryAnswer(edge)
	assert.Len(t, matched, 1)

	pq, _ := m.Get(CanonicalID(p))
	assert.Len(t, pq.Answers, 1)
	assert.Equal(t, "cat", pq.Answers[0].Bindings["$x"])
}

func TestProtectedEdgeIDsIncludesQuestionAndMatchedAnswers(t *testing.T) {
	m := NewManager()
	p := Pattern{Type: term.TypeInheritance, Args: []string{"$x", "animal"}}
	pq := m.Ask(p, 0, 1000)

	edge := &term.Hyperedge{
		ID:      term.ID(term.TypeInheritance, []string{"cat", "animal"}),
		Type:    term.TypeInheritance,
		Args:    []string{"cat", "animal"},
		Beliefs: []*term.Belief{{Truth: truth.Value{F: 0.9, C: 0.9}}},
	}
	m.TryAnswer(edge)

	protected := m.ProtectedEdgeIDs()
	assert.True(t, protected[pq.ID])
	assert.True(t, protected[edge.ID])
	assert.False(t, protected["unrelated"])
}

func TestPendingIDsExcludesResolvedQuestions(t *testing.T) {
	m := NewManager()
	p := Pattern{Type: term.TypeInheritance, Args: []string{"$x", "animal"}}
	pq := m.Ask(p, 0, 1000)
	assert.True(t, m.PendingIDs()[pq.ID])

	m.Sweep(10000)
	assert.False(t, m.PendingIDs()[pq.ID])
}

func TestSweepResolvesOnTimeoutWithNoAnswers(t *testing.T) {
	m := NewManager()
	p := Pattern{Type: term.TypeInheritance, Args: []string{"$x", "animal"}}
	m.Ask(p, 0, 100)

	resolved := m.Sweep(50)
	assert.Empty(t, resolved)

	resolved = m.Sweep(150)
	assert.Len(t, resolved, 1)
	assert.False(t, m.IsPending(CanonicalID(p)))
}

func TestSweepPicksHighestExpectationAnswer(t *testing.T) {
	m := NewManager()
	p := Pattern{Type: term.TypeInheritance, Args: []string{"$x", "animal"}}
	pq := m.Ask(p, 0, 1000)
	pq.Answers = []Answer{
		{EdgeID: "weak", Truth: truth.Value{F: 0.5, C: 0.3}},
		{EdgeID: "strong", Truth: truth.Value{F: 0.9, C: 0.9}},
	}
	m.Sweep(10)
	pq, _ = m.Get(CanonicalID(p))
	assert.Equal(t, "strong", pq.Answers[0].EdgeID)
}
