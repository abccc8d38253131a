package term

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/automenta/hypernars1-sub000/internal/budget"
)

func budgetWithPriority(p float64) budget.Value {
	return budget.Value{Priority: p, Durability: p, Quality: p}
}

func TestIDIsPureAndDistinguishesStructure(t *testing.T) {
	id1 := ID(TypeInheritance, []string{"A", "B"})
	id2 := ID(TypeInheritance, []string{"A", "B"})
	assert.Equal(t, id1, id2)

	id3 := ID(TypeInheritance, []string{"B", "A"})
	assert.NotEqual(t, id1, id3)

	id4 := ID(TypeSimilarity, []string{"A", "B"})
	assert.NotEqual(t, id1, id4)
}

func TestAtomIDIsBareName(t *testing.T) {
	assert.Equal(t, "cat", Atom("cat"))
}

func TestIsVariable(t *testing.T) {
	assert.True(t, IsVariable("$x"))
	assert.True(t, IsVariable("?y"))
	assert.False(t, IsVariable("cat"))
}

func TestReviseMergesIdenticalPremisesInPlace(t *testing.T) {
	e := &Hyperedge{ID: "x", Type: TypeTerm, Args: []string{"x"}}

	r1 := e.Revise(&Belief{Premises: []string{"p1"}}, 8)
	assert.True(t, r1.NeedsUpdate)
	assert.Len(t, e.Beliefs, 1)

	r2 := e.Revise(&Belief{Premises: []string{"p1"}}, 8)
	assert.True(t, r2.NeedsUpdate)
	assert.Len(t, e.Beliefs, 1, "identical premise set must merge in place, not append")

	e.Revise(&Belief{Premises: []string{"p2"}}, 8)
	assert.Len(t, e.Beliefs, 2)
}

func TestBeliefCapacityTruncates(t *testing.T) {
	e := &Hyperedge{ID: "x", Type: TypeTerm, Args: []string{"x"}}
	for i := 0; i < 20; i++ {
		e.Revise(&Belief{Premises: []string{string(rune('a' + i))}, Budget: budgetWithPriority(float64(i) / 20)}, 8)
	}
	assert.LessOrEqual(t, len(e.Beliefs), 8)
}

func TestBeliefsSortedByPriorityDescending(t *testing.T) {
	e := &Hyperedge{ID: "x", Type: TypeTerm, Args: []string{"x"}}
	e.Revise(&Belief{Premises: []string{"a"}, Budget: budgetWithPriority(0.2)}, 8)
	e.Revise(&Belief{Premises: []string{"b"}, Budget: budgetWithPriority(0.9)}, 8)
	e.Revise(&Belief{Premises: []string{"c"}, Budget: budgetWithPriority(0.5)}, 8)

	for i := 1; i < len(e.Beliefs); i++ {
		assert.GreaterOrEqual(t, e.Beliefs[i-1].Budget.Priority, e.Beliefs[i].Budget.Priority)
	}
}

func TestGetTruthDefaultsToUnknown(t *testing.T) {
	e := &Hyperedge{ID: "x", Type: TypeTerm, Args: []string{"x"}}
	tv := e.GetTruth()
	assert.InDelta(t, 0.5, tv.F, 1e-9)
}
