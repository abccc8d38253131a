package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/automenta/hypernars1-sub000/internal/budget"
)

func TestPopEmptyQueueReturnsNoWork(t *testing.T) {
	q := New()
	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestPopReturnsHighestTotalBudgetFirst(t *testing.T) {
	q := New()
	q.Push(&Event{Target: "low", Budget: budget.Value{Priority: 0.1, Durability: 0.1, Quality: 0.1}})
	q.Push(&Event{Target: "high", Budget: budget.Value{Priority: 0.9, Durability: 0.9, Quality: 0.9}})
	q.Push(&Event{Target: "mid", Budget: budget.Value{Priority: 0.5, Durability: 0.5, Quality: 0.5}})

	e, ok := q.Pop()
	assert.True(t, ok)
	assert.Equal(t, "high", e.Target)

	e, _ = q.Pop()
	assert.Equal(t, "mid", e.Target)

	e, _ = q.Pop()
	assert.Equal(t, "low", e.Target)
}

func TestTiesBrokenByInsertionOrder(t *testing.T) {
	q := New()
	b := budget.Value{Priority: 0.5, Durability: 0.5, Quality: 0.5}
	q.Push(&Event{Target: "first", Budget: b})
	q.Push(&Event{Target: "second", Budget: b})

	e, _ := q.Pop()
	assert.Equal(t, "first", e.Target)
}

func TestPrune(t *testing.T) {
	q := New()
	q.Push(&Event{Target: "weak", Budget: budget.Value{Priority: 0.1, Durability: 0.1, Quality: 0.1}})
	q.Push(&Event{Target: "strong", Budget: budget.Value{Priority: 0.9, Durability: 0.9, Quality: 0.9}})

	removed := q.Prune(0.2)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, q.Len())

	e, _ := q.Pop()
	assert.Equal(t, "strong", e.Target)
}
