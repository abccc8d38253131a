package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/automenta/hypernars1-sub000/internal/term"
)

func TestAllocateResourcesBasePriorityByTaskType(t *testing.T) {
	q := AllocateResources(TaskQuestion, AllocationContext{})
	d := AllocateResources(TaskDerivation, AllocationContext{})
	assert.Greater(t, q.Priority, d.Priority)
}

func TestAllocateResourcesEnforcesMinimums(t *testing.T) {
	b := AllocateResources(TaskDefault, AllocationContext{QueueSize: 100000})
	assert.GreaterOrEqual(t, b.Priority, 0.01)
	assert.GreaterOrEqual(t, b.Durability, 0.01)
}

func TestDynamicBeliefCapacityShrinksAndGrows(t *testing.T) {
	assert.Less(t, DynamicBeliefCapacity(8, 11000), 8)
	assert.GreaterOrEqual(t, DynamicBeliefCapacity(8, 11000), 4)
	assert.Greater(t, DynamicBeliefCapacity(8, 4000), 8)
	assert.LessOrEqual(t, DynamicBeliefCapacity(8, 4000), 12)
	assert.Equal(t, 8, DynamicBeliefCapacity(8, 7000))
}

func TestImportanceOverrideProtectsPendingQuestionEdges(t *testing.T) {
	m := NewManager(1000, 200, 0.1)
	pending := map[string]bool{"q1": true}
	assert.True(t, m.IsImportant("q1", pending))
	assert.False(t, m.IsImportant("other", pending))
}

func TestForgettingPreservesImportantEdges(t *testing.T) {
	s := term.NewStore(8)
	var ids []string
	for i := 0; i < 1005; i++ {
		r := s.AddHyperedge(term.TypeTerm, []string{"t" + string(rune('a'+i%26)) + string(rune(i))}, term.AddOptions{})
		ids = append(ids, r.ID)
	}
	important := ids[0]
	pending := map[string]bool{important: true}

	m := NewManager(1000, 200, 0.1)
	for i := 0; i < 5; i++ {
		m.Forget(s, map[string]float64{}, pending, func() float64 { return 0.0 }, 0)
	}

	_, ok := s.Get(important)
	assert.True(t, ok, "forgetting must never remove an edge referenced by a pending question")
}

func TestAllocateResourcesTreatsGoalLikeCriticalDurability(t *testing.T) {
	g := AllocateResources(TaskGoal, AllocationContext{})
	d := AllocateResources(TaskDerivation, AllocationContext{})
	assert.Greater(t, g.Priority, d.Priority)
	assert.Greater(t, g.Durability, d.Durability)
}

func TestTickBumpsImportanceForReferencedGoals(t *testing.T) {
	m := NewManager(1000, 200, 0.1)
	m.Tick(map[string]float64{}, map[string]bool{}, []GoalRef{{EdgeID: "target", Priority: 1.0}})
	assert.InDelta(t, 0.4, m.Importance("target"), 1e-9)

	m.Tick(map[string]float64{}, map[string]bool{}, []GoalRef{{EdgeID: "target", Priority: 0.5}})
	assert.Greater(t, m.Importance("target"), 0.4)
}

func TestForgettingBelowMinimumSizeIsNoOp(t *testing.T) {
	s := term.NewStore(8)
	s.AddHyperedge(term.TypeTerm, []string{"solo"}, term.AddOptions{})
	m := NewManager(1000, 200, 0.1)
	results := m.Forget(s, map[string]float64{}, map[string]bool{}, func() float64 { return 0.0 }, 0)
	assert.Nil(t, results)
}

// fakeSeenTracker is an in-process stand-in for *persist.Store satisfying
// SeenTracker, so the forgetting pass's skip-recently-seen logic can be
// exercised without a sqlite dependency.
type fakeSeenTracker struct {
	markedAt map[string]int64
}

func newFakeSeenTracker() *fakeSeenTracker {
	return &fakeSeenTracker{markedAt: make(map[string]int64)}
}

func (f *fakeSeenTracker) MarkSeen(id string, nowNS int64) error {
	f.markedAt[id] = nowNS
	return nil
}

func (f *fakeSeenTracker) RecentlySeen(id string, nowNS, withinNS int64) (bool, error) {
	at, ok := f.markedAt[id]
	if !ok {
		return false, nil
	}
	return nowNS-at < withinNS, nil
}

func TestForgettingSkipsEdgesMarkedRecentlySeen(t *testing.T) {
	s := term.NewStore(8)
	var ids []string
	for i := 0; i < 1005; i++ {
		r := s.AddHyperedge(term.TypeTerm, []string{"t" + string(rune('a'+i%26)) + string(rune(i))}, term.AddOptions{})
		ids = append(ids, r.ID)
	}

	tracker := newFakeSeenTracker()
	for _, id := range ids {
		tracker.MarkSeen(id, 0)
	}

	m := NewManager(1000, 200, 0.1)
	m.SetSeenTracker(tracker)

	results := m.Forget(s, map[string]float64{}, map[string]bool{}, func() float64 { return 1.0 }, int64(recentlySeenWindow/2))
	assert.Nil(t, results, "every edge was marked seen within the window, so none should be sampled")
}
