// Package events implements the budget-prioritized event queue that drives
// the reasoning step loop (spec §3 Event queue, §4.2).
package events

import "github.com/automenta/hypernars1-sub000/internal/budget"

// Event is one unit of scheduled work: propagate activation to Target with
// the given Budget, carrying enough provenance to guard against cycles and
// runaway derivation depth (spec §3).
type Event struct {
	Target         string
	Activation     float64
	Budget         budget.Value
	PathHash       uint64
	PathLength     int
	DerivationPath []string
}

// queue is a max-heap on Budget.Total(), ties broken by insertion order
// (spec §5 Ordering).
type queue struct {
	items []*Event
	seq   []int64
	next  int64
}

// Queue is the priority-ordered event scheduler.
type Queue struct {
	q queue
}

// New creates an empty event queue.
func New() *Queue {
	return &Queue{}
}

func (q *queue) Len() int { return len(q.items) }

func (q *queue) Less(i, j int) bool {
	ti, tj := q.items[i].Budget.Total(), q.items[j].Budget.Total()
	if ti != tj {
		return ti > tj
	}
	return q.seq[i] < q.seq[j]
}

func (q *queue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.seq[i], q.seq[j] = q.seq[j], q.seq[i]
}

func (q *queue) Push(x any) {
	q.items = append(q.items, x.(*Event))
	q.seq = append(q.seq, q.next)
	q.next++
}

func (q *queue) Pop() any {
	n := len(q.items)
	item := q.items[n-1]
	q.items = q.items[:n-1]
	q.seq = q.seq[:n-1]
	return item
}

// Push enqueues an event, restoring heap order via container/heap.
func (qu *Queue) Push(e *Event) {
	heapPush(&qu.q, e)
}

// Pop removes and returns the highest-total-budget event. ok is false if
// the queue is empty (spec §8: "popping from an empty queue returns 'no
// work'; cannot panic").
func (qu *Queue) Pop() (*Event, bool) {
	if qu.q.Len() == 0 {
		return nil, false
	}
	return heapPop(&qu.q).(*Event), true
}

// Len returns the number of queued events.
func (qu *Queue) Len() int { return qu.q.Len() }

// Peek returns the highest-priority event without removing it.
func (qu *Queue) Peek() (*Event, bool) {
	if qu.q.Len() == 0 {
		return nil, false
	}
	return qu.q.items[0], true
}

// Prune keeps only events with Budget.Total() >= threshold, re-heapifying
// the remainder (spec §4.5 pruneLowValuePaths).
func (qu *Queue) Prune(threshold float64) int {
	kept := qu.q.items[:0]
	keptSeq := qu.q.seq[:0]
	removed := 0
	for i, e := range qu.q.items {
		if e.Budget.Total() >= threshold {
			kept = append(kept, e)
			keptSeq = append(keptSeq, qu.q.seq[i])
		} else {
			removed++
		}
	}
	qu.q.items = kept
	qu.q.seq = keptSeq
	heapInit(&qu.q)
	return removed
}

// All returns a snapshot of every queued event, for inspection/metrics.
func (qu *Queue) All() []*Event {
	out := make([]*Event, len(qu.q.items))
	copy(out, qu.q.items)
	return out
}
