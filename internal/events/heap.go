package events

import "container/heap"

func heapPush(q *queue, e *Event) { heap.Push(q, e) }
func heapPop(q *queue) any        { return heap.Pop(q) }
func heapInit(q *queue)           { heap.Init(q) }
