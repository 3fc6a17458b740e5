package dfpn

import "container/heap"

// LocalHeap is a binary max-heap of Tasks keyed by Priority, owned
// exclusively by one worker. No synchronization: only the owner touches
// it (spec.md §4.3). This is the hot path -- the large majority of task
// transfers go through here rather than the shared structures. Built on
// container/heap the way the teacher's search.MoveList wraps a priority
// queue for move ordering.
type LocalHeap struct {
	h   taskHeap
	cap int
}

// NewLocalHeap creates an empty heap with the given fixed capacity.
func NewLocalHeap(capacity int) *LocalHeap {
	return &LocalHeap{cap: capacity}
}

// Push inserts t. Returns false (task not inserted) if the heap is full.
func (l *LocalHeap) Push(t Task) bool {
	if len(l.h) >= l.cap {
		return false
	}
	heap.Push(&l.h, t)
	return true
}

// Pop removes and returns the highest-priority task.
func (l *LocalHeap) Pop() (Task, bool) {
	if len(l.h) == 0 {
		return Task{}, false
	}
	return heap.Pop(&l.h).(Task), true
}

// Peek returns the highest-priority task without removing it.
func (l *LocalHeap) Peek() (Task, bool) {
	if len(l.h) == 0 {
		return Task{}, false
	}
	return l.h[0], true
}

// TopPriority returns the priority of the top task, or math.MinInt32 if
// empty -- used by the Dispatcher to compare against GlobalChunkQueue.
func (l *LocalHeap) TopPriority() int32 {
	if len(l.h) == 0 {
		return minPriority
	}
	return l.h[0].Priority
}

func (l *LocalHeap) Len() int { return len(l.h) }

func (l *LocalHeap) Cap() int { return l.cap }

// minPriority is the sentinel "empty" priority value, analogous to
// spec.md §4.4's atomic top_priority cell reporting INT_MIN when empty.
const minPriority = int32(-1 << 31)

// taskHeap implements container/heap.Interface as a max-heap on Priority.
type taskHeap []Task

func (h taskHeap) Len() int            { return len(h) }
func (h taskHeap) Less(i, j int) bool  { return h[i].Priority > h[j].Priority }
func (h taskHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x interface{}) { *h = append(*h, x.(Task)) }
func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	*h = old[:n-1]
	return t
}
