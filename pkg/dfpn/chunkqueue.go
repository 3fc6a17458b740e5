package dfpn

import (
	"container/heap"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// GlobalChunkQueue is a mutex-protected max-heap of Chunks, keyed by
// Chunk.TopPriority, with an atomic top-priority cell for lock-free peek
// and a condition variable so idle workers can block-with-timeout instead
// of busy-polling (spec.md §4.4).
type GlobalChunkQueue struct {
	mu   sync.Mutex
	cond *sync.Cond
	h    chunkHeap
	cap  int

	topPriority atomic.Int32
}

// NewGlobalChunkQueue creates an empty queue with the given fixed chunk
// capacity.
func NewGlobalChunkQueue(capacity int) *GlobalChunkQueue {
	q := &GlobalChunkQueue{cap: capacity}
	q.cond = sync.NewCond(&q.mu)
	q.topPriority.Store(minPriority)
	return q
}

// Push inserts chunk, updates the atomic top-priority cell, and wakes any
// goroutines blocked in Wait.
func (q *GlobalChunkQueue) Push(c Chunk) bool {
	q.mu.Lock()
	if len(q.h) >= q.cap {
		q.mu.Unlock()
		return false
	}
	heap.Push(&q.h, c)
	q.topPriority.Store(q.h[0].TopPriority)
	q.mu.Unlock()

	q.cond.Broadcast()
	return true
}

// Pop removes and returns the highest-top-priority chunk.
func (q *GlobalChunkQueue) Pop() (Chunk, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.h) == 0 {
		return Chunk{}, false
	}
	c := heap.Pop(&q.h).(Chunk)
	if len(q.h) > 0 {
		q.topPriority.Store(q.h[0].TopPriority)
	} else {
		q.topPriority.Store(minPriority)
	}
	return c, true
}

// TopPriority returns the current maximum chunk priority, or a sentinel
// minimum if empty. Lock-free: reads the atomic cell only.
func (q *GlobalChunkQueue) TopPriority() int32 {
	return q.topPriority.Load()
}

func (q *GlobalChunkQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.h)
}

// Wait blocks on the condition variable for up to timeout, returning
// early if Broadcast is called (on push, win-found, or shutdown -- spec.md
// §5 "Condition-variable waking"). Always a timed wait, so a lost wake
// cannot deadlock the solver (spec.md §9).
func (q *GlobalChunkQueue) Wait(timeout time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()

	// The timer's broadcast takes the mutex, so it cannot fire before this
	// goroutine is parked in cond.Wait.
	timer := time.AfterFunc(timeout, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer timer.Stop()

	q.cond.Wait()
}

// Broadcast wakes all waiters without pushing anything -- used when
// found_win or shutdown is set (spec.md §5).
func (q *GlobalChunkQueue) Broadcast() {
	q.cond.Broadcast()
}

// chunkHeap implements container/heap.Interface as a max-heap on
// TopPriority.
type chunkHeap []Chunk

func (h chunkHeap) Len() int            { return len(h) }
func (h chunkHeap) Less(i, j int) bool  { return h[i].TopPriority > h[j].TopPriority }
func (h chunkHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *chunkHeap) Push(x interface{}) { *h = append(*h, x.(Chunk)) }
func (h *chunkHeap) Pop() interface{} {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}
