package dfpn

import "go.uber.org/atomic"

// SharedTaskArray is a bounded MPMC ring of Tasks with two atomic 32-bit
// cursors (head for pop, tail for push). Ordering does not matter for its
// two use cases -- initial root-task distribution before workers ramp up,
// and endgame drainage when most workers are idle -- so contention stays
// naturally low and a CAS-with-retry loop is adequate (spec.md §4.5).
//
// Grounded on the wait-free ring buffer pattern in the example pack
// (SeleniaProject-Orizon's collections.WaitFreeRingBuffer), generalized
// from a single-producer ring to true MPMC by CAS-ing the tail/head
// cursor instead of a plain atomic increment, and specialized from
// `[T any]` to Task since this package needs a concrete, not generic,
// ring (see DESIGN.md).
type SharedTaskArray struct {
	buf  []Task
	cap  uint32
	head atomic.Uint32 // pop cursor
	tail atomic.Uint32 // push cursor
}

// NewSharedTaskArray creates a ring with the given fixed capacity.
func NewSharedTaskArray(capacity int) *SharedTaskArray {
	return &SharedTaskArray{
		buf: make([]Task, capacity),
		cap: uint32(capacity),
	}
}

// Push attempts to append t. Returns false if the ring is full.
func (s *SharedTaskArray) Push(t Task) bool {
	for {
		tail := s.tail.Load()
		head := s.head.Load()

		if tail-head >= s.cap {
			return false // full
		}
		if s.tail.CAS(tail, tail+1) {
			s.buf[tail%s.cap] = t
			return true
		}
		// lost the race to claim a slot; retry.
	}
}

// Pop attempts to remove the oldest task. Returns false if the ring is
// empty.
func (s *SharedTaskArray) Pop() (Task, bool) {
	for {
		head := s.head.Load()
		tail := s.tail.Load()

		if head == tail {
			return Task{}, false // empty
		}
		t := s.buf[head%s.cap]
		if s.head.CAS(head, head+1) {
			return t, true
		}
		// lost the race to claim a slot; retry.
	}
}

// Len returns the approximate number of pending tasks.
func (s *SharedTaskArray) Len() int {
	return int(s.tail.Load() - s.head.Load())
}

// Cap returns the fixed capacity.
func (s *SharedTaskArray) Cap() int {
	return int(s.cap)
}

// FullAbove reports whether the ring is at or above the given fraction of
// capacity -- used by the spawn controller's backpressure check
// (spec.md §4.9, "SharedArray >= 80% full").
func (s *SharedTaskArray) FullAbove(fraction float64) bool {
	return float64(s.Len()) >= fraction*float64(s.cap)
}
