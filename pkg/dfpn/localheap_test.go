package dfpn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalHeapOrdersByPriorityDescending(t *testing.T) {
	h := NewLocalHeap(10)
	assert.True(t, h.Push(Task{Priority: 3}))
	assert.True(t, h.Push(Task{Priority: 9}))
	assert.True(t, h.Push(Task{Priority: 1}))

	t1, ok := h.Pop()
	assert.True(t, ok)
	assert.EqualValues(t, 9, t1.Priority)

	t2, ok := h.Pop()
	assert.True(t, ok)
	assert.EqualValues(t, 3, t2.Priority)

	t3, ok := h.Pop()
	assert.True(t, ok)
	assert.EqualValues(t, 1, t3.Priority)

	_, ok = h.Pop()
	assert.False(t, ok)
}

func TestLocalHeapRejectsPushBeyondCapacity(t *testing.T) {
	h := NewLocalHeap(2)
	assert.True(t, h.Push(Task{Priority: 1}))
	assert.True(t, h.Push(Task{Priority: 2}))
	assert.False(t, h.Push(Task{Priority: 3}))
	assert.Equal(t, 2, h.Len())
}

func TestLocalHeapTopPriorityReportsSentinelWhenEmpty(t *testing.T) {
	h := NewLocalHeap(4)
	assert.Equal(t, minPriority, h.TopPriority())

	h.Push(Task{Priority: 7})
	assert.EqualValues(t, 7, h.TopPriority())
}

func TestLocalHeapPeekDoesNotRemove(t *testing.T) {
	h := NewLocalHeap(4)
	h.Push(Task{Priority: 5})

	p, ok := h.Peek()
	assert.True(t, ok)
	assert.EqualValues(t, 5, p.Priority)
	assert.Equal(t, 1, h.Len())
}
