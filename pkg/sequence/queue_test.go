package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxQueue(t *testing.T) {
	pq := NewPriorityQueue[string]()
	pq.Enqueue("low", 1)
	pq.Enqueue("high", 9)
	pq.Enqueue("mid", 5)

	for _, want := range []string{"high", "mid", "low"} {
		got, ok := pq.Dequeue()
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := pq.Dequeue()
	assert.False(t, ok)
}

func TestMinQueueTieBreaking(t *testing.T) {
	pq := NewMinQueue(func(a, b int) bool { return a > b })
	pq.Enqueue(1, 3)
	pq.Enqueue(2, 3)
	pq.Enqueue(7, 1)
	pq.Enqueue(3, 3)

	var order []int
	for !pq.IsEmpty() {
		v, _ := pq.Dequeue()
		order = append(order, v)
	}
	assert.Equal(t, []int{7, 3, 2, 1}, order)
}

func TestInsertionOrderIsStable(t *testing.T) {
	pq := NewMinQueue[string](nil)
	for _, v := range []string{"a", "b", "c", "d"} {
		pq.Enqueue(v, 0)
	}
	var order []string
	for !pq.IsEmpty() {
		v, _ := pq.Dequeue()
		order = append(order, v)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, order)
}

func TestUpdateAndReset(t *testing.T) {
	pq := NewMinQueue[string](nil)
	a := pq.Enqueue("a", 10)
	pq.Enqueue("b", 5)
	pq.Update(a, "a", 1)

	v, _ := pq.Peek()
	assert.Equal(t, "a", v)

	v, _ = pq.Dequeue()
	assert.Equal(t, "a", v)
	assert.False(t, a.Queued())
	pq.Update(a, "a", 0)
	assert.Equal(t, 1, pq.Len())

	pq.Reset()
	assert.True(t, pq.IsEmpty())
}
