package sequence

import "container/heap"

type PriorityItem[T any] struct {
	Value    T
	Priority int
	seq      uint64
	index    int
}

// priorityQueue orders by Priority, then by the tie function, then by
// insertion order, so equal items always pop in the same order.
type priorityQueue[T any] struct {
	items []*PriorityItem[T]
	min   bool
	tie   func(a, b T) bool
}

func (pq *priorityQueue[T]) Len() int {
	return len(pq.items)
}

func (pq *priorityQueue[T]) Less(i, j int) bool {
	a, b := pq.items[i], pq.items[j]
	if a.Priority != b.Priority {
		if pq.min {
			return a.Priority < b.Priority
		}
		return a.Priority > b.Priority
	}
	if pq.tie != nil {
		if pq.tie(a.Value, b.Value) {
			return true
		}
		if pq.tie(b.Value, a.Value) {
			return false
		}
	}
	return a.seq < b.seq
}

func (pq *priorityQueue[T]) Swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
	pq.items[i].index = i
	pq.items[j].index = j
}

func (pq *priorityQueue[T]) Push(x any) {
	item := x.(*PriorityItem[T])
	item.index = len(pq.items)
	pq.items = append(pq.items, item)
}

func (pq *priorityQueue[T]) Pop() any {
	old := pq.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // avoid memory leak
	item.index = -1 // for safety
	pq.items = old[0 : n-1]
	return item
}

type PriorityQueue[T any] struct {
	pq  priorityQueue[T]
	seq uint64
}

// NewPriorityQueue returns a queue that pops the highest priority first.
func NewPriorityQueue[T any]() *PriorityQueue[T] {
	pq := &PriorityQueue[T]{}
	heap.Init(&pq.pq)
	return pq
}

// NewMinQueue returns a queue that pops the lowest priority first. tie, when
// not nil, breaks equal priorities before insertion order does.
func NewMinQueue[T any](tie func(a, b T) bool) *PriorityQueue[T] {
	pq := &PriorityQueue[T]{pq: priorityQueue[T]{min: true, tie: tie}}
	heap.Init(&pq.pq)
	return pq
}

func (pq *PriorityQueue[T]) Enqueue(value T, priority int) *PriorityItem[T] {
	pq.seq++
	item := &PriorityItem[T]{
		Value:    value,
		Priority: priority,
		seq:      pq.seq,
	}
	heap.Push(&pq.pq, item)
	return item
}

func (pq *PriorityQueue[T]) Dequeue() (T, bool) {
	if pq.pq.Len() == 0 {
		var zero T
		return zero, false
	}
	item := heap.Pop(&pq.pq).(*PriorityItem[T])
	return item.Value, true
}

func (pq *PriorityQueue[T]) Peek() (T, bool) {
	if pq.pq.Len() == 0 {
		var zero T
		return zero, false
	}
	return pq.pq.items[0].Value, true
}

// Update changes value and priority of an item that is still queued.
func (pq *PriorityQueue[T]) Update(item *PriorityItem[T], value T, priority int) {
	if item.index < 0 {
		return
	}
	item.Value = value
	item.Priority = priority
	heap.Fix(&pq.pq, item.index)
}

// Queued reports whether item has not been dequeued yet.
func (item *PriorityItem[T]) Queued() bool {
	return item.index >= 0
}

func (pq *PriorityQueue[T]) Len() int {
	return pq.pq.Len()
}

func (pq *PriorityQueue[T]) IsEmpty() bool {
	return pq.pq.Len() == 0
}

// Reset drops every queued item and keeps the backing storage.
func (pq *PriorityQueue[T]) Reset() {
	for i := range pq.pq.items {
		pq.pq.items[i].index = -1
		pq.pq.items[i] = nil
	}
	pq.pq.items = pq.pq.items[:0]
	pq.seq = 0
}
