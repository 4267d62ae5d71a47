package value

import "container/heap"

// pqHeap is a container/heap.Interface min-heap ordered by Compare,
// backing the priority-queue heap-object variant.
type pqHeap struct {
	items []Value
}

func (h pqHeap) Len() int            { return len(h.items) }
func (h pqHeap) Less(i, j int) bool  { return Compare(h.items[i], h.items[j]) < 0 }
func (h pqHeap) Swap(i, j int)       { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *pqHeap) Push(x interface{}) { h.items = append(h.items, x.(Value)) }
func (h *pqHeap) Pop() interface{} {
	old := h.items
	n := len(old)
	v := old[n-1]
	h.items = old[:n-1]
	return v
}

// PQLen reports the number of queued values.
func (h *HeapObject) PQLen() int {
	if h.PQ == nil {
		return 0
	}
	return h.PQ.Len()
}

// PQPush inserts v into the priority queue, retaining it.
func (h *HeapObject) PQPush(v Value) {
	heap.Push(h.PQ, v.Retain())
}

// PQPop removes and returns the minimum value; ok is false on an empty
// queue.
func (h *HeapObject) PQPop() (Value, bool) {
	if h.PQ.Len() == 0 {
		return Nil, false
	}
	return heap.Pop(h.PQ).(Value), true
}
