package collections

import "viper/src/rt"

// PriorityQueue is a min-heap over an int64 priority per element: Pop
// returns the element with the smallest priority. Elements inserted with
// equal priority dequeue in insertion order, matching the stable tie-break
// the rest of the catalog's ordering operations guarantee (List.Sort).
type PriorityQueue struct {
	rt.Header
	items []pqItem
	seq   uint64
}

type pqItem struct {
	priority int64
	seq      uint64
	elem     rt.Object
}

// NewPriorityQueue allocates an empty PriorityQueue with refcount 1.
func NewPriorityQueue() *PriorityQueue {
	return &PriorityQueue{Header: rt.NewHeader(rt.KindObject, rt.ElemObject, 0, 0, nil)}
}

// Len returns the number of queued elements.
func (q *PriorityQueue) Len() int64 { return int64(len(q.items)) }

// IsEmpty reports whether the queue holds no elements.
func (q *PriorityQueue) IsEmpty() bool { return len(q.items) == 0 }

// Push retains elem and inserts it with the given priority.
func (q *PriorityQueue) Push(elem rt.Object, priority int64) {
	rt.RetainMaybe(elem)
	q.seq++
	q.items = append(q.items, pqItem{priority: priority, seq: q.seq, elem: elem})
	q.siftUp(len(q.items) - 1)
	q.Length = len(q.items)
}

// Pop removes and returns the lowest-priority element (ownership transfers
// to the caller), or ok=false if the queue is empty.
func (q *PriorityQueue) Pop() (rt.Object, bool) {
	n := len(q.items)
	if n == 0 {
		return nil, false
	}
	top := q.items[0].elem
	q.items[0] = q.items[n-1]
	q.items = q.items[:n-1]
	if len(q.items) > 0 {
		q.siftDown(0)
	}
	q.Length = len(q.items)
	return top, true
}

// Peek returns the lowest-priority element retained for the caller without
// removing it.
func (q *PriorityQueue) Peek() (rt.Object, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	e := q.items[0].elem
	rt.RetainMaybe(e)
	return e, true
}

// PeekPriority returns the priority of the front element, or ok=false if
// the queue is empty.
func (q *PriorityQueue) PeekPriority() (int64, bool) {
	if len(q.items) == 0 {
		return 0, false
	}
	return q.items[0].priority, true
}

// Clear releases every element and resets the queue to empty.
func (q *PriorityQueue) Clear() {
	for _, it := range q.items {
		rt.ReleaseMaybe(it.elem)
	}
	q.items = q.items[:0]
	q.Length = 0
}

func (q *PriorityQueue) less(a, b int) bool {
	if q.items[a].priority != q.items[b].priority {
		return q.items[a].priority < q.items[b].priority
	}
	return q.items[a].seq < q.items[b].seq
}

func (q *PriorityQueue) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.less(i, parent) {
			return
		}
		q.items[i], q.items[parent] = q.items[parent], q.items[i]
		i = parent
	}
}

func (q *PriorityQueue) siftDown(i int) {
	n := len(q.items)
	for {
		smallest := i
		if l := 2*i + 1; l < n && q.less(l, smallest) {
			smallest = l
		}
		if r := 2*i + 2; r < n && q.less(r, smallest) {
			smallest = r
		}
		if smallest == i {
			return
		}
		q.items[i], q.items[smallest] = q.items[smallest], q.items[i]
		i = smallest
	}
}

// Release overrides rt.Header.Release to release every remaining element
// once the queue itself reaches refcount zero.
func (q *PriorityQueue) Release() {
	if q.ReleaseAndWasLast() {
		for _, it := range q.items {
			rt.ReleaseMaybe(it.elem)
		}
	}
}
