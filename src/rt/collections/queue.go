package collections

import "viper/src/rt"

// Queue is a FIFO collection backed by a ring buffer, mirroring the
// growth/wraparound strategy original_source's collection headers describe
// for sequence containers (amortized O(1) push/pop without shifting the
// whole backing array on every dequeue).
type Queue struct {
	rt.Header
	buf        []rt.Object
	head, size int
}

// NewQueue allocates an empty Queue with refcount 1.
func NewQueue() *Queue {
	return &Queue{Header: rt.NewHeader(rt.KindObject, rt.ElemObject, 0, 0, nil), buf: make([]rt.Object, 4)}
}

// Len returns the number of queued elements.
func (q *Queue) Len() int64 { return int64(q.size) }

// IsEmpty reports whether the queue holds no elements.
func (q *Queue) IsEmpty() bool { return q.size == 0 }

// Enqueue retains elem and appends it to the back of the queue, growing
// the backing buffer geometrically when full.
func (q *Queue) Enqueue(elem rt.Object) {
	if q.size == len(q.buf) {
		q.grow()
	}
	rt.RetainMaybe(elem)
	tail := (q.head + q.size) % len(q.buf)
	q.buf[tail] = elem
	q.size++
	q.Length = q.size
}

// Dequeue removes and returns the front element (ownership transfers to
// the caller), or ok=false if the queue is empty.
func (q *Queue) Dequeue() (rt.Object, bool) {
	if q.size == 0 {
		return nil, false
	}
	e := q.buf[q.head]
	q.buf[q.head] = nil
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	q.Length = q.size
	return e, true
}

// Peek returns the front element retained for the caller without removing
// it.
func (q *Queue) Peek() (rt.Object, bool) {
	if q.size == 0 {
		return nil, false
	}
	e := q.buf[q.head]
	rt.RetainMaybe(e)
	return e, true
}

func (q *Queue) grow() {
	newCap := len(q.buf) * 2
	if newCap == 0 {
		newCap = 4
	}
	grown := make([]rt.Object, newCap)
	for i := 0; i < q.size; i++ {
		grown[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = grown
	q.head = 0
}

// Release overrides rt.Header.Release to release every remaining element
// once the queue itself reaches refcount zero.
func (q *Queue) Release() {
	if q.ReleaseAndWasLast() {
		for i := 0; i < q.size; i++ {
			rt.ReleaseMaybe(q.buf[(q.head+i)%len(q.buf)])
		}
	}
}
