package collections

import "viper/src/rt"

// LinkedList is a doubly linked sequence supporting O(1) insertion and
// removal at both ends, the deque-shaped member of the catalog. Indexed
// access walks from the nearer end.
type LinkedList struct {
	rt.Header
	head, tail *llNode
	size       int
}

type llNode struct {
	elem       rt.Object
	prev, next *llNode
}

// NewLinkedList allocates an empty LinkedList with refcount 1.
func NewLinkedList() *LinkedList {
	return &LinkedList{Header: rt.NewHeader(rt.KindObject, rt.ElemObject, 0, 0, nil)}
}

// Len returns the number of elements.
func (l *LinkedList) Len() int64 { return int64(l.size) }

// IsEmpty reports whether the list holds no elements.
func (l *LinkedList) IsEmpty() bool { return l.size == 0 }

// PushFront retains elem and prepends it.
func (l *LinkedList) PushFront(elem rt.Object) {
	rt.RetainMaybe(elem)
	n := &llNode{elem: elem, next: l.head}
	if l.head != nil {
		l.head.prev = n
	} else {
		l.tail = n
	}
	l.head = n
	l.size++
	l.Length = l.size
}

// PushBack retains elem and appends it.
func (l *LinkedList) PushBack(elem rt.Object) {
	rt.RetainMaybe(elem)
	n := &llNode{elem: elem, prev: l.tail}
	if l.tail != nil {
		l.tail.next = n
	} else {
		l.head = n
	}
	l.tail = n
	l.size++
	l.Length = l.size
}

// PopFront removes and returns the first element (ownership transfers to
// the caller), or ok=false if the list is empty.
func (l *LinkedList) PopFront() (rt.Object, bool) {
	if l.head == nil {
		return nil, false
	}
	n := l.head
	l.head = n.next
	if l.head != nil {
		l.head.prev = nil
	} else {
		l.tail = nil
	}
	l.size--
	l.Length = l.size
	return n.elem, true
}

// PopBack removes and returns the last element (ownership transfers to the
// caller), or ok=false if the list is empty.
func (l *LinkedList) PopBack() (rt.Object, bool) {
	if l.tail == nil {
		return nil, false
	}
	n := l.tail
	l.tail = n.prev
	if l.tail != nil {
		l.tail.next = nil
	} else {
		l.head = nil
	}
	l.size--
	l.Length = l.size
	return n.elem, true
}

// First returns the first element retained for the caller, or ok=false if
// the list is empty.
func (l *LinkedList) First() (rt.Object, bool) {
	if l.head == nil {
		return nil, false
	}
	rt.RetainMaybe(l.head.elem)
	return l.head.elem, true
}

// Last returns the last element retained for the caller, or ok=false if
// the list is empty.
func (l *LinkedList) Last() (rt.Object, bool) {
	if l.tail == nil {
		return nil, false
	}
	rt.RetainMaybe(l.tail.elem)
	return l.tail.elem, true
}

// Get returns the element at idx, retained for the caller, or ok=false if
// idx is out of range.
func (l *LinkedList) Get(idx int64) (rt.Object, bool) {
	n := l.nodeAt(idx)
	if n == nil {
		return nil, false
	}
	rt.RetainMaybe(n.elem)
	return n.elem, true
}

// RemoveAt unlinks and releases the element at idx, reporting whether idx
// was in range.
func (l *LinkedList) RemoveAt(idx int64) bool {
	n := l.nodeAt(idx)
	if n == nil {
		return false
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	rt.ReleaseMaybe(n.elem)
	l.size--
	l.Length = l.size
	return true
}

// Clear releases every element and resets the list to empty.
func (l *LinkedList) Clear() {
	for n := l.head; n != nil; n = n.next {
		rt.ReleaseMaybe(n.elem)
	}
	l.head, l.tail = nil, nil
	l.size = 0
	l.Length = 0
}

func (l *LinkedList) nodeAt(idx int64) *llNode {
	if idx < 0 || idx >= int64(l.size) {
		return nil
	}
	if idx < int64(l.size)/2 {
		n := l.head
		for i := int64(0); i < idx; i++ {
			n = n.next
		}
		return n
	}
	n := l.tail
	for i := int64(l.size) - 1; i > idx; i-- {
		n = n.prev
	}
	return n
}

// Release overrides rt.Header.Release to release every remaining element
// once the list itself reaches refcount zero.
func (l *LinkedList) Release() {
	if l.ReleaseAndWasLast() {
		for n := l.head; n != nil; n = n.next {
			rt.ReleaseMaybe(n.elem)
		}
	}
}
