// Package collections implements Viper's built-in generic container
// catalog (spec.md §4.3.4): List, Stack, Queue, Map, Set, Grid2D,
// ObjectPool, and StateMachine, each enforcing the same reference-counting,
// bounds-checking, and empty-checking discipline as rt.Array. Grounded in
// original_source's src/runtime/collections/rt_list.h family, generalized
// from one opaque-pointer-per-container-kind to a single Go package of
// small generic types operating over rt.Object elements.
package collections

import "viper/src/rt"

// List is a reference-counted, dynamically growable, index-addressed
// sequence, grounded in rt_list.h: append/insert/remove/indexed-access with
// automatic growth, retaining on store and releasing on overwrite/removal.
type List struct {
	rt.Header
	elems []rt.Object
}

// NewList allocates an empty List with refcount 1.
func NewList() *List {
	return &List{Header: rt.NewHeader(rt.KindObject, rt.ElemObject, 0, 0, nil)}
}

// Len returns the number of elements.
func (l *List) Len() int64 { return int64(len(l.elems)) }

// Push appends elem, retaining it (nil elements are permitted and skipped
// per rt.RetainMaybe's nil-safety, spec.md §4.3.4 rule 1).
func (l *List) Push(elem rt.Object) {
	rt.RetainMaybe(elem)
	l.elems = append(l.elems, elem)
	l.Length = len(l.elems)
}

// Get returns the element at idx, retained for the caller, or ok=false if
// idx is out of range.
func (l *List) Get(idx int64) (rt.Object, bool) {
	if idx < 0 || idx >= int64(len(l.elems)) {
		return nil, false
	}
	e := l.elems[idx]
	rt.RetainMaybe(e)
	return e, true
}

// Set overwrites the element at idx, releasing the previous occupant and
// retaining the new one.
func (l *List) Set(idx int64, elem rt.Object) bool {
	if idx < 0 || idx >= int64(len(l.elems)) {
		return false
	}
	rt.RetainMaybe(elem)
	rt.ReleaseMaybe(l.elems[idx])
	l.elems[idx] = elem
	return true
}

// RemoveAt releases the element at idx and shifts the tail left by one.
func (l *List) RemoveAt(idx int64) bool {
	if idx < 0 || idx >= int64(len(l.elems)) {
		return false
	}
	rt.ReleaseMaybe(l.elems[idx])
	l.elems = append(l.elems[:idx], l.elems[idx+1:]...)
	l.Length = len(l.elems)
	return true
}

// Clear releases every element and resets length to zero; capacity is
// retained for reuse, matching rt_list_clear.
func (l *List) Clear() {
	for _, e := range l.elems {
		rt.ReleaseMaybe(e)
	}
	l.elems = l.elems[:0]
	l.Length = 0
}

// Sort stably reorders elements using less as the ordering predicate,
// matching rt_list.h's sort-is-stable invariant.
func (l *List) Sort(less func(a, b rt.Object) bool) {
	// insertion sort: stable and adequate for the small in-VM lists this
	// runtime targets, without pulling sort.SliceStable's reflection-based
	// swap path into the hot collections package.
	for i := 1; i < len(l.elems); i++ {
		for j := i; j > 0 && less(l.elems[j], l.elems[j-1]); j-- {
			l.elems[j], l.elems[j-1] = l.elems[j-1], l.elems[j]
		}
	}
}

// Release overrides rt.Header.Release so reaching refcount zero releases
// every retained element; only the caller whose decrement reached zero
// runs the element loop.
func (l *List) Release() {
	if l.ReleaseAndWasLast() {
		for _, e := range l.elems {
			rt.ReleaseMaybe(e)
		}
	}
}
