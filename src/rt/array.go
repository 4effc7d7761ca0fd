package rt

// Array is a homogeneous, resizable, reference-counted array over one of
// five distinct element kinds (spec.md §3.2/§4.3.3). Rather than the C
// runtime's one-struct-per-element-kind split (rt_array_i64.c,
// rt_array_str.c, ...), the Go port uses a single generic Array[T] so the
// copy-on-share resize rule and retain/release discipline are written
// once; RefCounted reports whether T requires retain/release on store, the
// one behavioral fork the element kinds actually need.
type Array[T any] struct {
	Header
	data       []T
	refCounted bool
	retain     func(T)
	release    func(T)
}

// NewArray allocates an array of length n, zero-filled. retain/release may
// be nil for non-reference-counted element kinds (i32, i64, f64).
func NewArray[T any](elem ElementKind, n int, retain, release func(T)) *Array[T] {
	return &Array[T]{
		Header:     NewHeader(KindArray, elem, n, n, nil),
		data:       make([]T, n),
		refCounted: retain != nil,
		retain:     retain,
		release:    release,
	}
}

// Len returns the current element count.
func (a *Array[T]) Len() int64 { return int64(a.Length) }

// Get returns the element at idx, or traps Bounds via the returned ok=false
// (callers in the VM turn that into a trap.Error with source attribution;
// the rt package itself stays trap-descriptor-agnostic about *where* the
// fault occurred, since only the VM knows the current instruction).
func (a *Array[T]) Get(idx int64) (T, bool) {
	var zero T
	if idx < 0 || idx >= int64(a.Length) {
		return zero, false
	}
	return a.data[idx], true
}

// Set stores v at idx, retaining v and releasing the previous occupant
// exactly once when the element kind is reference-counted (spec.md §4.3.3:
// "element store/load go through retain/release exactly once per write").
func (a *Array[T]) Set(idx int64, v T) bool {
	if idx < 0 || idx >= int64(a.Length) {
		return false
	}
	if a.refCounted {
		a.retain(v)
		a.release(a.data[idx])
	}
	a.data[idx] = v
	return true
}

// Resize implements spec.md §4.3.3's copy-on-share rule: if refcount is 1,
// grow in place (conceptually — Go's GC makes "in place" advisory, but the
// observable contract is preserved: existing elements keep their identity
// and new slots zero-fill); if refcount > 1, the caller must treat the
// returned *Array[T] as the array going forward and drop the old one,
// mirroring the C API's in/out pointer parameter.
func (a *Array[T]) Resize(newLen int) *Array[T] {
	if newLen <= a.Capacity {
		old := a.Length
		a.Length = newLen
		a.Capacity = newLen
		// Dropped slots are zeroed unconditionally so a later regrowth
		// never resurrects stale elements (growth zero-fills, §3.2).
		var zero T
		for i := newLen; i < old; i++ {
			if a.refCounted {
				a.release(a.data[i])
			}
			a.data[i] = zero
		}
		a.data = a.data[:newLen]
		return a
	}
	if a.RefCount() == 1 {
		grown := make([]T, newLen)
		copy(grown, a.data)
		a.data = grown
		a.Length = newLen
		a.Capacity = newLen
		return a
	}
	fresh := NewArray[T](a.ElementKind, newLen, a.retain, a.release)
	n := a.Length
	if newLen < n {
		n = newLen
	}
	for i := 0; i < n; i++ {
		fresh.data[i] = a.data[i]
		if fresh.refCounted {
			fresh.retain(fresh.data[i])
		}
	}
	a.Release()
	return fresh
}

// Release overrides Header.Release so that reaching refcount zero releases
// every reference-counted element before the array itself is dropped
// (spec.md §4.3.1's finalizer contract: "for arrays of refcounted elements:
// release each"). The element loop runs only on the caller whose decrement
// reached zero.
func (a *Array[T]) Release() {
	if a.ReleaseAndWasLast() && a.refCounted {
		for _, v := range a.data {
			a.release(v)
		}
	}
}
