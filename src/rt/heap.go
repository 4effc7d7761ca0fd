// Package rt implements the reference-counted runtime value model shared by
// the virtual machine and (by contract) native code generators: strings,
// arrays, collections, and concurrency primitives, all built on a uniform
// heap-object protocol. It is the Go-native counterpart of
// original_source's C runtime (src/runtime/...), generalized from "struct
// HeapHeader + payload in one allocation" to a Go struct embedding an
// atomic refcount, since Go objects are already individually heap-allocated
// and garbage collected — the retain/release protocol layered on top
// exists purely to honor spec.md §3.3's ownership discipline and its trap
// semantics, not to manage raw memory.
package rt

import (
	"strconv"
	"sync/atomic"

	"viper/src/trap"
)

// Kind is the outer category of a heap object (spec.md §3.2 HeapHeader).
type Kind uint8

const (
	KindArray Kind = iota
	KindString
	KindObject
)

// ElementKind is the element type of an Array's payload.
type ElementKind uint8

const (
	ElemI32 ElementKind = iota
	ElemI64
	ElemF64
	ElemStr
	ElemObject
	ElemByte
)

// Object is the common interface every heap-allocated, reference-counted
// runtime value implements: retain/release bookkeeping plus a finalizer
// hook run exactly once when the count reaches zero.
type Object interface {
	Retain()
	Release()
	RefCount() int32
}

// Header is embedded by every heap object, mirroring HeapHeader's fixed
// layout (spec.md §3.2): kind, element kind, atomic refcount, length,
// capacity, and an optional finalizer. Retain/Release are defined once
// here and promoted to every embedder, the same way the C runtime's
// rt_heap_retain/rt_heap_release operate uniformly over the header
// regardless of payload shape.
type Header struct {
	Kind        Kind
	ElementKind ElementKind
	refcount    int32
	Length      int
	Capacity    int
	finalize    func()
}

// NewHeader constructs a header with refcount 1, the state every freshly
// allocated heap object starts in (spec.md §3.2: "refcount >= 1 while the
// object is reachable").
func NewHeader(kind Kind, elem ElementKind, length, capacity int, finalize func()) Header {
	return Header{Kind: kind, ElementKind: elem, refcount: 1, Length: length, Capacity: capacity, finalize: finalize}
}

// Retain performs an atomic increment of the header's refcount. Per
// spec.md §4.3.1, invoking Retain on an object whose refcount has already
// reached zero is undefined behavior in the source model; Go's memory
// safety means that can't corrupt memory here, but doing so anyway
// indicates a use-after-release bug in the caller.
func (h *Header) Retain() {
	atomic.AddInt32(&h.refcount, 1)
}

// Release performs an atomic decrement; when the result reaches zero the
// finalizer (if any) runs and the object becomes eligible for garbage
// collection by the host runtime.
func (h *Header) Release() {
	h.ReleaseAndWasLast()
}

// ReleaseAndWasLast performs the atomic decrement and reports whether this
// call dropped the count to zero. Embedders that release nested elements
// themselves (arrays, containers) branch on the value returned by the one
// atomic op: a separate RefCount load after the decrement would let two
// concurrent releasers both observe zero and double-release the elements.
func (h *Header) ReleaseAndWasLast() bool {
	if atomic.AddInt32(&h.refcount, -1) == 0 {
		if h.finalize != nil {
			h.finalize()
		}
		return true
	}
	return false
}

// RefCount returns the current refcount, primarily for tests exercising
// spec.md §8.4 Scenario B's refcount-discipline assertions.
func (h *Header) RefCount() int32 {
	return atomic.LoadInt32(&h.refcount)
}

// ReleaseMaybe releases obj if it is non-nil; a nil element reference is
// legal and skipped during retain/release throughout the collections
// catalog (spec.md §4.3.4 rule 1).
func ReleaseMaybe(obj Object) {
	if obj == nil {
		return
	}
	obj.Release()
}

// RetainMaybe retains obj if it is non-nil.
func RetainMaybe(obj Object) {
	if obj == nil {
		return
	}
	obj.Retain()
}

// BoundsTrap constructs the Descriptor for an out-of-range index access,
// shared by arrays and every collection's indexed operations (spec.md
// §4.3.3 and §4.3.4 rule 2).
func BoundsTrap(function, block string, instr int, line int, idx, length int) *trap.Error {
	return trap.NewError(trap.Descriptor{
		Kind: trap.Bounds, Function: function, Block: block, InstrIndex: instr, Line: line,
		Message: formatBounds(idx, length),
	})
}

// EmptyTrap constructs the Descriptor for an operation requiring a
// non-empty container invoked on an empty one (spec.md §4.3.4 rule 3).
func EmptyTrap(function, block string, instr int, line int, op string) *trap.Error {
	return trap.NewError(trap.Descriptor{
		Kind: trap.DomainError, Function: function, Block: block, InstrIndex: instr, Line: line,
		Message: op + ": container is empty",
	})
}

func formatBounds(idx, length int) string {
	return "index out of range: idx=" + strconv.Itoa(idx) + " len=" + strconv.Itoa(length)
}

// Buffer is the raw, untyped heap allocation returned by rt_alloc — the
// runtime's Ptr type, used by frontends that need a block of addressable
// bytes without the structure Array or String impose.
type Buffer struct {
	Header
	Bytes []byte
}

// NewBuffer allocates n zero-filled bytes with refcount 1.
func NewBuffer(n int64) *Buffer {
	return &Buffer{Header: NewHeader(KindObject, ElemByte, int(n), int(n), nil), Bytes: make([]byte, n)}
}
