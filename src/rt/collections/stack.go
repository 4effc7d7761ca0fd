package collections

import "viper/src/rt"

// Stack is a LIFO collection, grounded in RTStackTests.cpp's rt_stack_new/
// push/pop/peek/len/is_empty contract. Pop and Peek on an empty stack
// return ok=false; they do not trap.
type Stack struct {
	rt.Header
	elems []rt.Object
}

// NewStack allocates an empty Stack with refcount 1.
func NewStack() *Stack {
	return &Stack{Header: rt.NewHeader(rt.KindObject, rt.ElemObject, 0, 0, nil)}
}

// Len returns the number of elements.
func (s *Stack) Len() int64 { return int64(len(s.elems)) }

// IsEmpty reports whether the stack holds no elements.
func (s *Stack) IsEmpty() bool { return len(s.elems) == 0 }

// Push retains elem and places it on top.
func (s *Stack) Push(elem rt.Object) {
	rt.RetainMaybe(elem)
	s.elems = append(s.elems, elem)
	s.Length = len(s.elems)
}

// Pop removes and returns the top element (ownership transfers to the
// caller, no extra retain), or ok=false if the stack is empty.
func (s *Stack) Pop() (rt.Object, bool) {
	n := len(s.elems)
	if n == 0 {
		return nil, false
	}
	e := s.elems[n-1]
	s.elems = s.elems[:n-1]
	s.Length = len(s.elems)
	return e, true
}

// Peek returns the top element retained for the caller without removing it.
func (s *Stack) Peek() (rt.Object, bool) {
	n := len(s.elems)
	if n == 0 {
		return nil, false
	}
	e := s.elems[n-1]
	rt.RetainMaybe(e)
	return e, true
}

// Release overrides rt.Header.Release to release every remaining element
// once the stack itself reaches refcount zero; only the caller whose
// decrement reached zero runs the element loop.
func (s *Stack) Release() {
	if s.ReleaseAndWasLast() {
		for _, e := range s.elems {
			rt.ReleaseMaybe(e)
		}
	}
}
