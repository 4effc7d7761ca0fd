package collections

import "viper/src/rt"

// Set is a string-keyed membership collection, the Set counterpart of Map
// (same key marshaling rationale: plain Go strings, not rt.String
// handles). Elements are not reference-counted objects themselves — Set
// tracks presence, not ownership of arbitrary rt.Object payloads — matching
// spec.md §4.3.4's description of Set as holding hashable scalar/string
// members rather than heap object references.
type Set struct {
	rt.Header
	members map[string]struct{}
}

// NewSet allocates an empty Set with refcount 1.
func NewSet() *Set {
	return &Set{Header: rt.NewHeader(rt.KindObject, rt.ElemStr, 0, 0, nil), members: map[string]struct{}{}}
}

// Len returns the number of members.
func (s *Set) Len() int64 { return int64(len(s.members)) }

// Add inserts v, reporting whether it was newly added.
func (s *Set) Add(v string) bool {
	if _, ok := s.members[v]; ok {
		return false
	}
	s.members[v] = struct{}{}
	s.Length = len(s.members)
	return true
}

// Remove deletes v, reporting whether it was present.
func (s *Set) Remove(v string) bool {
	if _, ok := s.members[v]; !ok {
		return false
	}
	delete(s.members, v)
	s.Length = len(s.members)
	return true
}

// Contains reports whether v is a member.
func (s *Set) Contains(v string) bool {
	_, ok := s.members[v]
	return ok
}

// Union returns a new Set holding the members of both a and b.
func Union(a, b *Set) *Set {
	out := NewSet()
	for v := range a.members {
		out.Add(v)
	}
	for v := range b.members {
		out.Add(v)
	}
	return out
}

// Intersect returns a new Set holding only members present in both a and b.
func Intersect(a, b *Set) *Set {
	out := NewSet()
	for v := range a.members {
		if b.Contains(v) {
			out.Add(v)
		}
	}
	return out
}
