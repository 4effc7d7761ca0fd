package vm

import "viper/src/rt"

// Cell is the addressable storage an Alloca instruction yields: a single
// mutable slot, read by Load and written by Store. This gives the IL's
// Ptr type a concrete runtime representation for the common
// "local variable lowered to alloca+load+store" pattern frontends emit for
// mutable locals and by-reference parameters, without requiring a full
// byte-addressed memory model — indexed, bulk storage is rt.Array's job,
// reached through IdxChk rather than raw pointer arithmetic.
type Cell struct {
	rt.Header
	Val Value
}

// NewCell allocates a zero-valued Cell with refcount 1.
func NewCell() *Cell {
	return &Cell{Header: rt.NewHeader(rt.KindObject, rt.ElemObject, 1, 1, nil)}
}
