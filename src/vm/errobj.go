package vm

import (
	"viper/src/rt"
	"viper/src/trap"
)

// ErrObj is the heap object backing an IL value of type Error: the trap
// descriptor delivered to a handler block's first parameter. Handler code
// inspects it through the rt_err_* externs rather than any IL-level field
// access, keeping the Error type opaque at the instruction set.
type ErrObj struct {
	rt.Header
	Trap *trap.Error
}

func newErrObj(te *trap.Error) *ErrObj {
	return &ErrObj{Header: rt.NewHeader(rt.KindObject, rt.ElemObject, 1, 1, nil), Trap: te}
}
