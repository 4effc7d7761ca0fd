// Package vm implements the tree-walking interpreter that executes a
// verified il.Module, and the trap-precise fault semantics it must honor
// on every checked opcode. It is grounded in original_source's src/vm/VM
// interpreter and Runner façade, generalized from a single hard-coded BASIC
// opcode set (the teacher, hhramberg-go-vslc, never built an interpreter —
// vslc only ever emits ARM/RISC-V assembly) to the full closed opcode
// family of il.Opcode.
package vm

import (
	"math"

	"viper/src/il"
	"viper/src/il/types"
	"viper/src/rt"
)

// Value is the interpreter's boxed runtime value: exactly one of the I/F/Obj
// fields is meaningful, selected by Kind. Booleans and sub-64-bit integers
// are carried in I using their natural Go representation (0/1 for I1), not
// sign-extended beyond their declared width until an operation demands it.
type Value struct {
	Kind types.Kind
	I    int64
	F    float64
	Obj  rt.Object // populated for Str/Ptr; nil is the valid "null" value.
}

// IntValue builds an integer-kinded Value.
func IntValue(k types.Kind, i int64) Value { return Value{Kind: k, I: k.Truncate(i)} }

// FloatValue builds an f64 Value.
func FloatValue(f float64) Value { return Value{Kind: types.F64, F: f} }

// BoolValue builds an i1 Value.
func BoolValue(b bool) Value {
	if b {
		return Value{Kind: types.I1, I: 1}
	}
	return Value{Kind: types.I1, I: 0}
}

// NullValue builds the null reference literal at the given reference kind.
func NullValue(k types.Kind) Value { return Value{Kind: k} }

// Bool reports the Value as a Go bool (only meaningful for I1 Values).
func (v Value) Bool() bool { return v.I != 0 }

// evalOperand resolves an il.Value operand against the current frame's
// temp table and the module's globals, materializing it into a runtime
// Value.
func (vm *VM) evalOperand(fr *frame, op il.Value) Value {
	switch op.Kind {
	case il.VKConstInt:
		return Value{Kind: types.I64, I: op.Int}
	case il.VKConstBool:
		return BoolValue(op.Int != 0)
	case il.VKConstFloat:
		return Value{Kind: types.F64, F: math.Float64frombits(uint64(op.Float))}
	case il.VKTemp:
		return fr.temps[op.TempID]
	case il.VKGlobalRef:
		return vm.globals[op.Global]
	case il.VKNull:
		return Value{}
	}
	return Value{}
}
