package vm

import (
	"math"

	"viper/src/il"
	"viper/src/il/types"
	"viper/src/trap"
)

// exec interprets a single instruction against fr, returning the value to
// bind to instr's result (if any), how control should proceed, and any
// fault (trap or propagating extern error) raised along the way.
func (vm *VM) exec(fr *frame, instr *il.Instr) (Value, control, error) {
	switch instr.Op {
	case il.OpAdd:
		return vm.binInt(fr, instr, func(a, b int64) int64 { return a + b })
	case il.OpSub:
		return vm.binInt(fr, instr, func(a, b int64) int64 { return a - b })
	case il.OpMul:
		return vm.binInt(fr, instr, func(a, b int64) int64 { return a * b })

	case il.OpIAddOvf, il.OpISubOvf, il.OpIMulOvf, il.OpSDivChk0, il.OpSRemChk0, il.OpUDivChk0, il.OpURemChk0:
		return vm.checkedArith(fr, instr)

	case il.OpAnd:
		return vm.binInt(fr, instr, func(a, b int64) int64 { return a & b })
	case il.OpOr:
		return vm.binInt(fr, instr, func(a, b int64) int64 { return a | b })
	case il.OpXor:
		return vm.binInt(fr, instr, func(a, b int64) int64 { return a ^ b })
	case il.OpNot:
		a := vm.operand(fr, instr, 0)
		return IntValue(instr.ResultTy.Kind, ^a.I), ctrlContinue, nil
	case il.OpShl:
		return vm.binInt(fr, instr, func(a, b int64) int64 { return a << uint(b&63) })
	case il.OpAShr:
		return vm.binInt(fr, instr, func(a, b int64) int64 { return a >> uint(b&63) })
	case il.OpLShr:
		return vm.binInt(fr, instr, func(a, b int64) int64 { return int64(uint64(a) >> uint(b&63)) })

	case il.OpFAdd:
		return vm.binFloat(fr, instr, func(a, b float64) float64 { return a + b })
	case il.OpFSub:
		return vm.binFloat(fr, instr, func(a, b float64) float64 { return a - b })
	case il.OpFMul:
		return vm.binFloat(fr, instr, func(a, b float64) float64 { return a * b })
	case il.OpFDiv:
		return vm.binFloat(fr, instr, func(a, b float64) float64 { return a / b })

	case il.OpICmpEQ, il.OpICmpNE, il.OpICmpSLT, il.OpICmpSLE, il.OpICmpSGT, il.OpICmpSGE,
		il.OpICmpULT, il.OpICmpULE, il.OpICmpUGT, il.OpICmpUGE:
		return vm.icmp(fr, instr)

	case il.OpFCmpEQ, il.OpFCmpNE, il.OpFCmpLT, il.OpFCmpLE, il.OpFCmpGT, il.OpFCmpGE, il.OpFCmpOrd, il.OpFCmpUno:
		return vm.fcmp(fr, instr)

	case il.OpCastSiToFp:
		a := vm.operand(fr, instr, 0)
		return FloatValue(float64(a.I)), ctrlContinue, nil
	case il.OpCastUiToFp:
		a := vm.operand(fr, instr, 0)
		return FloatValue(float64(uint64(a.I))), ctrlContinue, nil
	case il.OpCastFpToSiRteChk:
		return vm.castFpToInt(fr, instr, true)
	case il.OpCastFpToUiRteChk:
		return vm.castFpToInt(fr, instr, false)

	case il.OpIdxChk:
		return vm.idxChk(fr, instr)

	case il.OpConstI1, il.OpConstI16, il.OpConstI32, il.OpConstI64, il.OpConstF64:
		a := vm.operand(fr, instr, 0)
		if instr.ResultTy.Kind == types.F64 {
			return a, ctrlContinue, nil
		}
		return IntValue(instr.ResultTy.Kind, a.I), ctrlContinue, nil

	case il.OpAlloca:
		return Value{Kind: types.Ptr, Obj: NewCell()}, ctrlContinue, nil
	case il.OpLoad:
		ptr := vm.operand(fr, instr, 0)
		c, ok := ptr.Obj.(*Cell)
		if !ok {
			return Value{}, ctrlContinue, vm.fault(fr, instr, trap.InvalidCast, "load from non-cell pointer")
		}
		return c.Val, ctrlContinue, nil
	case il.OpStore:
		ptr := vm.operand(fr, instr, 0)
		val := vm.operand(fr, instr, 1)
		c, ok := ptr.Obj.(*Cell)
		if !ok {
			return Value{}, ctrlContinue, vm.fault(fr, instr, trap.InvalidCast, "store to non-cell pointer")
		}
		c.Val = val
		return Value{}, ctrlContinue, nil

	case il.OpBr:
		target := vm.blockOf(fr.fn, instr.Labels[0])
		args := vm.operands(fr, instr)
		fr.jumpTo(target, args)
		return Value{}, ctrlJumped, nil
	case il.OpCBr:
		cond, trueArgs, falseArgs := instr.CBrArgs()
		c := vm.evalOperand(fr, cond)
		if c.Bool() {
			target := vm.blockOf(fr.fn, instr.Labels[0])
			fr.jumpTo(target, vm.evalList(fr, trueArgs))
		} else {
			target := vm.blockOf(fr.fn, instr.Labels[1])
			fr.jumpTo(target, vm.evalList(fr, falseArgs))
		}
		return Value{}, ctrlJumped, nil
	case il.OpRet:
		if len(instr.Operands) > 0 {
			return vm.operand(fr, instr, 0), ctrlReturn, nil
		}
		return Value{}, ctrlReturn, nil
	case il.OpTrap:
		return Value{}, ctrlContinue, vm.fault(fr, instr, trap.DomainError, "explicit trap")

	case il.OpEhPush:
		fr.pushHandler(instr.Labels[0])
		return Value{}, ctrlContinue, nil
	case il.OpEhPop:
		fr.popHandler()
		return Value{}, ctrlContinue, nil
	case il.OpEhEntry:
		return Value{}, ctrlContinue, nil
	case il.OpResumeLabel:
		tok := vm.operand(fr, instr, 0)
		if tok.Kind != types.ResumeTok || !fr.consumeToken(uint64(tok.I)) {
			return Value{}, ctrlContinue, vm.fault(fr, instr, trap.DomainError, "invalid or already-consumed resume token")
		}
		target := vm.blockOf(fr.fn, instr.Labels[0])
		fr.jumpTo(target, nil)
		return Value{}, ctrlJumped, nil

	case il.OpCall:
		return vm.call(fr, instr)
	}
	return Value{}, ctrlContinue, vm.fault(fr, instr, trap.DomainError, "unimplemented opcode "+instr.Op.String())
}

func (vm *VM) operand(fr *frame, instr *il.Instr, idx int) Value {
	return vm.evalOperand(fr, instr.Operands[idx])
}

func (vm *VM) operands(fr *frame, instr *il.Instr) []Value {
	return vm.evalList(fr, instr.Operands)
}

func (vm *VM) evalList(fr *frame, ops []il.Value) []Value {
	out := make([]Value, len(ops))
	for i, o := range ops {
		out[i] = vm.evalOperand(fr, o)
	}
	return out
}

func (vm *VM) fault(fr *frame, instr *il.Instr, kind trap.Kind, msg string) error {
	idx := fr.pc
	return trap.NewError(trap.Descriptor{
		Kind: kind, Function: fr.fn.Name, Block: fr.block.Label, InstrIndex: idx,
		Line: instr.Loc.Line, Message: msg,
	})
}

func (vm *VM) binInt(fr *frame, instr *il.Instr, f func(a, b int64) int64) (Value, control, error) {
	a := vm.operand(fr, instr, 0)
	b := vm.operand(fr, instr, 1)
	return IntValue(instr.ResultTy.Kind, f(a.I, b.I)), ctrlContinue, nil
}

func (vm *VM) binFloat(fr *frame, instr *il.Instr, f func(a, b float64) float64) (Value, control, error) {
	a := vm.operand(fr, instr, 0)
	b := vm.operand(fr, instr, 1)
	return FloatValue(f(a.F, b.F)), ctrlContinue, nil
}

// checkedArith implements the trapping integer-arithmetic family at
// whatever width instr.ResultTy declares (spec.md §4.1.1's checked-arith
// edge cases, notably SDivChk0(I64_MIN, -1) traps Overflow while
// SRemChk0(I64_MIN, -1) returns 0).
func (vm *VM) checkedArith(fr *frame, instr *il.Instr) (Value, control, error) {
	k := instr.ResultTy.Kind
	a := vm.operand(fr, instr, 0).I
	b := vm.operand(fr, instr, 1).I
	min, max := k.SignedRange()

	switch instr.Op {
	case il.OpIAddOvf:
		sum := a + b
		if addOverflows64(a, b, sum) || sum < min || sum > max {
			return Value{}, ctrlContinue, vm.fault(fr, instr, trap.Overflow, "integer addition overflow")
		}
		return IntValue(k, sum), ctrlContinue, nil
	case il.OpISubOvf:
		diff := a - b
		if subOverflows64(a, b, diff) || diff < min || diff > max {
			return Value{}, ctrlContinue, vm.fault(fr, instr, trap.Overflow, "integer subtraction overflow")
		}
		return IntValue(k, diff), ctrlContinue, nil
	case il.OpIMulOvf:
		prod := a * b
		if a != 0 && prod/a != b {
			return Value{}, ctrlContinue, vm.fault(fr, instr, trap.Overflow, "integer multiplication overflow")
		}
		if prod < min || prod > max {
			return Value{}, ctrlContinue, vm.fault(fr, instr, trap.Overflow, "integer multiplication overflow")
		}
		return IntValue(k, prod), ctrlContinue, nil
	case il.OpSDivChk0:
		if b == 0 {
			return Value{}, ctrlContinue, vm.fault(fr, instr, trap.DivideByZero, "signed division by zero")
		}
		if a == min && b == -1 {
			return Value{}, ctrlContinue, vm.fault(fr, instr, trap.Overflow, "signed division overflow")
		}
		return IntValue(k, a/b), ctrlContinue, nil
	case il.OpSRemChk0:
		if b == 0 {
			return Value{}, ctrlContinue, vm.fault(fr, instr, trap.DivideByZero, "signed remainder by zero")
		}
		if a == min && b == -1 {
			return IntValue(k, 0), ctrlContinue, nil
		}
		return IntValue(k, a%b), ctrlContinue, nil
	case il.OpUDivChk0:
		if b == 0 {
			return Value{}, ctrlContinue, vm.fault(fr, instr, trap.DivideByZero, "unsigned division by zero")
		}
		return IntValue(k, int64(uint64(a)/uint64(b))), ctrlContinue, nil
	case il.OpURemChk0:
		if b == 0 {
			return Value{}, ctrlContinue, vm.fault(fr, instr, trap.DivideByZero, "unsigned remainder by zero")
		}
		return IntValue(k, int64(uint64(a)%uint64(b))), ctrlContinue, nil
	}
	panic("unreachable checked-arith opcode")
}

// addOverflows64 reports whether a+b, computed at full 64-bit width,
// overflowed: the classic two's-complement test on the *original* operand
// signs (same-signed operands producing a differently-signed sum), since
// routing through a negated operand (as a sub-via-add rewrite would) can
// itself overflow when an operand is math.MinInt64.
func addOverflows64(a, b, sum int64) bool {
	return (a < 0) == (b < 0) && (sum < 0) != (a < 0)
}

// subOverflows64 reports whether a-b, computed at full 64-bit width,
// overflowed: differently-signed operands producing a sum whose sign
// disagrees with a's.
func subOverflows64(a, b, diff int64) bool {
	return (a < 0) != (b < 0) && (diff < 0) != (a < 0)
}

func (vm *VM) icmp(fr *frame, instr *il.Instr) (Value, control, error) {
	a := vm.operand(fr, instr, 0).I
	b := vm.operand(fr, instr, 1).I
	ua, ub := uint64(a), uint64(b)
	var r bool
	switch instr.Op {
	case il.OpICmpEQ:
		r = a == b
	case il.OpICmpNE:
		r = a != b
	case il.OpICmpSLT:
		r = a < b
	case il.OpICmpSLE:
		r = a <= b
	case il.OpICmpSGT:
		r = a > b
	case il.OpICmpSGE:
		r = a >= b
	case il.OpICmpULT:
		r = ua < ub
	case il.OpICmpULE:
		r = ua <= ub
	case il.OpICmpUGT:
		r = ua > ub
	case il.OpICmpUGE:
		r = ua >= ub
	}
	return BoolValue(r), ctrlContinue, nil
}

func (vm *VM) fcmp(fr *frame, instr *il.Instr) (Value, control, error) {
	a := vm.operand(fr, instr, 0).F
	b := vm.operand(fr, instr, 1).F
	nan := math.IsNaN(a) || math.IsNaN(b)
	var r bool
	switch instr.Op {
	case il.OpFCmpEQ:
		r = !nan && a == b
	case il.OpFCmpNE:
		r = nan || a != b
	case il.OpFCmpLT:
		r = !nan && a < b
	case il.OpFCmpLE:
		r = !nan && a <= b
	case il.OpFCmpGT:
		r = !nan && a > b
	case il.OpFCmpGE:
		r = !nan && a >= b
	case il.OpFCmpOrd:
		r = !nan
	case il.OpFCmpUno:
		r = nan
	}
	return BoolValue(r), ctrlContinue, nil
}

// castFpToInt implements the checked, round-to-even float-to-integer casts
// (spec.md §4.1.1): NaN, infinities, and out-of-range magnitudes all trap
// InvalidCast rather than saturating or wrapping.
func (vm *VM) castFpToInt(fr *frame, instr *il.Instr, signed bool) (Value, control, error) {
	f := vm.operand(fr, instr, 0).F
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, ctrlContinue, vm.fault(fr, instr, trap.InvalidCast, "float-to-int cast of NaN or infinity")
	}
	rounded := math.RoundToEven(f)
	k := instr.ResultTy.Kind
	if signed {
		min, max := k.SignedRange()
		if rounded < float64(min) || rounded > float64(max) {
			return Value{}, ctrlContinue, vm.fault(fr, instr, trap.InvalidCast, "float-to-int cast out of range")
		}
		return IntValue(k, int64(rounded)), ctrlContinue, nil
	}
	if rounded < 0 || rounded > float64(uint64(1)<<uint(k.BitWidth())-1) {
		return Value{}, ctrlContinue, vm.fault(fr, instr, trap.InvalidCast, "float-to-uint cast out of range")
	}
	return IntValue(k, int64(uint64(rounded))), ctrlContinue, nil
}

// idxChk implements the bounds-check opcode: traps Bounds if idx is outside
// [0, length), otherwise passes idx through unchanged as an i64, the same
// "checked index, still usable as an operand" shape original_source's
// array accessors build on top of.
func (vm *VM) idxChk(fr *frame, instr *il.Instr) (Value, control, error) {
	idx := vm.operand(fr, instr, 0).I
	length := vm.operand(fr, instr, 1).I
	if idx < 0 || idx >= length {
		return Value{}, ctrlContinue, vm.fault(fr, instr, trap.Bounds,
			"index out of range")
	}
	return IntValue(types.I64, idx), ctrlContinue, nil
}

func (vm *VM) call(fr *frame, instr *il.Instr) (Value, control, error) {
	args := vm.operands(fr, instr)
	if fn, ok := vm.funcs[instr.Callee]; ok {
		v, err := vm.callFunction(fn, args)
		if err != nil {
			return Value{}, ctrlContinue, err
		}
		return v, ctrlContinue, nil
	}
	if ext, ok := vm.externs[instr.Callee]; ok {
		v, err := ext(vm, args)
		if err != nil {
			// A runtime helper that trapped already knows its kind and
			// message; only the source attribution is the VM's to add.
			if te, ok := err.(*trap.Error); ok {
				if te.Function == "" {
					te.Function = fr.fn.Name
					te.Block = fr.block.Label
					te.InstrIndex = fr.pc
					te.Line = instr.Loc.Line
				}
				return Value{}, ctrlContinue, te
			}
			return Value{}, ctrlContinue, vm.fault(fr, instr, trap.DomainError, err.Error())
		}
		return v, ctrlContinue, nil
	}
	return Value{}, ctrlContinue, vm.fault(fr, instr, trap.DomainError, "call to unresolved target @"+instr.Callee)
}
