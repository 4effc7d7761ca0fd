package verify

import (
	"fmt"

	"viper/src/il"
	"viper/src/il/types"
)

// opSig is one opcode family's operand/result check, used by verifyFunction's
// rule 7 ("opcode operand types"). Checked integer arithmetic and
// comparisons are polymorphic over the three checked widths, so sig
// functions receive the instruction's declared result type and validate
// operands against it rather than a single fixed Kind. temps/globals let a
// check resolve what type a Temp/GlobalRef operand actually carries (built
// once per function by buildTempTypes); an untyped literal operand
// (resolveOperandType's ok=false) is never flagged, since it carries no
// type tag of its own to contradict.
type typedCheck func(i *il.Instr, temps map[uint32]types.Type, globals map[string]types.Type) string

// checkOperandKinds resolves each of i's operands and reports the first one
// whose declared type disagrees with want.
func checkOperandKinds(i *il.Instr, temps map[uint32]types.Type, globals map[string]types.Type, want types.Kind) string {
	for idx, op := range i.Operands {
		t, ok := resolveOperandType(op, temps, globals)
		if ok && t.Kind != want {
			return fmt.Sprintf("operand %d has type %s, expected %s", idx, t.Kind, want)
		}
	}
	return ""
}

// checkedArithSig validates the checked integer-arithmetic family
// (IAddOvf/ISubOvf/IMulOvf/SDivChk0/SRemChk0/UDivChk0/URemChk0): both
// operands and the result must agree on one of the checked integer widths
// (I16/I32/I64).
func checkedArithSig(i *il.Instr, temps map[uint32]types.Type, globals map[string]types.Type) string {
	if len(i.Operands) != 2 {
		return "checked arithmetic requires exactly two operands"
	}
	if !i.ResultTy.IsInt() {
		return "checked arithmetic result type must be i16, i32, or i64"
	}
	return checkOperandKinds(i, temps, globals, i.ResultTy.Kind)
}

// uncheckedArithSig validates Add/Sub/Mul: fixed at i64.
func uncheckedArithSig(i *il.Instr, temps map[uint32]types.Type, globals map[string]types.Type) string {
	if len(i.Operands) != 2 {
		return "unchecked arithmetic requires exactly two operands"
	}
	if i.ResultTy.Kind != types.I64 {
		return "unchecked arithmetic is only defined at i64"
	}
	return checkOperandKinds(i, temps, globals, types.I64)
}

// bitwiseSig validates And/Or/Xor/Not/Shl/AShr/LShr: fixed at i64. Shl's
// shift-count operand is also an i64 (the opcode masks it to &63 at
// runtime, it does not change its declared type).
func bitwiseSig(i *il.Instr, temps map[uint32]types.Type, globals map[string]types.Type) string {
	want := 2
	if i.Op == il.OpNot {
		want = 1
	}
	if len(i.Operands) != want {
		return "bitwise operator has the wrong operand count"
	}
	if i.ResultTy.Kind != types.I64 {
		return "bitwise operators are only defined at i64"
	}
	return checkOperandKinds(i, temps, globals, types.I64)
}

// floatArithSig validates FAdd/FSub/FMul/FDiv: fixed at f64.
func floatArithSig(i *il.Instr, temps map[uint32]types.Type, globals map[string]types.Type) string {
	if len(i.Operands) != 2 {
		return "floating point arithmetic requires exactly two operands"
	}
	if i.ResultTy.Kind != types.F64 {
		return "floating point arithmetic result type must be f64"
	}
	return checkOperandKinds(i, temps, globals, types.F64)
}

// icmpSig validates both the integer comparison family (ICmp*, fixed at
// i64 operands) and the float comparison family (FCmp*, fixed at f64
// operands); both produce i1.
func icmpSig(i *il.Instr, temps map[uint32]types.Type, globals map[string]types.Type) string {
	if len(i.Operands) != 2 {
		return "comparison requires exactly two operands"
	}
	if i.ResultTy.Kind != types.I1 {
		return "comparison result type must be i1"
	}
	want := types.I64
	if isFloatCmp(i.Op) {
		want = types.F64
	}
	return checkOperandKinds(i, temps, globals, want)
}

func isFloatCmp(op il.Opcode) bool {
	switch op {
	case il.OpFCmpEQ, il.OpFCmpNE, il.OpFCmpLT, il.OpFCmpLE, il.OpFCmpGT, il.OpFCmpGE, il.OpFCmpOrd, il.OpFCmpUno:
		return true
	}
	return false
}

// idxChkSig validates IdxChk(idx: i64, len: i64) -> i64.
func idxChkSig(i *il.Instr, temps map[uint32]types.Type, globals map[string]types.Type) string {
	if len(i.Operands) != 2 {
		return "idx_chk requires exactly two operands"
	}
	if i.ResultTy.Kind != types.I64 {
		return "idx_chk result type must be i64"
	}
	return checkOperandKinds(i, temps, globals, types.I64)
}

// castToFloatSig validates CastSiToFp/CastUiToFp(iN) -> f64: the operand
// must be some checked integer width, not necessarily a fixed one.
func castToFloatSig(i *il.Instr, temps map[uint32]types.Type, globals map[string]types.Type) string {
	if len(i.Operands) != 1 {
		return "cast requires exactly one operand"
	}
	if i.ResultTy.Kind != types.F64 {
		return "float cast result must be f64"
	}
	if t, ok := resolveOperandType(i.Operands[0], temps, globals); ok && !t.IsInt() {
		return fmt.Sprintf("cast operand has type %s, expected an integer type", t.Kind)
	}
	return ""
}

// castFromFloatSig validates CastFpToSiRteChk/CastFpToUiRteChk(f64) -> iN:
// the operand is fixed at f64, the result may be any checked integer width.
func castFromFloatSig(i *il.Instr, temps map[uint32]types.Type, globals map[string]types.Type) string {
	if len(i.Operands) != 1 {
		return "cast requires exactly one operand"
	}
	if !i.ResultTy.IsInt() {
		return "checked float-to-int cast result must be an integer type"
	}
	return checkOperandKinds(i, temps, globals, types.F64)
}

// opSignatures maps each opcode to its structural+type check. Opcodes
// absent from the table (constants, memory, control flow, EH, calls) are
// validated by dedicated logic in function.go because their shape
// (labels, callee names, optional results) doesn't fit the fixed-arity
// mold.
var opSignatures = map[il.Opcode]typedCheck{
	il.OpAdd: uncheckedArithSig,
	il.OpSub: uncheckedArithSig,
	il.OpMul: uncheckedArithSig,

	il.OpIAddOvf:  checkedArithSig,
	il.OpISubOvf:  checkedArithSig,
	il.OpIMulOvf:  checkedArithSig,
	il.OpSDivChk0: checkedArithSig,
	il.OpSRemChk0: checkedArithSig,
	il.OpUDivChk0: checkedArithSig,
	il.OpURemChk0: checkedArithSig,

	il.OpAnd:  bitwiseSig,
	il.OpOr:   bitwiseSig,
	il.OpXor:  bitwiseSig,
	il.OpNot:  bitwiseSig,
	il.OpShl:  bitwiseSig,
	il.OpAShr: bitwiseSig,
	il.OpLShr: bitwiseSig,

	il.OpFAdd: floatArithSig,
	il.OpFSub: floatArithSig,
	il.OpFMul: floatArithSig,
	il.OpFDiv: floatArithSig,

	il.OpICmpEQ:  icmpSig,
	il.OpICmpNE:  icmpSig,
	il.OpICmpSLT: icmpSig,
	il.OpICmpSLE: icmpSig,
	il.OpICmpSGT: icmpSig,
	il.OpICmpSGE: icmpSig,
	il.OpICmpULT: icmpSig,
	il.OpICmpULE: icmpSig,
	il.OpICmpUGT: icmpSig,
	il.OpICmpUGE: icmpSig,
	il.OpFCmpEQ:  icmpSig,
	il.OpFCmpNE:  icmpSig,
	il.OpFCmpLT:  icmpSig,
	il.OpFCmpLE:  icmpSig,
	il.OpFCmpGT:  icmpSig,
	il.OpFCmpGE:  icmpSig,
	il.OpFCmpOrd: icmpSig,
	il.OpFCmpUno: icmpSig,

	il.OpCastSiToFp:       castToFloatSig,
	il.OpCastUiToFp:       castToFloatSig,
	il.OpCastFpToSiRteChk: castFromFloatSig,
	il.OpCastFpToUiRteChk: castFromFloatSig,

	il.OpIdxChk: idxChkSig,
}
