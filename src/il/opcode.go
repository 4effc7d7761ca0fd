// Package il provides the typed, block-structured intermediate
// representation shared by every Viper frontend, the verifier, the virtual
// machine, and native code generators. The model is passive data: building
// and reading a Module attaches no behavior to it, mirroring the way the
// teacher's ir/lir package only assembles a tree for downstream stages.
package il

import "fmt"

// Opcode identifies the operation an Instr performs. The set is closed and
// is the contract between frontends, the verifier, the VM, and codegen.
type Opcode uint16

const (
	OpNone Opcode = iota

	// Unchecked integer arithmetic (wraps).
	OpAdd
	OpSub
	OpMul

	// Checked integer arithmetic.
	OpIAddOvf
	OpISubOvf
	OpIMulOvf
	OpSDivChk0
	OpSRemChk0
	OpUDivChk0
	OpURemChk0

	// Bitwise & shifts.
	OpAnd
	OpOr
	OpXor
	OpNot
	OpShl
	OpAShr
	OpLShr

	// Floating point.
	OpFAdd
	OpFSub
	OpFMul
	OpFDiv

	// Integer comparisons.
	OpICmpEQ
	OpICmpNE
	OpICmpSLT
	OpICmpSLE
	OpICmpSGT
	OpICmpSGE
	OpICmpULT
	OpICmpULE
	OpICmpUGT
	OpICmpUGE

	// Float comparisons.
	OpFCmpEQ
	OpFCmpNE
	OpFCmpLT
	OpFCmpLE
	OpFCmpGT
	OpFCmpGE
	OpFCmpOrd
	OpFCmpUno

	// Conversions.
	OpCastSiToFp
	OpCastUiToFp
	OpCastFpToSiRteChk
	OpCastFpToUiRteChk

	// Bounds & safety checks.
	OpIdxChk

	// Constants.
	OpConstI1
	OpConstI16
	OpConstI32
	OpConstI64
	OpConstF64

	// Memory.
	OpAlloca
	OpLoad
	OpStore

	// Control flow.
	OpBr
	OpCBr
	OpRet
	OpTrap

	// Exception handling.
	OpEhPush
	OpEhPop
	OpEhEntry
	OpResumeLabel

	// Calls.
	OpCall

	opcodeCount
)

var opcodeNames = [...]string{
	OpNone:              "none",
	OpAdd:                "add",
	OpSub:                "sub",
	OpMul:                "mul",
	OpIAddOvf:            "iaddovf",
	OpISubOvf:            "isubovf",
	OpIMulOvf:            "imulovf",
	OpSDivChk0:           "sdivchk0",
	OpSRemChk0:           "sremchk0",
	OpUDivChk0:           "udivchk0",
	OpURemChk0:           "uremchk0",
	OpAnd:                "and",
	OpOr:                 "or",
	OpXor:                "xor",
	OpNot:                "not",
	OpShl:                "shl",
	OpAShr:               "ashr",
	OpLShr:               "lshr",
	OpFAdd:               "fadd",
	OpFSub:               "fsub",
	OpFMul:               "fmul",
	OpFDiv:               "fdiv",
	OpICmpEQ:             "icmp_eq",
	OpICmpNE:             "icmp_ne",
	OpICmpSLT:            "icmp_slt",
	OpICmpSLE:            "icmp_sle",
	OpICmpSGT:            "icmp_sgt",
	OpICmpSGE:            "icmp_sge",
	OpICmpULT:            "icmp_ult",
	OpICmpULE:            "icmp_ule",
	OpICmpUGT:            "icmp_ugt",
	OpICmpUGE:            "icmp_uge",
	OpFCmpEQ:             "fcmp_eq",
	OpFCmpNE:             "fcmp_ne",
	OpFCmpLT:             "fcmp_lt",
	OpFCmpLE:             "fcmp_le",
	OpFCmpGT:             "fcmp_gt",
	OpFCmpGE:             "fcmp_ge",
	OpFCmpOrd:            "fcmp_ord",
	OpFCmpUno:            "fcmp_uno",
	OpCastSiToFp:         "cast_si_to_fp",
	OpCastUiToFp:         "cast_ui_to_fp",
	OpCastFpToSiRteChk:   "cast_fp_to_si_rte_chk",
	OpCastFpToUiRteChk:   "cast_fp_to_ui_rte_chk",
	OpIdxChk:             "idx_chk",
	OpConstI1:            "const_i1",
	OpConstI16:           "const_i16",
	OpConstI32:           "const_i32",
	OpConstI64:           "const_i64",
	OpConstF64:           "const_f64",
	OpAlloca:             "alloca",
	OpLoad:               "load",
	OpStore:              "store",
	OpBr:                 "br",
	OpCBr:                "cbr",
	OpRet:                "ret",
	OpTrap:               "trap",
	OpEhPush:             "eh.push",
	OpEhPop:              "eh.pop",
	OpEhEntry:            "eh.entry",
	OpResumeLabel:        "resume.label",
	OpCall:               "call",
}

// String renders the canonical textual-IL mnemonic for the opcode.
func (o Opcode) String() string {
	if int(o) < len(opcodeNames) && opcodeNames[o] != "" {
		return opcodeNames[o]
	}
	return fmt.Sprintf("opcode(%d)", o)
}

// IsTerminator reports whether the opcode may only appear as the last
// instruction of a basic block.
func (o Opcode) IsTerminator() bool {
	switch o {
	case OpBr, OpCBr, OpRet, OpTrap, OpResumeLabel:
		return true
	}
	return false
}

// CheckedArith reports whether the opcode is one of the checked integer
// arithmetic family, valid at I16/I32/I64 and trapping on fault.
func (o Opcode) CheckedArith() bool {
	switch o {
	case OpIAddOvf, OpISubOvf, OpIMulOvf, OpSDivChk0, OpSRemChk0, OpUDivChk0, OpURemChk0:
		return true
	}
	return false
}
