package il

import (
	"fmt"
	"strings"

	"viper/src/il/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// ValueKind discriminates the variant carried by a Value.
type ValueKind uint8

const (
	VKConstInt ValueKind = iota
	VKConstFloat
	VKConstBool
	VKTemp
	VKGlobalRef
	VKNull
)

// Value is a tagged variant operand: a constant, a reference to a temp, a
// reference to a global, or the null literal. Values are value-copied and
// carry no identity of their own; identity (for temps) lives in TempID.
type Value struct {
	Kind   ValueKind
	Int    int64  // ConstInt payload, or ConstBool (0/1).
	Float  int64  // ConstFloat payload, carried as a raw f64 bit pattern.
	TempID uint32 // VKTemp payload.
	Global string // VKGlobalRef payload.
}

// ConstInt builds an integer constant operand.
func ConstInt(v int64) Value { return Value{Kind: VKConstInt, Int: v} }

// ConstBool builds a boolean constant operand.
func ConstBool(v bool) Value {
	var i int64
	if v {
		i = 1
	}
	return Value{Kind: VKConstBool, Int: i}
}

// ConstFloatBits builds a float constant operand from its bit pattern.
func ConstFloatBits(bits int64) Value { return Value{Kind: VKConstFloat, Float: bits} }

// Temp builds an operand referencing a previously defined temp.
func Temp(id uint32) Value { return Value{Kind: VKTemp, TempID: id} }

// GlobalRef builds an operand referencing a named global or extern.
func GlobalRef(name string) Value { return Value{Kind: VKGlobalRef, Global: name} }

// Null builds the null literal operand.
func Null() Value { return Value{Kind: VKNull} }

// String renders the operand using the textual IL conventions of §6.3:
// temps prefixed with %, globals/externs prefixed with @.
func (v Value) String() string {
	switch v.Kind {
	case VKConstInt:
		return fmt.Sprintf("%d", v.Int)
	case VKConstFloat:
		// An integral value such as 2.0 renders as "2" under %g; the ".0"
		// suffix keeps it from reading back as an integer constant.
		s := fmt.Sprintf("%g", float64FromBits(v.Float))
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s
	case VKConstBool:
		if v.Int != 0 {
			return "true"
		}
		return "false"
	case VKTemp:
		return fmt.Sprintf("%%t%d", v.TempID)
	case VKGlobalRef:
		return "@" + v.Global
	case VKNull:
		return "null"
	}
	return "?"
}

// SourceLoc attaches a precise source attribution to an instruction, used
// uniformly by trap reporting (§6.2) and diagnostics.
type SourceLoc struct {
	FileID int
	Line   int
	Column int
}

func (s SourceLoc) String() string { return fmt.Sprintf("line %d", s.Line) }

// Instr is a single IL instruction.
type Instr struct {
	HasResult bool
	Result    uint32 // valid iff HasResult
	Op        Opcode
	ResultTy  types.Type
	Operands  []Value
	Labels    []string // branch targets, in opcode-defined order
	Callee    string   // valid for OpCall
	Loc       SourceLoc

	cbrSplit int // valid for OpCBr: len(operands[1:]) belonging to the true edge.
}

// CBrArgs splits a CBr instruction's block-argument operands into the
// true-edge and false-edge argument lists, per the flattened-operand
// grouping rule adopted for spec.md §9's open question: operands are
// [cond, trueArgs..., falseArgs...].
func (i Instr) CBrArgs() (cond Value, trueArgs, falseArgs []Value) {
	cond = i.Operands[0]
	rest := i.Operands[1:]
	trueArgs = rest[:i.cbrSplit]
	falseArgs = rest[i.cbrSplit:]
	return
}

// BasicBlock is a sequence of instructions terminated by exactly one
// terminator in the last position, with an ordered list of typed block
// parameters bound to pre-reserved temp ids.
type BasicBlock struct {
	Label        string
	Params       []BlockParam
	Instructions []Instr
	Terminated   bool
}

// BlockParam is an SSA-style formal filled by branch arguments from
// predecessors.
type BlockParam struct {
	TempID uint32
	Type   types.Type
}

// FuncParam is a function formal parameter, pre-bound to a temp id.
type FuncParam struct {
	Name   string
	Type   types.Type
	TempID uint32
}

// Function is a typed, block-structured function body.
type Function struct {
	Name       string
	ReturnType types.Type
	Params     []FuncParam
	Blocks     []*BasicBlock // Blocks[0] is the entry block.

	nextTemp uint32
}

// Extern declares a runtime or user-supplied native function callable from
// IL.
type Extern struct {
	Name       string
	ReturnType types.Type
	ParamTypes []types.Type
}

// Global is process-lifetime storage.
type Global struct {
	Name    string
	Type    types.Type
	Initial Value
}

// Module is the top-level compilation unit: externs, globals, and
// functions, name-unique within each category.
type Module struct {
	Externs   []Extern
	Globals   []Global
	Functions []*Function
}

func float64FromBits(bits int64) float64 {
	return floatFromBits(uint64(bits))
}
