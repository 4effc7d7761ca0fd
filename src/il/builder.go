package il

import (
	"fmt"
	"math"

	"viper/src/il/types"
)

// ---------------------
// ----- Functions -----
// ---------------------

func floatBits(f float64) int64      { return int64(math.Float64bits(f)) }
func floatFromBits(b uint64) float64 { return math.Float64frombits(b) }

// ConstFloat builds a float constant operand from its value.
func ConstFloat(f float64) Value { return Value{Kind: VKConstFloat, Float: floatBits(f)} }

// FloatValue returns the f64 value carried by a VKConstFloat operand.
func (v Value) FloatValue() float64 { return floatFromBits(uint64(v.Float)) }

// NewModule creates an empty module ready for construction.
func NewModule() *Module {
	return &Module{}
}

// AddExtern declares a native function callable from IL. It is the
// builder-side counterpart of the verifier's "Extern signature agreement"
// rule (§4.1.2 item 2): callers are responsible for using the same
// signature for every declaration of a given rt_* name.
func (m *Module) AddExtern(name string, ret types.Type, params ...types.Type) *Extern {
	m.Externs = append(m.Externs, Extern{Name: name, ReturnType: ret, ParamTypes: params})
	return &m.Externs[len(m.Externs)-1]
}

// AddGlobal declares process-lifetime storage.
func (m *Module) AddGlobal(name string, t types.Type, initial Value) *Global {
	m.Globals = append(m.Globals, Global{Name: name, Type: t, Initial: initial})
	return &m.Globals[len(m.Globals)-1]
}

// CreateFunction creates a new function with the given name, return type,
// and parameter list. Parameters are bound to freshly reserved temp ids
// immediately so the entry block can reference them. An empty entry block
// is created automatically; the entry block never has block parameters.
func (m *Module) CreateFunction(name string, ret types.Type, params []FuncParam) *Function {
	f := &Function{Name: name, ReturnType: ret}
	for i := range params {
		params[i].TempID = f.reserveTemp()
	}
	f.Params = params
	m.Functions = append(m.Functions, f)
	f.CreateBlock("entry")
	return f
}

// reserveTemp returns a monotonically increasing, function-local temp id.
func (f *Function) reserveTemp() uint32 {
	id := f.nextTemp
	f.nextTemp++
	return id
}

// ReserveTemp exposes reserveTemp to callers that need to pre-allocate a
// temp id before the defining instruction exists yet (e.g. handler block
// parameters bound before EhEntry is appended).
func (f *Function) ReserveTemp() uint32 { return f.reserveTemp() }

// CreateBlock appends a new, unterminated basic block to the function.
func (f *Function) CreateBlock(label string) *BasicBlock {
	b := &BasicBlock{Label: label}
	f.Blocks = append(f.Blocks, b)
	return b
}

// AddParam appends a typed block parameter, reserving a fresh temp id for
// it.
func (b *BasicBlock) AddParam(f *Function, t types.Type) BlockParam {
	p := BlockParam{TempID: f.reserveTemp(), Type: t}
	b.Params = append(b.Params, p)
	return p
}

// Block looks up a block by label within the function.
func (f *Function) Block(label string) *BasicBlock {
	for _, b := range f.Blocks {
		if b.Label == label {
			return b
		}
	}
	return nil
}

// append appends instr to the block, enforcing the "no dead terminators"
// invariant (§4.1.2 item 10) and the "at most one terminator" invariant
// (§3.1 BasicBlock).
func (b *BasicBlock) append(i Instr) {
	if b.Terminated {
		panic(fmt.Sprintf("block %s: cannot append instruction after terminator", b.Label))
	}
	b.Instructions = append(b.Instructions, i)
	if i.Op.IsTerminator() {
		b.Terminated = true
	}
}

// Emit appends a value-producing instruction and returns the temp id
// holding its result.
func (b *BasicBlock) Emit(f *Function, op Opcode, resultTy types.Type, loc SourceLoc, operands ...Value) uint32 {
	id := f.reserveTemp()
	b.append(Instr{HasResult: true, Result: id, Op: op, ResultTy: resultTy, Operands: operands, Loc: loc})
	return id
}

// EmitVoid appends an instruction with no result (e.g. Store, EhPush).
func (b *BasicBlock) EmitVoid(op Opcode, loc SourceLoc, operands ...Value) {
	b.append(Instr{Op: op, Operands: operands, Loc: loc})
}

// EmitCall appends a call instruction, optionally producing a result.
func (b *BasicBlock) EmitCall(f *Function, callee string, retTy types.Type, hasResult bool, loc SourceLoc, args ...Value) uint32 {
	instr := Instr{Op: OpCall, Callee: callee, ResultTy: retTy, Operands: args, Loc: loc}
	var id uint32
	if hasResult {
		id = f.reserveTemp()
		instr.HasResult = true
		instr.Result = id
	}
	b.append(instr)
	return id
}

// Br appends an unconditional branch, terminating the block.
func (b *BasicBlock) Br(target string, args []Value, loc SourceLoc) {
	b.append(Instr{Op: OpBr, Labels: []string{target}, Operands: args, Loc: loc})
}

// CBr appends a conditional branch, terminating the block. Operand and
// label layout follows the grouping rule chosen for the open question in
// spec.md §9: operands are [cond, trueArgs..., falseArgs...], labels are
// [trueLabel, falseLabel].
func (b *BasicBlock) CBr(cond Value, trueLabel string, trueArgs []Value, falseLabel string, falseArgs []Value, loc SourceLoc) {
	ops := make([]Value, 0, 1+len(trueArgs)+len(falseArgs))
	ops = append(ops, cond)
	ops = append(ops, trueArgs...)
	ops = append(ops, falseArgs...)
	b.append(Instr{Op: OpCBr, Labels: []string{trueLabel, falseLabel},
		Operands: ops, Loc: loc,
	})
	// Stash the split point so readers can recover trueArgs/falseArgs
	// without re-deriving arities from the callee's block params.
	b.Instructions[len(b.Instructions)-1].cbrSplit = len(trueArgs)
}

// Ret appends a return, terminating the block. value must be nil when the
// function returns Void; a nil value produces a Ret with no operand.
func (b *BasicBlock) Ret(loc SourceLoc, value *Value) {
	if value == nil {
		b.append(Instr{Op: OpRet, Loc: loc})
		return
	}
	b.append(Instr{Op: OpRet, Operands: []Value{*value}, Loc: loc})
}

// EhPush appends a handler registration naming the block faults in this
// region transfer control to.
func (b *BasicBlock) EhPush(handlerLabel string, loc SourceLoc) {
	b.append(Instr{Op: OpEhPush, Labels: []string{handlerLabel}, Loc: loc})
}

// EhPop appends the matching deregistration for the innermost EhPush.
func (b *BasicBlock) EhPop(loc SourceLoc) {
	b.append(Instr{Op: OpEhPop, Loc: loc})
}

// EhEntry appends the handler-block marker; it must be the block's first
// instruction, after the (err: Error, tok: ResumeTok) parameters.
func (b *BasicBlock) EhEntry(loc SourceLoc) {
	b.append(Instr{Op: OpEhEntry, Loc: loc})
}

// Trap appends an unconditional DomainError trap, terminating the block.
func (b *BasicBlock) Trap(loc SourceLoc) {
	b.append(Instr{Op: OpTrap, Loc: loc})
}

// ResumeLabel appends a resume transfer, terminating the block.
func (b *BasicBlock) ResumeLabel(tok Value, continuation string, loc SourceLoc) {
	b.append(Instr{Op: OpResumeLabel, Operands: []Value{tok}, Labels: []string{continuation}, Loc: loc})
}
