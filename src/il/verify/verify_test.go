package verify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"viper/src/il"
	"viper/src/il/types"
)

func TestModuleOKOnWellFormedFunction(t *testing.T) {
	m := il.NewModule()
	f := m.CreateFunction("id", types.T(types.I64), []il.FuncParam{
		{Name: "x", Type: types.T(types.I64)},
	})
	entry := f.Blocks[0]
	entry.Ret(il.SourceLoc{}, &il.Value{Kind: il.VKTemp, TempID: f.Params[0].TempID})

	res := Module(m, 1)
	require.True(t, res.OK(), res.String())
}

func TestModuleRejectsUnterminatedBlock(t *testing.T) {
	m := il.NewModule()
	f := m.CreateFunction("bad", types.T(types.Void), nil)
	_ = f.Blocks[0] // entry never gets a terminator

	res := Module(m, 1)
	require.False(t, res.OK())
}

func TestModuleRejectsMismatchedExternSignature(t *testing.T) {
	m := il.NewModule()
	m.AddExtern("rt_len", types.T(types.I64), types.T(types.Str))
	m.AddExtern("rt_len", types.T(types.I64), types.T(types.I64)) // wrong param kind

	res := Module(m, 1)
	require.False(t, res.OK())

	found := false
	for _, d := range res.Diagnostics {
		if d.ID == "E_EXTERN_SIG_MISMATCH" {
			found = true
		}
	}
	require.True(t, found)
}

func TestModuleRejectsUnresolvedBranchLabel(t *testing.T) {
	m := il.NewModule()
	f := m.CreateFunction("jumps", types.T(types.Void), nil)
	entry := f.Blocks[0]
	entry.Br("missing", nil, il.SourceLoc{})

	res := Module(m, 1)
	require.False(t, res.OK())
}

func hasDiagnostic(res *Result, id string) bool {
	for _, d := range res.Diagnostics {
		if d.ID == id {
			return true
		}
	}
	return false
}

// TestModuleRejectsOperandTypeMismatchInCheckedArith is a regression test
// for rule 7: an f64-typed temp fed into an i32-result IAddOvf must be
// rejected rather than silently accepted.
func TestModuleRejectsOperandTypeMismatchInCheckedArith(t *testing.T) {
	m := il.NewModule()
	f := m.CreateFunction("f", types.T(types.I32), []il.FuncParam{
		{Name: "x", Type: types.T(types.F64)},
	})
	entry := f.Blocks[0]
	sum := entry.Emit(f, il.OpIAddOvf, types.T(types.I32), il.SourceLoc{}, il.Temp(f.Params[0].TempID), il.ConstInt(1))
	entry.Ret(il.SourceLoc{}, &il.Value{Kind: il.VKTemp, TempID: sum})

	res := Module(m, 1)
	require.False(t, res.OK())
	require.True(t, hasDiagnostic(res, "E_OPERAND_TYPE"), res.String())
}

// TestModuleAcceptsUntypedIntLiteralAtAnyCheckedWidth guards against an
// overly-aggressive fix to the above: an untyped ConstInt literal carries
// no width of its own and must remain usable at any checked arithmetic
// width without being flagged.
func TestModuleAcceptsUntypedIntLiteralAtAnyCheckedWidth(t *testing.T) {
	m := il.NewModule()
	f := m.CreateFunction("f", types.T(types.I16), nil)
	entry := f.Blocks[0]
	sum := entry.Emit(f, il.OpIAddOvf, types.T(types.I16), il.SourceLoc{}, il.ConstInt(1), il.ConstInt(2))
	entry.Ret(il.SourceLoc{}, &il.Value{Kind: il.VKTemp, TempID: sum})

	res := Module(m, 1)
	require.True(t, res.OK(), res.String())
}

// TestModuleRejectsBlockArgTypeMismatch is a regression test for rule 5's
// type half: branching to a block with an i64 parameter while passing a
// bool-typed argument must be rejected.
func TestModuleRejectsBlockArgTypeMismatch(t *testing.T) {
	m := il.NewModule()
	f := m.CreateFunction("g", types.T(types.Void), nil)
	entry := f.Blocks[0]
	target := f.CreateBlock("t")
	target.AddParam(f, types.T(types.I64))
	target.Ret(il.SourceLoc{}, nil)

	entry.Br("t", []il.Value{il.ConstBool(true)}, il.SourceLoc{})

	res := Module(m, 1)
	require.False(t, res.OK())
	require.True(t, hasDiagnostic(res, "E_BLOCK_ARG_TYPE"), res.String())
}

// TestModuleRejectsCallArityMismatch covers the call leg of rule 2: the
// argument count must match the callee's declaration.
func TestModuleRejectsCallArityMismatch(t *testing.T) {
	m := il.NewModule()
	m.AddExtern("rt_len", types.T(types.I64), types.T(types.Str))
	f := m.CreateFunction("f", types.T(types.I64), nil)
	entry := f.Blocks[0]
	r := entry.EmitCall(f, "rt_len", types.T(types.I64), true, il.SourceLoc{}) // no argument
	entry.Ret(il.SourceLoc{}, &il.Value{Kind: il.VKTemp, TempID: r})

	res := Module(m, 1)
	require.False(t, res.OK())
	require.True(t, hasDiagnostic(res, "E_CALL_ARITY"), res.String())
}

func TestModuleRejectsCallArgumentTypeMismatch(t *testing.T) {
	m := il.NewModule()
	m.AddExtern("rt_sqrt", types.T(types.F64), types.T(types.F64))
	f := m.CreateFunction("f", types.T(types.F64), []il.FuncParam{
		{Name: "s", Type: types.T(types.Str)},
	})
	entry := f.Blocks[0]
	r := entry.EmitCall(f, "rt_sqrt", types.T(types.F64), true, il.SourceLoc{}, il.Temp(f.Params[0].TempID))
	entry.Ret(il.SourceLoc{}, &il.Value{Kind: il.VKTemp, TempID: r})

	res := Module(m, 1)
	require.False(t, res.OK())
	require.True(t, hasDiagnostic(res, "E_CALL_ARG_TYPE"), res.String())
}

func TestModuleRejectsCallResultTypeMismatch(t *testing.T) {
	m := il.NewModule()
	m.AddExtern("rt_input_line", types.T(types.Str))
	f := m.CreateFunction("f", types.T(types.I64), nil)
	entry := f.Blocks[0]
	r := entry.EmitCall(f, "rt_input_line", types.T(types.I64), true, il.SourceLoc{}) // declared str
	entry.Ret(il.SourceLoc{}, &il.Value{Kind: il.VKTemp, TempID: r})

	res := Module(m, 1)
	require.False(t, res.OK())
	require.True(t, hasDiagnostic(res, "E_CALL_RET_TYPE"), res.String())
}

// TestModuleRejectsUnresolvedHandlerLabel extends rule 4 to EhPush: its
// handler label must name a block in the same function.
func TestModuleRejectsUnresolvedHandlerLabel(t *testing.T) {
	m := il.NewModule()
	f := m.CreateFunction("f", types.T(types.Void), nil)
	entry := f.Blocks[0]
	entry.EhPush("nowhere", il.SourceLoc{})
	entry.EhPop(il.SourceLoc{})
	entry.Ret(il.SourceLoc{}, nil)

	res := Module(m, 1)
	require.False(t, res.OK())
	require.True(t, hasDiagnostic(res, "E_LABEL_UNRESOLVED"), res.String())
}

// TestModuleParallelVerificationMatchesSerial runs the same broken module
// through the serial and errgroup-parallel drivers and expects the same
// set of diagnostic identifiers from both.
func TestModuleParallelVerificationMatchesSerial(t *testing.T) {
	m := il.NewModule()
	for i := 0; i < 8; i++ {
		f := m.CreateFunction(fmt.Sprintf("f%d", i), types.T(types.I64), nil)
		entry := f.Blocks[0]
		if i%2 == 0 {
			entry.Ret(il.SourceLoc{}, &il.Value{Kind: il.VKConstInt, Int: 0})
		} else {
			entry.Emit(f, il.OpAdd, types.T(types.I64), il.SourceLoc{}, il.ConstInt(1), il.ConstInt(2))
			// no terminator: every odd function is unterminated
		}
	}

	serial := Module(m, 1)
	parallel := Module(m, 4)

	ids := func(r *Result) map[string]int {
		out := map[string]int{}
		for _, d := range r.Diagnostics {
			out[d.ID]++
		}
		return out
	}
	require.Equal(t, ids(serial), ids(parallel))
	require.False(t, parallel.OK())
}
