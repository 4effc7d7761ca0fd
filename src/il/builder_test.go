package il

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"viper/src/il/types"
)

func buildAddOne() *Module {
	m := NewModule()
	f := m.CreateFunction("add_one", types.T(types.I64), []FuncParam{
		{Name: "x", Type: types.T(types.I64)},
	})
	entry := f.Blocks[0]
	one := ConstInt(1)
	sum := entry.Emit(f, OpAdd, types.T(types.I64), SourceLoc{}, Temp(f.Params[0].TempID), one)
	entry.Ret(SourceLoc{}, &Value{Kind: VKTemp, TempID: sum})
	return m
}

func TestBuilderProducesTerminatedBlocks(t *testing.T) {
	m := buildAddOne()
	require.Len(t, m.Functions, 1)
	f := m.Functions[0]
	require.True(t, f.Blocks[0].Terminated)
}

func TestAppendAfterTerminatorPanics(t *testing.T) {
	m := NewModule()
	f := m.CreateFunction("f", types.T(types.Void), nil)
	b := f.Blocks[0]
	b.Ret(SourceLoc{}, nil)
	require.Panics(t, func() {
		b.Ret(SourceLoc{}, nil)
	})
}

func TestCBrArgsRoundTripsSplit(t *testing.T) {
	m := NewModule()
	f := m.CreateFunction("f", types.T(types.Void), nil)
	entry := f.Blocks[0]
	tBlock := f.CreateBlock("t")
	fBlock := f.CreateBlock("f")
	tBlock.AddParam(f, types.T(types.I64))
	fBlock.AddParam(f, types.T(types.I64))
	tBlock.Ret(SourceLoc{}, nil)
	fBlock.Ret(SourceLoc{}, nil)

	entry.CBr(ConstBool(true), "t", []Value{ConstInt(1)}, "f", []Value{ConstInt(2), ConstInt(3)}, SourceLoc{})
	instr := entry.Instructions[len(entry.Instructions)-1]
	cond, trueArgs, falseArgs := instr.CBrArgs()

	require.Equal(t, VKConstBool, cond.Kind)
	require.Len(t, trueArgs, 1)
	require.Len(t, falseArgs, 2)
	require.Equal(t, int64(1), trueArgs[0].Int)
	require.Equal(t, int64(2), falseArgs[0].Int)
	require.Equal(t, int64(3), falseArgs[1].Int)
}

func TestPrintParseRoundTrip(t *testing.T) {
	m := buildAddOne()
	text := m.String()
	require.True(t, strings.Contains(text, "add_one"))

	reparsed, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, reparsed.Functions, 1)
	require.Equal(t, "add_one", reparsed.Functions[0].Name)
}

// buildRoundTripModule exercises every textual-form production at once:
// externs, globals, block parameters, cbr argument groups, eh markers, and
// calls.
func buildRoundTripModule() *Module {
	m := NewModule()
	m.AddExtern("rt_len", types.T(types.I64), types.T(types.Str))
	m.AddGlobal("limit", types.T(types.I64), ConstInt(10))

	f := m.CreateFunction("main", types.T(types.I64), nil)
	entry := f.Blocks[0]
	l := f.CreateBlock("L")
	r := f.CreateBlock("R")
	merge := f.CreateBlock("merge")
	param := merge.AddParam(f, types.T(types.I64))
	handler := f.CreateBlock("handler")
	handler.AddParam(f, types.T(types.Error))
	tok := handler.AddParam(f, types.T(types.ResumeTok))
	cont := f.CreateBlock("cont")

	entry.EhPush("handler", SourceLoc{Line: 1})
	entry.CBr(ConstBool(true), "L", []Value{ConstInt(1)}, "R", []Value{ConstInt(2), ConstInt(3)}, SourceLoc{Line: 2})
	l.AddParam(f, types.T(types.I64))
	r.AddParam(f, types.T(types.I64))
	r.AddParam(f, types.T(types.I64))
	l.Br("merge", []Value{ConstInt(1)}, SourceLoc{Line: 3})
	r.Br("merge", []Value{ConstInt(2)}, SourceLoc{Line: 4})
	merge.EhPop(SourceLoc{Line: 5})
	merge.Ret(SourceLoc{Line: 6}, &Value{Kind: VKTemp, TempID: param.TempID})
	handler.EhEntry(SourceLoc{Line: 7})
	handler.ResumeLabel(Temp(tok.TempID), "cont", SourceLoc{Line: 8})
	cont.Ret(SourceLoc{Line: 9}, &Value{Kind: VKConstInt, Int: 0})
	return m
}

// TestPrintParsePrintIsFixedPoint is the round-trip property of spec.md
// §8.2 in its strongest form: printing, reparsing, and printing again
// yields byte-identical text.
func TestPrintParsePrintIsFixedPoint(t *testing.T) {
	m := buildRoundTripModule()
	text := m.String()

	reparsed, err := Parse(text)
	require.NoError(t, err)
	require.Equal(t, text, reparsed.String())
}

func TestParseRecoversCBrArgumentGrouping(t *testing.T) {
	m := buildRoundTripModule()
	reparsed, err := Parse(m.String())
	require.NoError(t, err)

	entry := reparsed.Functions[0].Blocks[0]
	term := entry.Instructions[len(entry.Instructions)-1]
	require.Equal(t, OpCBr, term.Op)
	cond, trueArgs, falseArgs := term.CBrArgs()
	require.Equal(t, VKConstBool, cond.Kind)
	require.Len(t, trueArgs, 1)
	require.Len(t, falseArgs, 2)
	require.Equal(t, []string{"L", "R"}, term.Labels)
}
