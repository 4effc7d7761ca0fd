package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"viper/src/il"
	"viper/src/il/types"
)

// buildStraightLine builds entry -> mid -> exit, each ending in an
// unconditional branch except the last, which returns.
func buildStraightLine() *il.Function {
	m := il.NewModule()
	f := m.CreateFunction("straight", types.T(types.Void), nil)
	entry := f.Blocks[0]
	mid := f.CreateBlock("mid")
	exit := f.CreateBlock("exit")

	entry.Br("mid", nil, il.SourceLoc{})
	mid.Br("exit", nil, il.SourceLoc{})
	exit.Ret(il.SourceLoc{}, nil)
	return f
}

// buildDiamond builds the branching CFG of spec.md §8.4 Scenario C:
//
//	entry -cbr-> L, R
//	L -br-> merge(1)
//	R -br-> merge(2)
//	merge(x) -ret-> x
func buildDiamond() *il.Function {
	m := il.NewModule()
	f := m.CreateFunction("diamond", types.T(types.I64), nil)
	entry := f.Blocks[0]
	l := f.CreateBlock("L")
	r := f.CreateBlock("R")
	merge := f.CreateBlock("merge")
	param := merge.AddParam(f, types.T(types.I64))

	entry.CBr(il.ConstBool(true), "L", nil, "R", nil, il.SourceLoc{})
	l.Br("merge", []il.Value{il.ConstInt(1)}, il.SourceLoc{})
	r.Br("merge", []il.Value{il.ConstInt(2)}, il.SourceLoc{})
	merge.Ret(il.SourceLoc{}, &il.Value{Kind: il.VKTemp, TempID: param.TempID})
	return f
}

func TestSuccessorsAndPredecessors(t *testing.T) {
	f := buildDiamond()
	entry := f.Blocks[0]
	require.ElementsMatch(t, []string{"L", "R"}, Successors(entry))
	require.ElementsMatch(t, []string{"entry"}, Predecessors(f, "L"))
	require.ElementsMatch(t, []string{"entry"}, Predecessors(f, "R"))
	require.ElementsMatch(t, []string{"L", "R"}, Predecessors(f, "merge"))
}

func TestReversePostOrderStartsAtEntry(t *testing.T) {
	f := buildStraightLine()
	rpo := ReversePostOrder(f)
	require.Equal(t, []string{"entry", "mid", "exit"}, rpo)
}

func TestDominatorsStraightLine(t *testing.T) {
	f := buildStraightLine()
	dt := Dominators(f)
	require.Equal(t, "", dt.ImmediateDominator("entry"))
	require.Equal(t, "entry", dt.ImmediateDominator("mid"))
	require.Equal(t, "mid", dt.ImmediateDominator("exit"))
	require.True(t, dt.Dominates("entry", "exit"))
	require.False(t, dt.Dominates("exit", "entry"))
	require.True(t, dt.Dominates("mid", "mid")) // a block dominates itself
}

// TestDiamondDominance exercises spec.md §8.4 Scenario C's dominator-tree
// half: entry dominates every block, merge is dominated by entry (not by L
// or R individually, since either arm alone doesn't guarantee reaching
// merge), and L/R do not dominate each other.
func TestDiamondDominance(t *testing.T) {
	f := buildDiamond()
	dt := Dominators(f)
	require.True(t, dt.Dominates("entry", "L"))
	require.True(t, dt.Dominates("entry", "R"))
	require.True(t, dt.Dominates("entry", "merge"))
	require.Equal(t, "entry", dt.ImmediateDominator("merge"))
	require.False(t, dt.Dominates("L", "merge"))
	require.False(t, dt.Dominates("R", "merge"))
	require.False(t, dt.Dominates("L", "R"))
	require.False(t, dt.Dominates("R", "L"))
}

// TestDiamondPostDominance exercises the post-dominance half of spec.md
// §8.4 Scenario C: merge post-dominates entry (every path from entry to
// the virtual exit passes through merge), but L and R do not post-dominate
// each other.
func TestDiamondPostDominance(t *testing.T) {
	f := buildDiamond()
	pd := PostDominators(f)
	require.True(t, pd.PostDominates("merge", "entry"))
	require.True(t, pd.PostDominates("merge", "L"))
	require.True(t, pd.PostDominates("merge", "R"))
	require.False(t, pd.PostDominates("L", "R"))
	require.False(t, pd.PostDominates("R", "L"))
	require.False(t, pd.PostDominates("entry", "merge"))
}

func TestPostDominatorsStraightLineIsReverseOfDominators(t *testing.T) {
	f := buildStraightLine()
	pd := PostDominators(f)
	require.True(t, pd.PostDominates("exit", "mid"))
	require.True(t, pd.PostDominates("exit", "entry"))
	require.True(t, pd.PostDominates("mid", "entry"))
	require.False(t, pd.PostDominates("entry", "exit"))
}
