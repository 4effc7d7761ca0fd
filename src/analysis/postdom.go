package analysis

import "viper/src/il"

const virtualExit = "<exit>"

// PostDomTree is the dominator tree of the reversed CFG with a synthetic
// virtual exit joining every block whose terminator is Ret or an uncaught
// Trap, per spec.md §4.4.
type PostDomTree struct {
	inner *DomTree
}

// PostDominates reports whether a post-dominates b: every path from b to
// the virtual exit passes through a.
func (pd *PostDomTree) PostDominates(a, b string) bool {
	return pd.inner.Dominates(a, b)
}

// PostDominators builds the post-dominator tree for f.
func PostDominators(f *il.Function) *PostDomTree {
	rf := reverseFunction(f)
	return &PostDomTree{inner: Dominators(rf)}
}

// reverseFunction builds a throwaway il.Function whose CFG is f's reversed,
// with a synthetic entry (the virtual exit) and edges pointing from each
// successor to its predecessors. It exists purely to let the same
// Cooper-Harvey-Kennedy implementation used for Dominators serve
// post-dominance, mirroring original_source's comment that the
// post-dominator tree is "the dominator tree of the reversed CFG with a
// synthetic virtual exit."
func reverseFunction(f *il.Function) *il.Function {
	rf := &il.Function{Name: f.Name + ".postdom"}

	exitLabel := virtualExit
	exit := &il.BasicBlock{Label: exitLabel}
	rf.Blocks = append(rf.Blocks, exit)

	byLabel := map[string]*il.BasicBlock{exitLabel: exit}
	for _, b := range f.Blocks {
		nb := &il.BasicBlock{Label: b.Label}
		byLabel[b.Label] = nb
	}
	// Entry block of the reversed graph must be exit, already appended
	// first above; remaining blocks appended in original order so
	// ReversePostOrder's traversal from rf.Blocks[0] (the exit) is stable.
	for _, b := range f.Blocks {
		rf.Blocks = append(rf.Blocks, byLabel[b.Label])
	}

	// All of a reversed block's out-edges live on one terminator, since
	// Successors reads only a block's last instruction.
	addEdge := func(from, to string) {
		nb := byLabel[from]
		if nb == nil {
			return
		}
		if len(nb.Instructions) == 0 {
			nb.Instructions = append(nb.Instructions, il.Instr{Op: il.OpBr})
			nb.Terminated = true
		}
		term := &nb.Instructions[0]
		for _, l := range term.Labels {
			if l == to {
				return
			}
		}
		term.Labels = append(term.Labels, to)
	}

	isExitingBlock := func(b *il.BasicBlock) bool {
		if len(b.Instructions) == 0 {
			return false
		}
		op := b.Instructions[len(b.Instructions)-1].Op
		return op == il.OpRet || op == il.OpTrap
	}

	for _, b := range f.Blocks {
		succs := Successors(b)
		for _, s := range succs {
			addEdge(s, b.Label)
		}
		if isExitingBlock(b) {
			addEdge(exitLabel, b.Label)
		}
		if len(succs) == 0 && !isExitingBlock(b) {
			// Blocks with no successors and no recognized exit terminator
			// (e.g. an unresolved ResumeLabel target) still feed the
			// virtual exit so every block remains reachable in the
			// reversed graph.
			addEdge(exitLabel, b.Label)
		}
	}

	// Blocks that originally had no predecessors now have no successors in
	// rf; give them a (harmless, since nothing reads rf's forward CFG
	// again) synthetic terminator so BasicBlock invariants hold for any
	// caller that prints rf for debugging.
	for _, b := range rf.Blocks {
		if !b.Terminated {
			b.Instructions = append(b.Instructions, il.Instr{Op: il.OpRet})
			b.Terminated = true
		}
	}

	return rf
}
