// Package analysis provides CFG successor/predecessor queries, reverse
// post-order, and dominator/post-dominator trees for an il.Function. It is
// consumed by the verifier (temp dominance) and is the seam codegen passes
// would use for liveness and scheduling. Grounded in original_source's
// lib/Analysis/CFG.cpp and lib/Analysis/Dominators.cpp.
package analysis

import "viper/src/il"

// Successors returns the blocks a terminator may transfer control to, in
// the order its labels appear. Ret and Trap have no successors.
func Successors(b *il.BasicBlock) []string {
	if len(b.Instructions) == 0 {
		return nil
	}
	term := b.Instructions[len(b.Instructions)-1]
	switch term.Op {
	case il.OpBr, il.OpCBr, il.OpResumeLabel:
		return append([]string(nil), term.Labels...)
	}
	return nil
}

// Predecessors scans every block in the function for edges into b,
// mirroring original_source's CFG.cpp predecessors(), which is likewise
// recomputed on demand rather than cached.
func Predecessors(f *il.Function, label string) []string {
	var out []string
	for _, b := range f.Blocks {
		for _, s := range Successors(b) {
			if s == label {
				out = append(out, b.Label)
				break
			}
		}
	}
	return out
}

// PostOrder performs an iterative post-order DFS over the function's CFG
// starting at the entry block, using an explicit work stack so the walk
// never recurses into the host stack (mirroring the teacher's avoidance of
// recursion-induced stack depth issues and, more directly, the explicit
// Frame-stack iterative walk in original_source's CFG.cpp postOrder()).
func PostOrder(f *il.Function) []string {
	if len(f.Blocks) == 0 {
		return nil
	}
	type frame struct {
		label string
		idx   int
		succ  []string
	}
	visited := map[string]bool{}
	var out []string

	entry := f.Blocks[0].Label
	stack := []frame{{label: entry, succ: Successors(blockByLabel(f, entry))}}
	visited[entry] = true

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.idx < len(top.succ) {
			next := top.succ[top.idx]
			top.idx++
			if !visited[next] {
				visited[next] = true
				// A label that names no block in f is skipped.
				if nb := blockByLabel(f, next); nb != nil {
					stack = append(stack, frame{label: next, succ: Successors(nb)})
				}
			}
			continue
		}
		out = append(out, top.label)
		stack = stack[:len(stack)-1]
	}
	return out
}

// ReversePostOrder returns the reverse of PostOrder.
func ReversePostOrder(f *il.Function) []string {
	po := PostOrder(f)
	rpo := make([]string, len(po))
	for i, l := range po {
		rpo[len(po)-1-i] = l
	}
	return rpo
}

func blockByLabel(f *il.Function, label string) *il.BasicBlock {
	for _, b := range f.Blocks {
		if b.Label == label {
			return b
		}
	}
	return nil
}
