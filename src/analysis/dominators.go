package analysis

import "viper/src/il"

// DomTree is a dominator tree built with the Cooper-Harvey-Kennedy
// iterative data-flow algorithm over reverse post-order, ported from
// original_source's lib/Analysis/Dominators.cpp computeDominatorTree.
type DomTree struct {
	entry    string            // label of the function's entry block.
	idom     map[string]string // block label -> immediate dominator label; entry maps to "".
	hasEntry map[string]bool   // tracks which labels have a recorded (possibly sentinel) idom.
	children map[string][]string
}

// ImmediateDominator returns the immediate dominator of b, or "" if b is
// the entry block or unreachable.
func (dt *DomTree) ImmediateDominator(b string) string { return dt.idom[b] }

// Dominates reports whether a dominates b (every path from entry to b
// passes through a). A block trivially dominates itself.
func (dt *DomTree) Dominates(a, b string) bool {
	if dt == nil {
		return false
	}
	if a == b {
		return true
	}
	for {
		if !dt.hasEntry[b] {
			return false
		}
		next := dt.idom[b]
		if next == "" && b != dt.entry {
			return false
		}
		if next == a {
			return true
		}
		if next == "" {
			return false
		}
		b = next
	}
}

// Dominators computes the dominator tree of f's CFG.
func Dominators(f *il.Function) *DomTree {
	dt := &DomTree{idom: map[string]string{}, hasEntry: map[string]bool{}, children: map[string][]string{}}
	if len(f.Blocks) == 0 {
		return dt
	}
	rpo := ReversePostOrder(f)
	if len(rpo) == 0 {
		return dt
	}
	index := map[string]int{}
	for i, l := range rpo {
		index[l] = i
	}

	entry := rpo[0]
	dt.entry = entry
	dt.idom[entry] = ""
	dt.hasEntry[entry] = true

	changed := true
	for changed {
		changed = false
		for i := 1; i < len(rpo); i++ {
			b := rpo[i]
			preds := Predecessors(f, b)

			var newIdom string
			found := false
			for _, p := range preds {
				if dt.hasEntry[p] {
					newIdom = p
					found = true
					break
				}
			}
			if !found {
				continue
			}

			intersect := func(b1, b2 string) string {
				for b1 != b2 {
					for index[b1] > index[b2] {
						b1 = dt.idom[b1]
					}
					for index[b2] > index[b1] {
						b2 = dt.idom[b2]
					}
				}
				return b1
			}

			for _, p := range preds {
				if p == newIdom || !dt.hasEntry[p] {
					continue
				}
				newIdom = intersect(p, newIdom)
			}

			if !dt.hasEntry[b] || dt.idom[b] != newIdom {
				dt.idom[b] = newIdom
				dt.hasEntry[b] = true
				changed = true
			}
		}
	}

	for blk, id := range dt.idom {
		if id != "" {
			dt.children[id] = append(dt.children[id], blk)
		}
	}
	return dt
}
