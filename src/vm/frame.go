package vm

import (
	"viper/src/il"
	"viper/src/rt"
)

// handlerEntry is one entry of a frame's EH stack, pushed by EhPush and
// popped by EhPop (spec.md §4.1.1 exception-handling family). Label names
// the handler block a Trap or propagating callee error transfers control
// to; resumeSeq is compared against the token a ResumeLabel instruction
// presents, so a stale resume token from an already-unwound handler cannot
// be replayed.
type handlerEntry struct {
	label     string
	resumeSeq uint64
}

// frame is one activation record: the function being executed, its current
// block and program counter, its temp table, and its EH handler stack.
// Mirrors original_source's per-call VM::Frame, generalized from a single
// hard-coded stack-slot layout to a temp-indexed map, matching the IL's own
// unbounded-temp-id model.
type frame struct {
	fn         *il.Function
	block      *il.BasicBlock
	pc         int
	temps      map[uint32]Value
	handlers   []handlerEntry
	resumeSeq  uint64
	liveTokens map[uint64]bool
}

func newFrame(fn *il.Function, args []Value) *frame {
	fr := &frame{fn: fn, temps: make(map[uint32]Value, len(fn.Params)*2)}
	for i, p := range fn.Params {
		fr.temps[p.TempID] = args[i]
	}
	fr.block = fn.Blocks[0]
	return fr
}

// pushHandler registers label as the active fault handler.
func (fr *frame) pushHandler(label string) {
	fr.resumeSeq++
	fr.handlers = append(fr.handlers, handlerEntry{label: label, resumeSeq: fr.resumeSeq})
}

// popHandler removes the innermost active handler.
func (fr *frame) popHandler() {
	if len(fr.handlers) > 0 {
		fr.handlers = fr.handlers[:len(fr.handlers)-1]
	}
}

// issueToken records seq as a live resume token for this frame; a
// ResumeLabel presenting it later consumes it exactly once.
func (fr *frame) issueToken(seq uint64) {
	if fr.liveTokens == nil {
		fr.liveTokens = map[uint64]bool{}
	}
	fr.liveTokens[seq] = true
}

// consumeToken invalidates seq, reporting whether it was live. A token is
// consumed by the ResumeLabel that presents it and may not be replayed.
func (fr *frame) consumeToken(seq uint64) bool {
	if !fr.liveTokens[seq] {
		return false
	}
	delete(fr.liveTokens, seq)
	return true
}

// currentHandler returns the innermost active handler, if any.
func (fr *frame) currentHandler() (handlerEntry, bool) {
	if len(fr.handlers) == 0 {
		return handlerEntry{}, false
	}
	return fr.handlers[len(fr.handlers)-1], true
}

// jumpTo transfers control to the named block, binding its parameters from
// args via parallel-copy semantics (spec.md §4.2.3): all argument values
// were already evaluated in the source frame before this call, so binding
// never reads a destination it has just written. For refcounted parameter
// types, every incoming value is retained before any previous occupant is
// released — a swap-shaped branch (A -> B, B -> A) therefore never drops a
// value to zero mid-copy.
func (fr *frame) jumpTo(target *il.BasicBlock, args []Value) {
	for i, p := range target.Params {
		if p.Type.IsRefCounted() {
			rt.RetainMaybe(args[i].Obj)
		}
	}
	for _, p := range target.Params {
		if p.Type.IsRefCounted() {
			if prev, ok := fr.temps[p.TempID]; ok {
				rt.ReleaseMaybe(prev.Obj)
			}
		}
	}
	for i, p := range target.Params {
		fr.temps[p.TempID] = args[i]
	}
	fr.block = target
	fr.pc = 0
}

// releaseParamTemps drops the reference each refcounted block-parameter
// temp still holds when the frame ends (spec.md §3.3: dropping a value
// from scope releases it), balancing the retain jumpTo performed on its
// last binding.
func (fr *frame) releaseParamTemps() {
	for _, b := range fr.fn.Blocks {
		for _, p := range b.Params {
			if !p.Type.IsRefCounted() {
				continue
			}
			if v, ok := fr.temps[p.TempID]; ok {
				rt.ReleaseMaybe(v.Obj)
				delete(fr.temps, p.TempID)
			}
		}
	}
}
