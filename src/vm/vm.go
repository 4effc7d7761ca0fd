package vm

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	"viper/src/il"
	"viper/src/il/types"
	"viper/src/trap"
)

// VM is the tree-walking interpreter. One VM executes one Module; Run may
// be called once per VM instance, matching original_source's Runner/VM
// one-shot lifecycle (a fresh Runner is constructed per execution rather
// than reused).
type VM struct {
	Module *il.Module

	// Stdout/Stdin back the rt_print_*/rt_input_line externs; defaulting to
	// os.Stdout/os.Stdin mirrors the teacher's util.ListenWrite defaulting
	// to stdout when no output file is given.
	Stdout io.Writer
	Stdin  io.Reader

	// MaxCallDepth proactively raises StackOverflow once exceeded, the
	// supplemented replacement for original_source's rt_stack_safety.c
	// SIGSEGV-on-altstack guard (not portably expressible from pure Go).
	MaxCallDepth int

	funcs       map[string]*il.Function
	externs     map[string]ExternFunc
	globals     map[string]Value
	instrCount  uint64
	callDepth   int
	lastTrap    *trap.Error
	stdinReader *bufio.Reader
}

// New constructs a VM over m. The module is assumed to have already passed
// verify.Module; New does not re-verify it.
func New(m *il.Module) *VM {
	vm := &VM{
		Module:       m,
		Stdout:       os.Stdout,
		Stdin:        os.Stdin,
		MaxCallDepth: 4096,
		funcs:        map[string]*il.Function{},
		externs:      map[string]ExternFunc{},
		globals:      map[string]Value{},
	}
	for _, f := range m.Functions {
		vm.funcs[f.Name] = f
	}
	vm.registerBuiltinExterns()
	vm.initGlobals()
	return vm
}

func (vm *VM) initGlobals() {
	for _, g := range vm.Module.Globals {
		switch g.Initial.Kind {
		case il.VKConstFloat:
			vm.globals[g.Name] = Value{Kind: types.F64, F: math.Float64frombits(uint64(g.Initial.Float))}
		case il.VKConstBool:
			vm.globals[g.Name] = BoolValue(g.Initial.Int != 0)
		case il.VKConstInt:
			vm.globals[g.Name] = Value{Kind: g.Type.Kind, I: g.Initial.Int}
		default:
			vm.globals[g.Name] = Value{Kind: g.Type.Kind}
		}
	}
}

// InstructionCount returns the number of IL instructions executed so far,
// mirroring Runner::instructionCount.
func (vm *VM) InstructionCount() uint64 { return vm.instrCount }

// LastTrapMessage returns the console-form message of the last uncaught
// trap, if any, mirroring Runner::lastTrapMessage.
func (vm *VM) LastTrapMessage() (string, bool) {
	if vm.lastTrap == nil {
		return "", false
	}
	return vm.lastTrap.Descriptor.ConsoleLine(), true
}

// Run executes @main and returns its i64 result, or the uncaught trap/error
// that stopped execution.
func (vm *VM) Run() (int64, error) {
	main, ok := vm.funcs["main"]
	if !ok {
		return 0, fmt.Errorf("vm: module has no @main function")
	}
	v, err := vm.callFunction(main, nil)
	if err != nil {
		return 0, err
	}
	return v.I, nil
}

// callFunction executes fn with the given already-evaluated arguments,
// returning its result Value or the propagating *trap.Error; call converts
// a plain extern error (rt_trap's included) into a DomainError trap before
// it reaches here.
func (vm *VM) callFunction(fn *il.Function, args []Value) (Value, error) {
	vm.callDepth++
	defer func() { vm.callDepth-- }()
	if vm.callDepth > vm.MaxCallDepth {
		te := trap.NewError(trap.Descriptor{Kind: trap.StackOverflow, Function: fn.Name,
			Message: fmt.Sprintf("call depth exceeded %d", vm.MaxCallDepth)})
		vm.lastTrap = te
		return Value{}, te
	}

	fr := newFrame(fn, args)
	for {
		instr := fr.block.Instructions[fr.pc]
		vm.instrCount++

		result, ctrl, err := vm.exec(fr, &instr)
		if err != nil {
			if !vm.deliverFault(fr, err) {
				if te, ok := err.(*trap.Error); ok {
					vm.lastTrap = te
				}
				fr.releaseParamTemps()
				return Value{}, err
			}
			// Control is now at the handler block's first instruction
			// (EhEntry); the faulting instruction's result temp stays
			// unbound, exactly as if the block had branched away.
			ctrl = ctrlJumped
		}

		switch ctrl {
		case ctrlReturn:
			fr.releaseParamTemps()
			return result, nil
		case ctrlJumped:
			continue
		default:
			if instr.HasResult {
				fr.temps[instr.Result] = result
			}
			fr.pc++
		}
	}
}

type control int

const (
	ctrlContinue control = iota
	ctrlJumped
	ctrlReturn
)

// deliverFault transfers control to the innermost active handler in fr, if
// any, binding its (err, resumeTok) block parameters. Returns false to let
// the caller propagate the fault (to a caller frame, or to Run's top-level
// uncaught-trap path) when no handler is active.
func (vm *VM) deliverFault(fr *frame, cause error) bool {
	h, ok := fr.currentHandler()
	if !ok {
		return false
	}
	target := vm.blockOf(fr.fn, h.label)
	if target == nil {
		return false
	}
	fr.popHandler()

	te, ok := cause.(*trap.Error)
	if !ok {
		te = trap.NewError(trap.Descriptor{Kind: trap.DomainError, Function: fr.fn.Name,
			Block: fr.block.Label, InstrIndex: fr.pc, Message: cause.Error()})
	}
	errVal := Value{Kind: types.Error, Obj: newErrObj(te)}
	tokVal := Value{Kind: types.ResumeTok, I: int64(h.resumeSeq)}
	fr.issueToken(h.resumeSeq)
	args := []Value{errVal, tokVal}
	if len(target.Params) > 2 {
		args = append(args, make([]Value, len(target.Params)-2)...)
	}
	fr.jumpTo(target, args)
	return true
}

func (vm *VM) blockOf(fn *il.Function, label string) *il.BasicBlock {
	for _, b := range fn.Blocks {
		if b.Label == label {
			return b
		}
	}
	return nil
}
