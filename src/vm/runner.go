package vm

import (
	"io"
	"os"

	"viper/src/il"
)

// RunConfig configures a Runner, the narrow façade embedding applications
// use instead of constructing a VM directly — grounded in
// original_source's src/vm/Runner.cpp RunConfig/Impl split, which hides VM
// construction behind a stable, copyable configuration struct.
type RunConfig struct {
	Stdout       io.Writer
	Stdin        io.Reader
	MaxCallDepth int
}

// Runner wraps a VM instance constructed from a Module and RunConfig,
// mirroring Runner::Impl's role of owning the interpreter while exposing
// only run/instructionCount/lastTrapMessage to callers.
type Runner struct {
	vm *VM
}

// NewRunner constructs a Runner over m using cfg.
func NewRunner(m *il.Module, cfg RunConfig) *Runner {
	vm := New(m)
	if cfg.Stdout != nil {
		vm.Stdout = cfg.Stdout
	} else {
		vm.Stdout = os.Stdout
	}
	if cfg.Stdin != nil {
		vm.Stdin = cfg.Stdin
	} else {
		vm.Stdin = os.Stdin
	}
	if cfg.MaxCallDepth > 0 {
		vm.MaxCallDepth = cfg.MaxCallDepth
	}
	return &Runner{vm: vm}
}

// Run executes the module's @main entry point to completion or trap.
func (r *Runner) Run() (int64, error) { return r.vm.Run() }

// InstructionCount reports the number of IL instructions executed so far.
func (r *Runner) InstructionCount() uint64 { return r.vm.InstructionCount() }

// LastTrapMessage returns the console-form diagnostic of the last uncaught
// trap, if any.
func (r *Runner) LastTrapMessage() (string, bool) { return r.vm.LastTrapMessage() }
