package vm

import (
	"bufio"
	"fmt"
	"math"
	"strconv"

	"viper/src/il/types"
	"viper/src/rt"
)

// ExternFunc is a Go-native implementation of an extern function callable
// from IL. Extern call marshaling converts each il argument Value to a Go
// value and the Go return value back to a Value, the same "opaque C ABI
// boundary" role original_source's rt_* functions play for the interpreter.
type ExternFunc func(vm *VM, args []Value) (Value, error)

// RegisterExtern installs a user-supplied extern under name, shadowing any
// built-in of the same name. paramCount is the declared arity, enforced at
// call time (spec.md §6.1: "the VM enforces arity at call time" for
// user-registered externs, whose signatures the verifier's built-in table
// does not know).
func (vm *VM) RegisterExtern(name string, paramCount int, fn ExternFunc) {
	vm.externs[name] = func(vm *VM, args []Value) (Value, error) {
		if len(args) != paramCount {
			return Value{}, fmt.Errorf("extern %s: called with %d arguments, declared %d", name, len(args), paramCount)
		}
		return fn(vm, args)
	}
}

// registerBuiltinExterns installs the runtime-library externs the verifier's
// knownExterns table expects to find, grounded in original_source's
// src/runtime family (rt_string.c, rt_convert.c, rt_io.c) and backed by the
// Go rt package's String/math operations rather than re-implementing them.
func (vm *VM) registerBuiltinExterns() {
	vm.externs["rt_trap"] = func(vm *VM, args []Value) (Value, error) {
		msg := ""
		if s, ok := args[0].Obj.(*rt.String); ok && s != nil {
			msg = s.String()
		}
		return Value{}, fmt.Errorf("%s", msg)
	}
	vm.externs["rt_print_str"] = func(vm *VM, args []Value) (Value, error) {
		if s, ok := args[0].Obj.(*rt.String); ok && s != nil {
			fmt.Fprint(vm.Stdout, s.String())
		}
		return Value{}, nil
	}
	vm.externs["rt_print_i64"] = func(vm *VM, args []Value) (Value, error) {
		fmt.Fprintf(vm.Stdout, "%d", args[0].I)
		return Value{}, nil
	}
	vm.externs["rt_print_f64"] = func(vm *VM, args []Value) (Value, error) {
		fmt.Fprintf(vm.Stdout, "%g", args[0].F)
		return Value{}, nil
	}
	vm.externs["rt_input_line"] = func(vm *VM, args []Value) (Value, error) {
		if vm.stdinReader == nil {
			vm.stdinReader = bufio.NewReader(vm.Stdin)
		}
		line, _ := vm.stdinReader.ReadString('\n')
		return Value{Kind: types.Str, Obj: rt.NewString(trimNewline(line))}, nil
	}
	vm.externs["rt_len"] = func(vm *VM, args []Value) (Value, error) {
		return Value{Kind: types.I64, I: strOf(args[0]).Len()}, nil
	}
	vm.externs["rt_concat"] = func(vm *VM, args []Value) (Value, error) {
		return Value{Kind: types.Str, Obj: rt.Concat(strOf(args[0]), strOf(args[1]))}, nil
	}
	vm.externs["rt_left"] = func(vm *VM, args []Value) (Value, error) {
		return Value{Kind: types.Str, Obj: rt.Left(strOf(args[0]), args[1].I)}, nil
	}
	vm.externs["rt_right"] = func(vm *VM, args []Value) (Value, error) {
		return Value{Kind: types.Str, Obj: rt.Right(strOf(args[0]), args[1].I)}, nil
	}
	vm.externs["rt_mid3"] = func(vm *VM, args []Value) (Value, error) {
		return Value{Kind: types.Str, Obj: rt.Mid(strOf(args[0]), args[1].I, args[2].I)}, nil
	}
	vm.externs["rt_ucase"] = func(vm *VM, args []Value) (Value, error) {
		return Value{Kind: types.Str, Obj: rt.UCase(strOf(args[0]))}, nil
	}
	vm.externs["rt_lcase"] = func(vm *VM, args []Value) (Value, error) {
		return Value{Kind: types.Str, Obj: rt.LCase(strOf(args[0]))}, nil
	}
	vm.externs["rt_trim"] = func(vm *VM, args []Value) (Value, error) {
		return Value{Kind: types.Str, Obj: rt.Trim(strOf(args[0]))}, nil
	}
	vm.externs["rt_flip"] = func(vm *VM, args []Value) (Value, error) {
		return Value{Kind: types.Str, Obj: rt.Flip(strOf(args[0]))}, nil
	}
	vm.externs["rt_str_eq"] = func(vm *VM, args []Value) (Value, error) {
		return BoolValue(rt.Eq(strOf(args[0]), strOf(args[1]))), nil
	}
	vm.externs["rt_to_int"] = func(vm *VM, args []Value) (Value, error) {
		n, _ := strconv.ParseInt(strOf(args[0]).String(), 10, 64)
		return Value{Kind: types.I64, I: n}, nil
	}
	vm.externs["rt_int_to_str"] = func(vm *VM, args []Value) (Value, error) {
		return Value{Kind: types.Str, Obj: rt.NewString(strconv.FormatInt(args[0].I, 10))}, nil
	}
	vm.externs["rt_f64_to_str"] = func(vm *VM, args []Value) (Value, error) {
		return Value{Kind: types.Str, Obj: rt.NewString(strconv.FormatFloat(args[0].F, 'g', -1, 64))}, nil
	}
	vm.externs["rt_sqrt"] = func(vm *VM, args []Value) (Value, error) {
		return Value{Kind: types.F64, F: math.Sqrt(args[0].F)}, nil
	}
	vm.externs["rt_alloc"] = func(vm *VM, args []Value) (Value, error) {
		return Value{Kind: types.Ptr, Obj: rt.NewBuffer(args[0].I)}, nil
	}

	// Handler-side inspection of a delivered Error value (spec.md §4.2.4:
	// the Error carries the trap descriptor; its payload distinguishes
	// runtime-detected from programmer-thrown faults).
	vm.externs["rt_err_kind"] = func(vm *VM, args []Value) (Value, error) {
		if e, ok := args[0].Obj.(*ErrObj); ok {
			return Value{Kind: types.I64, I: int64(e.Trap.Kind)}, nil
		}
		return Value{Kind: types.I64, I: -1}, nil
	}
	vm.externs["rt_err_line"] = func(vm *VM, args []Value) (Value, error) {
		if e, ok := args[0].Obj.(*ErrObj); ok {
			return Value{Kind: types.I64, I: int64(e.Trap.Line)}, nil
		}
		return Value{Kind: types.I64, I: -1}, nil
	}
	vm.externs["rt_err_msg"] = func(vm *VM, args []Value) (Value, error) {
		if e, ok := args[0].Obj.(*ErrObj); ok {
			return Value{Kind: types.Str, Obj: rt.NewString(e.Trap.Message)}, nil
		}
		return Value{Kind: types.Str, Obj: rt.NewString("")}, nil
	}

	vm.registerArrayExterns()
}

// registerArrayExterns installs the typed-array helpers (rt_array_i64.c,
// rt_array_str.c). Index faults trap Bounds with the offending index and
// current length, a NULL array handle traps Bounds(0, 0).
func (vm *VM) registerArrayExterns() {
	vm.externs["rt_arr_i64_new"] = func(vm *VM, args []Value) (Value, error) {
		return Value{Kind: types.Ptr, Obj: rt.NewArray[int64](rt.ElemI64, int(args[0].I), nil, nil)}, nil
	}
	vm.externs["rt_arr_i64_len"] = func(vm *VM, args []Value) (Value, error) {
		a, err := i64ArrOf(args[0])
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: types.I64, I: a.Len()}, nil
	}
	vm.externs["rt_arr_i64_get"] = func(vm *VM, args []Value) (Value, error) {
		a, err := i64ArrOf(args[0])
		if err != nil {
			return Value{}, err
		}
		v, ok := a.Get(args[1].I)
		if !ok {
			return Value{}, rt.BoundsTrap("", "", 0, 0, int(args[1].I), int(a.Len()))
		}
		return Value{Kind: types.I64, I: v}, nil
	}
	vm.externs["rt_arr_i64_set"] = func(vm *VM, args []Value) (Value, error) {
		a, err := i64ArrOf(args[0])
		if err != nil {
			return Value{}, err
		}
		if !a.Set(args[1].I, args[2].I) {
			return Value{}, rt.BoundsTrap("", "", 0, 0, int(args[1].I), int(a.Len()))
		}
		return Value{}, nil
	}
	vm.externs["rt_arr_i64_resize"] = func(vm *VM, args []Value) (Value, error) {
		a, err := i64ArrOf(args[0])
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: types.Ptr, Obj: a.Resize(int(args[1].I))}, nil
	}

	retainStr := func(s *rt.String) {
		if s != nil {
			s.Retain()
		}
	}
	releaseStr := func(s *rt.String) {
		if s != nil {
			s.Release()
		}
	}
	vm.externs["rt_arr_str_new"] = func(vm *VM, args []Value) (Value, error) {
		return Value{Kind: types.Ptr, Obj: rt.NewArray[*rt.String](rt.ElemStr, int(args[0].I), retainStr, releaseStr)}, nil
	}
	vm.externs["rt_arr_str_len"] = func(vm *VM, args []Value) (Value, error) {
		a, err := strArrOf(args[0])
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: types.I64, I: a.Len()}, nil
	}
	vm.externs["rt_arr_str_get"] = func(vm *VM, args []Value) (Value, error) {
		a, err := strArrOf(args[0])
		if err != nil {
			return Value{}, err
		}
		v, ok := a.Get(args[1].I)
		if !ok {
			return Value{}, rt.BoundsTrap("", "", 0, 0, int(args[1].I), int(a.Len()))
		}
		if v == nil {
			return Value{Kind: types.Str}, nil
		}
		return Value{Kind: types.Str, Obj: v}, nil
	}
	vm.externs["rt_arr_str_set"] = func(vm *VM, args []Value) (Value, error) {
		a, err := strArrOf(args[0])
		if err != nil {
			return Value{}, err
		}
		var s *rt.String
		if v, ok := args[2].Obj.(*rt.String); ok {
			s = v
		}
		if !a.Set(args[1].I, s) {
			return Value{}, rt.BoundsTrap("", "", 0, 0, int(args[1].I), int(a.Len()))
		}
		return Value{}, nil
	}
	vm.externs["rt_arr_str_resize"] = func(vm *VM, args []Value) (Value, error) {
		a, err := strArrOf(args[0])
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: types.Ptr, Obj: a.Resize(int(args[1].I))}, nil
	}
}

func i64ArrOf(v Value) (*rt.Array[int64], error) {
	if a, ok := v.Obj.(*rt.Array[int64]); ok {
		return a, nil
	}
	return nil, rt.BoundsTrap("", "", 0, 0, 0, 0)
}

func strArrOf(v Value) (*rt.Array[*rt.String], error) {
	if a, ok := v.Obj.(*rt.Array[*rt.String]); ok {
		return a, nil
	}
	return nil, rt.BoundsTrap("", "", 0, 0, 0, 0)
}

func strOf(v Value) *rt.String {
	if s, ok := v.Obj.(*rt.String); ok {
		return s
	}
	return rt.NewString("")
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
