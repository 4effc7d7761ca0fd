// Package verify implements the structural and type validation that a
// Module must pass before either execution path (VM or codegen) may run it.
// It is grounded in the teacher's two-pass validate-then-report structure
// (src/ir/validate.go) and in original_source's ModuleVerifier.cpp, which
// drives per-function verification from a module-level extern/global/
// function name table.
package verify

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"viper/src/il"
	"viper/src/il/types"
)

// knownExterns is the built-in table of expected rt_* signatures enforced
// by verifier rule 2 (spec.md §4.1.2). Mirrors the teacher's use of fixed
// lookup tables (ir/validate.go's lutExp/lutAssign) for compile-time-known
// facts, and is grounded directly in the kExternSigs table of
// original_source's src/il/verify/ModuleVerifier.cpp.
var knownExterns = map[string]struct {
	ret    types.Kind
	params []types.Kind
}{
	"rt_trap":          {types.Void, []types.Kind{types.Ptr}},
	"rt_print_str":     {types.Void, []types.Kind{types.Str}},
	"rt_print_i64":     {types.Void, []types.Kind{types.I64}},
	"rt_print_f64":     {types.Void, []types.Kind{types.F64}},
	"rt_input_line":    {types.Str, nil},
	"rt_len":           {types.I64, []types.Kind{types.Str}},
	"rt_concat":        {types.Str, []types.Kind{types.Str, types.Str}},
	"rt_left":          {types.Str, []types.Kind{types.Str, types.I64}},
	"rt_right":         {types.Str, []types.Kind{types.Str, types.I64}},
	"rt_mid3":          {types.Str, []types.Kind{types.Str, types.I64, types.I64}},
	"rt_ucase":         {types.Str, []types.Kind{types.Str}},
	"rt_lcase":         {types.Str, []types.Kind{types.Str}},
	"rt_trim":          {types.Str, []types.Kind{types.Str}},
	"rt_flip":          {types.Str, []types.Kind{types.Str}},
	"rt_str_eq":        {types.I1, []types.Kind{types.Str, types.Str}},
	"rt_to_int":        {types.I64, []types.Kind{types.Str}},
	"rt_int_to_str":    {types.Str, []types.Kind{types.I64}},
	"rt_f64_to_str":    {types.Str, []types.Kind{types.F64}},
	"rt_sqrt":          {types.F64, []types.Kind{types.F64}},
	"rt_alloc":         {types.Ptr, []types.Kind{types.I64}},

	"rt_err_kind": {types.I64, []types.Kind{types.Error}},
	"rt_err_line": {types.I64, []types.Kind{types.Error}},
	"rt_err_msg":  {types.Str, []types.Kind{types.Error}},

	"rt_arr_i64_new":    {types.Ptr, []types.Kind{types.I64}},
	"rt_arr_i64_len":    {types.I64, []types.Kind{types.Ptr}},
	"rt_arr_i64_get":    {types.I64, []types.Kind{types.Ptr, types.I64}},
	"rt_arr_i64_set":    {types.Void, []types.Kind{types.Ptr, types.I64, types.I64}},
	"rt_arr_i64_resize": {types.Ptr, []types.Kind{types.Ptr, types.I64}},
	"rt_arr_str_new":    {types.Ptr, []types.Kind{types.I64}},
	"rt_arr_str_len":    {types.I64, []types.Kind{types.Ptr}},
	"rt_arr_str_get":    {types.Str, []types.Kind{types.Ptr, types.I64}},
	"rt_arr_str_set":    {types.Void, []types.Kind{types.Ptr, types.I64, types.Str}},
	"rt_arr_str_resize": {types.Ptr, []types.Kind{types.Ptr, types.I64}},
}

// Diagnostic describes a single verification failure, naming the function,
// block, and instruction index where it was detected (spec.md §4.1.2: "the
// verifier returns false and appends a human-readable explanation
// referencing the function, block, and instruction index").
type Diagnostic struct {
	ID       string // stable diagnostic identifier, e.g. "E_BLOCK_UNTERMINATED"
	Function string
	Block    string
	Index    int
	Message  string
}

func (d Diagnostic) String() string {
	loc := d.Function
	if d.Block != "" {
		loc = fmt.Sprintf("%s/%s:%d", d.Function, d.Block, d.Index)
	}
	return fmt.Sprintf("[%s] %s: %s", d.ID, loc, d.Message)
}

// Result is the outcome of verifying a Module.
type Result struct {
	Diagnostics []Diagnostic
}

func (r *Result) OK() bool { return len(r.Diagnostics) == 0 }

func (r *Result) add(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
}

func (r *Result) String() string {
	lines := make([]string, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

// Module verifies m against every rule in spec.md §4.1.2 and returns the
// first-class Result. When threads > 1, per-function verification runs in
// parallel using the worker-pool-over-a-range shape of the teacher's
// ir.ValidateTree (src/ir/validate.go), run on golang.org/x/sync's
// errgroup (SetLimit bounds the worker count) instead of a hand-rolled
// WaitGroup; diagnostics are collected in a mutex-guarded slice.
func Module(m *il.Module, threads int) *Result {
	res := &Result{}

	externs := map[string]*il.Extern{}
	for i := range m.Externs {
		e := &m.Externs[i]
		if prev, dup := externs[e.Name]; dup {
			if !sigEqual(*prev, *e) {
				res.add(Diagnostic{ID: "E_EXTERN_DUP_MISMATCH", Function: "<module>",
					Message: fmt.Sprintf("duplicate extern @%s with mismatched signature", e.Name)})
			}
		} else {
			externs[e.Name] = e
		}
		if known, ok := knownExterns[e.Name]; ok {
			if !signatureMatches(*e, known.ret, known.params) {
				res.add(Diagnostic{ID: "E_EXTERN_SIG_MISMATCH", Function: "<module>",
					Message: fmt.Sprintf("extern @%s signature mismatch with known runtime signature", e.Name)})
			}
		}
	}

	globalSeen := map[string]bool{}
	globalTypes := map[string]types.Type{}
	for _, g := range m.Globals {
		if globalSeen[g.Name] {
			res.add(Diagnostic{ID: "E_GLOBAL_DUP", Function: "<module>",
				Message: fmt.Sprintf("duplicate global @%s", g.Name)})
			continue
		}
		globalSeen[g.Name] = true
		globalTypes[g.Name] = g.Type
	}

	funcs := map[string]*il.Function{}
	for _, f := range m.Functions {
		if _, dup := funcs[f.Name]; dup {
			res.add(Diagnostic{ID: "E_FUNC_DUP", Function: f.Name, Message: "duplicate function name"})
			continue
		}
		if externs[f.Name] != nil {
			res.add(Diagnostic{ID: "E_NAME_CLASH", Function: f.Name,
				Message: "function name clashes with an extern"})
		}
		funcs[f.Name] = f
	}

	if threads > 1 && len(m.Functions) > 1 {
		var mu sync.Mutex
		g := new(errgroup.Group)
		n := threads
		if n > len(m.Functions) {
			n = len(m.Functions)
		}
		g.SetLimit(n)
		for _, f := range m.Functions {
			f := f
			g.Go(func() error {
				ds := verifyFunction(f, externs, funcs, globalTypes)
				if len(ds) > 0 {
					mu.Lock()
					res.Diagnostics = append(res.Diagnostics, ds...)
					mu.Unlock()
				}
				return nil
			})
		}
		_ = g.Wait() // verifyFunction never returns an error; failures accumulate as diagnostics.
	} else {
		for _, f := range m.Functions {
			res.Diagnostics = append(res.Diagnostics, verifyFunction(f, externs, funcs, globalTypes)...)
		}
	}

	return res
}

func sigEqual(a, b il.Extern) bool {
	if a.ReturnType != b.ReturnType || len(a.ParamTypes) != len(b.ParamTypes) {
		return false
	}
	for i := range a.ParamTypes {
		if a.ParamTypes[i] != b.ParamTypes[i] {
			return false
		}
	}
	return true
}

func signatureMatches(e il.Extern, ret types.Kind, params []types.Kind) bool {
	if e.ReturnType.Kind != ret || len(e.ParamTypes) != len(params) {
		return false
	}
	for i := range params {
		if e.ParamTypes[i].Kind != params[i] {
			return false
		}
	}
	return true
}
