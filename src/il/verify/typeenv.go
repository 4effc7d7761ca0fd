package verify

import (
	"viper/src/il"
	"viper/src/il/types"
)

// buildTempTypes maps every temp id defined in f (function parameters,
// block parameters, and value-producing instruction results) to its
// declared type, giving rule 5 and rule 7 a type environment to resolve
// operands against instead of only checking arity/result type. Built once
// per function and reused by checkEdge and every opSignatures entry.
func buildTempTypes(f *il.Function) map[uint32]types.Type {
	t := make(map[uint32]types.Type, len(f.Params))
	for _, p := range f.Params {
		t[p.TempID] = p.Type
	}
	for _, b := range f.Blocks {
		for _, p := range b.Params {
			t[p.TempID] = p.Type
		}
		for _, instr := range b.Instructions {
			if instr.HasResult {
				t[instr.Result] = instr.ResultTy
			}
		}
	}
	return t
}

// resolveOperandType returns the declared type an operand carries, and
// whether one could be determined at all. A temp resolves to the type its
// defining instruction declared; a global resolves to its declared type;
// a bool or float literal carries its type intrinsically. An untyped int
// literal (VKConstInt) and the null literal (VKNull) carry no type tag of
// their own — the IL's constants are context-typed by the opcode that
// consumes them (e.g. the same ConstInt payload backs ConstI16, ConstI32,
// and ConstI64) — so callers must treat ok=false as "cannot be proven
// mismatched" rather than as an error.
func resolveOperandType(v il.Value, temps map[uint32]types.Type, globals map[string]types.Type) (types.Type, bool) {
	switch v.Kind {
	case il.VKConstBool:
		return types.T(types.I1), true
	case il.VKConstFloat:
		return types.T(types.F64), true
	case il.VKTemp:
		t, ok := temps[v.TempID]
		return t, ok
	case il.VKGlobalRef:
		t, ok := globals[v.Global]
		return t, ok
	}
	return types.Type{}, false
}
