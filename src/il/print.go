package il

import (
	"fmt"
	"strings"

	"viper/src/il/types"
)

// String renders Module m in the canonical textual IL form described in
// spec.md §6.3: one instruction per line, labels terminated with ':',
// temps prefixed with '%', globals and externs prefixed with '@'.
func (m *Module) String() string {
	sb := strings.Builder{}
	for _, e := range m.Externs {
		sb.WriteString(e.String())
		sb.WriteRune('\n')
	}
	if len(m.Externs) > 0 {
		sb.WriteRune('\n')
	}
	for _, g := range m.Globals {
		sb.WriteString(g.String())
		sb.WriteRune('\n')
	}
	if len(m.Globals) > 0 {
		sb.WriteRune('\n')
	}
	for i, f := range m.Functions {
		sb.WriteString(f.String())
		if i < len(m.Functions)-1 {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}

// String renders an extern declaration, e.g. "extern @rt_len(str): i64".
func (e Extern) String() string {
	params := make([]string, len(e.ParamTypes))
	for i, p := range e.ParamTypes {
		params[i] = p.String()
	}
	return fmt.Sprintf("extern @%s(%s): %s", e.Name, strings.Join(params, ", "), e.ReturnType)
}

// String renders a global declaration, e.g. "global @g0: i64 = 0".
func (g Global) String() string {
	return fmt.Sprintf("global @%s: %s = %s", g.Name, g.Type, g.Initial)
}

// String renders a function, including its parameter list, return type, and
// basic blocks.
func (f *Function) String() string {
	sb := strings.Builder{}
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("%s: %s", Temp(p.TempID), p.Type)
	}
	sb.WriteString(fmt.Sprintf("func @%s(%s): %s {\n", f.Name, strings.Join(params, ", "), f.ReturnType))
	for _, b := range f.Blocks {
		sb.WriteString(b.String())
	}
	sb.WriteString("}\n")
	return sb.String()
}

// String renders a basic block: its label, parameter list, and instructions.
func (b *BasicBlock) String() string {
	sb := strings.Builder{}
	sb.WriteString(b.Label)
	if len(b.Params) > 0 {
		parts := make([]string, len(b.Params))
		for i, p := range b.Params {
			parts[i] = fmt.Sprintf("%s: %s", Temp(p.TempID), p.Type)
		}
		sb.WriteString("(")
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString(")")
	}
	sb.WriteString(":\n")
	for _, i := range b.Instructions {
		sb.WriteString("\t")
		sb.WriteString(i.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// String renders a single instruction on one line.
func (i Instr) String() string {
	sb := strings.Builder{}
	if i.HasResult {
		sb.WriteString(fmt.Sprintf("%s = ", Temp(i.Result)))
	}
	sb.WriteString(i.Op.String())

	switch i.Op {
	case OpBr:
		sb.WriteString(" " + i.Labels[0] + operandList(i.Operands))
	case OpCBr:
		cond, trueArgs, falseArgs := i.CBrArgs()
		sb.WriteString(fmt.Sprintf(" %s, %s%s, %s%s", cond.String(), i.Labels[0], operandList(trueArgs), i.Labels[1], operandList(falseArgs)))
	case OpCall:
		sb.WriteString(" @" + i.Callee + operandList(i.Operands))
	case OpResumeLabel:
		sb.WriteString(" " + i.Operands[0].String() + ", " + i.Labels[0])
	case OpRet:
		if len(i.Operands) > 0 {
			sb.WriteString(" " + i.Operands[0].String())
		}
	case OpTrap, OpEhPop, OpEhEntry:
		// no operands
	case OpEhPush:
		sb.WriteString(" " + i.Labels[0])
	default:
		if len(i.Operands) > 0 {
			ops := make([]string, len(i.Operands))
			for j, o := range i.Operands {
				ops[j] = o.String()
			}
			sb.WriteString(" " + strings.Join(ops, ", "))
		}
	}

	if i.HasResult && i.Op != OpCall {
		sb.WriteString(" : " + i.ResultTy.String())
	} else if i.Op == OpCall && i.HasResult {
		sb.WriteString(" : " + i.ResultTy.String())
	}
	sb.WriteString(fmt.Sprintf(" ; line %d", i.Loc.Line))
	return sb.String()
}

func operandList(vs []Value) string {
	if len(vs) == 0 {
		return ""
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ParseType resolves a type mnemonic emitted by Type.String back into a
// types.Type, the inverse half of the round-trip guarantee in spec.md §8.2.
func ParseType(s string) (types.Type, error) {
	table := map[string]types.Kind{
		"void": types.Void, "i1": types.I1, "i16": types.I16, "i32": types.I32,
		"i64": types.I64, "f64": types.F64, "ptr": types.Ptr, "str": types.Str,
		"error": types.Error, "resumetok": types.ResumeTok,
	}
	if k, ok := table[s]; ok {
		return types.T(k), nil
	}
	return types.Type{}, fmt.Errorf("il: unknown type mnemonic %q", s)
}
