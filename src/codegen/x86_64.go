package codegen

import (
	"fmt"
	"strings"

	"viper/src/il"
)

// x86_64Regs is the System V AMD64 ABI's fixed-role subset: rdi/rsi/rdx/
// rcx/r8/r9 integer arguments, xmm0-7 float arguments, rax/xmm0 returns,
// rbp/rsp frame registers.
type x86_64Regs struct{}

var sysvIntArgs = [...]string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

func (x86_64Regs) SP() Register { return simpleRegister{idx: 4, kind: RegInt, name: "rsp"} }
func (x86_64Regs) FP() Register { return simpleRegister{idx: 5, kind: RegInt, name: "rbp"} }
func (x86_64Regs) LR() Register { return simpleRegister{idx: -1, kind: RegInt, name: "(return address on stack)"} }
func (x86_64Regs) ArgI(i int) Register {
	if i < len(sysvIntArgs) {
		return simpleRegister{idx: i, kind: RegInt, name: sysvIntArgs[i]}
	}
	return simpleRegister{idx: i, kind: RegInt, name: fmt.Sprintf("[stack+%d]", (i-len(sysvIntArgs))*8)}
}
func (x86_64Regs) ArgF(i int) Register {
	return simpleRegister{idx: i, kind: RegFloat, name: fmt.Sprintf("xmm%d", i)}
}
func (x86_64Regs) ReturnI() Register { return simpleRegister{idx: 0, kind: RegInt, name: "rax"} }
func (x86_64Regs) ReturnF() Register { return simpleRegister{idx: 0, kind: RegFloat, name: "xmm0"} }

// EmitX86_64 lowers m to System V AMD64 assembly text, the x86-64
// counterpart of EmitAArch64 with the same narrow, calling-convention-first
// scope: enriched from the rest of the example pack's assembly-emission
// idiom (the teacher only ever targeted aarch64/riscv64) rather than from
// any teacher file directly.
func EmitX86_64(m *il.Module) (string, error) {
	var rf x86_64Regs
	sb := &strings.Builder{}
	fmt.Fprintln(sb, "\t.text")
	for _, f := range m.Functions {
		fmt.Fprintf(sb, "\t.globl %s\n", f.Name)
		fmt.Fprintf(sb, "%s:\n", f.Name)
		fmt.Fprintf(sb, "\tpush\t%s\n", rf.FP().String())
		fmt.Fprintf(sb, "\tmov\t%s, %s\n", rf.FP().String(), rf.SP().String())

		for i, p := range f.Params {
			if i >= len(sysvIntArgs) {
				break
			}
			if p.Type.IsInt() || p.Type.Kind.String() == "ptr" || p.Type.Kind.String() == "str" {
				fmt.Fprintf(sb, "\t; param %s in %%%s\n", il.Temp(p.TempID), rf.ArgI(i).String())
			} else {
				fmt.Fprintf(sb, "\t; param %s in %%%s\n", il.Temp(p.TempID), rf.ArgF(i).String())
			}
		}

		for _, b := range f.Blocks {
			fmt.Fprintf(sb, "%s_%s:\n", f.Name, b.Label)
			for _, instr := range b.Instructions {
				emitX86_64Instr(sb, rf, instr)
			}
		}

		fmt.Fprintf(sb, "\tpop\t%s\n", rf.FP().String())
		fmt.Fprintln(sb, "\tret")
	}
	return sb.String(), nil
}

func emitX86_64Instr(sb *strings.Builder, rf x86_64Regs, instr il.Instr) {
	switch instr.Op {
	case il.OpRet:
		if len(instr.Operands) > 0 {
			fmt.Fprintf(sb, "\tmov\t%%%s, %s\n", rf.ReturnI().String(), instr.Operands[0].String())
		}
	case il.OpTrap:
		fmt.Fprintf(sb, "\tcall\trt_trap\n")
	case il.OpCall:
		fmt.Fprintf(sb, "\tcall\t%s\n", instr.Callee)
	default:
		fmt.Fprintf(sb, "\t; unlowered: %s\n", instr.String())
	}
}
