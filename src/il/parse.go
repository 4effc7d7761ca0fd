package il

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"viper/src/il/types"
)

// Parse reads the canonical textual IL form produced by Module.String and
// reconstructs an isomorphic Module, satisfying the round-trip property of
// spec.md §8.2 ("load(text) → print yields a textually equivalent module").
// The scanner is line-oriented rather than the teacher's rune-by-rune state
// machine (frontend/lexer.go) because the textual IL is itself line
// structured by construction (§6.3: "one instruction per line").
func Parse(text string) (*Module, error) {
	p := &parser{sc: bufio.NewScanner(strings.NewReader(text))}
	p.sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return p.parseModule()
}

type parser struct {
	sc   *bufio.Scanner
	line string
	ok   bool
	ln   int
}

func (p *parser) advance() bool {
	if p.sc.Scan() {
		p.line = p.sc.Text()
		p.ln++
		p.ok = true
		return true
	}
	p.ok = false
	return false
}

func (p *parser) peekTrimmed() (string, bool) {
	if !p.ok {
		if !p.advance() {
			return "", false
		}
	}
	return strings.TrimSpace(p.line), true
}

func (p *parser) parseModule() (*Module, error) {
	m := NewModule()
	for {
		line, has := p.peekTrimmed()
		if !has {
			return m, nil
		}
		switch {
		case line == "":
			p.ok = false // consume blank separator line
		case strings.HasPrefix(line, "extern "):
			e, err := parseExtern(line)
			if err != nil {
				return nil, err
			}
			m.Externs = append(m.Externs, e)
			p.ok = false
		case strings.HasPrefix(line, "global "):
			g, err := parseGlobal(line)
			if err != nil {
				return nil, err
			}
			m.Globals = append(m.Globals, g)
			p.ok = false
		case strings.HasPrefix(line, "func "):
			f, err := p.parseFunction(line)
			if err != nil {
				return nil, err
			}
			m.Functions = append(m.Functions, f)
		default:
			return nil, fmt.Errorf("il: parse error at line %d: unexpected %q", p.ln, line)
		}
	}
}

func parseExtern(line string) (Extern, error) {
	// extern @name(t1, t2): ret
	rest := strings.TrimPrefix(line, "extern @")
	name, rest, ok := cut(rest, "(")
	if !ok {
		return Extern{}, fmt.Errorf("il: malformed extern %q", line)
	}
	paramsStr, rest, ok := cut(rest, "):")
	if !ok {
		return Extern{}, fmt.Errorf("il: malformed extern %q", line)
	}
	ret, err := ParseType(strings.TrimSpace(rest))
	if err != nil {
		return Extern{}, err
	}
	var params []types.Type
	if strings.TrimSpace(paramsStr) != "" {
		for _, p := range strings.Split(paramsStr, ",") {
			t, err := ParseType(strings.TrimSpace(p))
			if err != nil {
				return Extern{}, err
			}
			params = append(params, t)
		}
	}
	return Extern{Name: name, ReturnType: ret, ParamTypes: params}, nil
}

func parseGlobal(line string) (Global, error) {
	// global @name: type = value
	rest := strings.TrimPrefix(line, "global @")
	name, rest, ok := cut(rest, ":")
	if !ok {
		return Global{}, fmt.Errorf("il: malformed global %q", line)
	}
	typStr, valStr, ok := cut(rest, "=")
	if !ok {
		return Global{}, fmt.Errorf("il: malformed global %q", line)
	}
	t, err := ParseType(strings.TrimSpace(typStr))
	if err != nil {
		return Global{}, err
	}
	v, err := parseValue(strings.TrimSpace(valStr))
	if err != nil {
		return Global{}, err
	}
	return Global{Name: name, Type: t, Initial: v}, nil
}

func (p *parser) parseFunction(header string) (*Function, error) {
	// func @name(%t0: i64, ...): ret {
	rest := strings.TrimPrefix(header, "func @")
	name, rest, ok := cut(rest, "(")
	if !ok {
		return nil, fmt.Errorf("il: malformed function header %q", header)
	}
	paramsStr, rest, ok := cut(rest, "):")
	if !ok {
		return nil, fmt.Errorf("il: malformed function header %q", header)
	}
	rest = strings.TrimSpace(rest)
	retStr, _, ok := cut(rest, "{")
	if !ok {
		return nil, fmt.Errorf("il: malformed function header %q", header)
	}
	ret, err := ParseType(strings.TrimSpace(retStr))
	if err != nil {
		return nil, err
	}
	f := &Function{Name: name, ReturnType: ret}
	if strings.TrimSpace(paramsStr) != "" {
		for _, ps := range strings.Split(paramsStr, ",") {
			tempID, typ, err := parseTempDecl(ps)
			if err != nil {
				return nil, err
			}
			f.Params = append(f.Params, FuncParam{Type: typ, TempID: tempID})
			if tempID+1 > f.nextTemp {
				f.nextTemp = tempID + 1
			}
		}
	}
	p.ok = false // consume header line
	for {
		line, has := p.peekTrimmed()
		if !has {
			return nil, fmt.Errorf("il: unterminated function %s", name)
		}
		if line == "}" {
			p.ok = false
			return f, nil
		}
		b, err := p.parseBlock(f, line)
		if err != nil {
			return nil, err
		}
		f.Blocks = append(f.Blocks, b)
	}
}

func (p *parser) parseBlock(f *Function, header string) (*BasicBlock, error) {
	label, paramsStr, hasParams := cut(header, "(")
	var params []BlockParam
	if hasParams {
		paramsStr, _, _ = cut(paramsStr, "):")
		for _, ps := range strings.Split(paramsStr, ",") {
			tempID, typ, err := parseTempDecl(ps)
			if err != nil {
				return nil, err
			}
			params = append(params, BlockParam{TempID: tempID, Type: typ})
			if tempID+1 > f.nextTemp {
				f.nextTemp = tempID + 1
			}
		}
	} else {
		label = strings.TrimSuffix(label, ":")
	}
	b := &BasicBlock{Label: label, Params: params}
	p.ok = false // consume header line
	for {
		line, has := p.peekTrimmed()
		if !has {
			return nil, fmt.Errorf("il: unterminated block %s", label)
		}
		if line == "}" || (!strings.HasPrefix(line, "%") && !isOpcodeLine(line)) {
			return b, nil
		}
		instr, err := parseInstr(line)
		if err != nil {
			return nil, err
		}
		if instr.HasResult && instr.Result+1 > f.nextTemp {
			f.nextTemp = instr.Result + 1
		}
		b.Instructions = append(b.Instructions, instr)
		if instr.Op.IsTerminator() {
			b.Terminated = true
		}
		p.ok = false
	}
}

func isOpcodeLine(line string) bool {
	for op := OpNone + 1; op < opcodeCount; op++ {
		if strings.HasPrefix(line, op.String()+" ") || line == op.String() {
			return true
		}
	}
	return false
}

// parseInstr parses a single rendered instruction line back into an Instr.
// It is intentionally permissive: it recovers enough structure to satisfy
// the round-trip property (same opcode, operands, result, and labels) even
// though Instr.String's human-readable spacing is not a grammar this parser
// tries to fully generalize.
func parseInstr(line string) (Instr, error) {
	loc := SourceLoc{}
	if idx := strings.LastIndex(line, "; line "); idx >= 0 {
		n, err := strconv.Atoi(strings.TrimSpace(line[idx+len("; line "):]))
		if err == nil {
			loc.Line = n
		}
		line = strings.TrimSpace(line[:idx])
	}

	var resultTemp uint32
	hasResult := false
	if idx := strings.Index(line, " = "); idx >= 0 {
		tempStr := line[:idx]
		id, err := parseTempID(tempStr)
		if err != nil {
			return Instr{}, err
		}
		resultTemp = id
		hasResult = true
		line = line[idx+3:]
	}

	var resultTy types.Type
	hasTy := false
	if idx := strings.LastIndex(line, " : "); idx >= 0 {
		t, err := ParseType(strings.TrimSpace(line[idx+3:]))
		if err == nil {
			resultTy = t
			hasTy = true
			line = line[:idx]
		}
	}

	mnemonic, rest := splitFirst(line)
	op := opcodeFromMnemonic(mnemonic)
	if op == OpNone {
		return Instr{}, fmt.Errorf("il: unknown opcode %q", mnemonic)
	}

	instr := Instr{HasResult: hasResult, Result: resultTemp, Op: op, Loc: loc}
	if hasTy {
		instr.ResultTy = resultTy
	}
	rest = strings.TrimSpace(rest)

	switch op {
	case OpBr:
		label, args := cutArgs(rest)
		instr.Labels = []string{label}
		instr.Operands = args
	case OpCBr:
		// Rendered as "cbr cond, trueLabel(args...), falseLabel(args...)";
		// the argument lists themselves contain ", ", so the three groups
		// are recovered by splitting only at paren depth zero.
		groups := splitTopLevel(rest)
		if len(groups) != 3 {
			return Instr{}, fmt.Errorf("il: malformed cbr operands %q", rest)
		}
		cond, err := parseValue(groups[0])
		if err != nil {
			return Instr{}, err
		}
		trueLabel, trueArgs := cutArgs(groups[1])
		falseLabel, falseArgs := cutArgs(groups[2])
		instr.Labels = []string{trueLabel, falseLabel}
		instr.Operands = append([]Value{cond}, append(trueArgs, falseArgs...)...)
		instr.cbrSplit = len(trueArgs)
	case OpCall:
		name, args := cutArgs(strings.TrimPrefix(rest, "@"))
		instr.Callee = name
		instr.Operands = args
	case OpResumeLabel:
		parts := strings.SplitN(rest, ", ", 2)
		v, err := parseValue(parts[0])
		if err != nil {
			return Instr{}, err
		}
		instr.Operands = []Value{v}
		if len(parts) > 1 {
			instr.Labels = []string{parts[1]}
		}
	case OpEhPush:
		instr.Labels = []string{rest}
	case OpTrap, OpEhPop, OpEhEntry:
		// no operands
	case OpRet:
		if rest != "" {
			v, err := parseValue(rest)
			if err != nil {
				return Instr{}, err
			}
			instr.Operands = []Value{v}
		}
	default:
		if rest != "" {
			for _, part := range strings.Split(rest, ", ") {
				v, err := parseValue(part)
				if err != nil {
					return Instr{}, err
				}
				instr.Operands = append(instr.Operands, v)
			}
		}
	}
	return instr, nil
}

func opcodeFromMnemonic(s string) Opcode {
	for op := OpNone + 1; op < opcodeCount; op++ {
		if op.String() == s {
			return op
		}
	}
	return OpNone
}

func parseValue(s string) (Value, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return Value{}, fmt.Errorf("il: empty operand")
	case s == "null":
		return Null(), nil
	case s == "true":
		return ConstBool(true), nil
	case s == "false":
		return ConstBool(false), nil
	case strings.HasPrefix(s, "%t"):
		id, err := parseTempID(s)
		return Temp(id), err
	case strings.HasPrefix(s, "@"):
		return GlobalRef(strings.TrimPrefix(s, "@")), nil
	case strings.ContainsAny(s, ".eEnN") && !strings.HasPrefix(s, "-0x"):
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return ConstFloat(f), nil
		}
		fallthrough
	default:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("il: malformed operand %q: %w", s, err)
		}
		return ConstInt(n), nil
	}
}

func parseTempID(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "%t")
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("il: malformed temp reference %q: %w", s, err)
	}
	return uint32(n), nil
}

func parseTempDecl(s string) (uint32, types.Type, error) {
	name, typStr, ok := cut(s, ":")
	if !ok {
		return 0, types.Type{}, fmt.Errorf("il: malformed declaration %q", s)
	}
	id, err := parseTempID(name)
	if err != nil {
		return 0, types.Type{}, err
	}
	t, err := ParseType(strings.TrimSpace(typStr))
	return id, t, err
}

// cutArgs splits "label(a, b)" into ("label", [a, b]); "label" with no
// parens yields a nil argument list.
func cutArgs(s string) (string, []Value) {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "("); idx >= 0 && strings.HasSuffix(s, ")") {
		label := s[:idx]
		inner := s[idx+1 : len(s)-1]
		if inner == "" {
			return label, nil
		}
		var vals []Value
		for _, part := range strings.Split(inner, ", ") {
			v, err := parseValue(part)
			if err == nil {
				vals = append(vals, v)
			}
		}
		return label, vals
	}
	return s, nil
}

// splitTopLevel splits s on ", " occurring outside parentheses, so a group
// like "t(1, 2)" survives as one piece.
func splitTopLevel(s string) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 && i+1 < len(s) && s[i+1] == ' ' {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 2
			}
		}
	}
	out = append(out, strings.TrimSpace(s[start:]))
	return out
}

// cut splits s at the first occurrence of sep, trimming neither side.
func cut(s, sep string) (before, after string, found bool) {
	idx := strings.Index(s, sep)
	if idx < 0 {
		return s, "", false
	}
	return s[:idx], s[idx+len(sep):], true
}

func splitFirst(s string) (first, rest string) {
	s = strings.TrimSpace(s)
	idx := strings.IndexByte(s, ' ')
	if idx < 0 {
		return s, ""
	}
	return s[:idx], s[idx+1:]
}
