package rt

import (
	"strings"
	"unicode/utf8"
)

// String is the runtime's immutable UTF-8 string handle (spec.md §4.3.2),
// grounded in original_source's src/runtime/arrays/rt_array_str.c family:
// operations never mutate in place, they allocate a fresh String.
type String struct {
	Header
	bytes []byte
}

// NewString allocates a String copying s's bytes, with refcount 1.
func NewString(s string) *String {
	return &String{Header: NewHeader(KindString, ElemByte, len(s), len(s), nil), bytes: []byte(s)}
}

func (s *String) String() string { return string(s.bytes) }

// Len returns the UTF-8 byte length, matching rt_len's contract.
func (s *String) Len() int64 { return int64(len(s.bytes)) }

// Concat allocates a new String holding a's bytes followed by b's.
func Concat(a, b *String) *String {
	out := make([]byte, 0, len(a.bytes)+len(b.bytes))
	out = append(out, a.bytes...)
	out = append(out, b.bytes...)
	return &String{Header: NewHeader(KindString, ElemByte, len(out), len(out), nil), bytes: out}
}

// Substr returns the byte-indexed slice [start, start+length). Slicing
// operations are byte-indexed per spec.md §4.3.2: callers slicing
// mid-codepoint receive an ill-formed fragment, a defined but discouraged
// behavior, not a trap.
func Substr(s *String, start, length int64) *String {
	b := clampSlice(s.bytes, start, length)
	return &String{Header: NewHeader(KindString, ElemByte, len(b), len(b), nil), bytes: b}
}

// Left returns the first n bytes.
func Left(s *String, n int64) *String { return Substr(s, 0, n) }

// Right returns the last n bytes.
func Right(s *String, n int64) *String {
	start := int64(len(s.bytes)) - n
	if start < 0 {
		start = 0
	}
	return Substr(s, start, n)
}

// Mid returns length bytes starting at a 1-based position, matching BASIC
// MID$ conventions the original runtime's rt_mid2/rt_mid3 implement.
func Mid(s *String, start1Based, length int64) *String {
	return Substr(s, start1Based-1, length)
}

// UCase ASCII-uppercases bytes in [0x61, 0x7A]; multi-byte codepoints pass
// through unchanged (spec.md §4.3.2).
func UCase(s *String) *String { return mapASCIICase(s, true) }

// LCase ASCII-lowercases bytes in [0x41, 0x5A].
func LCase(s *String) *String { return mapASCIICase(s, false) }

func mapASCIICase(s *String, upper bool) *String {
	out := make([]byte, len(s.bytes))
	for i, c := range s.bytes {
		switch {
		case upper && c >= 'a' && c <= 'z':
			out[i] = c - 32
		case !upper && c >= 'A' && c <= 'Z':
			out[i] = c + 32
		default:
			out[i] = c
		}
	}
	return &String{Header: NewHeader(KindString, ElemByte, len(out), len(out), nil), bytes: out}
}

// Trim removes leading and trailing ASCII whitespace.
func Trim(s *String) *String {
	trimmed := strings.Trim(string(s.bytes), " \t\r\n")
	return NewString(trimmed)
}

// Flip reverses the sequence of valid UTF-8 codepoints in s — codepoint-
// aware, not a raw byte reversal (spec.md §4.3.2 and §8.4 Scenario F).
func Flip(s *String) *String {
	src := s.bytes
	runeCount := utf8.RuneCount(src)
	starts := make([]int, 0, runeCount)
	for i := 0; i < len(src); {
		starts = append(starts, i)
		_, size := utf8.DecodeRune(src[i:])
		i += size
	}
	out := make([]byte, 0, len(src))
	for i := len(starts) - 1; i >= 0; i-- {
		start := starts[i]
		end := len(src)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		out = append(out, src[start:end]...)
	}
	return &String{Header: NewHeader(KindString, ElemByte, len(out), len(out), nil), bytes: out}
}

func clampSlice(b []byte, start, length int64) []byte {
	n := int64(len(b))
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end := start + length
	if length < 0 || end > n {
		end = n
	}
	if end < start {
		end = start
	}
	out := make([]byte, end-start)
	copy(out, b[start:end])
	return out
}

// Eq reports byte-wise equality, matching rt_str_eq.
func Eq(a, b *String) bool { return string(a.bytes) == string(b.bytes) }
