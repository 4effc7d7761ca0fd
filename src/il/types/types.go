// Package types provides the closed set of value types shared by the IL data
// model, verifier, virtual machine, and code generators.
package types

import "fmt"

// Kind selects one of the closed set of IL value types. Types are
// value-copied; they carry no identity beyond their Kind.
type Kind uint8

const (
	Void Kind = iota
	I1        // boolean
	I16
	I32
	I64
	F64
	Ptr       // opaque machine pointer
	Str       // runtime string handle
	Error     // opaque error value
	ResumeTok // opaque handler resume token
)

// Type wraps a Kind so the model can grow attributes (e.g. element kind for
// future vector types) without changing every call site.
type Type struct {
	Kind Kind
}

// T is a convenience constructor for Type.
func T(k Kind) Type { return Type{Kind: k} }

var kindNames = [...]string{
	Void:      "void",
	I1:        "i1",
	I16:       "i16",
	I32:       "i32",
	I64:       "i64",
	F64:       "f64",
	Ptr:       "ptr",
	Str:       "str",
	Error:     "error",
	ResumeTok: "resumetok",
}

// String renders the canonical textual IL spelling of the type.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// String renders the canonical textual IL spelling of the type.
func (t Type) String() string { return t.Kind.String() }

// IsInt reports whether the type is one of the checked integer widths.
func (t Type) IsInt() bool {
	switch t.Kind {
	case I16, I32, I64:
		return true
	}
	return false
}

// IsRefCounted reports whether values of this type participate in the
// runtime's retain/release protocol.
func (t Type) IsRefCounted() bool {
	switch t.Kind {
	case Str, Ptr:
		return true
	}
	return false
}

// BitWidth returns the signed-integer bit width of an integer Kind, or 0 for
// non-integer kinds.
func (k Kind) BitWidth() int {
	switch k {
	case I1:
		return 1
	case I16:
		return 16
	case I32:
		return 32
	case I64:
		return 64
	}
	return 0
}

// SignedRange returns the inclusive [min, max] range representable by a
// signed integer Kind. Panics for non-integer kinds; callers must check
// IsInt first.
func (k Kind) SignedRange() (min, max int64) {
	switch k {
	case I16:
		return -1 << 15, 1<<15 - 1
	case I32:
		return -1 << 31, 1<<31 - 1
	case I64:
		return -1 << 63, 1<<63 - 1
	}
	panic(fmt.Sprintf("types: SignedRange called on non-integer kind %s", k))
}

// Truncate wraps v into the signed range of Kind k using two's-complement
// semantics, the same wraparound rule Add/Sub/Mul use at I64.
func (k Kind) Truncate(v int64) int64 {
	switch k {
	case I16:
		return int64(int16(v))
	case I32:
		return int64(int32(v))
	case I64:
		return v
	case I1:
		if v&1 != 0 {
			return 1
		}
		return 0
	}
	return v
}
