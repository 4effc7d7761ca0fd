// Package trap implements the uniform trap-kind taxonomy and diagnostic
// formatting shared by the virtual machine and (by contract) native code
// generators. It is grounded in the teacher's perror.go error-aggregation
// idiom (src/util/perror.go) generalized from "a slice of plain errors" to
// "a closed taxonomy of structured fault descriptors."
package trap

import (
	"fmt"

	"golang.org/x/xerrors"
)

// Kind is the closed set of trap kinds (spec.md §4.2.4). No other kinds
// exist; every checked opcode maps to exactly one.
type Kind uint8

const (
	DomainError Kind = iota
	DivideByZero
	Overflow
	Bounds
	InvalidCast
	StackOverflow
)

var kindNames = [...]string{
	DomainError:   "DomainError",
	DivideByZero:  "DivideByZero",
	Overflow:      "Overflow",
	Bounds:        "Bounds",
	InvalidCast:   "InvalidCast",
	StackOverflow: "StackOverflow",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Descriptor is the immutable record constructed the instant a checked
// opcode detects a fault (spec.md §4.2.4 step 1).
type Descriptor struct {
	Kind       Kind
	Message    string
	Line       int
	Function   string
	Block      string
	InstrIndex int
}

// Error adapts a Descriptor to the standard error interface so it can flow
// through ordinary Go error-handling paths (e.g. Runner.Run's top-level
// return) without losing its structured fields. The wrapping uses
// golang.org/x/xerrors so callers can unwrap with errors.Is/As and get a
// frame-annotated %+v rendering, matching the corpus's structured-error
// idiom rather than a bare fmt.Errorf string.
type Error struct {
	Descriptor
	frame xerrors.Frame
}

// NewError wraps a trap Descriptor as a Go error, capturing the call frame
// at the point the trap was raised.
func NewError(d Descriptor) *Error {
	return &Error{Descriptor: d, frame: xerrors.Caller(1)}
}

func (e *Error) Error() string {
	return e.Descriptor.String()
}

// Format implements xerrors.Formatter so %+v prints the capture frame
// alongside the trap message.
func (e *Error) Format(f fmt.State, c rune) { xerrors.FormatError(e, f, c) }

// FormatError implements xerrors.Formatter.
func (e *Error) FormatError(p xerrors.Printer) error {
	p.Print(e.Descriptor.String())
	e.frame.Format(p)
	return nil
}

// String renders the descriptor using the stable diagnostic format of
// spec.md §6.2: "Trap: <Kind> @<function> <block>:<instr_index> (line <L>) <message>".
func (d Descriptor) String() string {
	return fmt.Sprintf("Trap: %s @%s %s:%d (line %d) %s",
		d.Kind, d.Function, d.Block, d.InstrIndex, d.Line, d.Message)
}

// ConsoleLine renders the short form written to the standard error channel
// when a trap is uncaught (spec.md §6.2's literal example format):
// "Trap: <Kind> at line <L> (<message>)".
func (d Descriptor) ConsoleLine() string {
	return fmt.Sprintf("Trap: %s at line %d (%s)", d.Kind, d.Line, d.Message)
}
