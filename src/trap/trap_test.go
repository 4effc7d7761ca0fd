package trap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescriptorStringMatchesWireFormat(t *testing.T) {
	d := Descriptor{Kind: DivideByZero, Function: "main", Block: "entry", InstrIndex: 3, Line: 100, Message: "signed division by zero"}
	require.Equal(t, "Trap: DivideByZero @main entry:3 (line 100) signed division by zero", d.String())
}

func TestConsoleLineMatchesUncaughtFormat(t *testing.T) {
	d := Descriptor{Kind: DivideByZero, Line: 100, Message: "divisor is zero"}
	require.Equal(t, "Trap: DivideByZero at line 100 (divisor is zero)", d.ConsoleLine())
}

func TestErrorUnwrapsAsStructuredDescriptor(t *testing.T) {
	e := NewError(Descriptor{Kind: Overflow, Message: "add overflow", Line: 42})
	var target *Error
	require.True(t, errors.As(e, &target))
	require.Equal(t, Overflow, target.Kind)
}

func TestKindStringCoversClosedSet(t *testing.T) {
	kinds := []Kind{DomainError, DivideByZero, Overflow, Bounds, InvalidCast, StackOverflow}
	names := map[string]bool{}
	for _, k := range kinds {
		names[k.String()] = true
	}
	require.Len(t, names, 6) // every kind renders a distinct, non-placeholder name
	require.NotContains(t, names, "Kind(6)")
}
