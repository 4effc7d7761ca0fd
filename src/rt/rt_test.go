package rt

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRetainReleaseRunsFinalizerAtZero(t *testing.T) {
	finalized := false
	h := NewHeader(KindObject, ElemObject, 0, 0, func() { finalized = true })
	h.Retain()
	require.EqualValues(t, 2, h.RefCount())

	h.Release()
	require.False(t, finalized)
	require.EqualValues(t, 1, h.RefCount())

	h.Release()
	require.True(t, finalized)
	require.EqualValues(t, 0, h.RefCount())
}

func TestReleaseMaybeRetainMaybeNilSafe(t *testing.T) {
	require.NotPanics(t, func() {
		ReleaseMaybe(nil)
		RetainMaybe(nil)
	})
}

// TestArrayResizeRefcountDiscipline exercises spec.md §8.4 Scenario B:
// allocate a string array of length 2, store a shared string, resize to
// length 4 preserving the stored element's identity and refcount, then
// release the array and observe the string's refcount drop back to what
// it was before the array held it.
func TestArrayResizeRefcountDiscipline(t *testing.T) {
	a := NewArray[*String](ElemStr, 2, func(s *String) {
		if s != nil {
			s.Retain()
		}
	}, func(s *String) {
		if s != nil {
			s.Release()
		}
	})
	str := NewString("a")
	require.EqualValues(t, 1, str.RefCount())

	require.True(t, a.Set(0, str))
	require.EqualValues(t, 2, str.RefCount())

	grown := a.Resize(4)
	require.Equal(t, int64(4), grown.Len())
	v, ok := grown.Get(0)
	require.True(t, ok)
	require.Same(t, str, v)
	require.EqualValues(t, 2, str.RefCount())

	// new slots zero-filled
	v3, ok := grown.Get(3)
	require.True(t, ok)
	require.Nil(t, v3)

	grown.Release()
	require.EqualValues(t, 1, str.RefCount())

	str.Release()
	require.EqualValues(t, 0, str.RefCount())
}

func TestArrayGetSetOutOfBounds(t *testing.T) {
	a := NewArray[int64](ElemI64, 3, nil, nil)
	require.True(t, a.Set(1, 99))
	v, ok := a.Get(1)
	require.True(t, ok)
	require.Equal(t, int64(99), v)

	_, ok = a.Get(3)
	require.False(t, ok)
	require.False(t, a.Set(-1, 0))
}

func TestArrayResizeSharedRefcountAllocatesFresh(t *testing.T) {
	a := NewArray[int64](ElemI64, 2, nil, nil)
	a.Set(0, 1)
	a.Set(1, 2)
	a.Retain() // refcount now 2: sharing copy-on-share path

	grown := a.Resize(4)
	require.NotSame(t, a, grown)
	v0, _ := grown.Get(0)
	v1, _ := grown.Get(1)
	require.Equal(t, int64(1), v0)
	require.Equal(t, int64(2), v1)
}

func TestStringFlipIsCodepointAwareAndInvolutive(t *testing.T) {
	// "café" = c, a, f, U+00E9 (2-byte UTF-8)
	s := NewString("café")
	require.Equal(t, int64(5), s.Len()) // byte length, not codepoint count

	flipped := Flip(s)
	require.Equal(t, "éfac", flipped.String())
	require.Equal(t, int64(5), flipped.Len())

	require.Equal(t, s.String(), Flip(flipped).String())
}

func TestStringSlicingIsByteIndexed(t *testing.T) {
	s := NewString("hello world")
	require.Equal(t, "hello", Left(s, 5).String())
	require.Equal(t, "world", Right(s, 5).String())
	require.Equal(t, "hello", Mid(s, 1, 5).String())
	require.Equal(t, "lo wo", Substr(s, 3, 5).String())
}

func TestStringCaseOpsAreASCIIOnly(t *testing.T) {
	// The case maps are ASCII-only: the multi-byte é passes through both
	// directions unchanged.
	s := NewString("café ROCK")
	require.Equal(t, "CAFé ROCK", UCase(s).String())
	require.Equal(t, "café rock", LCase(s).String())
}

func TestStringConcatAndEq(t *testing.T) {
	a, b := NewString("foo"), NewString("bar")
	require.Equal(t, "foobar", Concat(a, b).String())
	require.True(t, Eq(NewString("x"), NewString("x")))
	require.False(t, Eq(a, b))
}

func TestStringTrim(t *testing.T) {
	require.Equal(t, "hi", Trim(NewString("  hi\t\n")).String())
}

func TestGuidRoundTripsThroughBytes(t *testing.T) {
	g := NewGuid()
	require.False(t, g.IsEmpty())
	b := g.ToBytes()
	back := FromBytes(b)
	require.True(t, g.Eq(back))
}

func TestGuidEmptyAndValid(t *testing.T) {
	e := EmptyGuid()
	require.True(t, e.IsEmpty())
	require.True(t, IsValid(NewGuid().String()))
	require.False(t, IsValid("not-a-guid"))
}

func TestGuidParseRoundTrip(t *testing.T) {
	g := NewGuid()
	parsed, err := ParseGuid(g.String())
	require.NoError(t, err)
	require.True(t, g.Eq(parsed))
}

func TestArrayShrinkReleasesDroppedElementsAndRegrowthZeroFills(t *testing.T) {
	retain := func(s *String) {
		if s != nil {
			s.Retain()
		}
	}
	release := func(s *String) {
		if s != nil {
			s.Release()
		}
	}
	a := NewArray[*String](ElemStr, 3, retain, release)
	str := NewString("tail")
	require.True(t, a.Set(2, str))
	require.EqualValues(t, 2, str.RefCount())

	shrunk := a.Resize(1)
	require.EqualValues(t, 1, str.RefCount()) // dropped slot released its element

	regrown := shrunk.Resize(3)
	v, ok := regrown.Get(2)
	require.True(t, ok)
	require.Nil(t, v) // regrowth zero-fills; the old occupant does not resurface
}

// TestArrayConcurrentReleaseDrainsElementsExactlyOnce shares a string
// array between two goroutines that release it simultaneously: only the
// releaser whose decrement reached zero may run the element-release loop,
// so the stored element loses exactly one reference.
func TestArrayConcurrentReleaseDrainsElementsExactlyOnce(t *testing.T) {
	retain := func(s *String) {
		if s != nil {
			s.Retain()
		}
	}
	release := func(s *String) {
		if s != nil {
			s.Release()
		}
	}
	for round := 0; round < 100; round++ {
		a := NewArray[*String](ElemStr, 1, retain, release)
		str := NewString("shared")
		require.True(t, a.Set(0, str))
		require.EqualValues(t, 2, str.RefCount())
		a.Retain() // two owners, one per releasing goroutine

		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				a.Release()
			}()
		}
		wg.Wait()
		require.EqualValues(t, 1, str.RefCount())
	}
}
