package collections

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"viper/src/rt"
)

func TestStackPushPopLIFO(t *testing.T) {
	s := NewStack()
	a, b := rt.NewString("a"), rt.NewString("b")
	s.Push(a)
	s.Push(b)
	require.Equal(t, int64(2), s.Len())

	top, ok := s.Pop()
	require.True(t, ok)
	require.Same(t, b, top)
	require.Equal(t, int64(1), s.Len())
}

func TestStackPopEmptyReportsNotOK(t *testing.T) {
	s := NewStack()
	require.True(t, s.IsEmpty())
	_, ok := s.Pop()
	require.False(t, ok)
	_, ok = s.Peek()
	require.False(t, ok)
}

func TestStackPushRetainsAndReleaseDrainsElements(t *testing.T) {
	s := NewStack()
	elem := rt.NewString("x")
	s.Push(elem)
	require.EqualValues(t, 2, elem.RefCount())

	s.Release()
	require.EqualValues(t, 1, elem.RefCount())
}

func TestListGetSetRemove(t *testing.T) {
	l := NewList()
	l.Push(rt.NewString("a"))
	l.Push(rt.NewString("b"))
	l.Push(rt.NewString("c"))

	v, ok := l.Get(1)
	require.True(t, ok)
	require.Equal(t, "b", v.(*rt.String).String())
	v.Release() // Get retains for the caller

	require.True(t, l.RemoveAt(0))
	require.Equal(t, int64(2), l.Len())
	first, _ := l.Get(0)
	require.Equal(t, "b", first.(*rt.String).String())
	first.Release()

	_, ok = l.Get(100)
	require.False(t, ok)
}

func TestListSortOrdersByLess(t *testing.T) {
	l := NewList()
	for _, s := range []string{"banana", "apple", "cherry"} {
		l.Push(rt.NewString(s))
	}
	l.Sort(func(a, b rt.Object) bool {
		return a.(*rt.String).String() < b.(*rt.String).String()
	})
	first, _ := l.Get(0)
	require.Equal(t, "apple", first.(*rt.String).String())
}

func TestQueueFIFOOrderAndWraparound(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 6; i++ { // exceeds the initial 4-slot buffer, forcing growth
		q.Enqueue(rt.NewString(string(rune('a' + i))))
	}
	require.Equal(t, int64(6), q.Len())
	first, ok := q.Dequeue()
	require.True(t, ok)
	require.Equal(t, "a", first.(*rt.String).String())
	second, _ := q.Dequeue()
	require.Equal(t, "b", second.(*rt.String).String())
}

func TestQueueDequeueEmptyReportsNotOK(t *testing.T) {
	q := NewQueue()
	_, ok := q.Dequeue()
	require.False(t, ok)
}

func TestMapSetGetOverwriteReleasesOldValue(t *testing.T) {
	m := NewMap()
	old := rt.NewString("old")
	m.Set("k", old)
	require.True(t, m.ContainsKey("k"))

	fresh := rt.NewString("fresh")
	m.Set("k", fresh)
	require.EqualValues(t, 1, old.RefCount())

	got, ok := m.Get("k")
	require.True(t, ok)
	require.Equal(t, "fresh", got.(*rt.String).String())
}

func TestMapRemoveMissingKeyReportsFalse(t *testing.T) {
	m := NewMap()
	require.False(t, m.Remove("nope"))
}

func TestSetUnionAndIntersect(t *testing.T) {
	a, b := NewSet(), NewSet()
	a.Add("x")
	a.Add("y")
	b.Add("y")
	b.Add("z")

	u := Union(a, b)
	require.Equal(t, int64(3), u.Len())
	require.True(t, u.Contains("x"))
	require.True(t, u.Contains("z"))

	i := Intersect(a, b)
	require.Equal(t, int64(1), i.Len())
	require.True(t, i.Contains("y"))
}

func TestGrid2DSetGetAndOutOfBounds(t *testing.T) {
	g := NewGrid2D(3, 2, -1)
	for y := int64(0); y < 2; y++ {
		for x := int64(0); x < 3; x++ {
			v, ok := g.Get(x, y)
			require.True(t, ok)
			require.Equal(t, int64(-1), v)
		}
	}
	require.True(t, g.Set(1, 1, 42))
	v, _ := g.Get(1, 1)
	require.Equal(t, int64(42), v)

	_, ok := g.Get(3, 0)
	require.False(t, ok)
	require.False(t, g.Set(-1, 0, 1))
}

func TestObjectPoolAcquireReleaseExhaustion(t *testing.T) {
	p := NewObjectPool(2)
	s1 := p.Acquire()
	s2 := p.Acquire()
	require.NotEqual(t, s1, s2)
	require.Equal(t, int64(-1), p.Acquire()) // exhausted

	require.True(t, p.Release(s1))
	require.False(t, p.IsActive(s1))
	require.NotEqual(t, int64(-1), p.Acquire())
}

func TestStateMachineTransitions(t *testing.T) {
	const idle, running = int64(0), int64(1)
	sm := NewStateMachine()
	sm.AddState(idle)
	sm.AddState(running)
	require.True(t, sm.SetInitial(idle))

	require.Equal(t, idle, sm.Current())
	require.True(t, sm.Transition(running))
	require.True(t, sm.JustEntered())
	require.Equal(t, running, sm.Current())
	require.Equal(t, idle, sm.Previous())

	require.False(t, sm.Transition(42)) // unregistered state
	require.Equal(t, running, sm.Current())

	sm.ClearFlags()
	require.False(t, sm.JustEntered())
	sm.Update()
	require.Equal(t, int64(1), sm.FramesInState())
}

func TestPriorityQueuePopsInPriorityOrderWithStableTies(t *testing.T) {
	q := NewPriorityQueue()
	first := rt.NewString("first-at-5")
	q.Push(rt.NewString("late"), 9)
	q.Push(first, 5)
	q.Push(rt.NewString("early"), 1)
	q.Push(rt.NewString("second-at-5"), 5)

	v, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, "early", v.(*rt.String).String())

	v, _ = q.Pop()
	require.Same(t, first, v) // equal priorities dequeue in insertion order
	v, _ = q.Pop()
	require.Equal(t, "second-at-5", v.(*rt.String).String())
	v, _ = q.Pop()
	require.Equal(t, "late", v.(*rt.String).String())

	_, ok = q.Pop()
	require.False(t, ok)
}

func TestPriorityQueuePushRetainsAndClearReleases(t *testing.T) {
	q := NewPriorityQueue()
	elem := rt.NewString("x")
	q.Push(elem, 1)
	require.EqualValues(t, 2, elem.RefCount())
	q.Clear()
	require.EqualValues(t, 1, elem.RefCount())
}

func TestLinkedListPushPopBothEnds(t *testing.T) {
	l := NewLinkedList()
	l.PushBack(rt.NewString("b"))
	l.PushFront(rt.NewString("a"))
	l.PushBack(rt.NewString("c"))
	require.Equal(t, int64(3), l.Len())

	v, ok := l.Get(1)
	require.True(t, ok)
	require.Equal(t, "b", v.(*rt.String).String())
	v.Release()

	front, _ := l.PopFront()
	require.Equal(t, "a", front.(*rt.String).String())
	back, _ := l.PopBack()
	require.Equal(t, "c", back.(*rt.String).String())
	require.Equal(t, int64(1), l.Len())
}

func TestLinkedListEmptyOperationsReportNotOK(t *testing.T) {
	l := NewLinkedList()
	_, ok := l.PopFront()
	require.False(t, ok)
	_, ok = l.PopBack()
	require.False(t, ok)
	_, ok = l.First()
	require.False(t, ok)
	_, ok = l.Last()
	require.False(t, ok)
}

func TestLinkedListRemoveAtReleasesElement(t *testing.T) {
	l := NewLinkedList()
	elem := rt.NewString("x")
	l.PushBack(elem)
	require.EqualValues(t, 2, elem.RefCount())
	require.True(t, l.RemoveAt(0))
	require.EqualValues(t, 1, elem.RefCount())
	require.False(t, l.RemoveAt(0))
}

func TestTreeAddRemoveSubtreeReleasesPayloads(t *testing.T) {
	tr := NewTree()
	rootPayload := rt.NewString("root")
	root, ok := tr.SetRoot(rootPayload)
	require.True(t, ok)
	_, ok = tr.SetRoot(rootPayload)
	require.False(t, ok) // root already exists

	childPayload := rt.NewString("child")
	child, _ := tr.AddChild(root, childPayload)
	grandPayload := rt.NewString("grand")
	tr.AddChild(child, grandPayload)
	require.Equal(t, int64(3), tr.Len())
	require.EqualValues(t, 2, childPayload.RefCount())

	require.True(t, tr.Remove(child)) // detaches child and grandchild
	require.Equal(t, int64(1), tr.Len())
	require.EqualValues(t, 1, childPayload.RefCount())
	require.EqualValues(t, 1, grandPayload.RefCount())
}

func TestTreeWalkVisitsPreorder(t *testing.T) {
	tr := NewTree()
	root, _ := tr.SetRoot(rt.NewString("r"))
	a, _ := tr.AddChild(root, rt.NewString("a"))
	tr.AddChild(root, rt.NewString("b"))
	tr.AddChild(a, rt.NewString("a1"))

	var visited []string
	root.Walk(func(n *TreeNode) {
		p := n.Payload()
		visited = append(visited, p.(*rt.String).String())
		p.Release()
	})
	require.Equal(t, []string{"r", "a", "a1", "b"}, visited)
}

func TestTimerLifecycle(t *testing.T) {
	tm := NewTimer()
	require.False(t, tm.IsRunning())
	require.Equal(t, int64(0), tm.Elapsed())

	tm.Start(5)
	require.True(t, tm.IsRunning())
	require.Equal(t, int64(5), tm.Duration())

	for i := 0; i < 4; i++ {
		require.False(t, tm.Update())
	}
	require.Equal(t, int64(1), tm.Remaining())
	require.True(t, tm.Update()) // expires exactly on the fifth frame
	require.True(t, tm.IsExpired())
	require.False(t, tm.IsRunning())
	require.False(t, tm.Update()) // expiry fires only once
}

func TestTimerProgressIsIntegerPercent(t *testing.T) {
	tm := NewTimer()
	tm.Start(100)
	require.Equal(t, int64(0), tm.Progress())
	for i := 0; i < 25; i++ {
		tm.Update()
	}
	require.Equal(t, int64(25), tm.Progress())
	for i := 0; i < 75; i++ {
		tm.Update()
	}
	require.Equal(t, int64(100), tm.Progress())
}

func TestQuadtreeInsertQueryRemove(t *testing.T) {
	q := NewQuadtree(0, 0, 1000, 1000)
	require.True(t, q.Insert(1, 100, 100, 10, 10))
	require.True(t, q.Insert(2, 150, 150, 10, 10))
	require.True(t, q.Insert(3, 800, 800, 10, 10))
	require.False(t, q.Insert(1, 0, 0, 5, 5))         // duplicate id
	require.False(t, q.Insert(9, 2000, 2000, 10, 10)) // fully outside bounds
	require.Equal(t, int64(3), q.ItemCount())

	hits := q.QueryRect(50, 50, 150, 150)
	require.ElementsMatch(t, []int64{1, 2}, hits)

	require.True(t, q.Remove(1))
	require.False(t, q.Remove(99))
	require.Equal(t, int64(2), q.ItemCount())
	require.ElementsMatch(t, []int64{2}, q.QueryRect(50, 50, 150, 150))
}

func TestQuadtreeSubdividesUnderLoad(t *testing.T) {
	q := NewQuadtree(0, 0, 1024, 1024)
	for i := int64(0); i < 64; i++ {
		x := (i % 8) * 128
		y := (i / 8) * 128
		require.True(t, q.Insert(i, x+1, y+1, 4, 4))
	}
	require.Equal(t, int64(64), q.ItemCount())
	// A quadrant-sized probe finds exactly the 16 items seeded inside it.
	require.Len(t, q.QueryRect(0, 0, 512, 512), 16)
}

// TestConcurrentStackReleaseDrainsElementsExactlyOnce is the container
// counterpart of the array test: two goroutines releasing a shared stack
// must not both run the element-release loop.
func TestConcurrentStackReleaseDrainsElementsExactlyOnce(t *testing.T) {
	for round := 0; round < 100; round++ {
		s := NewStack()
		elem := rt.NewString("x")
		s.Push(elem)
		require.EqualValues(t, 2, elem.RefCount())
		s.Retain() // two owners, one per releasing goroutine

		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.Release()
			}()
		}
		wg.Wait()
		require.EqualValues(t, 1, elem.RefCount())
	}
}
