package concurrency

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"viper/src/rt"
)

func TestGateEnterExitBlocksAtZeroPermits(t *testing.T) {
	g, err := NewGate(1)
	require.NoError(t, err)
	require.True(t, g.TryEnter())
	require.False(t, g.TryEnter()) // no permits left

	require.NoError(t, g.Exit(1))
	require.True(t, g.TryEnter())
}

func TestGateRejectsNegativeInitialPermits(t *testing.T) {
	_, err := NewGate(-1)
	require.Error(t, err)
}

func TestGateRejectsNegativeExit(t *testing.T) {
	g, err := NewGate(0)
	require.NoError(t, err)
	require.NoError(t, g.Exit(0)) // zero is a harmless no-op
	require.Error(t, g.Exit(-3))
}

func TestBarrierReleasesAllPartiesTogether(t *testing.T) {
	b, err := NewBarrier(3)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(3)
	for i := 0; i < 3; i++ {
		go func() {
			defer wg.Done()
			b.Wait()
		}()
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("barrier did not release all parties")
	}
}

func TestBarrierResetWhileWaitingTraps(t *testing.T) {
	b, err := NewBarrier(2)
	require.NoError(t, err)

	started := make(chan struct{})
	go func() {
		close(started)
		b.Wait()
	}()
	<-started
	time.Sleep(20 * time.Millisecond) // let the goroutine register as waiting

	require.Error(t, b.Reset())
}

func TestRwLockExitWithoutEnterTraps(t *testing.T) {
	l := NewRwLock()
	require.Error(t, l.ExitRead())
	require.Error(t, l.ExitWrite())
}

func TestRwLockReadersConcurrentWriterExclusive(t *testing.T) {
	l := NewRwLock()
	l.EnterRead()
	l.EnterRead()
	require.NoError(t, l.ExitRead())
	require.NoError(t, l.ExitRead())

	l.EnterWrite()
	require.NoError(t, l.ExitWrite())
}

func TestPromiseResolvesOnceHappensBeforeGet(t *testing.T) {
	p := NewPromise()
	f := p.Future()

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = p.Set(rt.NewString("42"))
	}()

	v, err := f.Get()
	require.NoError(t, err)
	require.Equal(t, "42", v.(*rt.String).String())
}

func TestPromiseDoubleCompletionTraps(t *testing.T) {
	p := NewPromise()
	require.NoError(t, p.Set(rt.NewString("a")))
	require.Error(t, p.Set(rt.NewString("b")))
	require.Error(t, p.SetError("oops"))
}

func TestFutureErrorPath(t *testing.T) {
	p := NewPromise()
	f := p.Future()
	require.NoError(t, p.SetError("boom"))

	_, err := f.Get()
	require.Error(t, err)
	require.True(t, f.IsError())
	require.Equal(t, "boom", f.ErrorMessage())
}

func TestFutureTryGetPendingReturnsFalse(t *testing.T) {
	p := NewPromise()
	f := p.Future()
	_, ok := f.TryGet()
	require.False(t, ok)
}

func TestFutureGetForTimesOutWhenUnresolved(t *testing.T) {
	p := NewPromise()
	f := p.Future()
	_, ok := f.GetFor(30 * time.Millisecond)
	require.False(t, ok)
}

func TestPoolRunsAllTasksAndJoins(t *testing.T) {
	p, err := NewPool(4)
	require.NoError(t, err)

	var mu sync.Mutex
	ran := 0
	for i := 0; i < 16; i++ {
		p.Submit(func() error {
			mu.Lock()
			ran++
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, p.Wait())
	require.Equal(t, 16, ran)
}

func TestPoolRejectsNonPositiveWidth(t *testing.T) {
	_, err := NewPool(0)
	require.Error(t, err)
}

// TestPoolResolvesPromiseAcrossThreads is spec.md §8.4 Scenario E driven
// through the pool: a pooled task resolves the Promise, and the waiting
// thread observes the resolved value after Get returns.
func TestPoolResolvesPromiseAcrossThreads(t *testing.T) {
	p, err := NewPool(1)
	require.NoError(t, err)
	promise := NewPromise()
	f := promise.Future()

	p.Submit(func() error {
		return promise.Set(rt.NewString("42"))
	})

	v, err := f.Get()
	require.NoError(t, err)
	require.Equal(t, "42", v.(*rt.String).String())
	require.NoError(t, p.Wait())
}
