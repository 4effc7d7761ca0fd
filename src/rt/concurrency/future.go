// Package concurrency implements Viper's built-in thread-coordination
// primitives (spec.md §4.3.5): Gate, Barrier, RwLock, and Future/Promise.
// Future/Promise is grounded directly in original_source's
// src/runtime/threads/rt_future.c/.h; Gate, Barrier, and RwLock have no
// original_source counterpart by that name and are built from spec.md's
// own description, in the same sync.Mutex/sync.Cond idiom rt_future.c
// uses for its blocking wait.
package concurrency

import (
	"sync"
	"time"

	"viper/src/rt"
	"viper/src/trap"
)

// Promise is a single-assignment result cell with at most one associated
// Future. A Promise can be completed exactly once, with either a value or
// an error; a second completion traps DomainError (rt_future.c: "Can only
// be called once; subsequent calls trap"). Completion is signaled by
// closing resolved, which gives Get its happens-before edge and lets
// GetFor time out without stranding a waiter.
type Promise struct {
	mu       sync.Mutex
	resolved chan struct{}
	done     bool
	value    rt.Object
	errMsg   string
	hasError bool
}

// NewPromise allocates an unresolved Promise.
func NewPromise() *Promise {
	return &Promise{resolved: make(chan struct{})}
}

// Future returns this Promise's associated Future; every call returns a
// handle to the same underlying state (rt_promise_get_future: "Multiple
// calls return the same Future object").
func (p *Promise) Future() *Future { return &Future{p: p} }

// Set completes the Promise with value. Calling Set or SetError a second
// time traps DomainError.
func (p *Promise) Set(value rt.Object) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return trap.NewError(trap.Descriptor{Kind: trap.DomainError, Message: "promise already completed"})
	}
	p.value = value
	p.done = true
	close(p.resolved)
	return nil
}

// SetError completes the Promise with an error message.
func (p *Promise) SetError(msg string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return trap.NewError(trap.Descriptor{Kind: trap.DomainError, Message: "promise already completed"})
	}
	p.errMsg = msg
	p.hasError = true
	p.done = true
	close(p.resolved)
	return nil
}

// IsDone reports whether the Promise has been completed.
func (p *Promise) IsDone() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Future is the read side of a Promise, safe to hand to another goroutine
// (the analogue of handing an rt_future to another thread).
type Future struct {
	p *Promise
}

// Get blocks until the Promise resolves, returning its value; it traps if
// the Promise resolved with an error (rt_future_get).
func (f *Future) Get() (rt.Object, error) {
	<-f.p.resolved
	f.p.mu.Lock()
	defer f.p.mu.Unlock()
	if f.p.hasError {
		return nil, trap.NewError(trap.Descriptor{Kind: trap.DomainError, Message: f.p.errMsg})
	}
	return f.p.value, nil
}

// IsDone reports whether the Future is resolved (value or error).
func (f *Future) IsDone() bool { return f.p.IsDone() }

// IsError reports whether the Future resolved with an error.
func (f *Future) IsError() bool {
	f.p.mu.Lock()
	defer f.p.mu.Unlock()
	return f.p.hasError
}

// ErrorMessage returns the error message, or "" if not resolved with an
// error.
func (f *Future) ErrorMessage() string {
	f.p.mu.Lock()
	defer f.p.mu.Unlock()
	return f.p.errMsg
}

// TryGet returns the value without blocking, reporting ok=false if the
// Future is still pending or resolved with an error (rt_future_try_get).
func (f *Future) TryGet() (rt.Object, bool) {
	f.p.mu.Lock()
	defer f.p.mu.Unlock()
	if !f.p.done || f.p.hasError {
		return nil, false
	}
	return f.p.value, true
}

// GetFor blocks up to timeout for the Promise to resolve, reporting
// ok=false on timeout or error (rt_future_get_for_val).
func (f *Future) GetFor(timeout time.Duration) (rt.Object, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.p.resolved:
		return f.TryGet()
	case <-timer.C:
		return nil, false
	}
}
