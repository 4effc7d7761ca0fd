package concurrency

import (
	"sync"

	"viper/src/trap"
)

// Barrier is an N-party rendezvous point (spec.md §4.3.5): Wait blocks
// until N parties have called it, then releases all of them together and
// advances to the next generation, matching the generation-counting
// pattern used to make a Barrier safely reusable across repeated rounds
// (the same role Go's own sync.WaitGroup cannot fill, since a WaitGroup
// has no "release everyone at once and reset" operation — this is why the
// corpus's own worker-pool code instead reaches for errgroup for simple
// fan-out/fan-in and a hand-rolled condition variable for true rendezvous).
type Barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	parties    int64
	waiting    int64
	generation int64
	resetting  bool
}

// NewBarrier allocates a Barrier requiring parties participants per round.
// parties must be positive.
func NewBarrier(parties int64) (*Barrier, error) {
	if parties <= 0 {
		return nil, trap.NewError(trap.Descriptor{Kind: trap.DomainError, Message: "barrier: non-positive party count"})
	}
	b := &Barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b, nil
}

// Wait blocks until all parties have arrived, then releases everyone and
// starts a new generation.
func (b *Barrier) Wait() {
	b.mu.Lock()
	gen := b.generation
	b.waiting++
	if b.waiting == b.parties {
		b.waiting = 0
		b.generation++
		b.cond.Broadcast()
		b.mu.Unlock()
		return
	}
	for gen == b.generation {
		b.cond.Wait()
	}
	b.mu.Unlock()
}

// Reset forces a new generation immediately when no party is waiting.
// Reset while parties are actively blocked in Wait is the one case spec.md
// calls out as a trap: resetting a Barrier that already has waiters traps
// DomainError and leaves the round untouched, since those waiters would
// otherwise never learn whether their round completed.
func (b *Barrier) Reset() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.waiting > 0 {
		return trap.NewError(trap.Descriptor{Kind: trap.DomainError, Message: "barrier: reset while parties are waiting"})
	}
	b.generation++
	b.cond.Broadcast()
	return nil
}

// Parties returns the configured party count.
func (b *Barrier) Parties() int64 { return b.parties }
