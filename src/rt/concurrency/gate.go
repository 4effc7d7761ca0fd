package concurrency

import (
	"sync"

	"viper/src/trap"
)

// Gate is a counting semaphore (spec.md §4.3.5): Enter blocks while the
// permit count is zero, Exit releases one permit. Constructing or
// signaling with a negative permit count traps DomainError, since a
// negative number of permits has no meaning for a counting semaphore.
type Gate struct {
	mu      sync.Mutex
	cond    *sync.Cond
	permits int64
}

// NewGate allocates a Gate with the given initial permit count.
func NewGate(initial int64) (*Gate, error) {
	if initial < 0 {
		return nil, trap.NewError(trap.Descriptor{Kind: trap.DomainError, Message: "gate: negative initial permit count"})
	}
	g := &Gate{permits: initial}
	g.cond = sync.NewCond(&g.mu)
	return g, nil
}

// Enter blocks until a permit is available, then consumes one.
func (g *Gate) Enter() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for g.permits == 0 {
		g.cond.Wait()
	}
	g.permits--
}

// TryEnter consumes a permit without blocking, reporting whether one was
// available.
func (g *Gate) TryEnter() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.permits == 0 {
		return false
	}
	g.permits--
	return true
}

// Exit releases n permits, waking any waiters. Releasing a negative count
// traps DomainError; releasing zero is a no-op.
func (g *Gate) Exit(n int64) error {
	if n < 0 {
		return trap.NewError(trap.Descriptor{Kind: trap.DomainError, Message: "gate: negative release count"})
	}
	g.mu.Lock()
	g.permits += n
	g.mu.Unlock()
	g.cond.Broadcast()
	return nil
}

// Available returns the current permit count.
func (g *Gate) Available() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.permits
}
