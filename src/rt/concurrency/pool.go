package concurrency

import (
	"golang.org/x/sync/errgroup"

	"viper/src/trap"
)

// Pool runs submitted tasks on at most width OS threads, the helper
// runtime externs use to spawn background work that later resolves a
// Promise. It is a thin wrapper over errgroup's limited-concurrency
// group: Submit blocks the calling thread while width tasks are already
// running, Wait joins every submitted task and reports the first task
// error.
type Pool struct {
	g *errgroup.Group
}

// NewPool allocates a Pool running at most width tasks concurrently.
// A non-positive width traps DomainError.
func NewPool(width int) (*Pool, error) {
	if width <= 0 {
		return nil, trap.NewError(trap.Descriptor{Kind: trap.DomainError, Message: "pool: non-positive width"})
	}
	g := new(errgroup.Group)
	g.SetLimit(width)
	return &Pool{g: g}, nil
}

// Submit schedules task to run on a pool thread.
func (p *Pool) Submit(task func() error) {
	p.g.Go(task)
}

// Wait blocks until every submitted task has finished and returns the
// first error any task produced.
func (p *Pool) Wait() error {
	return p.g.Wait()
}
