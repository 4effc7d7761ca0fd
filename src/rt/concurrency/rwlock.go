package concurrency

import (
	"sync"

	"viper/src/trap"
)

// RwLock is a writer-preference reader/writer lock (spec.md §4.3.5):
// pending writers block new readers from entering, avoiding writer
// starvation under sustained read pressure. Exiting a mode the caller never
// entered (more ExitRead than EnterRead, or ExitWrite without a held write)
// traps DomainError rather than corrupting the lock's internal counts.
type RwLock struct {
	mu             sync.Mutex
	cond           *sync.Cond
	readers        int64
	writerActive   bool
	writersWaiting int64
}

// NewRwLock allocates an unlocked RwLock.
func NewRwLock() *RwLock {
	l := &RwLock{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// EnterRead blocks while a writer holds or is waiting for the lock, then
// registers as a reader.
func (l *RwLock) EnterRead() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.writerActive || l.writersWaiting > 0 {
		l.cond.Wait()
	}
	l.readers++
}

// ExitRead releases one reader registration. Calling it with no reader
// currently registered traps DomainError.
func (l *RwLock) ExitRead() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.readers == 0 {
		return trap.NewError(trap.Descriptor{Kind: trap.DomainError, Message: "rwlock: exit-read with no reader held"})
	}
	l.readers--
	if l.readers == 0 {
		l.cond.Broadcast()
	}
	return nil
}

// EnterWrite blocks until no readers or writer hold the lock, then takes
// exclusive ownership.
func (l *RwLock) EnterWrite() {
	l.mu.Lock()
	l.writersWaiting++
	for l.writerActive || l.readers > 0 {
		l.cond.Wait()
	}
	l.writersWaiting--
	l.writerActive = true
	l.mu.Unlock()
}

// ExitWrite releases exclusive ownership. Calling it when no writer holds
// the lock traps DomainError.
func (l *RwLock) ExitWrite() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.writerActive {
		return trap.NewError(trap.Descriptor{Kind: trap.DomainError, Message: "rwlock: exit-write with no writer held"})
	}
	l.writerActive = false
	l.cond.Broadcast()
	return nil
}
