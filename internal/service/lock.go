package service

import (
	"context"
	"sync"
)

// TicketLocker serializes mutations per ticket id. Transitions for the same
// ticket never interleave; different tickets proceed in parallel.
type TicketLocker interface {
	Acquire(ctx context.Context, ticketID string) (func(), error)
}

// memoryTicketLocker is the single-instance locker: a refcounted mutex per
// ticket id. Used when Redis is not configured and in tests.
type memoryTicketLocker struct {
	mu    sync.Mutex
	locks map[string]*ticketLock
}

type ticketLock struct {
	mu   sync.Mutex
	refs int
}

// NewMemoryTicketLocker builds the in-process locker.
func NewMemoryTicketLocker() TicketLocker {
	return &memoryTicketLocker{locks: make(map[string]*ticketLock)}
}

func (l *memoryTicketLocker) Acquire(ctx context.Context, ticketID string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	entry, ok := l.locks[ticketID]
	if !ok {
		entry = &ticketLock{}
		l.locks[ticketID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	release := func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, ticketID)
		}
		l.mu.Unlock()
	}
	return release, nil
}
