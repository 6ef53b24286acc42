package application

import (
	"sync"

	"github.com/google/uuid"
)

// auctionLocks hands out one mutex per auction id so that every
// load -> mutate -> persist sequence for a given auction runs in a single
// critical section, while different auctions proceed independently. Locks are
// kept for the life of the process, an auction id is a few dozen bytes.
type auctionLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newAuctionLocks() *auctionLocks {
	return &auctionLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *auctionLocks) get(id uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}
