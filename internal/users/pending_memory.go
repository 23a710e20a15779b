package users

import (
	"context"
	"sync"
	"time"
)

// PendingMemoryStore is an in-memory PendingStore for tests. TTL expiry is
// checked lazily on Take.
type PendingMemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	rows  map[string]PendingUser
	clock func() time.Time
}

func NewPendingMemoryStore(ttl time.Duration) *PendingMemoryStore {
	return &PendingMemoryStore{
		ttl:   ttl,
		rows:  make(map[string]PendingUser),
		clock: time.Now,
	}
}

func (s *PendingMemoryStore) Put(_ context.Context, p PendingUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[p.TransactionID] = p
	return nil
}

func (s *PendingMemoryStore) Take(_ context.Context, transactionID string) (PendingUser, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[transactionID]
	if !ok {
		return PendingUser{}, false, nil
	}
	delete(s.rows, transactionID)
	if s.clock().Sub(p.CreatedAt) > s.ttl {
		return PendingUser{}, false, nil
	}
	return p, true, nil
}
