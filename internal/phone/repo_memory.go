package phone

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repository for tests and local development.
type MemoryRepo struct {
	mu   sync.Mutex
	rows map[string]PhoneNumber
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: make(map[string]PhoneNumber)}
}

func (m *MemoryRepo) Insert(_ context.Context, n PhoneNumber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Number == n.Number {
			return ErrNumberTaken
		}
	}
	m.rows[n.ID] = n
	return nil
}

func (m *MemoryRepo) Update(_ context.Context, n PhoneNumber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[n.ID]; !ok {
		return ErrNotFound
	}
	m.rows[n.ID] = n
	return nil
}

func (m *MemoryRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *MemoryRepo) FindByID(_ context.Context, id string) (PhoneNumber, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.rows[id]
	return n, ok, nil
}

func (m *MemoryRepo) FindByNumber(_ context.Context, number string) (PhoneNumber, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.rows {
		if n.Number == number {
			return n, true, nil
		}
	}
	return PhoneNumber{}, false, nil
}

func (m *MemoryRepo) ListByUser(_ context.Context, userID string) ([]PhoneNumber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []PhoneNumber
	for _, n := range m.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
