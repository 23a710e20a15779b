package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"voicedesk/internal/plan"
)

// MemoryRepo is an in-memory Repository for tests and local development.
type MemoryRepo struct {
	mu   sync.Mutex
	rows map[string]User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: make(map[string]User)}
}

func (m *MemoryRepo) Insert(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if strings.EqualFold(row.Email, u.Email) {
			return ErrEmailTaken
		}
	}
	m.rows[u.ID] = u
	return nil
}

func (m *MemoryRepo) FindByID(_ context.Context, id string) (User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	return u, ok, nil
}

func (m *MemoryRepo) FindByEmail(_ context.Context, email string) (User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if strings.EqualFold(u.Email, email) {
			return u, true, nil
		}
	}
	return User{}, false, nil
}

func (m *MemoryRepo) UpdatePlanMirror(_ context.Context, userID, planName string, cycle plan.BillingCycle, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[userID]
	if !ok {
		return ErrNotFound
	}
	u.Plan = planName
	u.Billing = cycle
	u.UpdatedAt = updatedAt
	m.rows[userID] = u
	return nil
}
