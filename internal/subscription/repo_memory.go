package subscription

import (
	"context"
	"sync"
	"time"

	"voicedesk/internal/plan"
)

// MemoryRepo is an in-memory Repository for tests and local development.
type MemoryRepo struct {
	mu     sync.Mutex
	subs   map[string]Subscription   // by subscription id
	addOns map[string][]AddOnPurchase // by subscription id
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		subs:   make(map[string]Subscription),
		addOns: make(map[string][]AddOnPurchase),
	}
}

func (m *MemoryRepo) FindActiveByUser(_ context.Context, userID string) (Subscription, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sub := range m.subs {
		if sub.UserID == userID && sub.Status == StatusActive {
			return sub, true, nil
		}
	}
	return Subscription{}, false, nil
}

func (m *MemoryRepo) Insert(_ context.Context, sub Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[sub.ID] = sub
	return nil
}

func (m *MemoryRepo) UpdatePlan(_ context.Context, subID, planID string, cycle plan.BillingCycle, endDate, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[subID]
	if !ok {
		return ErrNotFound
	}
	sub.PlanID = planID
	sub.BillingCycle = cycle
	sub.EndDate = endDate
	sub.UpdatedAt = updatedAt
	m.subs[subID] = sub
	return nil
}

func (m *MemoryRepo) UpdateStatus(_ context.Context, subID string, status Status, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[subID]
	if !ok {
		return ErrNotFound
	}
	sub.Status = status
	sub.UpdatedAt = updatedAt
	m.subs[subID] = sub
	return nil
}

func (m *MemoryRepo) AddMinutes(_ context.Context, subID string, purchase AddOnPurchase, updatedAt time.Time) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[subID]
	if !ok {
		return Subscription{}, ErrNotFound
	}
	sub.AdditionalMinutes += purchase.Minutes
	sub.UpdatedAt = updatedAt
	m.subs[subID] = sub
	m.addOns[subID] = append(m.addOns[subID], purchase)
	return sub, nil
}

func (m *MemoryRepo) ListAddOns(_ context.Context, subID string) ([]AddOnPurchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]AddOnPurchase, len(m.addOns[subID]))
	copy(out, m.addOns[subID])
	return out, nil
}
