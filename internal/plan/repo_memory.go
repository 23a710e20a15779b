package plan

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is a simple in-memory repository useful for tests and early development.
type MemoryRepo struct {
	mu    sync.Mutex
	plans map[string]Plan
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{plans: make(map[string]Plan)}
}

func (r *MemoryRepo) FindByID(ctx context.Context, planID string) (Plan, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[planID]
	return p, ok, nil
}

func (r *MemoryRepo) ListActive(ctx context.Context) ([]Plan, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Plan, 0)
	for _, p := range r.plans {
		if p.Status == StatusActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MonthlyPriceMinor < out[j].MonthlyPriceMinor })
	return out, nil
}

func (r *MemoryRepo) Insert(ctx context.Context, p Plan) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[p.ID] = p
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, p Plan) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[p.ID] = p
	return nil
}
