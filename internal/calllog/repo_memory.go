package calllog

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory repository useful for tests and early development.
// A single mutex serializes Reconcile per the Repository contract.
//
// NOTE: This is not intended for production; use the Postgres implementation.
type MemoryRepo struct {
	mu   sync.Mutex
	rows map[string]*CallLog // keyed by call_id
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: make(map[string]*CallLog)}
}

func (r *MemoryRepo) Reconcile(ctx context.Context, callID string, fn ReconcileFunc) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var cur *CallLog
	if existing, ok := r.rows[callID]; ok {
		cp := *existing
		if existing.Assistant != nil {
			snap := *existing.Assistant
			cp.Assistant = &snap
		}
		cur = &cp
	}

	next, err := fn(cur)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}
	r.rows[callID] = next
	return nil
}

func (r *MemoryRepo) Insert(ctx context.Context, log *CallLog) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[log.CallID]; ok {
		return ErrConflict
	}
	r.rows[log.CallID] = log
	return nil
}

func (r *MemoryRepo) FindByCallID(ctx context.Context, callID string) (*CallLog, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[callID]
	if !ok {
		return nil, false, nil
	}
	cp := *row
	return &cp, true, nil
}

func (r *MemoryRepo) List(ctx context.Context, orgID string, f ListFilter) ([]CallLog, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]CallLog, 0)
	for _, row := range r.rows {
		if row.OrgID != orgID {
			continue
		}
		if !f.From.IsZero() && row.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !row.CreatedAt.Before(f.To) {
			continue
		}
		if f.AssistantID != "" && row.AssistantID != f.AssistantID {
			continue
		}
		if f.Type != "" && row.Type != f.Type {
			continue
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	limit := f.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
