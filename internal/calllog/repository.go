package calllog

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("calllog: not found")
	ErrConflict     = errors.New("calllog: call_id already recorded")
	ErrInvalidEvent = errors.New("calllog: invalid event")
)

// NoLimit asks List for every matching row. Aggregations must use it: the
// default page size would silently truncate their input.
const NoLimit = -1

// ListFilter narrows List results. Zero values mean "no constraint", except
// Limit: a zero Limit falls back to the default page of 100 and NoLimit
// disables paging entirely.
type ListFilter struct {
	From        time.Time
	To          time.Time
	AssistantID string
	Type        string
	Limit       int
}

// defaultListLimit is the page size applied when a caller leaves Limit zero.
const defaultListLimit = 100

// ReconcileFunc receives the current row for a call_id (nil if absent) and
// returns the row to persist. Returning (nil, nil) leaves the store untouched.
type ReconcileFunc func(cur *CallLog) (*CallLog, error)

// Repository is the persistence contract for call logs.
//
// Reconcile MUST serialize invocations per call_id, including the case where
// no row exists yet. This is what makes read-modify-write against concurrent,
// at-least-once webhook delivery safe.
type Repository interface {
	Reconcile(ctx context.Context, callID string, fn ReconcileFunc) error
	Insert(ctx context.Context, log *CallLog) error
	FindByCallID(ctx context.Context, callID string) (*CallLog, bool, error)
	List(ctx context.Context, orgID string, f ListFilter) ([]CallLog, error)
}
