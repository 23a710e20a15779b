package users

import (
	"context"
	"errors"
	"time"

	"voicedesk/internal/plan"
)

var (
	ErrNotFound           = errors.New("users: not found")
	ErrEmailTaken         = errors.New("users: email already registered")
	ErrInvalidCredentials = errors.New("users: invalid credentials")
	ErrInvalidArgument    = errors.New("users: invalid argument")
	ErrPendingExpired     = errors.New("users: pending signup expired or unknown")
)

// Repository persists user accounts.
type Repository interface {
	Insert(ctx context.Context, u User) error
	FindByID(ctx context.Context, id string) (User, bool, error)
	FindByEmail(ctx context.Context, email string) (User, bool, error)
	UpdatePlanMirror(ctx context.Context, userID, planName string, cycle plan.BillingCycle, updatedAt time.Time) error
}

// PendingStore holds signups awaiting payment, keyed by transaction id.
// Entries expire after the store's TTL.
type PendingStore interface {
	Put(ctx context.Context, p PendingUser) error
	Take(ctx context.Context, transactionID string) (PendingUser, bool, error)
}
