package subscription

import (
	"context"
	"errors"
	"time"

	"voicedesk/internal/plan"
)

var (
	ErrNoActiveSubscription = errors.New("subscription: no active subscription")
	ErrNotFound             = errors.New("subscription: not found")
)

// Repository persists subscriptions and their add-on purchases.
//
// AddMinutes must be atomic: the minute increment and the purchase row commit
// together or not at all.
type Repository interface {
	FindActiveByUser(ctx context.Context, userID string) (Subscription, bool, error)
	Insert(ctx context.Context, sub Subscription) error
	UpdatePlan(ctx context.Context, subID, planID string, cycle plan.BillingCycle, endDate, updatedAt time.Time) error
	UpdateStatus(ctx context.Context, subID string, status Status, updatedAt time.Time) error
	AddMinutes(ctx context.Context, subID string, purchase AddOnPurchase, updatedAt time.Time) (Subscription, error)
	ListAddOns(ctx context.Context, subID string) ([]AddOnPurchase, error)
}
