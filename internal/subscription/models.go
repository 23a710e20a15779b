package subscription

import (
	"time"

	"voicedesk/internal/plan"
)

// Subscription is a user's current plan enrollment.
//
// Invariant: at most one subscription per user has Status == active. This is
// enforced by query convention (FindActiveByUser) rather than a uniqueness
// constraint, matching the billing contract.
type Subscription struct {
	ID     string `json:"id" db:"id"`
	OrgID  string `json:"org_id" db:"org_id"`
	UserID string `json:"user_id" db:"user_id"`
	PlanID string `json:"plan_id" db:"plan_id"`

	BillingCycle plan.BillingCycle `json:"billing_cycle" db:"billing_cycle"`
	Status       Status            `json:"status" db:"status"`

	StartDate time.Time `json:"start_date" db:"start_date"`

	// EndDate is always recomputed as StartDate plus the cycle length; plan
	// changes never extend from the change date.
	EndDate time.Time `json:"end_date" db:"end_date"`

	// AdditionalMinutes is the running add-on total on top of the plan bundle.
	AdditionalMinutes int64 `json:"additional_minutes" db:"additional_minutes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Status string

const (
	StatusActive   Status = "active"
	StatusCanceled Status = "canceled"
	StatusPending  Status = "pending"
)

// AddOnPurchase is an append-only record of a minute top-up.
type AddOnPurchase struct {
	ID             string    `json:"id" db:"id"`
	SubscriptionID string    `json:"subscription_id" db:"subscription_id"`
	Minutes        int64     `json:"minutes" db:"minutes"`
	PriceMinor     int64     `json:"price_minor" db:"price_minor"`
	PurchasedAt    time.Time `json:"purchased_at" db:"purchased_at"`
}
