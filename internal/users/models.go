package users

import (
	"time"

	"voicedesk/internal/plan"
)

// User is a registered account. Plan and Billing are denormalized copies of
// the active subscription's plan name (lowercased) and cycle, kept in sync by
// the billing flows so profile reads never join through billing.
type User struct {
	ID    string `json:"id" db:"id"`
	OrgID string `json:"org_id" db:"org_id"`

	Email string `json:"email" db:"email"`
	Name  string `json:"name" db:"name"`

	PasswordHash string `json:"-" db:"password_hash"`

	Plan    string            `json:"plan" db:"plan"`
	Billing plan.BillingCycle `json:"billing" db:"billing"`

	Role string `json:"role" db:"role"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PendingUser holds a signup waiting for payment confirmation. It lives in
// Redis under the payment transaction id and expires on its own; an abandoned
// checkout never creates an account.
type PendingUser struct {
	TransactionID string            `json:"transaction_id"`
	OrgID         string            `json:"org_id"`
	Email         string            `json:"email"`
	Name          string            `json:"name"`
	PasswordHash  string            `json:"password_hash"`
	PlanID        string            `json:"plan_id"`
	BillingCycle  plan.BillingCycle `json:"billing_cycle"`
	CreatedAt     time.Time         `json:"created_at"`
}
