package audit

import "time"

// Event is an immutable, append-only audit record for billing and admin
// mutations.
//
// Invariants:
// - Events are never updated or deleted.
// - org_id is required for tenancy isolation.
// - Audit capture is best-effort; never block the mutating flow on a failed
//   audit write.
type Event struct {
	ID    string `json:"id" db:"id"`
	OrgID string `json:"org_id" db:"org_id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type" db:"type"`

	// ActorUserID is the authenticated user causing the event (if applicable).
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`

	// Target identifiers (optional, depending on the event type).
	PlanID         string `json:"plan_id,omitempty" db:"plan_id"`
	SubscriptionID string `json:"subscription_id,omitempty" db:"subscription_id"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypePlanChange  EventType = "plan_change"
	EventTypeAddMinutes  EventType = "add_minutes"
	EventTypeAdminAction EventType = "admin_action"
)
