package calllog

import "time"

// CallLog is the local mirror of a call's lifecycle and billing data.
//
// Identity invariant: CallID (provider-assigned) is globally unique. A row for
// a given CallID is created at most once and thereafter only updated, never
// replaced wholesale and never deleted by this system.
//
// Assistant is an embedded snapshot captured at event time. It is not kept in
// sync with the assistant record; dashboards read it as historical data.
type CallLog struct {
	ID     string `json:"id" db:"id"`
	OrgID  string `json:"org_id" db:"org_id"`
	CallID string `json:"call_id" db:"call_id"`

	// Type is the call channel: web, inbound or outbound.
	Type string `json:"type" db:"type"`

	// Status holds "ongoing", "completed" or a provider-defined string.
	Status string `json:"status" db:"status"`

	StartedAt *time.Time `json:"started_at,omitempty" db:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty" db:"ended_at"`

	// Minutes and Cost mirror the provider's end-of-call report as-is.
	Minutes float64 `json:"minutes" db:"minutes"`
	Cost    float64 `json:"cost" db:"cost"`

	CustomerNumber string `json:"customer_number,omitempty" db:"customer_number"`

	// AssistantID is the provider's assistant id, not an internal row id.
	AssistantID string `json:"assistant_id,omitempty" db:"assistant_id"`

	Assistant *AssistantSnapshot `json:"assistant,omitempty"`

	// EventRank records the strongest event applied so far; see reconciler.go.
	EventRank int `json:"-" db:"event_rank"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AssistantSnapshot is the denormalized assistant state at event time.
type AssistantSnapshot struct {
	Name          string `json:"name,omitempty"`
	FirstMessage  string `json:"first_message,omitempty"`
	VoiceProvider string `json:"voice_provider,omitempty"`
	VoiceID       string `json:"voice_id,omitempty"`
}

const (
	CallTypeWeb      = "web"
	CallTypeInbound  = "inbound"
	CallTypeOutbound = "outbound"
)

const (
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
)

// EventKind identifies a lifecycle event delivered by the voice platform.
type EventKind int

const (
	// EventCallStarted is a status-update webhook with status "in-progress".
	EventCallStarted EventKind = iota + 1
	// EventCallEnded is a status-update webhook with status "ended".
	// It is a preliminary marker; the authoritative numbers arrive with the report.
	EventCallEnded
	// EventCallReport is the end-of-call report carrying final timings and cost.
	EventCallReport
)

// Rank orders events by authority. Reconciliation applies an event only when
// its rank is at least the rank stored on the row, so a preliminary "ended"
// can never clobber an already-applied report.
func (k EventKind) Rank() int { return int(k) }

// Event is the provider-agnostic lifecycle event consumed by the reconciler.
// Delivery is push-based, at-least-once and arbitrarily ordered.
type Event struct {
	Kind EventKind

	CallID      string
	OrgID       string
	CallType    string
	AssistantID string

	// CallCreatedAt is the provider's call.createdAt; used as startedAt when a
	// row is first created from an in-progress event.
	CallCreatedAt time.Time

	Snapshot       *AssistantSnapshot
	CustomerNumber string

	// Report fields (EventCallReport only).
	StartedAt *time.Time
	EndedAt   *time.Time
	Minutes   float64
	Cost      float64
}

// CallUpdate is the realtime payload pushed to the owning user's dashboard
// sessions after an end-of-call report is applied.
type CallUpdate struct {
	CallID  string  `json:"callId"`
	Status  string  `json:"status"`
	Minutes float64 `json:"minutes"`
	Cost    float64 `json:"cost"`
}

// OutcomeAction describes what reconciliation did to the row.
type OutcomeAction string

const (
	OutcomeCreated OutcomeAction = "created"
	OutcomeUpdated OutcomeAction = "updated"
	OutcomeNoop    OutcomeAction = "noop"
)

type Outcome struct {
	Action OutcomeAction
	Log    *CallLog

	// FirstTerminal is set when this event put the row into a terminal
	// state for the first time, including a report that creates the row
	// outright. Redeliveries and rank re-applies leave it false, so callers
	// can safely release per-call resources on it.
	FirstTerminal bool
}
