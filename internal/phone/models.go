package phone

import "time"

// PhoneNumber is the local mirror of a provisioned provider number. The
// E.164 number is unique across the store; ProviderNumberID is the provider's
// own resource id.
type PhoneNumber struct {
	ID     string `json:"id" db:"id"`
	OrgID  string `json:"org_id" db:"org_id"`
	UserID string `json:"user_id" db:"user_id"`

	ProviderNumberID string `json:"provider_number_id" db:"provider_number_id"`
	Number           string `json:"number" db:"number"`
	Provider         string `json:"provider" db:"provider"`

	// AssistantID is the provider assistant answering inbound calls on this
	// number; empty when unassigned.
	AssistantID string `json:"assistant_id,omitempty" db:"assistant_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
