package assistant

import "time"

// Assistant is the local mirror of a provider assistant. The provider id is
// the primary key; the mirror adds ownership and timestamps the provider does
// not track for us.
type Assistant struct {
	ID     string `json:"id" db:"id"`
	OrgID  string `json:"org_id" db:"org_id"`
	UserID string `json:"user_id" db:"user_id"`

	Name          string `json:"name" db:"name"`
	FirstMessage  string `json:"first_message" db:"first_message"`
	ModelProvider string `json:"model_provider" db:"model_provider"`
	Model         string `json:"model" db:"model"`
	SystemPrompt  string `json:"system_prompt" db:"system_prompt"`
	VoiceProvider string `json:"voice_provider" db:"voice_provider"`
	VoiceID       string `json:"voice_id" db:"voice_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
