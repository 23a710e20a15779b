package voiceplatform

import (
	"context"
	"fmt"
	"time"
)

// Provider defines the provider-agnostic interface for the hosted voice-AI
// platform used by business logic.
//
// Rules:
// - No provider SDK calls outside this package.
// - Request/response types stay provider-agnostic; raw payloads may be kept
//   in metadata when debugging is needed.
// - This system is a client only; it never serves these resources itself.
type Provider interface {
	Name() string
	HealthCheck(ctx context.Context) error

	CreateAssistant(ctx context.Context, req AssistantRequest) (Assistant, error)
	GetAssistant(ctx context.Context, assistantID string) (Assistant, error)
	UpdateAssistant(ctx context.Context, assistantID string, req AssistantRequest) (Assistant, error)
	DeleteAssistant(ctx context.Context, assistantID string) error

	CreateCall(ctx context.Context, req CallRequest) (Call, error)
	GetCall(ctx context.Context, callID string) (Call, error)

	CreatePhoneNumber(ctx context.Context, req PhoneNumberRequest) (PhoneNumber, error)
	ListPhoneNumbers(ctx context.Context) ([]PhoneNumber, error)
	DeletePhoneNumber(ctx context.Context, phoneNumberID string) error
}

// Assistant mirrors the provider's assistant resource.
type Assistant struct {
	ID           string          `json:"id"`
	OrgID        string          `json:"orgId,omitempty"`
	Name         string          `json:"name,omitempty"`
	FirstMessage string          `json:"firstMessage,omitempty"`
	Model        *AssistantModel `json:"model,omitempty"`
	Voice        *AssistantVoice `json:"voice,omitempty"`
	CreatedAt    time.Time       `json:"createdAt,omitempty"`
	UpdatedAt    time.Time       `json:"updatedAt,omitempty"`
}

type AssistantModel struct {
	Provider string         `json:"provider,omitempty"`
	Model    string         `json:"model,omitempty"`
	Messages []ModelMessage `json:"messages,omitempty"`
}

type ModelMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type AssistantVoice struct {
	Provider string `json:"provider,omitempty"`
	VoiceID  string `json:"voiceId,omitempty"`
}

// AssistantRequest is the create/update payload.
type AssistantRequest struct {
	Name         string          `json:"name,omitempty"`
	FirstMessage string          `json:"firstMessage,omitempty"`
	Model        *AssistantModel `json:"model,omitempty"`
	Voice        *AssistantVoice `json:"voice,omitempty"`
}

// Call mirrors the provider's call resource.
type Call struct {
	ID            string        `json:"id"`
	OrgID         string        `json:"orgId,omitempty"`
	AssistantID   string        `json:"assistantId,omitempty"`
	PhoneNumberID string        `json:"phoneNumberId,omitempty"`
	Type          string        `json:"type,omitempty"`
	Status        string        `json:"status,omitempty"`
	Customer      *CallCustomer `json:"customer,omitempty"`
	CreatedAt     time.Time     `json:"createdAt,omitempty"`
}

type CallCustomer struct {
	Number string `json:"number,omitempty"`
}

// CallRequest asks the provider to place (or register) a call.
type CallRequest struct {
	AssistantID   string        `json:"assistantId"`
	PhoneNumberID string        `json:"phoneNumberId,omitempty"`
	Type          string        `json:"type,omitempty"`
	Customer      *CallCustomer `json:"customer,omitempty"`
}

// PhoneNumber mirrors the provider's phone-number resource.
type PhoneNumber struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"orgId,omitempty"`
	Number      string    `json:"number"`
	Provider    string    `json:"provider,omitempty"`
	AssistantID string    `json:"assistantId,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

type PhoneNumberRequest struct {
	Number      string `json:"number,omitempty"`
	Provider    string `json:"provider,omitempty"`
	AreaCode    string `json:"areaCode,omitempty"`
	AssistantID string `json:"assistantId,omitempty"`
}

// APIError carries a provider non-2xx response. The upstream status and body
// surface to the caller unchanged.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("voice platform: upstream status %d: %s", e.StatusCode, e.Body)
}
