package voiceplatform

import (
	"errors"
	"time"

	"voicedesk/internal/calllog"
)

// Webhook envelope sent by the voice platform on call state changes.
// Delivery is at-least-once and arbitrarily ordered; the reconciler owns the
// convergence rules, this file only parses and translates.

const (
	MessageTypeStatusUpdate    = "status-update"
	MessageTypeEndOfCallReport = "end-of-call-report"
)

const (
	CallStatusInProgress = "in-progress"
	CallStatusEnded      = "ended"
)

type WebhookEnvelope struct {
	Message WebhookMessage `json:"message"`
}

type WebhookMessage struct {
	Type      string     `json:"type"`
	Status    string     `json:"status,omitempty"`
	Call      *Call      `json:"call,omitempty"`
	Assistant *Assistant `json:"assistant,omitempty"`

	// Report fields (end-of-call-report only).
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	EndedAt         *time.Time `json:"endedAt,omitempty"`
	DurationMinutes float64    `json:"durationMinutes,omitempty"`
	Cost            float64    `json:"cost,omitempty"`
}

var ErrMalformedWebhook = errors.New("voice platform: malformed webhook payload")

// Validate rejects envelopes the reconciler cannot act on.
func (e WebhookEnvelope) Validate() error {
	m := e.Message
	if m.Type != MessageTypeStatusUpdate && m.Type != MessageTypeEndOfCallReport {
		return ErrMalformedWebhook
	}
	if m.Call == nil || m.Call.ID == "" {
		return ErrMalformedWebhook
	}
	if m.Type == MessageTypeStatusUpdate && m.Status == "" {
		return ErrMalformedWebhook
	}
	return nil
}

// ToEvent translates the envelope into a reconciler event.
// The second return is false for status updates the lifecycle does not track
// (e.g. "ringing"); those acknowledge with 200 and change nothing.
func (e WebhookEnvelope) ToEvent() (calllog.Event, bool) {
	m := e.Message

	ev := calllog.Event{
		CallID:        m.Call.ID,
		OrgID:         m.Call.OrgID,
		CallType:      m.Call.Type,
		AssistantID:   m.Call.AssistantID,
		CallCreatedAt: m.Call.CreatedAt,
		Snapshot:      snapshotFrom(m.Assistant),
	}
	if m.Call.Customer != nil {
		ev.CustomerNumber = m.Call.Customer.Number
	}

	switch m.Type {
	case MessageTypeStatusUpdate:
		switch m.Status {
		case CallStatusInProgress:
			ev.Kind = calllog.EventCallStarted
			return ev, true
		case CallStatusEnded:
			ev.Kind = calllog.EventCallEnded
			return ev, true
		default:
			return calllog.Event{}, false
		}
	case MessageTypeEndOfCallReport:
		ev.Kind = calllog.EventCallReport
		ev.StartedAt = m.StartedAt
		ev.EndedAt = m.EndedAt
		ev.Minutes = m.DurationMinutes
		ev.Cost = m.Cost
		return ev, true
	}
	return calllog.Event{}, false
}

func snapshotFrom(a *Assistant) *calllog.AssistantSnapshot {
	if a == nil {
		return nil
	}
	snap := &calllog.AssistantSnapshot{
		Name:         a.Name,
		FirstMessage: a.FirstMessage,
	}
	if a.Voice != nil {
		snap.VoiceProvider = a.Voice.Provider
		snap.VoiceID = a.Voice.VoiceID
	}
	return snap
}
