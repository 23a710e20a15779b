package reporting

import "time"

// TimeRange bounds a summary query. From is inclusive, To exclusive.
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// CallsSummaryRequest requests aggregated call metrics.
// Tenancy isolation: OrgID is required.
type CallsSummaryRequest struct {
	OrgID       string    `json:"org_id"`
	Range       TimeRange `json:"range"`
	AssistantID string    `json:"assistant_id,omitempty"`
}

// CallsSummary is the dashboard headline view of an org's call traffic.
type CallsSummary struct {
	OrgID       string `json:"org_id"`
	AssistantID string `json:"assistant_id,omitempty"`

	TotalCalls     int `json:"total_calls"`
	CompletedCalls int `json:"completed_calls"`
	OngoingCalls   int `json:"ongoing_calls"`

	InboundCalls  int `json:"inbound_calls"`
	OutboundCalls int `json:"outbound_calls"`
	WebCalls      int `json:"web_calls"`

	TotalMinutes float64 `json:"total_minutes"`
	TotalCost    float64 `json:"total_cost"`

	AverageMinutes float64 `json:"average_minutes"`
}
