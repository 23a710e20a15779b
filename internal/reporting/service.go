package reporting

import (
	"context"
	"errors"

	"voicedesk/internal/calllog"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Service aggregates call-log rows into dashboard summaries. It reads from
// the call-log store only; rows there are already reconciled, so summaries
// are consistent with what the user sees in the call list.
type Service struct {
	repo calllog.Repository
}

func NewService(repo calllog.Repository) *Service { return &Service{repo: repo} }

func (s *Service) CallsSummary(ctx context.Context, req CallsSummaryRequest) (CallsSummary, error) {
	if req.OrgID == "" {
		return CallsSummary{}, ErrInvalidRequest
	}
	if !req.Range.From.IsZero() && !req.Range.To.IsZero() && !req.Range.To.After(req.Range.From) {
		return CallsSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return CallsSummary{}, errors.New("reporting: repository not configured")
	}

	// Summaries must see the whole range; the default list page would cap
	// them at its page size.
	rows, err := s.repo.List(ctx, req.OrgID, calllog.ListFilter{
		From:        req.Range.From,
		To:          req.Range.To,
		AssistantID: req.AssistantID,
		Limit:       calllog.NoLimit,
	})
	if err != nil {
		return CallsSummary{}, err
	}

	out := CallsSummary{OrgID: req.OrgID, AssistantID: req.AssistantID}
	for _, c := range rows {
		out.TotalCalls++
		out.TotalMinutes += c.Minutes
		out.TotalCost += c.Cost

		switch c.Status {
		case calllog.StatusCompleted:
			out.CompletedCalls++
		case calllog.StatusOngoing:
			out.OngoingCalls++
		}

		switch c.Type {
		case calllog.CallTypeInbound:
			out.InboundCalls++
		case calllog.CallTypeOutbound:
			out.OutboundCalls++
		case calllog.CallTypeWeb:
			out.WebCalls++
		}
	}
	if out.TotalCalls > 0 {
		out.AverageMinutes = out.TotalMinutes / float64(out.TotalCalls)
	}
	return out, nil
}
