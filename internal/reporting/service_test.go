package reporting

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"voicedesk/internal/calllog"
)

func seedCalls(t *testing.T, repo *calllog.MemoryRepo) {
	t.Helper()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := []calllog.CallLog{
		{ID: "1", OrgID: "org-1", CallID: "c1", Type: calllog.CallTypeInbound, Status: calllog.StatusCompleted, Minutes: 5, Cost: 0.42, CreatedAt: base},
		{ID: "2", OrgID: "org-1", CallID: "c2", Type: calllog.CallTypeOutbound, Status: calllog.StatusCompleted, Minutes: 3, Cost: 0.30, CreatedAt: base.Add(time.Hour)},
		{ID: "3", OrgID: "org-1", CallID: "c3", Type: calllog.CallTypeWeb, Status: calllog.StatusOngoing, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "4", OrgID: "org-2", CallID: "c4", Type: calllog.CallTypeInbound, Status: calllog.StatusCompleted, Minutes: 9, Cost: 0.99, CreatedAt: base},
	}
	for i := range rows {
		if err := repo.Insert(context.Background(), &rows[i]); err != nil {
			t.Fatalf("seed %s: %v", rows[i].CallID, err)
		}
	}
}

func TestCallsSummaryAggregatesOrgOnly(t *testing.T) {
	repo := calllog.NewMemoryRepo()
	seedCalls(t, repo)
	svc := NewService(repo)

	sum, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{OrgID: "org-1"})
	if err != nil {
		t.Fatalf("CallsSummary: %v", err)
	}

	if sum.TotalCalls != 3 || sum.CompletedCalls != 2 || sum.OngoingCalls != 1 {
		t.Fatalf("counts = %+v", sum)
	}
	if sum.InboundCalls != 1 || sum.OutboundCalls != 1 || sum.WebCalls != 1 {
		t.Fatalf("type counts = %+v", sum)
	}
	if sum.TotalMinutes != 8 {
		t.Fatalf("minutes = %v, want 8", sum.TotalMinutes)
	}
	if sum.TotalCost != 0.72 {
		t.Fatalf("cost = %v, want 0.72", sum.TotalCost)
	}
}

func TestCallsSummaryCountsBeyondListPage(t *testing.T) {
	repo := calllog.NewMemoryRepo()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 150; i++ {
		row := calllog.CallLog{
			ID:        fmt.Sprintf("id-%d", i),
			OrgID:     "org-1",
			CallID:    fmt.Sprintf("c%d", i),
			Type:      calllog.CallTypeInbound,
			Status:    calllog.StatusCompleted,
			Minutes:   1,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Insert(context.Background(), &row); err != nil {
			t.Fatalf("seed %s: %v", row.CallID, err)
		}
	}
	svc := NewService(repo)

	sum, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{OrgID: "org-1"})
	if err != nil {
		t.Fatalf("CallsSummary: %v", err)
	}
	if sum.TotalCalls != 150 {
		t.Fatalf("total = %d, want 150 (summary truncated to a list page)", sum.TotalCalls)
	}
	if sum.TotalMinutes != 150 {
		t.Fatalf("minutes = %v, want 150", sum.TotalMinutes)
	}
}

func TestCallsSummaryHonorsRange(t *testing.T) {
	repo := calllog.NewMemoryRepo()
	seedCalls(t, repo)
	svc := NewService(repo)

	from := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	to := from.Add(time.Hour)
	sum, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{
		OrgID: "org-1",
		Range: TimeRange{From: from, To: to},
	})
	if err != nil {
		t.Fatalf("CallsSummary: %v", err)
	}
	if sum.TotalCalls != 1 || sum.OutboundCalls != 1 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestCallsSummaryValidation(t *testing.T) {
	svc := NewService(calllog.NewMemoryRepo())

	if _, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("missing org: err = %v", err)
	}

	from := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	_, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{
		OrgID: "org-1",
		Range: TimeRange{From: from, To: from.Add(-time.Hour)},
	})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("inverted range: err = %v", err)
	}
}
