package subscription

import (
	"context"
	"errors"
	"testing"
	"time"

	"voicedesk/internal/plan"
)

type stubCatalog struct {
	plans map[string]plan.Plan
}

func (s *stubCatalog) Get(_ context.Context, planID string) (plan.Plan, error) {
	p, ok := s.plans[planID]
	if !ok {
		return plan.Plan{}, plan.ErrNotFound
	}
	return p, nil
}

type captureMirror struct {
	userID string
	name   string
	cycle  plan.BillingCycle
	calls  int
}

func (c *captureMirror) MirrorPlan(_ context.Context, userID, planName string, cycle plan.BillingCycle) error {
	c.userID = userID
	c.name = planName
	c.cycle = cycle
	c.calls++
	return nil
}

type captureAudit struct {
	actions []string
}

func (c *captureAudit) BillingEvent(_ context.Context, _, _, action string, _ map[string]any) {
	c.actions = append(c.actions, action)
}

func testPlan(id, name string) plan.Plan {
	return plan.Plan{
		ID:                   id,
		Name:                 name,
		Currency:             "USD",
		MonthlyPriceMinor:    2900,
		YearlyPriceMinor:     29900,
		IncludedMinutes:      500,
		AddOnMinuteRateMinor: 50,
		Features: []plan.Feature{
			{Name: "voice assistants", Monthly: true, Yearly: true},
		},
		Status: plan.StatusActive,
	}
}

func newTestService(t *testing.T, plans ...plan.Plan) (*Service, *MemoryRepo, *captureMirror, *captureAudit) {
	t.Helper()
	catalog := &stubCatalog{plans: make(map[string]plan.Plan)}
	for _, p := range plans {
		catalog.plans[p.ID] = p
	}
	repo := NewMemoryRepo()
	mirror := &captureMirror{}
	audit := &captureAudit{}
	svc := NewService(repo, catalog, mirror, audit)
	svc.clock = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, repo, mirror, audit
}

func TestCreateSetsCycleBoundaries(t *testing.T) {
	svc, _, mirror, _ := newTestService(t, testPlan("p-starter", "Starter"))

	sub, err := svc.Create(context.Background(), "org-1", "user-1", "p-starter", plan.CycleMonthly)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got, want := sub.EndDate, sub.StartDate.AddDate(0, 0, 30); !got.Equal(want) {
		t.Fatalf("end date = %v, want %v", got, want)
	}
	if sub.Status != StatusActive {
		t.Fatalf("status = %q, want active", sub.Status)
	}
	if mirror.name != "starter" || mirror.cycle != plan.CycleMonthly {
		t.Fatalf("mirrored %q/%q, want starter/monthly", mirror.name, mirror.cycle)
	}
}

func TestChangePlanRecomputesEndFromOriginalStart(t *testing.T) {
	svc, _, mirror, audit := newTestService(t, testPlan("p-starter", "Starter"), testPlan("p-pro", "Pro"))

	sub, err := svc.Create(context.Background(), "org-1", "user-1", "p-starter", plan.CycleMonthly)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// The change happens later in the cycle; the new end date must still be
	// anchored to the original start date.
	svc.clock = func() time.Time { return time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC) }

	changed, err := svc.ChangePlan(context.Background(), "user-1", "p-pro", plan.CycleYearly)
	if err != nil {
		t.Fatalf("ChangePlan: %v", err)
	}
	if changed.PlanID != "p-pro" || changed.BillingCycle != plan.CycleYearly {
		t.Fatalf("changed to %s/%s", changed.PlanID, changed.BillingCycle)
	}
	if got, want := changed.EndDate, sub.StartDate.AddDate(0, 0, 365); !got.Equal(want) {
		t.Fatalf("end date = %v, want %v", got, want)
	}
	if mirror.name != "pro" || mirror.cycle != plan.CycleYearly {
		t.Fatalf("mirrored %q/%q, want pro/yearly", mirror.name, mirror.cycle)
	}
	if len(audit.actions) != 1 || audit.actions[0] != "plan_change" {
		t.Fatalf("audit actions = %v", audit.actions)
	}
}

func TestChangePlanRejectsInvalidCycle(t *testing.T) {
	svc, _, _, _ := newTestService(t, testPlan("p-starter", "Starter"))
	if _, err := svc.Create(context.Background(), "org-1", "user-1", "p-starter", plan.CycleMonthly); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := svc.ChangePlan(context.Background(), "user-1", "p-starter", "weekly")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestChangePlanRejectsUnavailableCycle(t *testing.T) {
	yearlyOnly := testPlan("p-annual", "Annual")
	yearlyOnly.Features = []plan.Feature{{Name: "voice assistants", Yearly: true}}

	svc, _, _, _ := newTestService(t, testPlan("p-starter", "Starter"), yearlyOnly)
	if _, err := svc.Create(context.Background(), "org-1", "user-1", "p-starter", plan.CycleMonthly); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := svc.ChangePlan(context.Background(), "user-1", "p-annual", plan.CycleMonthly)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestChangePlanWithoutActiveSubscription(t *testing.T) {
	svc, _, _, _ := newTestService(t, testPlan("p-starter", "Starter"))

	_, err := svc.ChangePlan(context.Background(), "user-unknown", "p-starter", plan.CycleMonthly)
	if !errors.Is(err, ErrNoActiveSubscription) {
		t.Fatalf("err = %v, want ErrNoActiveSubscription", err)
	}
}

func TestAddMinutesPricesAtPlanRate(t *testing.T) {
	svc, repo, _, audit := newTestService(t, testPlan("p-starter", "Starter"))
	if _, err := svc.Create(context.Background(), "org-1", "user-1", "p-starter", plan.CycleMonthly); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 10 minutes at 50 minor units each.
	sub, purchase, err := svc.AddMinutes(context.Background(), "user-1", 10)
	if err != nil {
		t.Fatalf("AddMinutes: %v", err)
	}
	if purchase.PriceMinor != 500 {
		t.Fatalf("price = %d, want 500", purchase.PriceMinor)
	}
	if sub.AdditionalMinutes != 10 {
		t.Fatalf("additional minutes = %d, want 10", sub.AdditionalMinutes)
	}

	// A second purchase accumulates.
	sub, _, err = svc.AddMinutes(context.Background(), "user-1", 10)
	if err != nil {
		t.Fatalf("AddMinutes: %v", err)
	}
	if sub.AdditionalMinutes != 20 {
		t.Fatalf("additional minutes = %d, want 20", sub.AdditionalMinutes)
	}

	history, err := repo.ListAddOns(context.Background(), sub.ID)
	if err != nil {
		t.Fatalf("ListAddOns: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history len = %d, want 2", len(history))
	}
	if len(audit.actions) != 2 {
		t.Fatalf("audit actions = %v", audit.actions)
	}
}

func TestAddMinutesRejectsNonPositive(t *testing.T) {
	svc, _, _, _ := newTestService(t, testPlan("p-starter", "Starter"))
	if _, err := svc.Create(context.Background(), "org-1", "user-1", "p-starter", plan.CycleMonthly); err != nil {
		t.Fatalf("Create: %v", err)
	}

	for _, minutes := range []int64{0, -5} {
		if _, _, err := svc.AddMinutes(context.Background(), "user-1", minutes); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("minutes=%d: err = %v, want ErrInvalidArgument", minutes, err)
		}
	}
}

func TestAddMinutesRejectsPlanWithoutRate(t *testing.T) {
	noRate := testPlan("p-flat", "Flat")
	noRate.AddOnMinuteRateMinor = 0

	svc, _, _, _ := newTestService(t, noRate)
	if _, err := svc.Create(context.Background(), "org-1", "user-1", "p-flat", plan.CycleMonthly); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, _, err := svc.AddMinutes(context.Background(), "user-1", 10)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestCancelDeactivates(t *testing.T) {
	svc, _, _, _ := newTestService(t, testPlan("p-starter", "Starter"))
	if _, err := svc.Create(context.Background(), "org-1", "user-1", "p-starter", plan.CycleMonthly); err != nil {
		t.Fatalf("Create: %v", err)
	}

	sub, err := svc.Cancel(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if sub.Status != StatusCanceled {
		t.Fatalf("status = %q, want canceled", sub.Status)
	}
	if _, err := svc.GetActive(context.Background(), "user-1"); !errors.Is(err, ErrNoActiveSubscription) {
		t.Fatalf("GetActive after cancel: %v", err)
	}
}
