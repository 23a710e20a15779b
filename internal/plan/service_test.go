package plan

import (
	"context"
	"testing"
)

func TestCycleAvailable(t *testing.T) {
	p := Plan{Features: []Feature{
		{Name: "calls", Monthly: true, Yearly: false},
	}}
	if !p.CycleAvailable(CycleMonthly) {
		t.Fatalf("expected monthly available")
	}
	if p.CycleAvailable(CycleYearly) {
		t.Fatalf("expected yearly unavailable")
	}

	empty := Plan{}
	if empty.CycleAvailable(CycleMonthly) || empty.CycleAvailable(CycleYearly) {
		t.Fatalf("plan without features should not be available on any cycle")
	}
}

func TestCycleDays(t *testing.T) {
	if CycleDays(CycleMonthly) != 30 {
		t.Fatalf("expected 30")
	}
	if CycleDays(CycleYearly) != 365 {
		t.Fatalf("expected 365")
	}
}

func TestCreateAndGet(t *testing.T) {
	s := NewService(NewMemoryRepo())
	ctx := context.Background()

	created, err := s.Create(ctx, UpsertRequest{
		Name:                 "Pro",
		Currency:             "USD",
		MonthlyPriceMinor:    4900,
		YearlyPriceMinor:     49900,
		IncludedMinutes:      500,
		AddOnMinuteRateMinor: 50,
		Features:             []Feature{{Name: "calls", Monthly: true, Yearly: true}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != StatusActive {
		t.Fatalf("expected active default, got %q", created.Status)
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PriceFor(CycleYearly) != 49900 {
		t.Fatalf("unexpected yearly price: %d", got.PriceFor(CycleYearly))
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	s := NewService(NewMemoryRepo())
	if _, err := s.Create(context.Background(), UpsertRequest{Name: "", Currency: "USD"}); err == nil {
		t.Fatalf("expected invalid argument")
	}
	if _, err := s.Create(context.Background(), UpsertRequest{Name: "x", Currency: "USD", MonthlyPriceMinor: -1}); err == nil {
		t.Fatalf("expected invalid argument for negative price")
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	s := NewService(NewMemoryRepo())
	if _, err := s.Get(context.Background(), "nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
