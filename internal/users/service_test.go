package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"voicedesk/internal/auth"
	"voicedesk/internal/config"
	"voicedesk/internal/payment"
	"voicedesk/internal/plan"
	"voicedesk/internal/rbac"
	"voicedesk/internal/subscription"
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

type stubGateway struct {
	initiated []payment.InitiateRequest
	err       error
}

func (s *stubGateway) InitiateSubscription(_ context.Context, req payment.InitiateRequest) (payment.InitiateResult, error) {
	if s.err != nil {
		return payment.InitiateResult{}, s.err
	}
	s.initiated = append(s.initiated, req)
	return payment.InitiateResult{TransactionID: req.TransactionID, RedirectURL: "https://pay.example/page/" + req.TransactionID}, nil
}

func starterPlan() plan.Plan {
	return plan.Plan{
		ID:                   "p-starter",
		Name:                 "Starter",
		Currency:             "USD",
		MonthlyPriceMinor:    2900,
		YearlyPriceMinor:     29900,
		IncludedMinutes:      500,
		AddOnMinuteRateMinor: 50,
		Features:             []plan.Feature{{Name: "voice assistants", Monthly: true, Yearly: true}},
		Status:               plan.StatusActive,
	}
}

type fixture struct {
	svc     *Service
	subSvc  *subscription.Service
	repo    *MemoryRepo
	gateway *stubGateway
	pending *PendingMemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mgr, err := auth.NewManager(config.AuthConfig{
		JWTSecret:       "test-secret-test-secret-test-secret",
		JWTIssuer:       "voicedesk-test",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	catalog := &stubCatalog{plans: map[string]plan.Plan{"p-starter": starterPlan()}}
	repo := NewMemoryRepo()
	pending := NewPendingMemoryStore(30 * time.Minute)
	gateway := &stubGateway{}

	svc := NewService(repo, pending, catalog, gateway, mgr)
	subSvc := subscription.NewService(subscription.NewMemoryRepo(), catalog, svc, nil)
	svc.SetSubscriptions(subSvc)

	return &fixture{svc: svc, subSvc: subSvc, repo: repo, gateway: gateway, pending: pending}
}

func validSignup() SignupRequest {
	return SignupRequest{
		Email:        "owner@clinic.example",
		Name:         "Dana",
		Password:     "correct horse battery",
		PlanID:       "p-starter",
		BillingCycle: plan.CycleMonthly,
	}
}

func TestSignupParksPendingAndRedirects(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Signup(context.Background(), validSignup())
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if res.RedirectURL == "" || res.TransactionID == "" {
		t.Fatalf("result = %+v", res)
	}
	if len(f.gateway.initiated) != 1 {
		t.Fatalf("gateway calls = %d", len(f.gateway.initiated))
	}
	// Charged the monthly price of the chosen plan.
	if got := f.gateway.initiated[0].AmountMinor; got != 2900 {
		t.Fatalf("amount = %d, want 2900", got)
	}
	// No account until the payment confirms.
	if _, ok, _ := f.repo.FindByEmail(context.Background(), "owner@clinic.example"); ok {
		t.Fatalf("user created before payment")
	}
}

func TestSignupRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)

	for name, mutate := range map[string]func(*SignupRequest){
		"no email":      func(r *SignupRequest) { r.Email = "" },
		"bad email":     func(r *SignupRequest) { r.Email = "nope" },
		"no name":       func(r *SignupRequest) { r.Name = "" },
		"weak password": func(r *SignupRequest) { r.Password = "short" },
		"no plan":       func(r *SignupRequest) { r.PlanID = "" },
		"bad cycle":     func(r *SignupRequest) { r.BillingCycle = "weekly" },
	} {
		req := validSignup()
		mutate(&req)
		if _, err := f.svc.Signup(context.Background(), req); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%s: err = %v, want ErrInvalidArgument", name, err)
		}
	}
}

func TestCompleteSignupCreatesOwnerWithSubscription(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Signup(context.Background(), validSignup())
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	u, err := f.svc.CompleteSignup(context.Background(), res.TransactionID)
	if err != nil {
		t.Fatalf("CompleteSignup: %v", err)
	}
	if u.Role != rbac.RoleOwner {
		t.Fatalf("role = %q, want owner", u.Role)
	}
	if u.Plan != "starter" || u.Billing != plan.CycleMonthly {
		t.Fatalf("plan mirror = %q/%q", u.Plan, u.Billing)
	}

	sub, err := f.subSvc.GetActive(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if sub.PlanID != "p-starter" || sub.Status != subscription.StatusActive {
		t.Fatalf("subscription = %+v", sub)
	}
}

func TestCompleteSignupConsumesPendingOnce(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Signup(context.Background(), validSignup())
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if _, err := f.svc.CompleteSignup(context.Background(), res.TransactionID); err != nil {
		t.Fatalf("first CompleteSignup: %v", err)
	}
	if _, err := f.svc.CompleteSignup(context.Background(), res.TransactionID); !errors.Is(err, ErrPendingExpired) {
		t.Fatalf("second CompleteSignup: err = %v, want ErrPendingExpired", err)
	}
}

func TestCompleteSignupUnknownTransaction(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.CompleteSignup(context.Background(), "txn-missing"); !errors.Is(err, ErrPendingExpired) {
		t.Fatalf("err = %v, want ErrPendingExpired", err)
	}
}

func TestSignupRejectsRegisteredEmail(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Signup(context.Background(), validSignup())
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if _, err := f.svc.CompleteSignup(context.Background(), res.TransactionID); err != nil {
		t.Fatalf("CompleteSignup: %v", err)
	}

	if _, err := f.svc.Signup(context.Background(), validSignup()); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestLoginAndRefresh(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Signup(context.Background(), validSignup())
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	created, err := f.svc.CompleteSignup(context.Background(), res.TransactionID)
	if err != nil {
		t.Fatalf("CompleteSignup: %v", err)
	}

	u, pair, err := f.svc.Login(context.Background(), "owner@clinic.example", "correct horse battery")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.ID != created.ID || pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("login result = %+v / %+v", u, pair)
	}

	if _, _, err := f.svc.Login(context.Background(), "owner@clinic.example", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: err = %v", err)
	}
	if _, _, err := f.svc.Login(context.Background(), "nobody@clinic.example", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: err = %v", err)
	}

	fresh, err := f.svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if fresh.AccessToken == "" || fresh.RefreshToken == "" {
		t.Fatalf("refresh pair = %+v", fresh)
	}

	// An access token is not accepted as a refresh token.
	if _, err := f.svc.Refresh(context.Background(), pair.AccessToken); err == nil {
		t.Fatalf("access token accepted for refresh")
	}
}

func TestPendingExpiresByTTL(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Signup(context.Background(), validSignup())
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	f.pending.clock = func() time.Time { return time.Now().Add(time.Hour) }

	if _, err := f.svc.CompleteSignup(context.Background(), res.TransactionID); !errors.Is(err, ErrPendingExpired) {
		t.Fatalf("err = %v, want ErrPendingExpired", err)
	}
}
