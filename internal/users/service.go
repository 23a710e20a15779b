package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"voicedesk/internal/auth"
	"voicedesk/internal/payment"
	"voicedesk/internal/plan"
	"voicedesk/internal/rbac"
	"voicedesk/internal/subscription"
)

// PlanCatalog is the slice of the plan service signup needs.
type PlanCatalog interface {
	Get(ctx context.Context, planID string) (plan.Plan, error)
}

// SubscriptionOpener activates a subscription once payment lands.
type SubscriptionOpener interface {
	Create(ctx context.Context, orgID, userID, planID string, cycle plan.BillingCycle) (subscription.Subscription, error)
}

// Gateway starts the hosted payment flow.
type Gateway interface {
	InitiateSubscription(ctx context.Context, req payment.InitiateRequest) (payment.InitiateResult, error)
}

// Service handles accounts: the two-phase paid signup, login, token refresh
// and the plan mirror used by billing.
//
// Signup never creates a User row up front. The signup is parked in Redis
// under the payment transaction id and only the confirmed payment callback
// turns it into an account; unpaid signups expire with the key.
type Service struct {
	repo    Repository
	pending PendingStore
	plans   PlanCatalog
	subs    SubscriptionOpener
	gateway Gateway
	tokens  *auth.Manager
	clock   func() time.Time
}

func NewService(repo Repository, pending PendingStore, plans PlanCatalog, gateway Gateway, tokens *auth.Manager) *Service {
	return &Service{
		repo:    repo,
		pending: pending,
		plans:   plans,
		gateway: gateway,
		tokens:  tokens,
		clock:   time.Now,
	}
}

// SetSubscriptions completes the wiring: the user service opens subscriptions
// on signup completion while the subscription service mirrors plans back onto
// users, so one side has to be attached after construction.
func (s *Service) SetSubscriptions(subs SubscriptionOpener) { s.subs = subs }

type SignupRequest struct {
	Email        string            `json:"email"`
	Name         string            `json:"name"`
	Password     string            `json:"password"`
	PlanID       string            `json:"plan_id"`
	BillingCycle plan.BillingCycle `json:"billing_cycle"`
}

func (r SignupRequest) validate() error {
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return fmt.Errorf("%w: a valid email is required", ErrInvalidArgument)
	}
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidArgument)
	}
	if r.PlanID == "" {
		return fmt.Errorf("%w: plan_id is required", ErrInvalidArgument)
	}
	if !plan.ValidCycle(r.BillingCycle) {
		return fmt.Errorf("%w: billing cycle must be %q or %q", ErrInvalidArgument, plan.CycleMonthly, plan.CycleYearly)
	}
	return nil
}

// SignupResult points the browser at the hosted payment page.
type SignupResult struct {
	TransactionID string `json:"transaction_id"`
	RedirectURL   string `json:"redirect_url"`
}

func (s *Service) Signup(ctx context.Context, req SignupRequest) (SignupResult, error) {
	if err := req.validate(); err != nil {
		return SignupResult{}, err
	}

	if _, ok, err := s.repo.FindByEmail(ctx, req.Email); err != nil {
		return SignupResult{}, err
	} else if ok {
		return SignupResult{}, ErrEmailTaken
	}

	p, err := s.plans.Get(ctx, req.PlanID)
	if err != nil {
		return SignupResult{}, err
	}
	price := p.PriceFor(req.BillingCycle)
	if price <= 0 {
		return SignupResult{}, fmt.Errorf("%w: plan %s has no %s price", ErrInvalidArgument, p.ID, req.BillingCycle)
	}
	if !p.CycleAvailable(req.BillingCycle) {
		return SignupResult{}, fmt.Errorf("%w: plan %s is not offered %s", ErrInvalidArgument, p.ID, req.BillingCycle)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return SignupResult{}, err
	}

	txnID := uuid.NewString()
	if err := s.pending.Put(ctx, PendingUser{
		TransactionID: txnID,
		OrgID:         uuid.NewString(),
		Email:         req.Email,
		Name:          req.Name,
		PasswordHash:  hash,
		PlanID:        p.ID,
		BillingCycle:  req.BillingCycle,
		CreatedAt:     s.clock().UTC(),
	}); err != nil {
		return SignupResult{}, err
	}

	res, err := s.gateway.InitiateSubscription(ctx, payment.InitiateRequest{
		TransactionID: txnID,
		UserRef:       req.Email,
		AmountMinor:   price,
	})
	if err != nil {
		return SignupResult{}, err
	}
	return SignupResult{TransactionID: txnID, RedirectURL: res.RedirectURL}, nil
}

// CompleteSignup turns a confirmed payment into an account with an active
// subscription. The pending entry is consumed, so a redelivered callback
// finds nothing and reports ErrPendingExpired.
func (s *Service) CompleteSignup(ctx context.Context, transactionID string) (User, error) {
	p, ok, err := s.pending.Take(ctx, transactionID)
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, ErrPendingExpired
	}

	now := s.clock().UTC()
	u := User{
		ID:           uuid.NewString(),
		OrgID:        p.OrgID,
		Email:        p.Email,
		Name:         p.Name,
		PasswordHash: p.PasswordHash,
		Role:         rbac.RoleOwner,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, u); err != nil {
		return User{}, err
	}
	if _, err := s.subs.Create(ctx, u.OrgID, u.ID, p.PlanID, p.BillingCycle); err != nil {
		return User{}, err
	}

	// The plan mirror was written by subscription creation; reload for the
	// caller.
	fresh, ok, err := s.repo.FindByID(ctx, u.ID)
	if err != nil || !ok {
		return u, err
	}
	return fresh, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (User, auth.TokenPair, error) {
	u, ok, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return User{}, auth.TokenPair{}, err
	}
	if !ok || !CheckPassword(u.PasswordHash, password) {
		return User{}, auth.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(s.clock().UTC(), u.ID, u.OrgID, u.Role)
	if err != nil {
		return User{}, auth.TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh exchanges a valid refresh token for a new pair. Role and org are
// re-read from the store so a role change lands on the next refresh.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	now := s.clock().UTC()
	claims, err := s.tokens.Verify(refreshToken, auth.TokenTypeRefresh, now)
	if err != nil {
		return auth.TokenPair{}, err
	}

	u, ok, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return auth.TokenPair{}, err
	}
	if !ok {
		return auth.TokenPair{}, ErrInvalidCredentials
	}
	return s.tokens.IssuePair(now, u.ID, u.OrgID, u.Role)
}

func (s *Service) Me(ctx context.Context, userID string) (User, error) {
	u, ok, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

// MirrorPlan satisfies the billing side's user mirror.
func (s *Service) MirrorPlan(ctx context.Context, userID, planName string, cycle plan.BillingCycle) error {
	return s.repo.UpdatePlanMirror(ctx, userID, planName, cycle, s.clock().UTC())
}
