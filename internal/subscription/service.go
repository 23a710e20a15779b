package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"voicedesk/internal/plan"
)

var ErrInvalidArgument = errors.New("subscription: invalid argument")

// PlanCatalog is the slice of the plan service the billing flows need.
type PlanCatalog interface {
	Get(ctx context.Context, planID string) (plan.Plan, error)
}

// UserMirror denormalizes the chosen plan onto the user record so profile
// reads never join through billing.
type UserMirror interface {
	MirrorPlan(ctx context.Context, userID, planName string, cycle plan.BillingCycle) error
}

// Auditor records billing events. Best-effort: a failed audit write never
// rolls back the billing change.
type Auditor interface {
	BillingEvent(ctx context.Context, orgID, userID, action string, metadata map[string]any)
}

// Service orchestrates plan changes and minute top-ups against the active
// subscription.
type Service struct {
	repo  Repository
	plans PlanCatalog
	users UserMirror
	audit Auditor
	clock func() time.Time
}

func NewService(repo Repository, plans PlanCatalog, users UserMirror, audit Auditor) *Service {
	return &Service{repo: repo, plans: plans, users: users, audit: audit, clock: time.Now}
}

// GetActive returns the user's active subscription.
func (s *Service) GetActive(ctx context.Context, userID string) (Subscription, error) {
	sub, ok, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		return Subscription{}, err
	}
	if !ok {
		return Subscription{}, ErrNoActiveSubscription
	}
	return sub, nil
}

// Create opens a subscription for a user, normally at signup completion.
// StartDate is now; EndDate is StartDate plus the cycle length.
func (s *Service) Create(ctx context.Context, orgID, userID, planID string, cycle plan.BillingCycle) (Subscription, error) {
	if !plan.ValidCycle(cycle) {
		return Subscription{}, fmt.Errorf("%w: billing cycle must be %q or %q", ErrInvalidArgument, plan.CycleMonthly, plan.CycleYearly)
	}
	p, err := s.plans.Get(ctx, planID)
	if err != nil {
		return Subscription{}, err
	}

	now := s.clock().UTC()
	sub := Subscription{
		ID:           uuid.NewString(),
		OrgID:        orgID,
		UserID:       userID,
		PlanID:       p.ID,
		BillingCycle: cycle,
		Status:       StatusActive,
		StartDate:    now,
		EndDate:      now.AddDate(0, 0, plan.CycleDays(cycle)),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, sub); err != nil {
		return Subscription{}, err
	}
	if err := s.users.MirrorPlan(ctx, userID, strings.ToLower(p.Name), cycle); err != nil {
		return Subscription{}, err
	}
	return sub, nil
}

// ChangePlan moves the active subscription to another plan and cycle.
//
// The new EndDate is the original StartDate plus the new cycle length, not
// the change date plus the cycle. Mid-cycle proration is out of scope.
func (s *Service) ChangePlan(ctx context.Context, userID, planID string, cycle plan.BillingCycle) (Subscription, error) {
	if !plan.ValidCycle(cycle) {
		return Subscription{}, fmt.Errorf("%w: billing cycle must be %q or %q", ErrInvalidArgument, plan.CycleMonthly, plan.CycleYearly)
	}

	sub, ok, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		return Subscription{}, err
	}
	if !ok {
		return Subscription{}, ErrNoActiveSubscription
	}

	p, err := s.plans.Get(ctx, planID)
	if err != nil {
		return Subscription{}, err
	}
	if p.PriceFor(cycle) <= 0 {
		return Subscription{}, fmt.Errorf("%w: plan %s has no %s price", ErrInvalidArgument, p.ID, cycle)
	}
	if !p.CycleAvailable(cycle) {
		return Subscription{}, fmt.Errorf("%w: plan %s is not offered %s", ErrInvalidArgument, p.ID, cycle)
	}

	now := s.clock().UTC()
	endDate := sub.StartDate.AddDate(0, 0, plan.CycleDays(cycle))
	if err := s.repo.UpdatePlan(ctx, sub.ID, p.ID, cycle, endDate, now); err != nil {
		return Subscription{}, err
	}
	if err := s.users.MirrorPlan(ctx, userID, strings.ToLower(p.Name), cycle); err != nil {
		return Subscription{}, err
	}

	sub.PlanID = p.ID
	sub.BillingCycle = cycle
	sub.EndDate = endDate
	sub.UpdatedAt = now

	if s.audit != nil {
		s.audit.BillingEvent(ctx, sub.OrgID, userID, "plan_change", map[string]any{
			"plan_id": p.ID,
			"cycle":   string(cycle),
		})
	}
	return sub, nil
}

// AddMinutes buys a minute top-up priced at the plan's add-on rate.
func (s *Service) AddMinutes(ctx context.Context, userID string, minutes int64) (Subscription, AddOnPurchase, error) {
	if minutes <= 0 {
		return Subscription{}, AddOnPurchase{}, fmt.Errorf("%w: minutes must be positive", ErrInvalidArgument)
	}

	sub, ok, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		return Subscription{}, AddOnPurchase{}, err
	}
	if !ok {
		return Subscription{}, AddOnPurchase{}, ErrNoActiveSubscription
	}

	p, err := s.plans.Get(ctx, sub.PlanID)
	if err != nil {
		return Subscription{}, AddOnPurchase{}, err
	}
	if p.AddOnMinuteRateMinor <= 0 {
		return Subscription{}, AddOnPurchase{}, fmt.Errorf("%w: plan %s does not sell add-on minutes", ErrInvalidArgument, p.ID)
	}

	now := s.clock().UTC()
	purchase := AddOnPurchase{
		ID:             uuid.NewString(),
		SubscriptionID: sub.ID,
		Minutes:        minutes,
		PriceMinor:     minutes * p.AddOnMinuteRateMinor,
		PurchasedAt:    now,
	}
	updated, err := s.repo.AddMinutes(ctx, sub.ID, purchase, now)
	if err != nil {
		return Subscription{}, AddOnPurchase{}, err
	}

	if s.audit != nil {
		s.audit.BillingEvent(ctx, sub.OrgID, userID, "add_minutes", map[string]any{
			"minutes":     minutes,
			"price_minor": purchase.PriceMinor,
		})
	}
	return updated, purchase, nil
}

// Cancel marks the active subscription canceled.
func (s *Service) Cancel(ctx context.Context, userID string) (Subscription, error) {
	sub, ok, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		return Subscription{}, err
	}
	if !ok {
		return Subscription{}, ErrNoActiveSubscription
	}
	now := s.clock().UTC()
	if err := s.repo.UpdateStatus(ctx, sub.ID, StatusCanceled, now); err != nil {
		return Subscription{}, err
	}
	sub.Status = StatusCanceled
	sub.UpdatedAt = now
	return sub, nil
}

// ListAddOns returns the purchase history for the user's active subscription.
func (s *Service) ListAddOns(ctx context.Context, userID string) ([]AddOnPurchase, error) {
	sub, ok, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoActiveSubscription
	}
	return s.repo.ListAddOns(ctx, sub.ID)
}
