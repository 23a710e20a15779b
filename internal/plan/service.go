package plan

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("plan: not found")
	ErrInvalidArgument = errors.New("plan: invalid argument")
)

// Repository abstracts plan persistence.
type Repository interface {
	FindByID(ctx context.Context, planID string) (Plan, bool, error)
	ListActive(ctx context.Context) ([]Plan, error)
	Insert(ctx context.Context, p Plan) error
	Update(ctx context.Context, p Plan) error
}

// Service exposes plan reads for tenants and writes for platform admins.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

func (s *Service) Get(ctx context.Context, planID string) (Plan, error) {
	if planID == "" {
		return Plan{}, ErrInvalidArgument
	}
	p, ok, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return Plan{}, err
	}
	if !ok {
		return Plan{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) ListActive(ctx context.Context) ([]Plan, error) {
	return s.repo.ListActive(ctx)
}

type UpsertRequest struct {
	Name                 string    `json:"name"`
	Currency             string    `json:"currency"`
	MonthlyPriceMinor    int64     `json:"monthly_price_minor"`
	YearlyPriceMinor     int64     `json:"yearly_price_minor"`
	IncludedMinutes      int64     `json:"included_minutes"`
	AddOnMinuteRateMinor int64     `json:"addon_minute_rate_minor"`
	Features             []Feature `json:"features"`
	Status               Status    `json:"status"`
}

func (r UpsertRequest) validate() error {
	if r.Name == "" || r.Currency == "" {
		return ErrInvalidArgument
	}
	if r.MonthlyPriceMinor < 0 || r.YearlyPriceMinor < 0 || r.AddOnMinuteRateMinor < 0 {
		return ErrInvalidArgument
	}
	if r.Status != "" && r.Status != StatusActive && r.Status != StatusInactive {
		return ErrInvalidArgument
	}
	return nil
}

// Create registers a new plan (admin-only at the route layer).
func (s *Service) Create(ctx context.Context, req UpsertRequest) (Plan, error) {
	if err := req.validate(); err != nil {
		return Plan{}, err
	}
	now := s.clock().UTC()
	p := Plan{
		ID:                   uuid.NewString(),
		Name:                 req.Name,
		Currency:             req.Currency,
		MonthlyPriceMinor:    req.MonthlyPriceMinor,
		YearlyPriceMinor:     req.YearlyPriceMinor,
		IncludedMinutes:      req.IncludedMinutes,
		AddOnMinuteRateMinor: req.AddOnMinuteRateMinor,
		Features:             req.Features,
		Status:               req.Status,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return Plan{}, err
	}
	return p, nil
}

// Update overwrites a plan's definition.
func (s *Service) Update(ctx context.Context, planID string, req UpsertRequest) (Plan, error) {
	if planID == "" {
		return Plan{}, ErrInvalidArgument
	}
	if err := req.validate(); err != nil {
		return Plan{}, err
	}
	cur, ok, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return Plan{}, err
	}
	if !ok {
		return Plan{}, ErrNotFound
	}

	cur.Name = req.Name
	cur.Currency = req.Currency
	cur.MonthlyPriceMinor = req.MonthlyPriceMinor
	cur.YearlyPriceMinor = req.YearlyPriceMinor
	cur.IncludedMinutes = req.IncludedMinutes
	cur.AddOnMinuteRateMinor = req.AddOnMinuteRateMinor
	cur.Features = req.Features
	if req.Status != "" {
		cur.Status = req.Status
	}
	cur.UpdatedAt = s.clock().UTC()

	if err := s.repo.Update(ctx, cur); err != nil {
		return Plan{}, err
	}
	return cur, nil
}
