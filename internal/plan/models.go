package plan

import "time"

// Amounts are expressed in minor units (e.g., cents) using int64.

// Plan is a purchasable subscription tier.
type Plan struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	Currency string `json:"currency" db:"currency"`

	MonthlyPriceMinor int64 `json:"monthly_price_minor" db:"monthly_price_minor"`
	YearlyPriceMinor  int64 `json:"yearly_price_minor" db:"yearly_price_minor"`

	// IncludedMinutes is the bundled call allowance per cycle.
	IncludedMinutes int64 `json:"included_minutes" db:"included_minutes"`

	// AddOnMinuteRateMinor is the price per additional minute purchased on top
	// of the bundled allowance. Zero disables add-on purchases for the plan.
	AddOnMinuteRateMinor int64 `json:"addon_minute_rate_minor" db:"addon_minute_rate_minor"`

	Features []Feature `json:"features"`

	Status Status `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Feature is a named capability with per-cycle availability flags.
type Feature struct {
	Name    string `json:"name" db:"name"`
	Monthly bool   `json:"monthly" db:"monthly"`
	Yearly  bool   `json:"yearly" db:"yearly"`
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type BillingCycle string

const (
	CycleMonthly BillingCycle = "monthly"
	CycleYearly  BillingCycle = "yearly"
)

func ValidCycle(c BillingCycle) bool {
	return c == CycleMonthly || c == CycleYearly
}

// CycleDays is the cycle length used when recomputing a subscription's end
// date. Deliberately calendar-naive to match the billing contract.
func CycleDays(c BillingCycle) int {
	if c == CycleYearly {
		return 365
	}
	return 30
}

// PriceFor returns the plan price for one cycle.
func (p Plan) PriceFor(c BillingCycle) int64 {
	if c == CycleYearly {
		return p.YearlyPriceMinor
	}
	return p.MonthlyPriceMinor
}

// CycleAvailable reports whether any feature of the plan is flagged for the
// given billing cycle. A plan with no flagged features for a cycle cannot be
// selected on that cycle.
func (p Plan) CycleAvailable(c BillingCycle) bool {
	for _, f := range p.Features {
		if c == CycleMonthly && f.Monthly {
			return true
		}
		if c == CycleYearly && f.Yearly {
			return true
		}
	}
	return false
}
