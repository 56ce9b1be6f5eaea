package proration

import (
	"time"

	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/types"
	"github.com/shopspring/decimal"
)

// Params are the inputs for a first-period proration calculation
type Params struct {
	// ActivationDate is the day the subscriber's service went live
	ActivationDate time.Time
	// PackagePrice is the full monthly charge, non-negative
	PackagePrice decimal.Decimal
	// PeriodUnit is the subscriber's active period unit; only months prorate
	PeriodUnit types.PeriodUnit
}

// Result describes the prorated first-period charge
type Result struct {
	// Applied is true when the charge was actually reduced
	Applied bool `json:"applied"`
	// Amount is the charge for the first period, rounded to a whole
	// currency unit
	Amount decimal.Decimal `json:"amount"`
	// RemainingDays counts the activation day through month end, inclusive
	RemainingDays int `json:"remaining_days"`
	// DaysInPeriod is the number of days in the activation month
	DaysInPeriod int `json:"days_in_period"`
}

// Calculator computes first-month proration. It is pure: no clock reads and
// no side effects, so it can back the preview endpoint directly.
type Calculator struct {
	loc *time.Location
}

// NewCalculator creates a calculator fixed to the business timezone
func NewCalculator(loc *time.Location) *Calculator {
	return &Calculator{loc: loc}
}

// Calculate prorates the first month's charge by remaining calendar days.
// Day-based subscriptions never prorate; a subscriber activated on the 1st
// pays the full package price.
func (c *Calculator) Calculate(params Params) (*Result, error) {
	if params.ActivationDate.IsZero() {
		return nil, ierr.NewError("activation date is required").
			WithHint("Activation date is required for proration").
			Mark(ierr.ErrValidation)
	}
	if params.PackagePrice.IsNegative() {
		return nil, ierr.NewError("package price cannot be negative").
			WithHint("Package price must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	if err := params.PeriodUnit.Validate(); err != nil {
		return nil, err
	}

	if params.PeriodUnit != types.PeriodUnitMonths {
		return &Result{
			Applied: false,
			Amount:  params.PackagePrice,
		}, nil
	}

	daysInPeriod := types.DaysInMonth(params.ActivationDate, c.loc)
	remainingDays := daysInPeriod - types.DayOfMonth(params.ActivationDate, c.loc) + 1

	dailyRate := params.PackagePrice.Div(decimal.NewFromInt(int64(daysInPeriod)))
	amount := dailyRate.Mul(decimal.NewFromInt(int64(remainingDays))).Round(0)

	return &Result{
		Applied:       remainingDays < daysInPeriod,
		Amount:        amount,
		RemainingDays: remainingDays,
		DaysInPeriod:  daysInPeriod,
	}, nil
}
