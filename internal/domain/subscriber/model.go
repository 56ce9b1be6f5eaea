package subscriber

import (
	"time"

	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/types"
	"github.com/shopspring/decimal"
)

// Subscriber represents a fiber customer and the billing terms of their connection
type Subscriber struct {
	// ID is the unique identifier for the subscriber
	ID string `db:"id" json:"id"`

	// Number is the human-readable subscriber number printed on invoices
	Number string `db:"number" json:"number"`

	// Name is the subscriber's full name
	Name string `db:"name" json:"name"`

	// Phone is the subscriber's contact number
	Phone string `db:"phone" json:"phone"`

	// Address is the installation address
	Address string `db:"address" json:"address"`

	// PackagePrice is the recurring monthly charge for the service package
	PackagePrice decimal.Decimal `db:"package_price" json:"package_price"`

	// AddonPrice is the recurring total of monthly addon charges
	AddonPrice decimal.Decimal `db:"addon_price" json:"addon_price"`

	// Discount is subtracted from every invoice total
	Discount decimal.Decimal `db:"discount" json:"discount"`

	// BillingType is prepaid or postpaid
	BillingType types.BillingType `db:"billing_type" json:"billing_type"`

	// ActivePeriod and ActivePeriodUnit define the service period length
	ActivePeriod     int              `db:"active_period" json:"active_period"`
	ActivePeriodUnit types.PeriodUnit `db:"active_period_unit" json:"active_period_unit"`

	// Lifecycle dates, all in the business timezone
	ActiveDate     *time.Time `db:"active_date" json:"active_date,omitempty"`
	ExpireDate     *time.Time `db:"expire_date" json:"expire_date,omitempty"`
	PaymentDueDate *time.Time `db:"payment_due_date" json:"payment_due_date,omitempty"`

	// Status triad
	BillingStatus       types.BillingStatus       `db:"billing_status" json:"billing_status"`
	ServiceStatus       types.ServiceStatus       `db:"service_status" json:"service_status"`
	RouterAccountStatus types.RouterAccountStatus `db:"router_account_status" json:"router_account_status"`

	// Proration markers. ProrationApplied flips to true once the first
	// prorated invoice has been generated, so proration happens at most once.
	ProrationApplied bool             `db:"proration_applied" json:"proration_applied"`
	ProrationAmount  *decimal.Decimal `db:"proration_amount" json:"proration_amount,omitempty"`

	// RouterAccountName is the subscriber's PPP login on the router
	RouterAccountName *string `db:"router_account_name" json:"router_account_name,omitempty"`

	// RouterID references the router hosting the PPP account
	RouterID *string `db:"router_id" json:"router_id,omitempty"`

	// ODPID references the optical distribution point slot the subscriber occupies
	ODPID *string `db:"odp_id" json:"odp_id,omitempty"`

	// Billing cycle bookkeeping
	LastBillingDate *time.Time `db:"last_billing_date" json:"last_billing_date,omitempty"`
	NextBillingDate *time.Time `db:"next_billing_date" json:"next_billing_date,omitempty"`
	LastSuspendDate *time.Time `db:"last_suspend_date" json:"last_suspend_date,omitempty"`

	types.BaseModel
}

// HasRouterAccount reports whether the subscriber is addressable on a router.
// A subscriber without both a PPP account name and a router reference cannot
// be suspended or reinstated; callers must treat that as a configuration gap,
// not a remote failure.
func (s *Subscriber) HasRouterAccount() bool {
	return s.RouterAccountName != nil && *s.RouterAccountName != "" &&
		s.RouterID != nil && *s.RouterID != ""
}

// Validate checks invariants that hold for every persisted subscriber
func (s *Subscriber) Validate() error {
	if err := s.BillingType.Validate(); err != nil {
		return err
	}
	if err := s.ActivePeriodUnit.Validate(); err != nil {
		return err
	}
	if err := s.BillingStatus.Validate(); err != nil {
		return err
	}
	if err := s.ServiceStatus.Validate(); err != nil {
		return err
	}
	if err := s.RouterAccountStatus.Validate(); err != nil {
		return err
	}
	if s.PackagePrice.IsNegative() {
		return ierr.NewError("package price cannot be negative").
			WithHint("Package price must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	if s.AddonPrice.IsNegative() {
		return ierr.NewError("addon price cannot be negative").
			WithHint("Addon price must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	if s.Discount.IsNegative() {
		return ierr.NewError("discount cannot be negative").
			WithHint("Discount must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	return nil
}
