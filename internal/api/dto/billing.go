package dto

import (
	"time"

	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/types"
	"github.com/shopspring/decimal"
)

// Per-subscriber outcome codes for batch billing runs
const (
	RunOutcomeGenerated = "generated"
	RunOutcomeSuspended = "suspended"
	RunOutcomeSkipped   = "skipped"
	RunOutcomeFailed    = "failed"
)

// BillingRunItem records the outcome of one subscriber in an invoice run
type BillingRunItem struct {
	SubscriberID string `json:"subscriber_id"`
	InvoiceID    string `json:"invoice_id,omitempty"`
	Outcome      string `json:"outcome"`
	Reason       string `json:"reason,omitempty"`
}

// BillingRunSummary summarizes a monthly invoice generation run
type BillingRunSummary struct {
	RunAt      time.Time        `json:"run_at"`
	Candidates int              `json:"candidates"`
	Generated  int              `json:"generated"`
	Skipped    int              `json:"skipped"`
	Failed     int              `json:"failed"`
	Items      []BillingRunItem `json:"items"`
}

// SuspensionRunItem records the outcome of one subscriber in a suspension run
type SuspensionRunItem struct {
	SubscriberID string `json:"subscriber_id"`
	Outcome      string `json:"outcome"`
	Reason       string `json:"reason,omitempty"`
}

// GracePeriodWindow is the invoice window a suspension sweep judged
// subscribers against
type GracePeriodWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// SuspensionRunSummary summarizes one grace-period suspension sweep
type SuspensionRunSummary struct {
	RunAt       time.Time           `json:"run_at"`
	Candidates  int                 `json:"candidates"`
	Suspended   int                 `json:"suspended"`
	Skipped     int                 `json:"skipped"`
	Failed      int                 `json:"failed"`
	GracePeriod GracePeriodWindow   `json:"grace_period"`
	Items       []SuspensionRunItem `json:"items"`
}

// ProrationPreviewRequest asks what the first invoice would charge for a
// subscriber activating on the given date
type ProrationPreviewRequest struct {
	ActivationDate time.Time        `json:"activation_date" validate:"required"`
	PackagePrice   decimal.Decimal  `json:"package_price"`
	PeriodUnit     types.PeriodUnit `json:"period_unit" validate:"required"`
}

func (r *ProrationPreviewRequest) Validate() error {
	if r.ActivationDate.IsZero() {
		return ierr.NewError("activation date is required").
			WithHint("Provide the planned activation date").
			Mark(ierr.ErrValidation)
	}
	if err := r.PeriodUnit.Validate(); err != nil {
		return err
	}
	if r.PackagePrice.IsNegative() {
		return ierr.NewError("package price cannot be negative").
			WithHint("Package price must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ProrationPreviewResponse is the calculated first-invoice charge
type ProrationPreviewResponse struct {
	Applied       bool            `json:"applied"`
	Amount        decimal.Decimal `json:"amount"`
	RemainingDays int             `json:"remaining_days"`
	DaysInPeriod  int             `json:"days_in_period"`
}

// ServiceControlRequest targets one subscriber for manual suspend or
// reinstate, by ID or by case-insensitive name substring
type ServiceControlRequest struct {
	SubscriberID string `json:"subscriber_id,omitempty"`
	Name         string `json:"name,omitempty"`
}

func (r *ServiceControlRequest) Validate() error {
	if r.SubscriberID == "" && r.Name == "" {
		return ierr.NewError("subscriber_id or name is required").
			WithHint("Identify the subscriber by ID or by name").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ServiceControlResponse reports the result of a manual suspend or reinstate
type ServiceControlResponse struct {
	SubscriberID        string                    `json:"subscriber_id"`
	Name                string                    `json:"name"`
	BillingStatus       types.BillingStatus       `json:"billing_status"`
	ServiceStatus       types.ServiceStatus       `json:"service_status"`
	RouterAccountStatus types.RouterAccountStatus `json:"router_account_status"`
	RemoteConfirmed     bool                      `json:"remote_confirmed"`
	Message             string                    `json:"message,omitempty"`
}

// GatewayStatusResponse is the live PPP account state read from the router
type GatewayStatusResponse struct {
	SubscriberID string `json:"subscriber_id"`
	Found        bool   `json:"found"`
	Disabled     bool   `json:"disabled"`
	Profile      string `json:"profile,omitempty"`
	Service      string `json:"service,omitempty"`
}
