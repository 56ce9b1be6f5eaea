package invoice

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice is one transaction record in the ledger. Records are append-only;
// an invoice is never mutated once its status reaches paid.
type Invoice struct {
	ID           string `db:"id" json:"id"`
	SubscriberID string `db:"subscriber_id" json:"subscriber_id"`

	Kind   types.InvoiceKind   `db:"kind" json:"kind"`
	Status types.InvoiceStatus `db:"invoice_status" json:"invoice_status"`

	// Amount is the total due, never negative
	Amount decimal.Decimal `db:"amount" json:"amount"`

	PeriodFrom *time.Time `db:"period_from" json:"period_from,omitempty"`
	PeriodTo   *time.Time `db:"period_to" json:"period_to,omitempty"`
	DueDate    *time.Time `db:"due_date" json:"due_date,omitempty"`
	PaidAt     *time.Time `db:"paid_at" json:"paid_at,omitempty"`

	Description string `db:"description" json:"description,omitempty"`

	// Breakdown itemizes how Amount was computed
	Breakdown Breakdown `db:"breakdown" json:"breakdown"`

	types.BaseModel
}

// BreakdownItem is one itemized charge on an invoice
type BreakdownItem struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

// Breakdown itemizes an invoice: the package charge (with a proration note
// when the first month was prorated), recurring addon charges, one-time
// charges billed on this invoice only, and the discount subtracted.
type Breakdown struct {
	PackageCharge BreakdownItem   `json:"package_charge"`
	ProrationNote string          `json:"proration_note,omitempty"`
	Addons        []BreakdownItem `json:"addons,omitempty"`
	OneTimeItems  []BreakdownItem `json:"one_time_items,omitempty"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
}

// Value implements driver.Valuer so Breakdown persists as a JSONB column
func (b Breakdown) Value() (driver.Value, error) {
	return json.Marshal(b)
}

// Scan implements sql.Scanner for the JSONB column
func (b *Breakdown) Scan(value interface{}) error {
	if value == nil {
		*b = Breakdown{}
		return nil
	}
	data, ok := value.([]byte)
	if !ok {
		return ierr.NewError("unexpected breakdown column type").
			Mark(ierr.ErrDatabase)
	}
	return json.Unmarshal(data, b)
}

// Validate checks invariants that hold for every persisted invoice
func (i *Invoice) Validate() error {
	if i.SubscriberID == "" {
		return ierr.NewError("invoice requires a subscriber").
			WithHint("Subscriber ID is required").
			Mark(ierr.ErrValidation)
	}
	if err := i.Kind.Validate(); err != nil {
		return err
	}
	if err := i.Status.Validate(); err != nil {
		return err
	}
	if i.Amount.IsNegative() {
		return ierr.NewError("invoice amount cannot be negative").
			WithHint("Amount must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsPaid reports whether the invoice has been settled
func (i *Invoice) IsPaid() bool {
	return i.Status == types.InvoiceStatusPaid
}
