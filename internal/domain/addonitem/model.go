package addonitem

import (
	"time"

	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/types"
	"github.com/shopspring/decimal"
)

// AddonItem is an extra charge attached to one subscriber. Monthly items
// recur on every invoice; one_time items are billed exactly once, ever,
// and flip IsPaid at the moment they land on an invoice.
type AddonItem struct {
	ID           string `db:"id" json:"id"`
	SubscriberID string `db:"subscriber_id" json:"subscriber_id"`

	Name     string              `db:"name" json:"name"`
	ItemType types.AddonItemType `db:"item_type" json:"item_type"`

	Price    decimal.Decimal `db:"price" json:"price"`
	Quantity int             `db:"quantity" json:"quantity"`

	// IsPaid is meaningful for one_time items only
	IsPaid bool       `db:"is_paid" json:"is_paid"`
	PaidAt *time.Time `db:"paid_at" json:"paid_at,omitempty"`

	types.BaseModel
}

// Total returns price multiplied by quantity
func (a *AddonItem) Total() decimal.Decimal {
	return a.Price.Mul(decimal.NewFromInt(int64(a.Quantity)))
}

// Billable reports whether the item contributes to the next invoice
func (a *AddonItem) Billable() bool {
	switch a.ItemType {
	case types.AddonItemTypeMonthly:
		return true
	case types.AddonItemTypeOneTime:
		return !a.IsPaid
	}
	return false
}

// Validate checks invariants that hold for every persisted addon item
func (a *AddonItem) Validate() error {
	if a.SubscriberID == "" {
		return ierr.NewError("addon item requires a subscriber").
			WithHint("Subscriber ID is required").
			Mark(ierr.ErrValidation)
	}
	if err := a.ItemType.Validate(); err != nil {
		return err
	}
	if a.Price.IsNegative() {
		return ierr.NewError("addon price cannot be negative").
			WithHint("Price must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	if a.Quantity < 1 {
		return ierr.NewError("addon quantity must be positive").
			WithHint("Quantity must be at least 1").
			Mark(ierr.ErrValidation)
	}
	return nil
}
