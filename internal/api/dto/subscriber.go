package dto

import (
	"context"
	"time"

	"github.com/fiberbill/fiberbill/internal/domain/subscriber"
	"github.com/fiberbill/fiberbill/internal/types"
	"github.com/fiberbill/fiberbill/internal/validator"
	"github.com/shopspring/decimal"
)

// CreateSubscriberRequest registers a new fiber subscriber
type CreateSubscriberRequest struct {
	Name         string          `json:"name" validate:"required,max=255"`
	Phone        string          `json:"phone" validate:"omitempty,max=50"`
	Address      string          `json:"address" validate:"omitempty,max=1024"`
	PackagePrice decimal.Decimal `json:"package_price" validate:"required"`
	Discount     decimal.Decimal `json:"discount"`

	BillingType      types.BillingType `json:"billing_type" validate:"omitempty,oneof=prepaid postpaid"`
	ActivePeriod     int               `json:"active_period" validate:"omitempty,min=1"`
	ActivePeriodUnit types.PeriodUnit  `json:"active_period_unit" validate:"omitempty,oneof=days months"`
	ActiveDate       *time.Time        `json:"active_date,omitempty"`

	RouterAccountName *string `json:"router_account_name,omitempty"`
	RouterID          *string `json:"router_id,omitempty"`
	ODPID             *string `json:"odp_id,omitempty"`
}

func (r *CreateSubscriberRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ToSubscriber builds the domain model. A new subscriber starts paid and
// active; the first invoice run flips them to unpaid.
func (r *CreateSubscriberRequest) ToSubscriber(ctx context.Context) *subscriber.Subscriber {
	billingType := r.BillingType
	if billingType == "" {
		billingType = types.BillingTypePrepaid
	}
	periodUnit := r.ActivePeriodUnit
	if periodUnit == "" {
		periodUnit = types.PeriodUnitMonths
	}
	period := r.ActivePeriod
	if period == 0 {
		period = 1
	}
	activeDate := r.ActiveDate
	if activeDate == nil {
		now := time.Now().UTC()
		activeDate = &now
	}

	return &subscriber.Subscriber{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIBER),
		Number:       types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_SUBSCRIBER),
		Name:         r.Name,
		Phone:        r.Phone,
		Address:      r.Address,
		PackagePrice: r.PackagePrice,
		AddonPrice:   decimal.Zero,
		Discount:     r.Discount,

		BillingType:      billingType,
		ActivePeriod:     period,
		ActivePeriodUnit: periodUnit,
		ActiveDate:       activeDate,

		BillingStatus:       types.BillingStatusPaid,
		ServiceStatus:       types.ServiceStatusActive,
		RouterAccountStatus: types.RouterAccountStatusActive,

		RouterAccountName: r.RouterAccountName,
		RouterID:          r.RouterID,

		BaseModel: types.GetDefaultBaseModel(ctx),
	}
}

// UpdateSubscriberRequest carries partial updates to a subscriber
type UpdateSubscriberRequest struct {
	Name         *string          `json:"name,omitempty" validate:"omitempty,max=255"`
	Phone        *string          `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address      *string          `json:"address,omitempty" validate:"omitempty,max=1024"`
	PackagePrice *decimal.Decimal `json:"package_price,omitempty"`
	Discount     *decimal.Decimal `json:"discount,omitempty"`

	RouterAccountName *string `json:"router_account_name,omitempty"`
	RouterID          *string `json:"router_id,omitempty"`
}

func (r *UpdateSubscriberRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// SubscriberResponse represents a subscriber in API responses
type SubscriberResponse struct {
	*subscriber.Subscriber
}

// ListSubscribersResponse represents a list of subscribers
type ListSubscribersResponse = types.ListResponse[*SubscriberResponse]
