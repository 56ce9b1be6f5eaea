package dto

import (
	"context"

	"github.com/fiberbill/fiberbill/internal/domain/addonitem"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/types"
	"github.com/fiberbill/fiberbill/internal/validator"
	"github.com/shopspring/decimal"
)

// CreateAddonItemRequest attaches a chargeable item to a subscriber
type CreateAddonItemRequest struct {
	SubscriberID string              `json:"subscriber_id" validate:"required"`
	Name         string              `json:"name" validate:"required,max=255"`
	ItemType     types.AddonItemType `json:"item_type" validate:"required"`
	Price        decimal.Decimal     `json:"price"`
	Quantity     int                 `json:"quantity" validate:"required,min=1"`
}

func (r *CreateAddonItemRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.ItemType.Validate(); err != nil {
		return err
	}
	if r.Price.IsNegative() {
		return ierr.NewError("price cannot be negative").
			WithHint("Price must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CreateAddonItemRequest) ToAddonItem(ctx context.Context) *addonitem.AddonItem {
	return &addonitem.AddonItem{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ADDON_ITEM),
		SubscriberID: r.SubscriberID,
		Name:         r.Name,
		ItemType:     r.ItemType,
		Price:        r.Price,
		Quantity:     r.Quantity,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
}

// AddonItemResponse represents an addon item in API responses
type AddonItemResponse struct {
	*addonitem.AddonItem
}

// ListAddonItemsResponse represents a list of addon items
type ListAddonItemsResponse = types.ListResponse[*AddonItemResponse]
