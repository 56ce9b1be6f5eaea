package service

import (
	"context"

	"github.com/fiberbill/fiberbill/internal/api/dto"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/types"
)

// AddonItemService manages extra charges attached to subscribers
type AddonItemService interface {
	CreateAddonItem(ctx context.Context, req *dto.CreateAddonItemRequest) (*dto.AddonItemResponse, error)
	GetAddonItem(ctx context.Context, id string) (*dto.AddonItemResponse, error)
	ListAddonItems(ctx context.Context, filter *types.AddonItemFilter) (*dto.ListAddonItemsResponse, error)
	DeleteAddonItem(ctx context.Context, id string) error
}

type addonItemService struct {
	ServiceParams
}

// NewAddonItemService creates a new addon item service
func NewAddonItemService(params ServiceParams) AddonItemService {
	return &addonItemService{ServiceParams: params}
}

func (s *addonItemService) CreateAddonItem(ctx context.Context, req *dto.CreateAddonItemRequest) (*dto.AddonItemResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// attach to a real subscriber only
	if _, err := s.SubscriberRepo.Get(ctx, req.SubscriberID); err != nil {
		return nil, err
	}

	item := req.ToAddonItem(ctx)
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := s.AddonItemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.Logger.Infow("addon item created",
		"addon_item_id", item.ID,
		"subscriber_id", item.SubscriberID,
		"item_type", item.ItemType,
	)
	return &dto.AddonItemResponse{AddonItem: item}, nil
}

func (s *addonItemService) GetAddonItem(ctx context.Context, id string) (*dto.AddonItemResponse, error) {
	item, err := s.AddonItemRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.AddonItemResponse{AddonItem: item}, nil
}

func (s *addonItemService) ListAddonItems(ctx context.Context, filter *types.AddonItemFilter) (*dto.ListAddonItemsResponse, error) {
	if filter == nil {
		filter = &types.AddonItemFilter{QueryFilter: types.NewDefaultQueryFilter()}
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	items, err := s.AddonItemRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.AddonItemResponse, len(items))
	for i, item := range items {
		responses[i] = &dto.AddonItemResponse{AddonItem: item}
	}
	return &dto.ListAddonItemsResponse{Items: responses, Total: len(responses)}, nil
}

// DeleteAddonItem removes an addon item that has not been billed yet. A paid
// one_time item is part of invoice history and stays.
func (s *addonItemService) DeleteAddonItem(ctx context.Context, id string) error {
	item, err := s.AddonItemRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if item.ItemType == types.AddonItemTypeOneTime && item.IsPaid {
		return ierr.NewError("addon item is already billed").
			WithHintf("Addon item %s appears on an invoice and cannot be deleted", id).
			Mark(ierr.ErrInvalidOperation)
	}
	if err := s.AddonItemRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.Logger.Infow("addon item deleted", "addon_item_id", id)
	return nil
}
