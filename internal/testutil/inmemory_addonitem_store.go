package testutil

import (
	"context"

	"github.com/fiberbill/fiberbill/internal/domain/addonitem"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/types"
)

// InMemoryAddonItemStore implements addonitem.Repository
type InMemoryAddonItemStore struct {
	*InMemoryStore[*addonitem.AddonItem]
}

func NewInMemoryAddonItemStore() *InMemoryAddonItemStore {
	return &InMemoryAddonItemStore{
		InMemoryStore: NewInMemoryStore[*addonitem.AddonItem](),
	}
}

func copyAddonItem(item *addonitem.AddonItem) *addonitem.AddonItem {
	if item == nil {
		return nil
	}
	copied := *item
	copied.PaidAt = copyTimePtr(item.PaidAt)
	return &copied
}

func (s *InMemoryAddonItemStore) Create(ctx context.Context, item *addonitem.AddonItem) error {
	if item == nil {
		return ierr.NewError("addon item cannot be nil").
			WithHint("Addon item data is required").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Create(ctx, item.ID, copyAddonItem(item)); err != nil {
		return ierr.WithError(err).
			WithHintf("Addon item with ID %s already exists", item.ID).
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryAddonItemStore) Get(ctx context.Context, id string) (*addonitem.AddonItem, error) {
	item, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Addon item with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyAddonItem(item), nil
}

func addonItemFilterFn(ctx context.Context, item *addonitem.AddonItem, filter interface{}) bool {
	if item == nil {
		return false
	}
	f, ok := filter.(*types.AddonItemFilter)
	if !ok {
		return true
	}

	if item.Status == types.StatusDeleted {
		return false
	}
	if f.SubscriberID != "" && item.SubscriberID != f.SubscriberID {
		return false
	}
	if f.ItemType != nil && item.ItemType != *f.ItemType {
		return false
	}
	if f.UnpaidOnly && item.IsPaid {
		return false
	}

	return true
}

func addonItemSortFn(i, j *addonitem.AddonItem) bool {
	if i != nil && j != nil {
		return i.CreatedAt.Before(j.CreatedAt)
	}
	return true
}

func (s *InMemoryAddonItemStore) List(ctx context.Context, filter *types.AddonItemFilter) ([]*addonitem.AddonItem, error) {
	items, err := s.InMemoryStore.List(ctx, filter, addonItemFilterFn, addonItemSortFn)
	if err != nil {
		return nil, err
	}
	result := make([]*addonitem.AddonItem, len(items))
	for i, item := range items {
		result[i] = copyAddonItem(item)
	}
	return result, nil
}

func (s *InMemoryAddonItemStore) Update(ctx context.Context, item *addonitem.AddonItem) error {
	if item == nil {
		return ierr.NewError("addon item cannot be nil").
			WithHint("Addon item data is required").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Update(ctx, item.ID, copyAddonItem(item)); err != nil {
		return ierr.WithError(err).
			WithHintf("Addon item with ID %s was not found", item.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryAddonItemStore) Delete(ctx context.Context, id string) error {
	if err := s.InMemoryStore.Delete(ctx, id); err != nil {
		return ierr.WithError(err).
			WithHintf("Addon item with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
