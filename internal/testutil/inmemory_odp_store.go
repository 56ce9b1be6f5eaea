package testutil

import (
	"context"

	"github.com/fiberbill/fiberbill/internal/domain/odp"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/types"
)

// InMemoryODPStore implements odp.Repository
type InMemoryODPStore struct {
	*InMemoryStore[*odp.ODP]
}

func NewInMemoryODPStore() *InMemoryODPStore {
	return &InMemoryODPStore{
		InMemoryStore: NewInMemoryStore[*odp.ODP](),
	}
}

func copyODP(o *odp.ODP) *odp.ODP {
	if o == nil {
		return nil
	}
	copied := *o
	return &copied
}

func (s *InMemoryODPStore) Create(ctx context.Context, o *odp.ODP) error {
	if o == nil {
		return ierr.NewError("odp cannot be nil").
			WithHint("ODP data is required").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Create(ctx, o.ID, copyODP(o)); err != nil {
		return ierr.WithError(err).
			WithHintf("ODP with ID %s already exists", o.ID).
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryODPStore) Get(ctx context.Context, id string) (*odp.ODP, error) {
	o, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("ODP with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyODP(o), nil
}

func (s *InMemoryODPStore) List(ctx context.Context) ([]*odp.ODP, error) {
	filterFn := func(ctx context.Context, o *odp.ODP, _ interface{}) bool {
		return o != nil && o.Status != types.StatusDeleted
	}
	sortFn := func(i, j *odp.ODP) bool {
		return i.Name < j.Name
	}
	items, err := s.InMemoryStore.List(ctx, nil, filterFn, sortFn)
	if err != nil {
		return nil, err
	}
	result := make([]*odp.ODP, len(items))
	for i, item := range items {
		result[i] = copyODP(item)
	}
	return result, nil
}

func (s *InMemoryODPStore) Update(ctx context.Context, o *odp.ODP) error {
	if o == nil {
		return ierr.NewError("odp cannot be nil").
			WithHint("ODP data is required").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Update(ctx, o.ID, copyODP(o)); err != nil {
		return ierr.WithError(err).
			WithHintf("ODP with ID %s was not found", o.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryODPStore) Delete(ctx context.Context, id string) error {
	if err := s.InMemoryStore.Delete(ctx, id); err != nil {
		return ierr.WithError(err).
			WithHintf("ODP with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
