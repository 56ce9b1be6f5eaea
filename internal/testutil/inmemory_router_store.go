package testutil

import (
	"context"

	"github.com/fiberbill/fiberbill/internal/domain/router"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/types"
)

// InMemoryRouterStore implements router.Repository
type InMemoryRouterStore struct {
	*InMemoryStore[*router.Router]
}

func NewInMemoryRouterStore() *InMemoryRouterStore {
	return &InMemoryRouterStore{
		InMemoryStore: NewInMemoryStore[*router.Router](),
	}
}

func copyRouter(r *router.Router) *router.Router {
	if r == nil {
		return nil
	}
	copied := *r
	return &copied
}

func (s *InMemoryRouterStore) Create(ctx context.Context, r *router.Router) error {
	if r == nil {
		return ierr.NewError("router cannot be nil").
			WithHint("Router data is required").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Create(ctx, r.ID, copyRouter(r)); err != nil {
		return ierr.WithError(err).
			WithHintf("Router with ID %s already exists", r.ID).
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryRouterStore) Get(ctx context.Context, id string) (*router.Router, error) {
	r, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Router with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyRouter(r), nil
}

func (s *InMemoryRouterStore) List(ctx context.Context) ([]*router.Router, error) {
	filterFn := func(ctx context.Context, r *router.Router, _ interface{}) bool {
		return r != nil && r.Status != types.StatusDeleted
	}
	sortFn := func(i, j *router.Router) bool {
		return i.Name < j.Name
	}
	items, err := s.InMemoryStore.List(ctx, nil, filterFn, sortFn)
	if err != nil {
		return nil, err
	}
	result := make([]*router.Router, len(items))
	for i, item := range items {
		result[i] = copyRouter(item)
	}
	return result, nil
}

func (s *InMemoryRouterStore) Update(ctx context.Context, r *router.Router) error {
	if r == nil {
		return ierr.NewError("router cannot be nil").
			WithHint("Router data is required").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Update(ctx, r.ID, copyRouter(r)); err != nil {
		return ierr.WithError(err).
			WithHintf("Router with ID %s was not found", r.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryRouterStore) Delete(ctx context.Context, id string) error {
	if err := s.InMemoryStore.Delete(ctx, id); err != nil {
		return ierr.WithError(err).
			WithHintf("Router with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
