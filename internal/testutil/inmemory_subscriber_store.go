package testutil

import (
	"context"
	"strings"

	"github.com/fiberbill/fiberbill/internal/domain/subscriber"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/types"
)

// InMemorySubscriberStore implements subscriber.Repository
type InMemorySubscriberStore struct {
	*InMemoryStore[*subscriber.Subscriber]
}

func NewInMemorySubscriberStore() *InMemorySubscriberStore {
	return &InMemorySubscriberStore{
		InMemoryStore: NewInMemoryStore[*subscriber.Subscriber](),
	}
}

// copySubscriber returns a deep copy so stored state cannot be mutated
// through leaked pointers
func copySubscriber(sub *subscriber.Subscriber) *subscriber.Subscriber {
	if sub == nil {
		return nil
	}

	copied := *sub

	copied.ActiveDate = copyTimePtr(sub.ActiveDate)
	copied.ExpireDate = copyTimePtr(sub.ExpireDate)
	copied.PaymentDueDate = copyTimePtr(sub.PaymentDueDate)
	copied.LastBillingDate = copyTimePtr(sub.LastBillingDate)
	copied.NextBillingDate = copyTimePtr(sub.NextBillingDate)
	copied.LastSuspendDate = copyTimePtr(sub.LastSuspendDate)
	copied.RouterAccountName = copyStringPtr(sub.RouterAccountName)
	copied.RouterID = copyStringPtr(sub.RouterID)
	copied.ODPID = copyStringPtr(sub.ODPID)

	if sub.ProrationAmount != nil {
		amount := *sub.ProrationAmount
		copied.ProrationAmount = &amount
	}

	return &copied
}

func (s *InMemorySubscriberStore) Create(ctx context.Context, sub *subscriber.Subscriber) error {
	if sub == nil {
		return ierr.NewError("subscriber cannot be nil").
			WithHint("Subscriber data is required").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Create(ctx, sub.ID, copySubscriber(sub)); err != nil {
		return ierr.WithError(err).
			WithHintf("Subscriber with ID %s already exists", sub.ID).
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemorySubscriberStore) Get(ctx context.Context, id string) (*subscriber.Subscriber, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Subscriber with ID %s was not found", id).
			WithReportableDetails(map[string]any{"subscriber_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return copySubscriber(sub), nil
}

func subscriberFilterFn(ctx context.Context, sub *subscriber.Subscriber, filter interface{}) bool {
	if sub == nil {
		return false
	}
	f, ok := filter.(*types.SubscriberFilter)
	if !ok {
		return true
	}

	if sub.Status == types.StatusDeleted {
		return false
	}

	if len(f.SubscriberIDs) > 0 {
		found := false
		for _, id := range f.SubscriberIDs {
			if sub.ID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.Status != nil && sub.Status != *f.Status {
		return false
	}
	if f.BillingStatus != nil && sub.BillingStatus != *f.BillingStatus {
		return false
	}
	if f.ServiceStatus != nil && sub.ServiceStatus != *f.ServiceStatus {
		return false
	}
	if f.RouterAccountStatus != nil && sub.RouterAccountStatus != *f.RouterAccountStatus {
		return false
	}
	if f.NotRouterAccountStatus != nil && sub.RouterAccountStatus == *f.NotRouterAccountStatus {
		return false
	}
	if f.NamePattern != "" && !strings.Contains(strings.ToLower(sub.Name), strings.ToLower(f.NamePattern)) {
		return false
	}
	if f.ODPID != nil && (sub.ODPID == nil || *sub.ODPID != *f.ODPID) {
		return false
	}
	if f.RouterID != nil && (sub.RouterID == nil || *sub.RouterID != *f.RouterID) {
		return false
	}

	return true
}

func subscriberSortFn(i, j *subscriber.Subscriber) bool {
	if i != nil && j != nil {
		return i.CreatedAt.After(j.CreatedAt)
	}
	return true
}

func (s *InMemorySubscriberStore) List(ctx context.Context, filter *types.SubscriberFilter) ([]*subscriber.Subscriber, error) {
	items, err := s.InMemoryStore.List(ctx, filter, subscriberFilterFn, subscriberSortFn)
	if err != nil {
		return nil, err
	}
	result := make([]*subscriber.Subscriber, len(items))
	for i, item := range items {
		result[i] = copySubscriber(item)
	}
	return result, nil
}

func (s *InMemorySubscriberStore) ListAll(ctx context.Context, filter *types.SubscriberFilter) ([]*subscriber.Subscriber, error) {
	if filter == nil {
		filter = types.NewNoLimitSubscriberFilter()
	}
	unlimited := *filter
	unlimited.QueryFilter = types.NewNoLimitQueryFilter()
	return s.List(ctx, &unlimited)
}

func (s *InMemorySubscriberStore) Count(ctx context.Context, filter *types.SubscriberFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, subscriberFilterFn)
}

func (s *InMemorySubscriberStore) Update(ctx context.Context, sub *subscriber.Subscriber) error {
	if sub == nil {
		return ierr.NewError("subscriber cannot be nil").
			WithHint("Subscriber data is required").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Update(ctx, sub.ID, copySubscriber(sub)); err != nil {
		return ierr.WithError(err).
			WithHintf("Subscriber with ID %s was not found", sub.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemorySubscriberStore) Delete(ctx context.Context, id string) error {
	if err := s.InMemoryStore.Delete(ctx, id); err != nil {
		return ierr.WithError(err).
			WithHintf("Subscriber with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
