package testutil

import (
	"context"

	"github.com/fiberbill/fiberbill/internal/domain/invoice"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/types"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}

	copied := *inv
	copied.PeriodFrom = copyTimePtr(inv.PeriodFrom)
	copied.PeriodTo = copyTimePtr(inv.PeriodTo)
	copied.DueDate = copyTimePtr(inv.DueDate)
	copied.PaidAt = copyTimePtr(inv.PaidAt)

	copied.Breakdown.Addons = append([]invoice.BreakdownItem{}, inv.Breakdown.Addons...)
	copied.Breakdown.OneTimeItems = append([]invoice.BreakdownItem{}, inv.Breakdown.OneTimeItems...)

	return &copied
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").
			WithHint("Invoice data is required").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Create(ctx, inv.ID, copyInvoice(inv)); err != nil {
		return ierr.WithError(err).
			WithHintf("Invoice with ID %s already exists", inv.ID).
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Invoice with ID %s was not found", id).
			WithReportableDetails(map[string]any{"invoice_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").
			WithHint("Invoice data is required").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Update(ctx, inv.ID, copyInvoice(inv)); err != nil {
		return ierr.WithError(err).
			WithHintf("Invoice with ID %s was not found", inv.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func invoiceFilterFn(ctx context.Context, inv *invoice.Invoice, filter interface{}) bool {
	if inv == nil {
		return false
	}
	f, ok := filter.(*types.InvoiceFilter)
	if !ok {
		return true
	}

	if inv.Status == types.InvoiceStatusCancelled && f.InvoiceStatus == nil {
		return false
	}

	if len(f.InvoiceIDs) > 0 {
		found := false
		for _, id := range f.InvoiceIDs {
			if inv.ID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.SubscriberID != "" && inv.SubscriberID != f.SubscriberID {
		return false
	}
	if f.Kind != nil && inv.Kind != *f.Kind {
		return false
	}
	if f.InvoiceStatus != nil && inv.Status != *f.InvoiceStatus {
		return false
	}
	if f.StartTime != nil && inv.CreatedAt.Before(*f.StartTime) {
		return false
	}
	if f.EndTime != nil && inv.CreatedAt.After(*f.EndTime) {
		return false
	}

	return true
}

func invoiceSortFn(i, j *invoice.Invoice) bool {
	if i != nil && j != nil {
		return i.CreatedAt.After(j.CreatedAt)
	}
	return true
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	items, err := s.InMemoryStore.List(ctx, filter, invoiceFilterFn, invoiceSortFn)
	if err != nil {
		return nil, err
	}
	result := make([]*invoice.Invoice, len(items))
	for i, item := range items {
		result[i] = copyInvoice(item)
	}
	return result, nil
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, invoiceFilterFn)
}
