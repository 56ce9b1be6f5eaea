package odp

import "context"

// Repository defines the interface for ODP data access.
// Slot counts are only ever written through the slot ledger service, which
// wraps the ODP update and the subscriber update in one transaction.
type Repository interface {
	Create(ctx context.Context, o *ODP) error
	Get(ctx context.Context, id string) (*ODP, error)
	List(ctx context.Context) ([]*ODP, error)
	Update(ctx context.Context, o *ODP) error
	Delete(ctx context.Context, id string) error
}
