package subscriber

import (
	"context"

	"github.com/fiberbill/fiberbill/internal/types"
)

// Repository defines the interface for subscriber data access
type Repository interface {
	Create(ctx context.Context, sub *Subscriber) error
	Get(ctx context.Context, id string) (*Subscriber, error)
	List(ctx context.Context, filter *types.SubscriberFilter) ([]*Subscriber, error)
	ListAll(ctx context.Context, filter *types.SubscriberFilter) ([]*Subscriber, error)
	Count(ctx context.Context, filter *types.SubscriberFilter) (int, error)
	Update(ctx context.Context, sub *Subscriber) error
	Delete(ctx context.Context, id string) error
}
