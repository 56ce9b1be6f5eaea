package addonitem

import (
	"context"

	"github.com/fiberbill/fiberbill/internal/types"
)

// Repository defines the interface for addon item data access
type Repository interface {
	Create(ctx context.Context, item *AddonItem) error
	Get(ctx context.Context, id string) (*AddonItem, error)
	List(ctx context.Context, filter *types.AddonItemFilter) ([]*AddonItem, error)
	Update(ctx context.Context, item *AddonItem) error
	Delete(ctx context.Context, id string) error
}
