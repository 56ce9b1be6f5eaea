package router

import "context"

// Repository defines the interface for router data access
type Repository interface {
	Create(ctx context.Context, r *Router) error
	Get(ctx context.Context, id string) (*Router, error)
	List(ctx context.Context) ([]*Router, error)
	Update(ctx context.Context, r *Router) error
	Delete(ctx context.Context, id string) error
}
