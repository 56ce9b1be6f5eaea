package postgres

import "context"

// IClient is the narrow transactional surface services depend on. Repositories
// take the full *DB; services only ever need to draw transaction boundaries.
type IClient interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

var _ IClient = (*DB)(nil)
