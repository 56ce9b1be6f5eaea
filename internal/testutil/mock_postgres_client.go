package testutil

import (
	"context"

	"github.com/fiberbill/fiberbill/internal/postgres"
)

// MockPostgresClient satisfies postgres.IClient for service tests backed by
// in-memory stores. Transactions run the callback directly since the stores
// have no transactional semantics.
type MockPostgresClient struct{}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient() postgres.IClient {
	return &MockPostgresClient{}
}

func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
