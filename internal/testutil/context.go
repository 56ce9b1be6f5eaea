package testutil

import (
	"context"

	"github.com/fiberbill/fiberbill/internal/types"
)

// SetupContext creates a context with the default user for tests
func SetupContext() context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, types.CtxUserID, types.DefaultUserID)
	return ctx
}
