package mikrotik

import (
	"context"

	"github.com/fiberbill/fiberbill/internal/domain/router"
)

// ControlResult is the outcome of an enable/disable call against a router.
// Success is only true when the device confirmed the change; callers must
// never update local subscriber state on anything else.
type ControlResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// StatusResult is the outcome of a PPP account probe
type StatusResult struct {
	Success  bool   `json:"success"`
	Found    bool   `json:"found"`
	Disabled bool   `json:"disabled"`
	Profile  string `json:"profile,omitempty"`
	Service  string `json:"service,omitempty"`
}

// Gateway is the router control surface consumed by the billing services.
// Every call is bounded by the configured API timeout; a timeout is reported
// the same way as an explicit device error.
type Gateway interface {
	// Disable turns off the subscriber's PPP account on the given router
	Disable(ctx context.Context, rtr *router.Router, accountName string) (*ControlResult, error)

	// Enable turns the subscriber's PPP account back on
	Enable(ctx context.Context, rtr *router.Router, accountName string) (*ControlResult, error)

	// CheckStatus probes the PPP account without changing it
	CheckStatus(ctx context.Context, rtr *router.Router, accountName string) (*StatusResult, error)
}
