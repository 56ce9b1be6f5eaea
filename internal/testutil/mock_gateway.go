package testutil

import (
	"context"
	"sync"

	"github.com/fiberbill/fiberbill/internal/domain/router"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/integration/mikrotik"
)

// GatewayCall records one remote call made against the mock gateway
type GatewayCall struct {
	Action      string
	RouterID    string
	AccountName string
}

// MockGateway implements mikrotik.Gateway with scriptable outcomes.
// Accounts present in the secrets map exist on the router; their value is
// the current disabled flag.
type MockGateway struct {
	mu      sync.Mutex
	secrets map[string]bool
	calls   []GatewayCall

	failAccounts map[string]bool
	failAll      bool
}

// NewMockGateway creates a new mock router gateway
func NewMockGateway() *MockGateway {
	return &MockGateway{
		secrets:      make(map[string]bool),
		failAccounts: make(map[string]bool),
	}
}

// AddSecret registers a PPP account on the mock router
func (g *MockGateway) AddSecret(accountName string, disabled bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.secrets[accountName] = disabled
}

// FailFor makes calls for the given account return a gateway error
func (g *MockGateway) FailFor(accountName string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failAccounts[accountName] = true
}

// FailAll makes every call return a gateway error
func (g *MockGateway) FailAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failAll = true
}

// Calls returns every call seen so far
func (g *MockGateway) Calls() []GatewayCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]GatewayCall{}, g.calls...)
}

// IsDisabled reports the current disabled flag for an account
func (g *MockGateway) IsDisabled(accountName string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.secrets[accountName]
}

func (g *MockGateway) record(action string, rtr *router.Router, accountName string) error {
	g.calls = append(g.calls, GatewayCall{Action: action, RouterID: rtr.ID, AccountName: accountName})
	if g.failAll || g.failAccounts[accountName] {
		return ierr.NewError("router unreachable").
			WithHint("Router is unreachable or rejected the request").
			Mark(ierr.ErrGatewayFailure)
	}
	return nil
}

func (g *MockGateway) Disable(ctx context.Context, rtr *router.Router, accountName string) (*mikrotik.ControlResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.record("disable", rtr, accountName); err != nil {
		return nil, err
	}
	if _, ok := g.secrets[accountName]; !ok {
		return &mikrotik.ControlResult{Success: false, Message: "ppp secret not found"}, nil
	}
	g.secrets[accountName] = true
	return &mikrotik.ControlResult{Success: true}, nil
}

func (g *MockGateway) Enable(ctx context.Context, rtr *router.Router, accountName string) (*mikrotik.ControlResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.record("enable", rtr, accountName); err != nil {
		return nil, err
	}
	if _, ok := g.secrets[accountName]; !ok {
		return &mikrotik.ControlResult{Success: false, Message: "ppp secret not found"}, nil
	}
	g.secrets[accountName] = false
	return &mikrotik.ControlResult{Success: true}, nil
}

func (g *MockGateway) CheckStatus(ctx context.Context, rtr *router.Router, accountName string) (*mikrotik.StatusResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.record("status", rtr, accountName); err != nil {
		return nil, err
	}
	disabled, ok := g.secrets[accountName]
	if !ok {
		return &mikrotik.StatusResult{Success: true, Found: false}, nil
	}
	return &mikrotik.StatusResult{Success: true, Found: true, Disabled: disabled}, nil
}
