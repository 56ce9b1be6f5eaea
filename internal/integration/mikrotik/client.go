package mikrotik

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/fiberbill/fiberbill/internal/config"
	"github.com/fiberbill/fiberbill/internal/domain/router"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/httpclient"
	"github.com/fiberbill/fiberbill/internal/logger"
	"golang.org/x/time/rate"
)

// Client talks to MikroTik devices over the RouterOS v7 REST API.
// Calls are rate limited per device since RouterOS boards handle API bursts
// poorly, and every call carries the configured timeout.
type Client struct {
	httpClient httpclient.Client
	cfg        *config.Configuration
	logger     *logger.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewClient creates a new MikroTik gateway client
func NewClient(httpClient httpclient.Client, cfg *config.Configuration, logger *logger.Logger) Gateway {
	return &Client{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger,
		limiters:   make(map[string]*rate.Limiter),
	}
}

func (c *Client) limiter(routerID string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.limiters[routerID]; ok {
		return l
	}
	rps := c.cfg.MikroTik.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	l := rate.NewLimiter(rate.Limit(rps), 1)
	c.limiters[routerID] = l
	return l
}

// Disable turns off the subscriber's PPP account on the given router
func (c *Client) Disable(ctx context.Context, rtr *router.Router, accountName string) (*ControlResult, error) {
	return c.setDisabled(ctx, rtr, accountName, true)
}

// Enable turns the subscriber's PPP account back on
func (c *Client) Enable(ctx context.Context, rtr *router.Router, accountName string) (*ControlResult, error) {
	return c.setDisabled(ctx, rtr, accountName, false)
}

func (c *Client) setDisabled(ctx context.Context, rtr *router.Router, accountName string, disabled bool) (*ControlResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.MikroTik.APITimeout)
	defer cancel()

	secret, err := c.findSecret(ctx, rtr, accountName)
	if err != nil {
		return nil, err
	}
	if secret == nil {
		return &ControlResult{
			Success: false,
			Message: fmt.Sprintf("ppp secret %q not found on router %s", accountName, rtr.Name),
		}, nil
	}

	patch, _ := json.Marshal(pppSecretPatch{Disabled: boolString(disabled)})
	_, err = c.send(ctx, rtr, &httpclient.Request{
		Method: http.MethodPatch,
		URL:    fmt.Sprintf("%s/ppp/secret/%s", rtr.BaseURL(), url.PathEscape(secret.ID)),
		Body:   patch,
	})
	if err != nil {
		return nil, c.gatewayErr(err, rtr, accountName)
	}

	action := "enabled"
	if disabled {
		action = "disabled"
	}
	c.logger.Infow("ppp secret updated",
		"router", rtr.Name,
		"account", accountName,
		"action", action,
	)

	return &ControlResult{
		Success: true,
		Message: fmt.Sprintf("ppp secret %q %s on router %s", accountName, action, rtr.Name),
	}, nil
}

// CheckStatus probes the PPP account without changing it
func (c *Client) CheckStatus(ctx context.Context, rtr *router.Router, accountName string) (*StatusResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.MikroTik.APITimeout)
	defer cancel()

	secret, err := c.findSecret(ctx, rtr, accountName)
	if err != nil {
		return nil, err
	}
	if secret == nil {
		return &StatusResult{Success: true, Found: false}, nil
	}

	return &StatusResult{
		Success:  true,
		Found:    true,
		Disabled: secret.isDisabled(),
		Profile:  secret.Profile,
		Service:  secret.Service,
	}, nil
}

// findSecret looks the PPP secret up by name; nil means not present
func (c *Client) findSecret(ctx context.Context, rtr *router.Router, accountName string) (*pppSecret, error) {
	resp, err := c.send(ctx, rtr, &httpclient.Request{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/ppp/secret?name=%s", rtr.BaseURL(), url.QueryEscape(accountName)),
	})
	if err != nil {
		return nil, c.gatewayErr(err, rtr, accountName)
	}

	var secrets []pppSecret
	if err := json.Unmarshal(resp.Body, &secrets); err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Router %s returned an unreadable response", rtr.Name).
			Mark(ierr.ErrGatewayFailure)
	}
	if len(secrets) == 0 {
		return nil, nil
	}
	return &secrets[0], nil
}

func (c *Client) send(ctx context.Context, rtr *router.Router, req *httpclient.Request) (*httpclient.Response, error) {
	if err := c.limiter(rtr.ID).Wait(ctx); err != nil {
		return nil, err
	}
	if req.Headers == nil {
		req.Headers = make(map[string]string)
	}
	req.Headers["Authorization"] = basicAuth(rtr.Username, rtr.Password)
	return c.httpClient.Send(ctx, req)
}

func (c *Client) gatewayErr(err error, rtr *router.Router, accountName string) error {
	c.logger.Errorw("router gateway call failed",
		"router", rtr.Name,
		"account", accountName,
		"error", err,
	)
	return ierr.WithError(err).
		WithHintf("Router %s is unreachable or rejected the request", rtr.Name).
		WithReportableDetails(map[string]any{
			"router":  rtr.Name,
			"account": accountName,
		}).
		Mark(ierr.ErrGatewayFailure)
}

func basicAuth(username, password string) string {
	credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return "Basic " + credentials
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
