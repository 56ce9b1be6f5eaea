package router

import (
	"fmt"

	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/types"
)

// Router is a network device hosting subscriber PPP accounts, controlled
// over the RouterOS REST API.
type Router struct {
	ID string `db:"id" json:"id"`

	// Name identifies the device to operators
	Name string `db:"name" json:"name"`

	// Host and Port locate the REST API endpoint
	Host string `db:"host" json:"host"`
	Port int    `db:"port" json:"port"`

	Username string `db:"username" json:"username"`
	Password string `db:"password" json:"-"`

	// UseTLS selects https for the REST endpoint
	UseTLS bool `db:"use_tls" json:"use_tls"`

	types.BaseModel
}

// BaseURL returns the REST API root for this device
func (r *Router) BaseURL() string {
	scheme := "http"
	if r.UseTLS {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d/rest", scheme, r.Host, r.Port)
}

// Validate checks invariants that hold for every persisted router
func (r *Router) Validate() error {
	if r.Name == "" {
		return ierr.NewError("router name is required").
			WithHint("Router name is required").
			Mark(ierr.ErrValidation)
	}
	if r.Host == "" {
		return ierr.NewError("router host is required").
			WithHint("Router host is required").
			Mark(ierr.ErrValidation)
	}
	if r.Port <= 0 || r.Port > 65535 {
		return ierr.NewError("invalid router port").
			WithHint("Port must be between 1 and 65535").
			Mark(ierr.ErrValidation)
	}
	return nil
}
