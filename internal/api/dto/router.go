package dto

import (
	"context"

	"github.com/fiberbill/fiberbill/internal/domain/router"
	"github.com/fiberbill/fiberbill/internal/types"
	"github.com/fiberbill/fiberbill/internal/validator"
)

// CreateRouterRequest registers a MikroTik device
type CreateRouterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Host     string `json:"host" validate:"required"`
	Port     int    `json:"port" validate:"required,min=1,max=65535"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	UseTLS   bool   `json:"use_tls"`
}

func (r *CreateRouterRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateRouterRequest) ToRouter(ctx context.Context) *router.Router {
	return &router.Router{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ROUTER),
		Name:      r.Name,
		Host:      r.Host,
		Port:      r.Port,
		Username:  r.Username,
		Password:  r.Password,
		UseTLS:    r.UseTLS,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
}

// UpdateRouterRequest carries partial updates to a router
type UpdateRouterRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Host     *string `json:"host,omitempty"`
	Port     *int    `json:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	UseTLS   *bool   `json:"use_tls,omitempty"`
}

func (r *UpdateRouterRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// RouterResponse represents a router in API responses
type RouterResponse struct {
	*router.Router
}

// ListRoutersResponse represents a list of routers
type ListRoutersResponse = types.ListResponse[*RouterResponse]
