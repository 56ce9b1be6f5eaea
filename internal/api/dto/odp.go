package dto

import (
	"context"

	"github.com/fiberbill/fiberbill/internal/domain/odp"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/types"
	"github.com/fiberbill/fiberbill/internal/validator"
)

// CreateODPRequest registers an optical distribution point
type CreateODPRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	Location   string `json:"location" validate:"omitempty,max=512"`
	TotalSlots int    `json:"total_slots" validate:"required,min=1"`
}

func (r *CreateODPRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateODPRequest) ToODP(ctx context.Context) *odp.ODP {
	return &odp.ODP{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ODP),
		Name:       r.Name,
		Location:   r.Location,
		TotalSlots: r.TotalSlots,
		UsedSlots:  0,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
}

// UpdateODPRequest carries partial updates to an ODP
type UpdateODPRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Location   *string `json:"location,omitempty" validate:"omitempty,max=512"`
	TotalSlots *int    `json:"total_slots,omitempty" validate:"omitempty,min=1"`
}

func (r *UpdateODPRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.TotalSlots != nil && *r.TotalSlots < 1 {
		return ierr.NewError("total slots must be positive").
			WithHint("An ODP needs at least one slot").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SlotAssignmentRequest moves a subscriber onto an ODP slot
type SlotAssignmentRequest struct {
	SubscriberID string `json:"subscriber_id" validate:"required"`
	ODPID        string `json:"odp_id" validate:"required"`
}

func (r *SlotAssignmentRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ODPResponse represents an ODP in API responses
type ODPResponse struct {
	*odp.ODP
	AvailableSlots int `json:"available_slots"`
}

// NewODPResponse builds the response with the derived availability count
func NewODPResponse(o *odp.ODP) *ODPResponse {
	return &ODPResponse{ODP: o, AvailableSlots: o.AvailableSlots()}
}

// ListODPsResponse represents a list of ODPs
type ListODPsResponse = types.ListResponse[*ODPResponse]
