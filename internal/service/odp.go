package service

import (
	"context"
	"time"

	"github.com/fiberbill/fiberbill/internal/api/dto"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/types"
)

// ODPService manages optical distribution point records
type ODPService interface {
	CreateODP(ctx context.Context, req *dto.CreateODPRequest) (*dto.ODPResponse, error)
	GetODP(ctx context.Context, id string) (*dto.ODPResponse, error)
	ListODPs(ctx context.Context) (*dto.ListODPsResponse, error)
	UpdateODP(ctx context.Context, id string, req *dto.UpdateODPRequest) (*dto.ODPResponse, error)
	DeleteODP(ctx context.Context, id string) error
}

type odpService struct {
	ServiceParams
}

// NewODPService creates a new ODP service
func NewODPService(params ServiceParams) ODPService {
	return &odpService{ServiceParams: params}
}

func (s *odpService) CreateODP(ctx context.Context, req *dto.CreateODPRequest) (*dto.ODPResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	o := req.ToODP(ctx)
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := s.ODPRepo.Create(ctx, o); err != nil {
		return nil, err
	}

	s.Logger.Infow("odp registered", "odp_id", o.ID, "total_slots", o.TotalSlots)
	return dto.NewODPResponse(o), nil
}

func (s *odpService) GetODP(ctx context.Context, id string) (*dto.ODPResponse, error) {
	o, err := s.ODPRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewODPResponse(o), nil
}

func (s *odpService) ListODPs(ctx context.Context) (*dto.ListODPsResponse, error) {
	odps, err := s.ODPRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ODPResponse, len(odps))
	for i, o := range odps {
		items[i] = dto.NewODPResponse(o)
	}
	return &dto.ListODPsResponse{Items: items, Total: len(items)}, nil
}

func (s *odpService) UpdateODP(ctx context.Context, id string, req *dto.UpdateODPRequest) (*dto.ODPResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	o, err := s.ODPRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		o.Name = *req.Name
	}
	if req.Location != nil {
		o.Location = *req.Location
	}
	if req.TotalSlots != nil {
		if *req.TotalSlots < o.UsedSlots {
			return nil, ierr.NewError("total slots cannot drop below used slots").
				WithHintf("ODP %s has %d slots in use", o.Name, o.UsedSlots).
				Mark(ierr.ErrInvalidOperation)
		}
		o.TotalSlots = *req.TotalSlots
	}
	o.UpdatedAt = time.Now().UTC()
	o.UpdatedBy = types.GetUserID(ctx)

	if err := s.ODPRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	return dto.NewODPResponse(o), nil
}

func (s *odpService) DeleteODP(ctx context.Context, id string) error {
	o, err := s.ODPRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if o.UsedSlots > 0 {
		return ierr.NewError("odp still has occupied slots").
			WithHintf("ODP %s has %d subscribers attached; move them first", o.Name, o.UsedSlots).
			Mark(ierr.ErrInvalidOperation)
	}
	if err := s.ODPRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.Logger.Infow("odp deleted", "odp_id", id)
	return nil
}
