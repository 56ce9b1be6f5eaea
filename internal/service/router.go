package service

import (
	"context"
	"time"

	"github.com/fiberbill/fiberbill/internal/api/dto"
	"github.com/fiberbill/fiberbill/internal/types"
)

// RouterService manages MikroTik device records
type RouterService interface {
	CreateRouter(ctx context.Context, req *dto.CreateRouterRequest) (*dto.RouterResponse, error)
	GetRouter(ctx context.Context, id string) (*dto.RouterResponse, error)
	ListRouters(ctx context.Context) (*dto.ListRoutersResponse, error)
	UpdateRouter(ctx context.Context, id string, req *dto.UpdateRouterRequest) (*dto.RouterResponse, error)
	DeleteRouter(ctx context.Context, id string) error
}

type routerService struct {
	ServiceParams
}

// NewRouterService creates a new router service
func NewRouterService(params ServiceParams) RouterService {
	return &routerService{ServiceParams: params}
}

func (s *routerService) CreateRouter(ctx context.Context, req *dto.CreateRouterRequest) (*dto.RouterResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rtr := req.ToRouter(ctx)
	if err := rtr.Validate(); err != nil {
		return nil, err
	}
	if err := s.RouterRepo.Create(ctx, rtr); err != nil {
		return nil, err
	}

	s.Logger.Infow("router registered", "router_id", rtr.ID, "host", rtr.Host)
	return &dto.RouterResponse{Router: rtr}, nil
}

func (s *routerService) GetRouter(ctx context.Context, id string) (*dto.RouterResponse, error) {
	rtr, err := s.RouterRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.RouterResponse{Router: rtr}, nil
}

func (s *routerService) ListRouters(ctx context.Context) (*dto.ListRoutersResponse, error) {
	routers, err := s.RouterRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.RouterResponse, len(routers))
	for i, rtr := range routers {
		items[i] = &dto.RouterResponse{Router: rtr}
	}
	return &dto.ListRoutersResponse{Items: items, Total: len(items)}, nil
}

func (s *routerService) UpdateRouter(ctx context.Context, id string, req *dto.UpdateRouterRequest) (*dto.RouterResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rtr, err := s.RouterRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		rtr.Name = *req.Name
	}
	if req.Host != nil {
		rtr.Host = *req.Host
	}
	if req.Port != nil {
		rtr.Port = *req.Port
	}
	if req.Username != nil {
		rtr.Username = *req.Username
	}
	if req.Password != nil {
		rtr.Password = *req.Password
	}
	if req.UseTLS != nil {
		rtr.UseTLS = *req.UseTLS
	}
	rtr.UpdatedAt = time.Now().UTC()
	rtr.UpdatedBy = types.GetUserID(ctx)

	if err := s.RouterRepo.Update(ctx, rtr); err != nil {
		return nil, err
	}

	// drop the cached copy so gateway calls pick up new credentials
	if s.Cache != nil {
		s.Cache.Delete(ctx, cacheKeyRouter(rtr.ID))
	}
	return &dto.RouterResponse{Router: rtr}, nil
}

func (s *routerService) DeleteRouter(ctx context.Context, id string) error {
	if err := s.RouterRepo.Delete(ctx, id); err != nil {
		return err
	}
	if s.Cache != nil {
		s.Cache.Delete(ctx, cacheKeyRouter(id))
	}
	s.Logger.Infow("router deleted", "router_id", id)
	return nil
}
