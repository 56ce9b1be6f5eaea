package service

import (
	"context"
	"time"

	"github.com/fiberbill/fiberbill/internal/api/dto"
	"github.com/fiberbill/fiberbill/internal/types"
)

// SubscriberService manages subscriber master data
type SubscriberService interface {
	CreateSubscriber(ctx context.Context, req *dto.CreateSubscriberRequest) (*dto.SubscriberResponse, error)
	GetSubscriber(ctx context.Context, id string) (*dto.SubscriberResponse, error)
	ListSubscribers(ctx context.Context, filter *types.SubscriberFilter) (*dto.ListSubscribersResponse, error)
	UpdateSubscriber(ctx context.Context, id string, req *dto.UpdateSubscriberRequest) (*dto.SubscriberResponse, error)
	DeleteSubscriber(ctx context.Context, id string) error
}

type subscriberService struct {
	ServiceParams
	slotLedger SlotLedgerService
}

// NewSubscriberService creates a new subscriber service
func NewSubscriberService(params ServiceParams, slotLedger SlotLedgerService) SubscriberService {
	return &subscriberService{ServiceParams: params, slotLedger: slotLedger}
}

func (s *subscriberService) CreateSubscriber(ctx context.Context, req *dto.CreateSubscriberRequest) (*dto.SubscriberResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub := req.ToSubscriber(ctx)
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.SubscriberRepo.Create(ctx, sub); err != nil {
			return err
		}
		if req.ODPID != nil && *req.ODPID != "" {
			_, err := s.slotLedger.Assign(ctx, &dto.SlotAssignmentRequest{
				SubscriberID: sub.ID,
				ODPID:        *req.ODPID,
			})
			if err != nil {
				return err
			}
			sub.ODPID = req.ODPID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("subscriber created",
		"subscriber_id", sub.ID,
		"number", sub.Number,
	)
	return &dto.SubscriberResponse{Subscriber: sub}, nil
}

func (s *subscriberService) GetSubscriber(ctx context.Context, id string) (*dto.SubscriberResponse, error) {
	sub, err := s.SubscriberRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriberResponse{Subscriber: sub}, nil
}

func (s *subscriberService) ListSubscribers(ctx context.Context, filter *types.SubscriberFilter) (*dto.ListSubscribersResponse, error) {
	if filter == nil {
		filter = types.NewSubscriberFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	subs, err := s.SubscriberRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.SubscriberRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.SubscriberResponse, len(subs))
	for i, sub := range subs {
		items[i] = &dto.SubscriberResponse{Subscriber: sub}
	}
	return &dto.ListSubscribersResponse{Items: items, Total: count}, nil
}

func (s *subscriberService) UpdateSubscriber(ctx context.Context, id string, req *dto.UpdateSubscriberRequest) (*dto.SubscriberResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.SubscriberRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		sub.Name = *req.Name
	}
	if req.Phone != nil {
		sub.Phone = *req.Phone
	}
	if req.Address != nil {
		sub.Address = *req.Address
	}
	if req.PackagePrice != nil {
		sub.PackagePrice = *req.PackagePrice
	}
	if req.Discount != nil {
		sub.Discount = *req.Discount
	}
	if req.RouterAccountName != nil {
		sub.RouterAccountName = req.RouterAccountName
	}
	if req.RouterID != nil {
		sub.RouterID = req.RouterID
	}
	sub.UpdatedAt = time.Now().UTC()
	sub.UpdatedBy = types.GetUserID(ctx)

	if err := s.SubscriberRepo.Update(ctx, sub); err != nil {
		return nil, err
	}
	return &dto.SubscriberResponse{Subscriber: sub}, nil
}

// DeleteSubscriber archives the subscriber and frees their ODP slot
func (s *subscriberService) DeleteSubscriber(ctx context.Context, id string) error {
	sub, err := s.SubscriberRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if sub.ODPID != nil && *sub.ODPID != "" {
			if err := s.slotLedger.Release(ctx, sub.ID); err != nil {
				return err
			}
		}
		return s.SubscriberRepo.Delete(ctx, sub.ID)
	})
	if err != nil {
		return err
	}

	s.Logger.Infow("subscriber deleted", "subscriber_id", id)
	return nil
}
