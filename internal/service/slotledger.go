package service

import (
	"context"
	"time"

	"github.com/fiberbill/fiberbill/internal/api/dto"
	"github.com/fiberbill/fiberbill/internal/domain/odp"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/types"
)

// SlotLedgerService accounts for physical ODP slots. Every slot movement
// updates the ODP counter and the subscriber's assignment in one transaction
// so the counter can never drift from the assignments.
type SlotLedgerService interface {
	// Assign places a subscriber on a free slot of the given ODP
	Assign(ctx context.Context, req *dto.SlotAssignmentRequest) (*dto.ODPResponse, error)

	// Reassign atomically moves a subscriber from their current ODP to a new
	// one; on any failure both ODPs keep their original counts
	Reassign(ctx context.Context, req *dto.SlotAssignmentRequest) (*dto.ODPResponse, error)

	// Release frees the subscriber's slot, e.g. on churn
	Release(ctx context.Context, subscriberID string) error
}

type slotLedgerService struct {
	ServiceParams
}

// NewSlotLedgerService creates a new slot ledger service
func NewSlotLedgerService(params ServiceParams) SlotLedgerService {
	return &slotLedgerService{ServiceParams: params}
}

func (s *slotLedgerService) Assign(ctx context.Context, req *dto.SlotAssignmentRequest) (*dto.ODPResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp *dto.ODPResponse
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		sub, err := s.SubscriberRepo.Get(ctx, req.SubscriberID)
		if err != nil {
			return err
		}
		if sub.ODPID != nil && *sub.ODPID != "" {
			return ierr.NewError("subscriber already occupies a slot").
				WithHintf("Subscriber %s is already assigned to ODP %s; use reassign", sub.ID, *sub.ODPID).
				Mark(ierr.ErrInvalidOperation)
		}

		target, err := s.occupySlot(ctx, req.ODPID)
		if err != nil {
			return err
		}

		sub.ODPID = &target.ID
		sub.UpdatedAt = time.Now().UTC()
		sub.UpdatedBy = types.GetUserID(ctx)
		if err := s.SubscriberRepo.Update(ctx, sub); err != nil {
			return err
		}

		resp = dto.NewODPResponse(target)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("odp slot assigned",
		"subscriber_id", req.SubscriberID,
		"odp_id", req.ODPID,
	)
	return resp, nil
}

func (s *slotLedgerService) Reassign(ctx context.Context, req *dto.SlotAssignmentRequest) (*dto.ODPResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp *dto.ODPResponse
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		sub, err := s.SubscriberRepo.Get(ctx, req.SubscriberID)
		if err != nil {
			return err
		}
		if sub.ODPID == nil || *sub.ODPID == "" {
			return ierr.NewError("subscriber has no slot to move").
				WithHintf("Subscriber %s is not assigned to any ODP; use assign", sub.ID).
				Mark(ierr.ErrInvalidOperation)
		}
		if *sub.ODPID == req.ODPID {
			return ierr.NewError("subscriber is already on this ODP").
				WithHintf("Subscriber %s already occupies a slot on ODP %s", sub.ID, req.ODPID).
				Mark(ierr.ErrInvalidOperation)
		}

		// occupy the new slot before freeing the old one so a full target
		// aborts the move with both counters unchanged
		target, err := s.occupySlot(ctx, req.ODPID)
		if err != nil {
			return err
		}
		if err := s.freeSlot(ctx, *sub.ODPID); err != nil {
			return err
		}

		sub.ODPID = &target.ID
		sub.UpdatedAt = time.Now().UTC()
		sub.UpdatedBy = types.GetUserID(ctx)
		if err := s.SubscriberRepo.Update(ctx, sub); err != nil {
			return err
		}

		resp = dto.NewODPResponse(target)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("odp slot reassigned",
		"subscriber_id", req.SubscriberID,
		"odp_id", req.ODPID,
	)
	return resp, nil
}

func (s *slotLedgerService) Release(ctx context.Context, subscriberID string) error {
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		sub, err := s.SubscriberRepo.Get(ctx, subscriberID)
		if err != nil {
			return err
		}
		if sub.ODPID == nil || *sub.ODPID == "" {
			return nil
		}

		if err := s.freeSlot(ctx, *sub.ODPID); err != nil {
			return err
		}

		sub.ODPID = nil
		sub.UpdatedAt = time.Now().UTC()
		sub.UpdatedBy = types.GetUserID(ctx)
		return s.SubscriberRepo.Update(ctx, sub)
	})
	if err != nil {
		return err
	}

	s.Logger.Infow("odp slot released", "subscriber_id", subscriberID)
	return nil
}

// occupySlot increments the used counter of the ODP, rejecting a full one
func (s *slotLedgerService) occupySlot(ctx context.Context, odpID string) (*odp.ODP, error) {
	o, err := s.ODPRepo.Get(ctx, odpID)
	if err != nil {
		return nil, err
	}
	if !o.HasCapacity() {
		return nil, ierr.NewError("odp has no free slots").
			WithHintf("ODP %s is full (%d of %d slots used)", o.Name, o.UsedSlots, o.TotalSlots).
			WithReportableDetails(map[string]any{
				"odp_id":      o.ID,
				"total_slots": o.TotalSlots,
				"used_slots":  o.UsedSlots,
			}).
			Mark(ierr.ErrCapacityExceeded)
	}

	o.UsedSlots++
	o.UpdatedAt = time.Now().UTC()
	o.UpdatedBy = types.GetUserID(ctx)
	if err := s.ODPRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// freeSlot decrements the used counter, clamped at zero so repeated releases
// cannot drive it negative
func (s *slotLedgerService) freeSlot(ctx context.Context, odpID string) error {
	o, err := s.ODPRepo.Get(ctx, odpID)
	if err != nil {
		return err
	}

	if o.UsedSlots > 0 {
		o.UsedSlots--
	}
	o.UpdatedAt = time.Now().UTC()
	o.UpdatedBy = types.GetUserID(ctx)
	return s.ODPRepo.Update(ctx, o)
}
