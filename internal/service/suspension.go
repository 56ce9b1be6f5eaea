package service

import (
	"context"
	"time"

	"github.com/fiberbill/fiberbill/internal/api/dto"
	"github.com/fiberbill/fiberbill/internal/domain/router"
	"github.com/fiberbill/fiberbill/internal/domain/subscriber"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/types"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
)

// suspensionWorkers bounds concurrent gateway calls in a sweep
const suspensionWorkers = 3

// SuspensionService enforces the grace period: subscribers who have not paid
// the month's invoice by the due day get their PPP account disabled.
type SuspensionService interface {
	// RunSuspensionCycle sweeps all overdue subscribers. The sweep refuses to
	// run on any day other than the configured suspension day, so a
	// misconfigured scheduler cannot cut people off mid-month.
	RunSuspensionCycle(ctx context.Context, asOf time.Time) (*dto.SuspensionRunSummary, error)

	// Suspend disables one subscriber immediately, skipping the day gate
	Suspend(ctx context.Context, req *dto.ServiceControlRequest) (*dto.ServiceControlResponse, error)

	// Reinstate re-enables one subscriber's service
	Reinstate(ctx context.Context, req *dto.ServiceControlRequest) (*dto.ServiceControlResponse, error)

	// GatewayStatus reads the live PPP account state from the router
	GatewayStatus(ctx context.Context, subscriberID string) (*dto.GatewayStatusResponse, error)
}

type suspensionService struct {
	ServiceParams
}

// NewSuspensionService creates a new suspension service
func NewSuspensionService(params ServiceParams) SuspensionService {
	return &suspensionService{ServiceParams: params}
}

func (s *suspensionService) RunSuspensionCycle(ctx context.Context, asOf time.Time) (*dto.SuspensionRunSummary, error) {
	loc := s.Config.BusinessLocation()

	day := types.DayOfMonth(asOf, loc)
	if day != s.Config.Billing.SuspensionDay {
		return nil, ierr.NewError("suspension cycle can only run on the suspension day").
			WithHintf("Today is day %d; suspensions run on day %d of the month", day, s.Config.Billing.SuspensionDay).
			WithReportableDetails(map[string]any{
				"day":            day,
				"suspension_day": s.Config.Billing.SuspensionDay,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	windowStart := types.MonthStart(asOf, loc)
	windowEnd := types.GracePeriodEnd(asOf, s.Config.Billing.SuspensionDay, loc)

	filter := types.NewNoLimitSubscriberFilter()
	filter.Status = lo.ToPtr(types.StatusActive)
	filter.BillingStatus = lo.ToPtr(types.BillingStatusUnpaid)
	filter.ServiceStatus = lo.ToPtr(types.ServiceStatusActive)
	filter.NotRouterAccountStatus = lo.ToPtr(types.RouterAccountStatusDisabled)
	candidates, err := s.SubscriberRepo.ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("starting suspension sweep",
		"as_of", asOf,
		"grace_from", windowStart,
		"grace_to", windowEnd,
		"candidates", len(candidates),
	)

	p := pool.NewWithResults[dto.SuspensionRunItem]().WithMaxGoroutines(suspensionWorkers)
	for _, sub := range candidates {
		sub := sub
		p.Go(func() dto.SuspensionRunItem {
			return s.sweepSubscriber(ctx, sub, windowStart, windowEnd)
		})
	}
	items := p.Wait()

	summary := &dto.SuspensionRunSummary{
		RunAt:      time.Now().UTC(),
		Candidates: len(candidates),
		GracePeriod: dto.GracePeriodWindow{
			From: windowStart,
			To:   windowEnd,
		},
		Items: items,
	}
	for _, item := range items {
		switch item.Outcome {
		case dto.RunOutcomeSuspended:
			summary.Suspended++
		case dto.RunOutcomeSkipped:
			summary.Skipped++
		case dto.RunOutcomeFailed:
			summary.Failed++
		}
	}

	s.Logger.Infow("suspension sweep finished",
		"candidates", summary.Candidates,
		"suspended", summary.Suspended,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}

func (s *suspensionService) sweepSubscriber(ctx context.Context, sub *subscriber.Subscriber, windowStart, windowEnd time.Time) dto.SuspensionRunItem {
	item := dto.SuspensionRunItem{SubscriberID: sub.ID}

	// Only subscribers actually billed this month are overdue. An unpaid
	// status without a pending invoice in the grace window means the invoice
	// run never reached them, and cutting them off would be wrong.
	overdue, err := s.hasOverdueInvoice(ctx, sub.ID, windowStart, windowEnd)
	if err != nil {
		item.Outcome = dto.RunOutcomeFailed
		item.Reason = err.Error()
		return item
	}
	if !overdue {
		item.Outcome = dto.RunOutcomeSkipped
		item.Reason = "no pending invoice in the grace window"
		return item
	}

	if _, err := s.suspend(ctx, sub); err != nil {
		s.Logger.Errorw("failed to suspend subscriber",
			"subscriber_id", sub.ID,
			"error", err,
		)
		item.Outcome = dto.RunOutcomeFailed
		item.Reason = err.Error()
		return item
	}

	item.Outcome = dto.RunOutcomeSuspended
	return item
}

// hasOverdueInvoice checks for a pending payment invoice created between the
// start of the month and the end of the grace period
func (s *suspensionService) hasOverdueInvoice(ctx context.Context, subscriberID string, windowStart, windowEnd time.Time) (bool, error) {
	count, err := s.InvoiceRepo.Count(ctx, &types.InvoiceFilter{
		QueryFilter:   types.NewNoLimitQueryFilter(),
		SubscriberID:  subscriberID,
		Kind:          lo.ToPtr(types.InvoiceKindPayment),
		InvoiceStatus: lo.ToPtr(types.InvoiceStatusPending),
		TimeRangeFilter: types.TimeRangeFilter{
			StartTime: &windowStart,
			EndTime:   &windowEnd,
		},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// suspend disables the PPP account and, only once the router has confirmed,
// records the suspension locally. A gateway failure leaves local state
// untouched so the subscriber is retried on the next sweep.
func (s *suspensionService) suspend(ctx context.Context, sub *subscriber.Subscriber) (*dto.ServiceControlResponse, error) {
	rtr, accountName, err := s.resolveRouter(ctx, sub)
	if err != nil {
		return nil, err
	}

	result, err := s.Gateway.Disable(ctx, rtr, accountName)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, ierr.NewError("router did not confirm the disable").
			WithHint(result.Message).
			WithReportableDetails(map[string]any{
				"subscriber_id": sub.ID,
				"router":        rtr.Name,
			}).
			Mark(ierr.ErrGatewayFailure)
	}

	// serviceStatus is the installation axis and stays as it is; a suspended
	// subscriber is still an installed one and keeps getting billed.
	now := time.Now().UTC()
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		sub.BillingStatus = types.BillingStatusSuspended
		sub.RouterAccountStatus = types.RouterAccountStatusDisabled
		sub.LastSuspendDate = &now
		sub.UpdatedAt = now
		sub.UpdatedBy = types.GetUserID(ctx)
		return s.SubscriberRepo.Update(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("subscriber suspended",
		"subscriber_id", sub.ID,
		"router", rtr.Name,
	)

	return &dto.ServiceControlResponse{
		SubscriberID:        sub.ID,
		Name:                sub.Name,
		BillingStatus:       sub.BillingStatus,
		ServiceStatus:       sub.ServiceStatus,
		RouterAccountStatus: sub.RouterAccountStatus,
		RemoteConfirmed:     true,
	}, nil
}

func (s *suspensionService) Suspend(ctx context.Context, req *dto.ServiceControlRequest) (*dto.ServiceControlResponse, error) {
	sub, err := s.findSubscriber(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.suspend(ctx, sub)
}

func (s *suspensionService) Reinstate(ctx context.Context, req *dto.ServiceControlRequest) (*dto.ServiceControlResponse, error) {
	sub, err := s.findSubscriber(ctx, req)
	if err != nil {
		return nil, err
	}
	rtr, accountName, err := s.resolveRouter(ctx, sub)
	if err != nil {
		return nil, err
	}

	result, err := s.Gateway.Enable(ctx, rtr, accountName)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, ierr.NewError("router did not confirm the enable").
			WithHint(result.Message).
			WithReportableDetails(map[string]any{
				"subscriber_id": sub.ID,
				"router":        rtr.Name,
			}).
			Mark(ierr.ErrGatewayFailure)
	}

	now := time.Now().UTC()
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		sub.RouterAccountStatus = types.RouterAccountStatusActive
		if sub.BillingStatus == types.BillingStatusSuspended {
			sub.BillingStatus = types.BillingStatusUnpaid
		}
		sub.UpdatedAt = now
		sub.UpdatedBy = types.GetUserID(ctx)
		return s.SubscriberRepo.Update(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("subscriber reinstated",
		"subscriber_id", sub.ID,
		"router", rtr.Name,
	)

	return &dto.ServiceControlResponse{
		SubscriberID:        sub.ID,
		Name:                sub.Name,
		BillingStatus:       sub.BillingStatus,
		ServiceStatus:       sub.ServiceStatus,
		RouterAccountStatus: sub.RouterAccountStatus,
		RemoteConfirmed:     true,
	}, nil
}

func (s *suspensionService) GatewayStatus(ctx context.Context, subscriberID string) (*dto.GatewayStatusResponse, error) {
	sub, err := s.SubscriberRepo.Get(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	rtr, accountName, err := s.resolveRouter(ctx, sub)
	if err != nil {
		return nil, err
	}

	status, err := s.Gateway.CheckStatus(ctx, rtr, accountName)
	if err != nil {
		return nil, err
	}
	return &dto.GatewayStatusResponse{
		SubscriberID: sub.ID,
		Found:        status.Found,
		Disabled:     status.Disabled,
		Profile:      status.Profile,
		Service:      status.Service,
	}, nil
}

// findSubscriber resolves the control target by ID or by case-insensitive
// name substring; an ambiguous name is rejected rather than guessed at
func (s *suspensionService) findSubscriber(ctx context.Context, req *dto.ServiceControlRequest) (*subscriber.Subscriber, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.SubscriberID != "" {
		return s.SubscriberRepo.Get(ctx, req.SubscriberID)
	}

	filter := types.NewNoLimitSubscriberFilter()
	filter.NamePattern = req.Name
	matches, err := s.SubscriberRepo.ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, ierr.NewError("no subscriber matches the name").
			WithHintf("No subscriber name contains %q", req.Name).
			Mark(ierr.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, ierr.NewError("subscriber name is ambiguous").
			WithHintf("%d subscribers match %q; use the subscriber ID", len(matches), req.Name).
			Mark(ierr.ErrValidation)
	}
}

// resolveRouter loads the subscriber's router, via cache when enabled.
// Missing account wiring is a configuration gap, not a gateway failure.
func (s *suspensionService) resolveRouter(ctx context.Context, sub *subscriber.Subscriber) (*router.Router, string, error) {
	if !sub.HasRouterAccount() {
		return nil, "", ierr.NewError("subscriber has no router account").
			WithHintf("Subscriber %s is missing a router or PPP account name", sub.ID).
			WithReportableDetails(map[string]any{"subscriber_id": sub.ID}).
			Mark(ierr.ErrConfigurationGap)
	}

	cacheKey := cacheKeyRouter(*sub.RouterID)
	if s.Cache != nil {
		if cached, found := s.Cache.Get(ctx, cacheKey); found {
			if rtr, ok := cached.(*router.Router); ok {
				return rtr, *sub.RouterAccountName, nil
			}
		}
	}

	rtr, err := s.RouterRepo.Get(ctx, *sub.RouterID)
	if err != nil {
		return nil, "", err
	}
	if s.Cache != nil {
		s.Cache.Set(ctx, cacheKey, rtr, routerCacheTTL)
	}
	return rtr, *sub.RouterAccountName, nil
}
