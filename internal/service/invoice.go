package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fiberbill/fiberbill/internal/api/dto"
	"github.com/fiberbill/fiberbill/internal/domain/invoice"
	"github.com/fiberbill/fiberbill/internal/domain/proration"
	"github.com/fiberbill/fiberbill/internal/domain/subscriber"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
)

// invoiceWorkers bounds concurrent subscriber billing in a run
const invoiceWorkers = 5

// InvoiceService drives the monthly billing cycle
type InvoiceService interface {
	// GenerateMonthlyInvoices bills every active subscriber for the calendar
	// month containing asOf. Safe to re-run: subscribers already billed this
	// month are skipped, and one subscriber's failure never aborts the run.
	GenerateMonthlyInvoices(ctx context.Context, asOf time.Time) (*dto.BillingRunSummary, error)

	// GenerateForSubscriber bills a single subscriber for the month of asOf
	GenerateForSubscriber(ctx context.Context, subscriberID string, asOf time.Time) (*dto.InvoiceResponse, error)

	// MarkInvoicePaid records payment and restores the subscriber's service
	MarkInvoicePaid(ctx context.Context, invoiceID string) (*dto.ServiceControlResponse, error)

	// PreviewProration calculates the first-invoice charge for a planned
	// activation date without touching any state
	PreviewProration(ctx context.Context, req *dto.ProrationPreviewRequest) (*dto.ProrationPreviewResponse, error)

	// CancelInvoice voids a pending invoice. The billed month becomes open
	// again for the generator.
	CancelInvoice(ctx context.Context, invoiceID string) (*dto.InvoiceResponse, error)

	// GetInvoice retrieves an invoice by ID
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)

	// ListInvoices retrieves invoices matching the filter
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
}

type invoiceService struct {
	ServiceParams
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{ServiceParams: params}
}

func (s *invoiceService) GenerateMonthlyInvoices(ctx context.Context, asOf time.Time) (*dto.BillingRunSummary, error) {
	loc := s.Config.BusinessLocation()

	filter := types.NewNoLimitSubscriberFilter()
	filter.Status = lo.ToPtr(types.StatusActive)
	filter.ServiceStatus = lo.ToPtr(types.ServiceStatusActive)
	candidates, err := s.SubscriberRepo.ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("starting invoice run",
		"as_of", asOf,
		"candidates", len(candidates),
	)

	p := pool.NewWithResults[dto.BillingRunItem]().WithMaxGoroutines(invoiceWorkers)
	for _, sub := range candidates {
		sub := sub
		p.Go(func() dto.BillingRunItem {
			return s.billSubscriber(ctx, sub, asOf, loc)
		})
	}
	items := p.Wait()

	summary := &dto.BillingRunSummary{
		RunAt:      time.Now().UTC(),
		Candidates: len(candidates),
		Items:      items,
	}
	for _, item := range items {
		switch item.Outcome {
		case dto.RunOutcomeGenerated:
			summary.Generated++
		case dto.RunOutcomeSkipped:
			summary.Skipped++
		case dto.RunOutcomeFailed:
			summary.Failed++
		}
	}

	s.Logger.Infow("invoice run finished",
		"candidates", summary.Candidates,
		"generated", summary.Generated,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}

// billSubscriber wraps one subscriber's billing in its own transaction so a
// failure rolls back that subscriber only
func (s *invoiceService) billSubscriber(ctx context.Context, sub *subscriber.Subscriber, asOf time.Time, loc *time.Location) dto.BillingRunItem {
	item := dto.BillingRunItem{SubscriberID: sub.ID}

	var inv *invoice.Invoice
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var txErr error
		inv, txErr = s.generateInvoice(ctx, sub, asOf, loc)
		return txErr
	})
	if err != nil {
		s.Logger.Errorw("failed to bill subscriber",
			"subscriber_id", sub.ID,
			"error", err,
		)
		item.Outcome = dto.RunOutcomeFailed
		item.Reason = err.Error()
		return item
	}
	if inv == nil {
		item.Outcome = dto.RunOutcomeSkipped
		item.Reason = "already billed this month"
		return item
	}

	item.Outcome = dto.RunOutcomeGenerated
	item.InvoiceID = inv.ID
	return item
}

func (s *invoiceService) GenerateForSubscriber(ctx context.Context, subscriberID string, asOf time.Time) (*dto.InvoiceResponse, error) {
	loc := s.Config.BusinessLocation()
	sub, err := s.SubscriberRepo.Get(ctx, subscriberID)
	if err != nil {
		return nil, err
	}

	var inv *invoice.Invoice
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		var txErr error
		inv, txErr = s.generateInvoice(ctx, sub, asOf, loc)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ierr.NewError("subscriber already billed this month").
			WithHintf("Subscriber %s already has a payment invoice for this period", subscriberID).
			Mark(ierr.ErrAlreadyExists)
	}
	return &dto.InvoiceResponse{Invoice: inv}, nil
}

// generateInvoice creates the month's payment invoice for one subscriber.
// Returns (nil, nil) when the month is already billed. Must run inside a
// transaction: it also marks one-time addon items paid and advances the
// subscriber's billing bookkeeping, and those writes stand or fall together
// with the invoice row.
func (s *invoiceService) generateInvoice(ctx context.Context, sub *subscriber.Subscriber, asOf time.Time, loc *time.Location) (*invoice.Invoice, error) {
	monthStart := types.MonthStart(asOf, loc)
	nextMonth := types.NextMonthStart(asOf, loc)

	billed, err := s.alreadyBilled(ctx, sub.ID, monthStart, nextMonth)
	if err != nil {
		return nil, err
	}
	if billed {
		return nil, nil
	}

	breakdown := invoice.Breakdown{DiscountTotal: sub.Discount}

	baseAmount := sub.PackagePrice
	var prorated *proration.Result
	if s.shouldProrate(sub, asOf, loc) {
		calc := proration.NewCalculator(loc)
		prorated, err = calc.Calculate(proration.Params{
			ActivationDate: *sub.ActiveDate,
			PackagePrice:   sub.PackagePrice,
			PeriodUnit:     sub.ActivePeriodUnit,
		})
		if err != nil {
			return nil, err
		}
		baseAmount = prorated.Amount
		if prorated.Applied {
			breakdown.ProrationNote = fmt.Sprintf("prorated for %d of %d days", prorated.RemainingDays, prorated.DaysInPeriod)
		}
	}
	breakdown.PackageCharge = invoice.BreakdownItem{
		Description: "monthly service package",
		Amount:      baseAmount,
	}

	addonItems, err := s.AddonItemRepo.List(ctx, &types.AddonItemFilter{
		QueryFilter:  types.NewNoLimitQueryFilter(),
		SubscriberID: sub.ID,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	addonTotal := decimal.Zero
	for _, addon := range addonItems {
		if !addon.Billable() {
			continue
		}
		line := invoice.BreakdownItem{
			Description: addon.Name,
			Quantity:    addon.Quantity,
			Amount:      addon.Total(),
		}
		addonTotal = addonTotal.Add(addon.Total())

		switch addon.ItemType {
		case types.AddonItemTypeMonthly:
			breakdown.Addons = append(breakdown.Addons, line)
		case types.AddonItemTypeOneTime:
			breakdown.OneTimeItems = append(breakdown.OneTimeItems, line)
			// marked paid in the same transaction as the invoice so a
			// one-time charge can never land on two invoices
			addon.IsPaid = true
			addon.PaidAt = &now
			addon.UpdatedAt = now
			addon.UpdatedBy = types.GetUserID(ctx)
			if err := s.AddonItemRepo.Update(ctx, addon); err != nil {
				return nil, err
			}
		}
	}

	total := baseAmount.Add(addonTotal).Sub(sub.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	dueDate := types.MonthDay(asOf, s.Config.Billing.InvoiceDueDay, loc)
	inv := &invoice.Invoice{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		SubscriberID: sub.ID,
		Kind:         types.InvoiceKindPayment,
		Status:       types.InvoiceStatusPending,
		Amount:       total,
		PeriodFrom:   &monthStart,
		PeriodTo:     &nextMonth,
		DueDate:      &dueDate,
		Description:  fmt.Sprintf("service charges %s", monthStart.Format("January 2006")),
		Breakdown:    breakdown,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	nextBilling := nextMonth
	sub.BillingStatus = types.BillingStatusUnpaid
	sub.LastBillingDate = &now
	sub.NextBillingDate = &nextBilling
	sub.PaymentDueDate = &dueDate
	if prorated != nil {
		sub.ProrationApplied = true
		amount := prorated.Amount
		sub.ProrationAmount = &amount
	}
	sub.UpdatedAt = now
	sub.UpdatedBy = types.GetUserID(ctx)
	if err := s.SubscriberRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("invoice generated",
		"subscriber_id", sub.ID,
		"invoice_id", inv.ID,
		"amount", inv.Amount,
		"due_date", dueDate,
	)
	return inv, nil
}

// alreadyBilled reports whether a payment invoice already covers the month
// starting at monthStart. Keyed on the billed period, not the row's creation
// time, so late or re-run billing cannot double-charge a month. Cancelled
// invoices do not count.
func (s *invoiceService) alreadyBilled(ctx context.Context, subscriberID string, monthStart, nextMonth time.Time) (bool, error) {
	invoices, err := s.InvoiceRepo.List(ctx, &types.InvoiceFilter{
		QueryFilter:  types.NewNoLimitQueryFilter(),
		SubscriberID: subscriberID,
		Kind:         lo.ToPtr(types.InvoiceKindPayment),
	})
	if err != nil {
		return false, err
	}
	for _, inv := range invoices {
		if inv.Status == types.InvoiceStatusCancelled || inv.PeriodFrom == nil {
			continue
		}
		if !inv.PeriodFrom.Before(monthStart) && inv.PeriodFrom.Before(nextMonth) {
			return true, nil
		}
	}
	return false, nil
}

// shouldProrate is true only for the subscriber's very first bill, when the
// activation fell inside the month being billed
func (s *invoiceService) shouldProrate(sub *subscriber.Subscriber, asOf time.Time, loc *time.Location) bool {
	if !s.Config.Billing.ProrationEnabled {
		return false
	}
	if sub.ProrationApplied || sub.LastBillingDate != nil {
		return false
	}
	if sub.ActiveDate == nil {
		return false
	}
	return types.SameCalendarMonth(*sub.ActiveDate, asOf, loc)
}

func (s *invoiceService) MarkInvoicePaid(ctx context.Context, invoiceID string) (*dto.ServiceControlResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.IsPaid() {
		return nil, ierr.NewError("invoice is already paid").
			WithHintf("Invoice %s has already been settled", invoiceID).
			Mark(ierr.ErrInvalidOperation)
	}
	if inv.Status == types.InvoiceStatusCancelled {
		return nil, ierr.NewError("invoice is cancelled").
			WithHintf("Invoice %s was cancelled and cannot be paid", invoiceID).
			Mark(ierr.ErrInvalidOperation)
	}

	sub, err := s.SubscriberRepo.Get(ctx, inv.SubscriberID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		inv.Status = types.InvoiceStatusPaid
		inv.PaidAt = &now
		inv.UpdatedAt = now
		inv.UpdatedBy = types.GetUserID(ctx)
		return s.InvoiceRepo.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	// Payment always restores billing and service status locally. The router
	// account flips to active only when the device confirms the enable; a
	// failed enable leaves it disabled for the next reconciliation pass.
	// Configuration gaps (no account, unresolvable router) are reported apart
	// from remote failures so operators know which side to fix.
	remoteConfirmed := false
	message := ""
	if !sub.HasRouterAccount() {
		message = "configuration gap: subscriber has no router account, enable skipped"
		s.Logger.Warnw("enable after payment skipped",
			"subscriber_id", sub.ID,
			"reason", "no router account",
		)
	} else if rtr, rerr := s.RouterRepo.Get(ctx, *sub.RouterID); rerr != nil {
		message = fmt.Sprintf("configuration gap: router could not be resolved: %s", rerr.Error())
		s.Logger.Warnw("enable after payment skipped",
			"subscriber_id", sub.ID,
			"router_id", *sub.RouterID,
			"error", rerr,
		)
	} else {
		result, gerr := s.Gateway.Enable(ctx, rtr, *sub.RouterAccountName)
		switch {
		case gerr != nil:
			message = fmt.Sprintf("gateway failure: %s", gerr.Error())
			s.Logger.Errorw("enable after payment failed",
				"subscriber_id", sub.ID,
				"error", gerr,
			)
		case result.Success:
			remoteConfirmed = true
		default:
			message = fmt.Sprintf("gateway failure: %s", result.Message)
		}
	}

	sub.BillingStatus = types.BillingStatusPaid
	sub.ServiceStatus = types.ServiceStatusActive
	if remoteConfirmed {
		sub.RouterAccountStatus = types.RouterAccountStatusActive
	}
	sub.UpdatedAt = now
	sub.UpdatedBy = types.GetUserID(ctx)
	if err := s.SubscriberRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("invoice paid",
		"invoice_id", inv.ID,
		"subscriber_id", sub.ID,
		"remote_confirmed", remoteConfirmed,
	)

	return &dto.ServiceControlResponse{
		SubscriberID:        sub.ID,
		Name:                sub.Name,
		BillingStatus:       sub.BillingStatus,
		ServiceStatus:       sub.ServiceStatus,
		RouterAccountStatus: sub.RouterAccountStatus,
		RemoteConfirmed:     remoteConfirmed,
		Message:             message,
	}, nil
}

func (s *invoiceService) PreviewProration(ctx context.Context, req *dto.ProrationPreviewRequest) (*dto.ProrationPreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	loc := s.Config.BusinessLocation()

	result, err := proration.NewCalculator(loc).Calculate(proration.Params{
		ActivationDate: req.ActivationDate,
		PackagePrice:   req.PackagePrice,
		PeriodUnit:     req.PeriodUnit,
	})
	if err != nil {
		return nil, err
	}
	return &dto.ProrationPreviewResponse{
		Applied:       result.Applied,
		Amount:        result.Amount,
		RemainingDays: result.RemainingDays,
		DaysInPeriod:  result.DaysInPeriod,
	}, nil
}

func (s *invoiceService) CancelInvoice(ctx context.Context, invoiceID string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status != types.InvoiceStatusPending {
		return nil, ierr.NewError("only pending invoices can be cancelled").
			WithHintf("Invoice %s is %s", invoiceID, inv.Status).
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	inv.Status = types.InvoiceStatusCancelled
	inv.UpdatedAt = now
	inv.UpdatedBy = types.GetUserID(ctx)
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("invoice cancelled",
		"invoice_id", inv.ID,
		"subscriber_id", inv.SubscriberID,
	)
	return &dto.InvoiceResponse{Invoice: inv}, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.InvoiceResponse{Invoice: inv}, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		items[i] = &dto.InvoiceResponse{Invoice: inv}
	}

	return &dto.ListInvoicesResponse{Items: items, Total: count}, nil
}
