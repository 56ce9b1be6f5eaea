package service

import (
	"testing"
	"time"

	"github.com/fiberbill/fiberbill/internal/api/dto"
	"github.com/fiberbill/fiberbill/internal/domain/addonitem"
	"github.com/fiberbill/fiberbill/internal/domain/router"
	"github.com/fiberbill/fiberbill/internal/domain/subscriber"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/testutil"
	"github.com/fiberbill/fiberbill/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service InvoiceService
	loc     *time.Location
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewInvoiceService(s.serviceParams())

	s.loc = s.GetConfig().BusinessLocation()
}

func (s *InvoiceServiceSuite) serviceParams() ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		DB:             s.GetDB(),
		SubscriberRepo: stores.SubscriberRepo,
		InvoiceRepo:    stores.InvoiceRepo,
		AddonItemRepo:  stores.AddonItemRepo,
		RouterRepo:     stores.RouterRepo,
		ODPRepo:        stores.ODPRepo,
		Gateway:        s.GetGateway(),
	}
}

// newSubscriber seeds an active subscriber billed in previous months, so no
// proration applies unless the test clears the billing history
func (s *InvoiceServiceSuite) newSubscriber(id string, price int64) *subscriber.Subscriber {
	activeDate := time.Date(2023, 1, 10, 0, 0, 0, 0, s.loc)
	lastBilling := time.Date(2024, 5, 1, 0, 0, 0, 0, s.loc)
	sub := &subscriber.Subscriber{
		ID:                  id,
		Number:              "FB-" + id,
		Name:                "Subscriber " + id,
		PackagePrice:        decimal.NewFromInt(price),
		AddonPrice:          decimal.Zero,
		Discount:            decimal.Zero,
		BillingType:         types.BillingTypePostpaid,
		ActivePeriod:        1,
		ActivePeriodUnit:    types.PeriodUnitMonths,
		ActiveDate:          &activeDate,
		BillingStatus:       types.BillingStatusPaid,
		ServiceStatus:       types.ServiceStatusActive,
		RouterAccountStatus: types.RouterAccountStatusActive,
		ProrationApplied:    true,
		LastBillingDate:     &lastBilling,
		BaseModel:           types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().SubscriberRepo.Create(s.GetContext(), sub))
	return sub
}

func (s *InvoiceServiceSuite) TestGenerateMonthlyInvoicesFullMonth() {
	sub := s.newSubscriber("cust_1", 300000)
	asOf := time.Date(2024, 6, 1, 1, 0, 0, 0, s.loc)

	summary, err := s.service.GenerateMonthlyInvoices(s.GetContext(), asOf)
	s.NoError(err)
	s.Equal(1, summary.Candidates)
	s.Equal(1, summary.Generated)
	s.Equal(0, summary.Failed)

	invoices, err := s.GetStores().InvoiceRepo.List(s.GetContext(), &types.InvoiceFilter{
		QueryFilter:  types.NewNoLimitQueryFilter(),
		SubscriberID: sub.ID,
	})
	s.NoError(err)
	s.Require().Len(invoices, 1)

	inv := invoices[0]
	s.Equal(types.InvoiceKindPayment, inv.Kind)
	s.Equal(types.InvoiceStatusPending, inv.Status)
	s.True(inv.Amount.Equal(decimal.NewFromInt(300000)), "amount %s", inv.Amount)

	s.Require().NotNil(inv.DueDate)
	s.Equal(5, inv.DueDate.In(s.loc).Day())
	s.Equal(0, inv.DueDate.In(s.loc).Hour())

	updated, err := s.GetStores().SubscriberRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(types.BillingStatusUnpaid, updated.BillingStatus)
	s.Require().NotNil(updated.NextBillingDate)
	s.Equal(time.Date(2024, 7, 1, 0, 0, 0, 0, s.loc).Unix(), updated.NextBillingDate.Unix())
}

func (s *InvoiceServiceSuite) TestGenerateMonthlyInvoicesIdempotent() {
	sub := s.newSubscriber("cust_1", 300000)
	asOf := time.Date(2024, 6, 1, 1, 0, 0, 0, s.loc)

	first, err := s.service.GenerateMonthlyInvoices(s.GetContext(), asOf)
	s.NoError(err)
	s.Equal(1, first.Generated)

	// a later re-run of the same month generates nothing new
	second, err := s.service.GenerateMonthlyInvoices(s.GetContext(), asOf.AddDate(0, 0, 10))
	s.NoError(err)
	s.Equal(0, second.Generated)
	s.Equal(1, second.Skipped)

	count, err := s.GetStores().InvoiceRepo.Count(s.GetContext(), &types.InvoiceFilter{
		QueryFilter:  types.NewNoLimitQueryFilter(),
		SubscriberID: sub.ID,
	})
	s.NoError(err)
	s.Equal(1, count)
}

func (s *InvoiceServiceSuite) TestFirstBillProrated() {
	sub := s.newSubscriber("cust_1", 300000)
	activeDate := time.Date(2024, 6, 20, 9, 0, 0, 0, s.loc)
	sub.ActiveDate = &activeDate
	sub.ProrationApplied = false
	sub.LastBillingDate = nil
	s.Require().NoError(s.GetStores().SubscriberRepo.Update(s.GetContext(), sub))

	asOf := time.Date(2024, 6, 25, 1, 0, 0, 0, s.loc)
	resp, err := s.service.GenerateForSubscriber(s.GetContext(), sub.ID, asOf)
	s.NoError(err)

	// 11 of 30 days of June at 300000
	s.True(resp.Amount.Equal(decimal.NewFromInt(110000)), "amount %s", resp.Amount)
	s.NotEmpty(resp.Breakdown.ProrationNote)

	updated, err := s.GetStores().SubscriberRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.True(updated.ProrationApplied)
	s.Require().NotNil(updated.ProrationAmount)
	s.True(updated.ProrationAmount.Equal(decimal.NewFromInt(110000)))

	// the following month bills the full package price
	julyResp, err := s.service.GenerateForSubscriber(s.GetContext(), sub.ID, time.Date(2024, 7, 1, 1, 0, 0, 0, s.loc))
	s.NoError(err)
	s.True(julyResp.Amount.Equal(decimal.NewFromInt(300000)), "amount %s", julyResp.Amount)
}

func (s *InvoiceServiceSuite) TestAddonBilling() {
	sub := s.newSubscriber("cust_1", 200000)
	ctx := s.GetContext()

	monthly := &addonitem.AddonItem{
		ID:           "addon_monthly",
		SubscriberID: sub.ID,
		Name:         "static IP",
		ItemType:     types.AddonItemTypeMonthly,
		Price:        decimal.NewFromInt(25000),
		Quantity:     2,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
	oneTime := &addonitem.AddonItem{
		ID:           "addon_once",
		SubscriberID: sub.ID,
		Name:         "replacement ONT",
		ItemType:     types.AddonItemTypeOneTime,
		Price:        decimal.NewFromInt(150000),
		Quantity:     1,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
	s.Require().NoError(s.GetStores().AddonItemRepo.Create(ctx, monthly))
	s.Require().NoError(s.GetStores().AddonItemRepo.Create(ctx, oneTime))

	juneResp, err := s.service.GenerateForSubscriber(ctx, sub.ID, time.Date(2024, 6, 1, 1, 0, 0, 0, s.loc))
	s.NoError(err)

	// 200000 + 2*25000 + 150000
	s.True(juneResp.Amount.Equal(decimal.NewFromInt(400000)), "amount %s", juneResp.Amount)
	s.Len(juneResp.Breakdown.Addons, 1)
	s.Len(juneResp.Breakdown.OneTimeItems, 1)

	// the one-time item was marked paid in the same transaction
	billed, err := s.GetStores().AddonItemRepo.Get(ctx, oneTime.ID)
	s.NoError(err)
	s.True(billed.IsPaid)
	s.NotNil(billed.PaidAt)

	// next month carries the monthly addon only
	julyResp, err := s.service.GenerateForSubscriber(ctx, sub.ID, time.Date(2024, 7, 1, 1, 0, 0, 0, s.loc))
	s.NoError(err)
	s.True(julyResp.Amount.Equal(decimal.NewFromInt(250000)), "amount %s", julyResp.Amount)
	s.Empty(julyResp.Breakdown.OneTimeItems)
}

func (s *InvoiceServiceSuite) TestDiscountClampsAtZero() {
	sub := s.newSubscriber("cust_1", 100000)
	sub.Discount = decimal.NewFromInt(150000)
	s.Require().NoError(s.GetStores().SubscriberRepo.Update(s.GetContext(), sub))

	resp, err := s.service.GenerateForSubscriber(s.GetContext(), sub.ID, time.Date(2024, 6, 1, 1, 0, 0, 0, s.loc))
	s.NoError(err)
	s.True(resp.Amount.IsZero(), "amount %s", resp.Amount)
}

func (s *InvoiceServiceSuite) TestSuspendedSubscriberStillBilled() {
	// suspension pauses service delivery, not the billing cycle: the
	// subscriber stays installed and keeps accruing monthly charges
	sub := s.newSubscriber("cust_1", 300000)
	sub.BillingStatus = types.BillingStatusSuspended
	sub.RouterAccountStatus = types.RouterAccountStatusDisabled
	s.Require().NoError(s.GetStores().SubscriberRepo.Update(s.GetContext(), sub))

	summary, err := s.service.GenerateMonthlyInvoices(s.GetContext(), time.Date(2024, 6, 1, 1, 0, 0, 0, s.loc))
	s.NoError(err)
	s.Equal(1, summary.Candidates)
	s.Equal(1, summary.Generated)
}

func (s *InvoiceServiceSuite) TestArchivedRecordNotBilled() {
	sub := s.newSubscriber("cust_1", 300000)
	sub.Status = types.StatusInactive
	s.Require().NoError(s.GetStores().SubscriberRepo.Update(s.GetContext(), sub))

	summary, err := s.service.GenerateMonthlyInvoices(s.GetContext(), time.Date(2024, 6, 1, 1, 0, 0, 0, s.loc))
	s.NoError(err)
	s.Equal(0, summary.Candidates)
	s.Equal(0, summary.Generated)
}

func (s *InvoiceServiceSuite) TestRunIsolatesFailures() {
	s.newSubscriber("cust_ok", 300000)

	// force a proration error for one subscriber only
	bad := s.newSubscriber("cust_bad", 300000)
	activeDate := time.Date(2024, 6, 10, 0, 0, 0, 0, s.loc)
	bad.ActiveDate = &activeDate
	bad.ProrationApplied = false
	bad.LastBillingDate = nil
	bad.PackagePrice = decimal.NewFromInt(-1)
	s.Require().NoError(s.GetStores().SubscriberRepo.Update(s.GetContext(), bad))

	summary, err := s.service.GenerateMonthlyInvoices(s.GetContext(), time.Date(2024, 6, 15, 1, 0, 0, 0, s.loc))
	s.NoError(err)
	s.Equal(2, summary.Candidates)
	s.Equal(1, summary.Generated)
	s.Equal(1, summary.Failed)

	failed, ok := lo.Find(summary.Items, func(item dto.BillingRunItem) bool {
		return item.Outcome == dto.RunOutcomeFailed
	})
	s.Require().True(ok)
	s.Equal("cust_bad", failed.SubscriberID)
}

func (s *InvoiceServiceSuite) TestMarkInvoicePaidRestoresService() {
	sub := s.newSubscriber("cust_1", 300000)
	rtr := &router.Router{
		ID:        "rtr_1",
		Name:      "core-1",
		Host:      "10.0.0.1",
		Port:      443,
		Username:  "api",
		Password:  "secret",
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().RouterRepo.Create(s.GetContext(), rtr))
	s.GetGateway().AddSecret("budi", true)

	sub.RouterAccountName = lo.ToPtr("budi")
	sub.RouterID = lo.ToPtr(rtr.ID)
	sub.BillingStatus = types.BillingStatusSuspended
	sub.ServiceStatus = types.ServiceStatusInactive
	sub.RouterAccountStatus = types.RouterAccountStatusDisabled
	s.Require().NoError(s.GetStores().SubscriberRepo.Update(s.GetContext(), sub))

	resp, err := s.service.GenerateForSubscriber(s.GetContext(), sub.ID, time.Date(2024, 6, 1, 1, 0, 0, 0, s.loc))
	s.NoError(err)

	result, err := s.service.MarkInvoicePaid(s.GetContext(), resp.ID)
	s.NoError(err)
	s.True(result.RemoteConfirmed)
	s.Equal(types.BillingStatusPaid, result.BillingStatus)
	s.Equal(types.ServiceStatusActive, result.ServiceStatus)
	s.Equal(types.RouterAccountStatusActive, result.RouterAccountStatus)
	s.False(s.GetGateway().IsDisabled("budi"))

	paid, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), resp.ID)
	s.NoError(err)
	s.True(paid.IsPaid())
	s.NotNil(paid.PaidAt)
}

func (s *InvoiceServiceSuite) TestMarkInvoicePaidGatewayDown() {
	sub := s.newSubscriber("cust_1", 300000)
	rtr := &router.Router{
		ID:        "rtr_1",
		Name:      "core-1",
		Host:      "10.0.0.1",
		Port:      443,
		Username:  "api",
		Password:  "secret",
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().RouterRepo.Create(s.GetContext(), rtr))
	s.GetGateway().AddSecret("budi", true)
	s.GetGateway().FailFor("budi")

	sub.RouterAccountName = lo.ToPtr("budi")
	sub.RouterID = lo.ToPtr(rtr.ID)
	sub.BillingStatus = types.BillingStatusSuspended
	sub.ServiceStatus = types.ServiceStatusInactive
	sub.RouterAccountStatus = types.RouterAccountStatusDisabled
	s.Require().NoError(s.GetStores().SubscriberRepo.Update(s.GetContext(), sub))

	resp, err := s.service.GenerateForSubscriber(s.GetContext(), sub.ID, time.Date(2024, 6, 1, 1, 0, 0, 0, s.loc))
	s.NoError(err)

	// payment is recorded even when the router is down; only the router
	// account flag waits for a confirmed enable
	result, err := s.service.MarkInvoicePaid(s.GetContext(), resp.ID)
	s.NoError(err)
	s.False(result.RemoteConfirmed)
	s.Equal(types.BillingStatusPaid, result.BillingStatus)
	s.Equal(types.ServiceStatusActive, result.ServiceStatus)
	s.Equal(types.RouterAccountStatusDisabled, result.RouterAccountStatus)
	s.Contains(result.Message, "gateway failure")
}

func (s *InvoiceServiceSuite) TestMarkInvoicePaidWithoutRouterAccount() {
	sub := s.newSubscriber("cust_1", 300000)

	resp, err := s.service.GenerateForSubscriber(s.GetContext(), sub.ID, time.Date(2024, 6, 1, 1, 0, 0, 0, s.loc))
	s.NoError(err)

	// payment still lands; the skipped enable is reported as a configuration
	// gap, not as a gateway failure
	result, err := s.service.MarkInvoicePaid(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Equal(types.BillingStatusPaid, result.BillingStatus)
	s.False(result.RemoteConfirmed)
	s.Contains(result.Message, "configuration gap")
	s.NotContains(result.Message, "gateway failure")
}

func (s *InvoiceServiceSuite) TestMarkInvoicePaidUnresolvableRouter() {
	sub := s.newSubscriber("cust_1", 300000)
	sub.RouterAccountName = lo.ToPtr("budi")
	sub.RouterID = lo.ToPtr("rtr_gone")
	s.Require().NoError(s.GetStores().SubscriberRepo.Update(s.GetContext(), sub))

	resp, err := s.service.GenerateForSubscriber(s.GetContext(), sub.ID, time.Date(2024, 6, 1, 1, 0, 0, 0, s.loc))
	s.NoError(err)

	result, err := s.service.MarkInvoicePaid(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Equal(types.BillingStatusPaid, result.BillingStatus)
	s.False(result.RemoteConfirmed)
	s.Contains(result.Message, "configuration gap")
}

func (s *InvoiceServiceSuite) TestMarkInvoicePaidTwiceFails() {
	sub := s.newSubscriber("cust_1", 300000)

	resp, err := s.service.GenerateForSubscriber(s.GetContext(), sub.ID, time.Date(2024, 6, 1, 1, 0, 0, 0, s.loc))
	s.NoError(err)

	_, err = s.service.MarkInvoicePaid(s.GetContext(), resp.ID)
	s.NoError(err)

	_, err = s.service.MarkInvoicePaid(s.GetContext(), resp.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestCancelInvoiceReopensMonth() {
	sub := s.newSubscriber("cust_1", 300000)
	asOf := time.Date(2024, 6, 1, 1, 0, 0, 0, s.loc)

	first, err := s.service.GenerateForSubscriber(s.GetContext(), sub.ID, asOf)
	s.NoError(err)

	cancelled, err := s.service.CancelInvoice(s.GetContext(), first.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusCancelled, cancelled.Invoice.Status)

	// the month is billable again once its invoice is voided
	second, err := s.service.GenerateForSubscriber(s.GetContext(), sub.ID, asOf)
	s.NoError(err)
	s.NotEqual(first.ID, second.ID)
}

func (s *InvoiceServiceSuite) TestCancelPaidInvoiceFails() {
	sub := s.newSubscriber("cust_1", 300000)

	resp, err := s.service.GenerateForSubscriber(s.GetContext(), sub.ID, time.Date(2024, 6, 1, 1, 0, 0, 0, s.loc))
	s.NoError(err)

	_, err = s.service.MarkInvoicePaid(s.GetContext(), resp.ID)
	s.NoError(err)

	_, err = s.service.CancelInvoice(s.GetContext(), resp.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestPreviewProration() {
	resp, err := s.service.PreviewProration(s.GetContext(), &dto.ProrationPreviewRequest{
		ActivationDate: time.Date(2024, 6, 20, 0, 0, 0, 0, s.loc),
		PackagePrice:   decimal.NewFromInt(300000),
		PeriodUnit:     types.PeriodUnitMonths,
	})
	s.NoError(err)
	s.True(resp.Applied)
	s.Equal(11, resp.RemainingDays)
	s.Equal(30, resp.DaysInPeriod)
	s.True(resp.Amount.Equal(decimal.NewFromInt(110000)), "amount %s", resp.Amount)
}
