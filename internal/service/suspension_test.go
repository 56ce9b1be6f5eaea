package service

import (
	"testing"
	"time"

	"github.com/fiberbill/fiberbill/internal/api/dto"
	"github.com/fiberbill/fiberbill/internal/domain/invoice"
	"github.com/fiberbill/fiberbill/internal/domain/router"
	"github.com/fiberbill/fiberbill/internal/domain/subscriber"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/testutil"
	"github.com/fiberbill/fiberbill/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SuspensionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SuspensionService
	loc     *time.Location
	rtr     *router.Router
}

func TestSuspensionService(t *testing.T) {
	suite.Run(t, new(SuspensionServiceSuite))
}

func (s *SuspensionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	s.service = NewSuspensionService(ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		DB:             s.GetDB(),
		SubscriberRepo: stores.SubscriberRepo,
		InvoiceRepo:    stores.InvoiceRepo,
		AddonItemRepo:  stores.AddonItemRepo,
		RouterRepo:     stores.RouterRepo,
		ODPRepo:        stores.ODPRepo,
		Gateway:        s.GetGateway(),
	})

	s.loc = s.GetConfig().BusinessLocation()

	s.rtr = &router.Router{
		ID:        "rtr_1",
		Name:      "core-1",
		Host:      "10.0.0.1",
		Port:      443,
		Username:  "api",
		Password:  "secret",
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(stores.RouterRepo.Create(s.GetContext(), s.rtr))
}

// newOverdueSubscriber seeds an unpaid active subscriber with a PPP account
// present on the mock router
func (s *SuspensionServiceSuite) newOverdueSubscriber(id, account string) *subscriber.Subscriber {
	sub := &subscriber.Subscriber{
		ID:                  id,
		Number:              "FB-" + id,
		Name:                "Subscriber " + id,
		PackagePrice:        decimal.NewFromInt(300000),
		BillingType:         types.BillingTypePostpaid,
		ActivePeriod:        1,
		ActivePeriodUnit:    types.PeriodUnitMonths,
		BillingStatus:       types.BillingStatusUnpaid,
		ServiceStatus:       types.ServiceStatusActive,
		RouterAccountStatus: types.RouterAccountStatusActive,
		RouterAccountName:   lo.ToPtr(account),
		RouterID:            lo.ToPtr(s.rtr.ID),
		BaseModel:           types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().SubscriberRepo.Create(s.GetContext(), sub))
	s.GetGateway().AddSecret(account, false)
	return sub
}

// addPendingInvoice creates a pending payment invoice dated inside the
// grace window
func (s *SuspensionServiceSuite) addPendingInvoice(subscriberID string, createdAt time.Time) {
	periodFrom := types.MonthStart(createdAt, s.loc)
	periodTo := types.NextMonthStart(createdAt, s.loc)
	inv := &invoice.Invoice{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		SubscriberID: subscriberID,
		Kind:         types.InvoiceKindPayment,
		Status:       types.InvoiceStatusPending,
		Amount:       decimal.NewFromInt(300000),
		PeriodFrom:   &periodFrom,
		PeriodTo:     &periodTo,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	inv.CreatedAt = createdAt
	s.Require().NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), inv))
}

func (s *SuspensionServiceSuite) TestSweepRefusesOffDay() {
	_, err := s.service.RunSuspensionCycle(s.GetContext(), time.Date(2024, 6, 5, 9, 0, 0, 0, s.loc))
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SuspensionServiceSuite) TestSweepSuspendsOverdue() {
	sub := s.newOverdueSubscriber("cust_1", "budi")
	s.addPendingInvoice(sub.ID, time.Date(2024, 6, 1, 8, 0, 0, 0, s.loc))

	summary, err := s.service.RunSuspensionCycle(s.GetContext(), time.Date(2024, 6, 6, 1, 0, 0, 0, s.loc))
	s.NoError(err)
	s.Equal(1, summary.Candidates)
	s.Equal(1, summary.Suspended)
	s.Equal(0, summary.Failed)

	// the summary reports the invoice window the sweep judged against
	s.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, s.loc).Unix(), summary.GracePeriod.From.Unix())
	s.Equal(time.Date(2024, 6, 5, 23, 59, 59, 0, s.loc).Unix(), summary.GracePeriod.To.Unix())

	updated, err := s.GetStores().SubscriberRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(types.BillingStatusSuspended, updated.BillingStatus)
	// suspension touches billing and the PPP account only; the installation
	// axis stays active so the subscriber keeps entering invoice runs
	s.Equal(types.ServiceStatusActive, updated.ServiceStatus)
	s.Equal(types.RouterAccountStatusDisabled, updated.RouterAccountStatus)
	s.NotNil(updated.LastSuspendDate)
	s.True(s.GetGateway().IsDisabled("budi"))
}

func (s *SuspensionServiceSuite) TestSweepSkipsWithoutInvoice() {
	// unpaid status but never billed: the invoice run missed them, so the
	// sweep must not cut them off
	sub := s.newOverdueSubscriber("cust_1", "budi")

	summary, err := s.service.RunSuspensionCycle(s.GetContext(), time.Date(2024, 6, 6, 1, 0, 0, 0, s.loc))
	s.NoError(err)
	s.Equal(1, summary.Skipped)
	s.Equal(0, summary.Suspended)

	updated, err := s.GetStores().SubscriberRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(types.ServiceStatusActive, updated.ServiceStatus)
	s.False(s.GetGateway().IsDisabled("budi"))
}

func (s *SuspensionServiceSuite) TestSweepSkipsInvoiceOutsideWindow() {
	sub := s.newOverdueSubscriber("cust_1", "budi")
	// invoice from a previous month does not trigger this month's sweep
	s.addPendingInvoice(sub.ID, time.Date(2024, 5, 2, 8, 0, 0, 0, s.loc))

	summary, err := s.service.RunSuspensionCycle(s.GetContext(), time.Date(2024, 6, 6, 1, 0, 0, 0, s.loc))
	s.NoError(err)
	s.Equal(1, summary.Skipped)
	s.Equal(0, summary.Suspended)
}

func (s *SuspensionServiceSuite) TestSweepGatewayFailureKeepsLocalState() {
	sub := s.newOverdueSubscriber("cust_1", "budi")
	s.addPendingInvoice(sub.ID, time.Date(2024, 6, 1, 8, 0, 0, 0, s.loc))
	s.GetGateway().FailAll()

	summary, err := s.service.RunSuspensionCycle(s.GetContext(), time.Date(2024, 6, 6, 1, 0, 0, 0, s.loc))
	s.NoError(err)
	s.Equal(1, summary.Failed)
	s.Equal(0, summary.Suspended)

	// nothing recorded locally without a confirmed disable
	updated, err := s.GetStores().SubscriberRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(types.BillingStatusUnpaid, updated.BillingStatus)
	s.Equal(types.ServiceStatusActive, updated.ServiceStatus)
	s.Equal(types.RouterAccountStatusActive, updated.RouterAccountStatus)
	s.Nil(updated.LastSuspendDate)
}

func (s *SuspensionServiceSuite) TestSweepExcludesAlreadyDisabled() {
	sub := s.newOverdueSubscriber("cust_1", "budi")
	sub.RouterAccountStatus = types.RouterAccountStatusDisabled
	s.Require().NoError(s.GetStores().SubscriberRepo.Update(s.GetContext(), sub))
	s.addPendingInvoice(sub.ID, time.Date(2024, 6, 1, 8, 0, 0, 0, s.loc))

	summary, err := s.service.RunSuspensionCycle(s.GetContext(), time.Date(2024, 6, 6, 1, 0, 0, 0, s.loc))
	s.NoError(err)
	s.Equal(0, summary.Candidates)
}

func (s *SuspensionServiceSuite) TestSweepExcludesArchivedRecord() {
	sub := s.newOverdueSubscriber("cust_1", "budi")
	sub.Status = types.StatusInactive
	s.Require().NoError(s.GetStores().SubscriberRepo.Update(s.GetContext(), sub))
	s.addPendingInvoice(sub.ID, time.Date(2024, 6, 1, 8, 0, 0, 0, s.loc))

	summary, err := s.service.RunSuspensionCycle(s.GetContext(), time.Date(2024, 6, 6, 1, 0, 0, 0, s.loc))
	s.NoError(err)
	s.Equal(0, summary.Candidates)
	s.False(s.GetGateway().IsDisabled("budi"))
}

func (s *SuspensionServiceSuite) TestManualSuspendByName() {
	s.newOverdueSubscriber("cust_1", "budi")

	// manual suspension needs no invoice and ignores the day gate
	result, err := s.service.Suspend(s.GetContext(), &dto.ServiceControlRequest{Name: "subscriber cust_1"})
	s.NoError(err)
	s.True(result.RemoteConfirmed)
	s.Equal(types.BillingStatusSuspended, result.BillingStatus)
	s.True(s.GetGateway().IsDisabled("budi"))
}

func (s *SuspensionServiceSuite) TestManualSuspendAmbiguousName() {
	s.newOverdueSubscriber("cust_1", "budi")
	s.newOverdueSubscriber("cust_2", "wati")

	_, err := s.service.Suspend(s.GetContext(), &dto.ServiceControlRequest{Name: "subscriber"})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *SuspensionServiceSuite) TestSuspendWithoutRouterAccount() {
	sub := s.newOverdueSubscriber("cust_1", "budi")
	sub.RouterAccountName = nil
	s.Require().NoError(s.GetStores().SubscriberRepo.Update(s.GetContext(), sub))

	_, err := s.service.Suspend(s.GetContext(), &dto.ServiceControlRequest{SubscriberID: sub.ID})
	s.Error(err)
	s.True(ierr.IsConfigurationGap(err))
}

func (s *SuspensionServiceSuite) TestReinstate() {
	sub := s.newOverdueSubscriber("cust_1", "budi")
	sub.BillingStatus = types.BillingStatusSuspended
	sub.RouterAccountStatus = types.RouterAccountStatusDisabled
	s.Require().NoError(s.GetStores().SubscriberRepo.Update(s.GetContext(), sub))
	s.GetGateway().AddSecret("budi", true)

	result, err := s.service.Reinstate(s.GetContext(), &dto.ServiceControlRequest{SubscriberID: sub.ID})
	s.NoError(err)
	s.True(result.RemoteConfirmed)
	s.Equal(types.ServiceStatusActive, result.ServiceStatus)
	s.Equal(types.RouterAccountStatusActive, result.RouterAccountStatus)
	// reinstatement is not payment: the subscriber still owes the invoice
	s.Equal(types.BillingStatusUnpaid, result.BillingStatus)
	s.False(s.GetGateway().IsDisabled("budi"))
}

func (s *SuspensionServiceSuite) TestGatewayStatus() {
	sub := s.newOverdueSubscriber("cust_1", "budi")
	s.GetGateway().AddSecret("budi", true)

	status, err := s.service.GatewayStatus(s.GetContext(), sub.ID)
	s.NoError(err)
	s.True(status.Found)
	s.True(status.Disabled)
}
