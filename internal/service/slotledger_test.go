package service

import (
	"testing"

	"github.com/fiberbill/fiberbill/internal/api/dto"
	"github.com/fiberbill/fiberbill/internal/domain/odp"
	"github.com/fiberbill/fiberbill/internal/domain/subscriber"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/testutil"
	"github.com/fiberbill/fiberbill/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SlotLedgerServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SlotLedgerService
}

func TestSlotLedgerService(t *testing.T) {
	suite.Run(t, new(SlotLedgerServiceSuite))
}

func (s *SlotLedgerServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	s.service = NewSlotLedgerService(ServiceParams{
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
}

func (s *SlotLedgerServiceSuite) newODP(id string, total, used int) *odp.ODP {
	o := &odp.ODP{
		ID:         id,
		Name:       "ODP " + id,
		TotalSlots: total,
		UsedSlots:  used,
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().ODPRepo.Create(s.GetContext(), o))
	return o
}

func (s *SlotLedgerServiceSuite) newSubscriber(id string, odpID *string) *subscriber.Subscriber {
	sub := &subscriber.Subscriber{
		ID:                  id,
		Number:              "FB-" + id,
		Name:                "Subscriber " + id,
		PackagePrice:        decimal.NewFromInt(300000),
		BillingType:         types.BillingTypePostpaid,
		ActivePeriod:        1,
		ActivePeriodUnit:    types.PeriodUnitMonths,
		BillingStatus:       types.BillingStatusPaid,
		ServiceStatus:       types.ServiceStatusActive,
		RouterAccountStatus: types.RouterAccountStatusActive,
		ODPID:               odpID,
		BaseModel:           types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().SubscriberRepo.Create(s.GetContext(), sub))
	return sub
}

func (s *SlotLedgerServiceSuite) getODP(id string) *odp.ODP {
	o, err := s.GetStores().ODPRepo.Get(s.GetContext(), id)
	s.Require().NoError(err)
	return o
}

func (s *SlotLedgerServiceSuite) TestAssign() {
	s.newODP("odp_1", 8, 3)
	sub := s.newSubscriber("cust_1", nil)

	resp, err := s.service.Assign(s.GetContext(), &dto.SlotAssignmentRequest{
		SubscriberID: sub.ID,
		ODPID:        "odp_1",
	})
	s.NoError(err)
	s.Equal(4, resp.UsedSlots)
	s.Equal(4, resp.AvailableSlots)

	updated, err := s.GetStores().SubscriberRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Require().NotNil(updated.ODPID)
	s.Equal("odp_1", *updated.ODPID)
}

func (s *SlotLedgerServiceSuite) TestAssignFullODP() {
	s.newODP("odp_1", 4, 4)
	sub := s.newSubscriber("cust_1", nil)

	_, err := s.service.Assign(s.GetContext(), &dto.SlotAssignmentRequest{
		SubscriberID: sub.ID,
		ODPID:        "odp_1",
	})
	s.Error(err)
	s.True(ierr.IsCapacityExceeded(err))

	s.Equal(4, s.getODP("odp_1").UsedSlots)
	updated, err := s.GetStores().SubscriberRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Nil(updated.ODPID)
}

func (s *SlotLedgerServiceSuite) TestAssignTwiceRejected() {
	s.newODP("odp_1", 8, 0)
	sub := s.newSubscriber("cust_1", nil)

	_, err := s.service.Assign(s.GetContext(), &dto.SlotAssignmentRequest{SubscriberID: sub.ID, ODPID: "odp_1"})
	s.NoError(err)

	_, err = s.service.Assign(s.GetContext(), &dto.SlotAssignmentRequest{SubscriberID: sub.ID, ODPID: "odp_1"})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
	s.Equal(1, s.getODP("odp_1").UsedSlots)
}

func (s *SlotLedgerServiceSuite) TestReassign() {
	s.newODP("odp_1", 8, 5)
	s.newODP("odp_2", 8, 2)
	sub := s.newSubscriber("cust_1", lo.ToPtr("odp_1"))

	resp, err := s.service.Reassign(s.GetContext(), &dto.SlotAssignmentRequest{
		SubscriberID: sub.ID,
		ODPID:        "odp_2",
	})
	s.NoError(err)
	s.Equal("odp_2", resp.ID)

	s.Equal(4, s.getODP("odp_1").UsedSlots)
	s.Equal(3, s.getODP("odp_2").UsedSlots)

	updated, err := s.GetStores().SubscriberRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal("odp_2", *updated.ODPID)
}

func (s *SlotLedgerServiceSuite) TestReassignToFullTargetLeavesBothIntact() {
	s.newODP("odp_1", 8, 5)
	s.newODP("odp_2", 4, 4)
	sub := s.newSubscriber("cust_1", lo.ToPtr("odp_1"))

	_, err := s.service.Reassign(s.GetContext(), &dto.SlotAssignmentRequest{
		SubscriberID: sub.ID,
		ODPID:        "odp_2",
	})
	s.Error(err)
	s.True(ierr.IsCapacityExceeded(err))

	s.Equal(5, s.getODP("odp_1").UsedSlots)
	s.Equal(4, s.getODP("odp_2").UsedSlots)

	updated, err := s.GetStores().SubscriberRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal("odp_1", *updated.ODPID)
}

func (s *SlotLedgerServiceSuite) TestReassignWithoutSlot() {
	s.newODP("odp_1", 8, 0)
	sub := s.newSubscriber("cust_1", nil)

	_, err := s.service.Reassign(s.GetContext(), &dto.SlotAssignmentRequest{
		SubscriberID: sub.ID,
		ODPID:        "odp_1",
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SlotLedgerServiceSuite) TestRelease() {
	s.newODP("odp_1", 8, 3)
	sub := s.newSubscriber("cust_1", lo.ToPtr("odp_1"))

	s.NoError(s.service.Release(s.GetContext(), sub.ID))
	s.Equal(2, s.getODP("odp_1").UsedSlots)

	updated, err := s.GetStores().SubscriberRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Nil(updated.ODPID)

	// releasing again is a no-op
	s.NoError(s.service.Release(s.GetContext(), sub.ID))
	s.Equal(2, s.getODP("odp_1").UsedSlots)
}

func (s *SlotLedgerServiceSuite) TestReleaseClampsAtZero() {
	// a drifted counter must not go negative
	s.newODP("odp_1", 8, 0)
	sub := s.newSubscriber("cust_1", lo.ToPtr("odp_1"))

	s.NoError(s.service.Release(s.GetContext(), sub.ID))
	s.Equal(0, s.getODP("odp_1").UsedSlots)
}
