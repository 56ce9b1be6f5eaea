package service

import (
	"testing"

	"github.com/fiberbill/fiberbill/internal/api/dto"
	"github.com/fiberbill/fiberbill/internal/domain/odp"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/testutil"
	"github.com/fiberbill/fiberbill/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SubscriberServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SubscriberService
}

func TestSubscriberService(t *testing.T) {
	suite.Run(t, new(SubscriberServiceSuite))
}

func (s *SubscriberServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	params := ServiceParams{
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
	s.service = NewSubscriberService(params, NewSlotLedgerService(params))
}

func (s *SubscriberServiceSuite) newODP(id string, total, used int) *odp.ODP {
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

func (s *SubscriberServiceSuite) TestCreateSubscriber() {
	resp, err := s.service.CreateSubscriber(s.GetContext(), &dto.CreateSubscriberRequest{
		Name:         "Budi Santoso",
		Phone:        "+62811111111",
		PackagePrice: decimal.NewFromInt(300000),
	})
	s.NoError(err)
	s.NotEmpty(resp.ID)
	s.NotEmpty(resp.Number)

	// a fresh subscriber starts in good standing
	s.Equal(types.BillingStatusPaid, resp.BillingStatus)
	s.Equal(types.ServiceStatusActive, resp.ServiceStatus)
	s.Equal(types.RouterAccountStatusActive, resp.RouterAccountStatus)
	s.Equal(types.BillingTypePrepaid, resp.BillingType)
	s.NotNil(resp.ActiveDate)
}

func (s *SubscriberServiceSuite) TestCreateSubscriberRequiresName() {
	_, err := s.service.CreateSubscriber(s.GetContext(), &dto.CreateSubscriberRequest{
		PackagePrice: decimal.NewFromInt(300000),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *SubscriberServiceSuite) TestCreateWithODPAssignsSlot() {
	o := s.newODP("odp_1", 8, 3)

	resp, err := s.service.CreateSubscriber(s.GetContext(), &dto.CreateSubscriberRequest{
		Name:         "Budi Santoso",
		PackagePrice: decimal.NewFromInt(300000),
		ODPID:        lo.ToPtr(o.ID),
	})
	s.NoError(err)
	s.Equal(o.ID, *resp.ODPID)

	stored, err := s.GetStores().ODPRepo.Get(s.GetContext(), o.ID)
	s.NoError(err)
	s.Equal(4, stored.UsedSlots)
}

func (s *SubscriberServiceSuite) TestCreateWithFullODPFails() {
	o := s.newODP("odp_1", 4, 4)

	_, err := s.service.CreateSubscriber(s.GetContext(), &dto.CreateSubscriberRequest{
		Name:         "Budi Santoso",
		PackagePrice: decimal.NewFromInt(300000),
		ODPID:        lo.ToPtr(o.ID),
	})
	s.Error(err)
	s.True(ierr.IsCapacityExceeded(err))

	stored, err := s.GetStores().ODPRepo.Get(s.GetContext(), o.ID)
	s.NoError(err)
	s.Equal(4, stored.UsedSlots)
}

func (s *SubscriberServiceSuite) TestUpdateSubscriber() {
	created, err := s.service.CreateSubscriber(s.GetContext(), &dto.CreateSubscriberRequest{
		Name:         "Budi Santoso",
		PackagePrice: decimal.NewFromInt(300000),
	})
	s.Require().NoError(err)

	updated, err := s.service.UpdateSubscriber(s.GetContext(), created.ID, &dto.UpdateSubscriberRequest{
		PackagePrice: lo.ToPtr(decimal.NewFromInt(350000)),
		Discount:     lo.ToPtr(decimal.NewFromInt(25000)),
	})
	s.NoError(err)
	s.True(updated.PackagePrice.Equal(decimal.NewFromInt(350000)))
	s.True(updated.Discount.Equal(decimal.NewFromInt(25000)))
	s.Equal("Budi Santoso", updated.Name)
}

func (s *SubscriberServiceSuite) TestDeleteReleasesSlot() {
	o := s.newODP("odp_1", 8, 0)

	created, err := s.service.CreateSubscriber(s.GetContext(), &dto.CreateSubscriberRequest{
		Name:         "Budi Santoso",
		PackagePrice: decimal.NewFromInt(300000),
		ODPID:        lo.ToPtr(o.ID),
	})
	s.Require().NoError(err)

	s.NoError(s.service.DeleteSubscriber(s.GetContext(), created.ID))

	stored, err := s.GetStores().ODPRepo.Get(s.GetContext(), o.ID)
	s.NoError(err)
	s.Equal(0, stored.UsedSlots)

	_, err = s.service.GetSubscriber(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *SubscriberServiceSuite) TestListSubscribers() {
	for _, name := range []string{"Budi Santoso", "Siti Rahma", "Agus Wijaya"} {
		_, err := s.service.CreateSubscriber(s.GetContext(), &dto.CreateSubscriberRequest{
			Name:         name,
			PackagePrice: decimal.NewFromInt(300000),
		})
		s.Require().NoError(err)
	}

	resp, err := s.service.ListSubscribers(s.GetContext(), types.NewNoLimitSubscriberFilter())
	s.NoError(err)
	s.Equal(3, resp.Total)
	s.Len(resp.Items, 3)
}
