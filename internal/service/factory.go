package service

import (
	"github.com/fiberbill/fiberbill/internal/cache"
	"github.com/fiberbill/fiberbill/internal/config"
	"github.com/fiberbill/fiberbill/internal/domain/addonitem"
	"github.com/fiberbill/fiberbill/internal/domain/invoice"
	"github.com/fiberbill/fiberbill/internal/domain/odp"
	"github.com/fiberbill/fiberbill/internal/domain/router"
	"github.com/fiberbill/fiberbill/internal/domain/subscriber"
	"github.com/fiberbill/fiberbill/internal/integration/mikrotik"
	"github.com/fiberbill/fiberbill/internal/logger"
	"github.com/fiberbill/fiberbill/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Cache  cache.Cache

	// Repositories
	SubscriberRepo subscriber.Repository
	InvoiceRepo    invoice.Repository
	AddonItemRepo  addonitem.Repository
	RouterRepo     router.Repository
	ODPRepo        odp.Repository

	// Router control gateway
	Gateway mikrotik.Gateway
}

// NewServiceParams assembles the common service dependencies
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	cache cache.Cache,
	subscriberRepo subscriber.Repository,
	invoiceRepo invoice.Repository,
	addonItemRepo addonitem.Repository,
	routerRepo router.Repository,
	odpRepo odp.Repository,
	gateway mikrotik.Gateway,
) ServiceParams {
	return ServiceParams{
		Logger:         logger,
		Config:         config,
		DB:             db,
		Cache:          cache,
		SubscriberRepo: subscriberRepo,
		InvoiceRepo:    invoiceRepo,
		AddonItemRepo:  addonItemRepo,
		RouterRepo:     routerRepo,
		ODPRepo:        odpRepo,
		Gateway:        gateway,
	}
}
