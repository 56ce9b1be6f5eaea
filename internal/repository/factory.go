package repository

import (
	"github.com/fiberbill/fiberbill/internal/domain/addonitem"
	"github.com/fiberbill/fiberbill/internal/domain/invoice"
	"github.com/fiberbill/fiberbill/internal/domain/odp"
	"github.com/fiberbill/fiberbill/internal/domain/router"
	"github.com/fiberbill/fiberbill/internal/domain/subscriber"
	"github.com/fiberbill/fiberbill/internal/logger"
	"github.com/fiberbill/fiberbill/internal/postgres"
	postgresRepo "github.com/fiberbill/fiberbill/internal/repository/postgres"
)

func NewSubscriberRepository(db *postgres.DB, logger *logger.Logger) subscriber.Repository {
	return postgresRepo.NewSubscriberRepository(db, logger)
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

func NewAddonItemRepository(db *postgres.DB, logger *logger.Logger) addonitem.Repository {
	return postgresRepo.NewAddonItemRepository(db, logger)
}

func NewRouterRepository(db *postgres.DB, logger *logger.Logger) router.Repository {
	return postgresRepo.NewRouterRepository(db, logger)
}

func NewODPRepository(db *postgres.DB, logger *logger.Logger) odp.Repository {
	return postgresRepo.NewODPRepository(db, logger)
}
