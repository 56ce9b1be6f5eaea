package main

import (
	"context"
	"time"

	"github.com/fiberbill/fiberbill/internal/api"
	"github.com/fiberbill/fiberbill/internal/api/cron"
	v1 "github.com/fiberbill/fiberbill/internal/api/v1"
	"github.com/fiberbill/fiberbill/internal/cache"
	"github.com/fiberbill/fiberbill/internal/config"
	"github.com/fiberbill/fiberbill/internal/httpclient"
	"github.com/fiberbill/fiberbill/internal/integration/mikrotik"
	"github.com/fiberbill/fiberbill/internal/logger"
	"github.com/fiberbill/fiberbill/internal/postgres"
	"github.com/fiberbill/fiberbill/internal/repository"
	"github.com/fiberbill/fiberbill/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func init() {
	// Run in UTC; billing-cycle math converts to the business timezone
	// explicitly where it matters
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,
			func(c *cache.InMemoryCache) cache.Cache { return c },

			// Postgres
			postgres.NewDB,
			func(db *postgres.DB) postgres.IClient { return db },

			// HTTP client and router gateway
			httpclient.NewDefaultClient,
			mikrotik.NewClient,

			// Repositories
			repository.NewSubscriberRepository,
			repository.NewInvoiceRepository,
			repository.NewAddonItemRepository,
			repository.NewRouterRepository,
			repository.NewODPRepository,

			// Services
			service.NewServiceParams,
			service.NewSlotLedgerService,
			service.NewSubscriberService,
			service.NewInvoiceService,
			service.NewSuspensionService,
			service.NewRouterService,
			service.NewODPService,
			service.NewAddonItemService,

			// API
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)
	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	cfg *config.Configuration,
	subscriberService service.SubscriberService,
	slotLedgerService service.SlotLedgerService,
	invoiceService service.InvoiceService,
	suspensionService service.SuspensionService,
	routerService service.RouterService,
	odpService service.ODPService,
	addonItemService service.AddonItemService,
) api.Handlers {
	return api.Handlers{
		Health:      v1.NewHealthHandler(logger),
		Subscriber:  v1.NewSubscriberHandler(subscriberService, slotLedgerService, logger),
		Invoice:     v1.NewInvoiceHandler(invoiceService, logger),
		Billing:     v1.NewBillingHandler(suspensionService, logger),
		Router:      v1.NewRouterHandler(routerService, logger),
		ODP:         v1.NewODPHandler(odpService, logger),
		AddonItem:   v1.NewAddonItemHandler(addonItemService, logger),
		CronBilling: cron.NewBillingHandler(invoiceService, suspensionService, cfg, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration) *gin.Engine {
	return api.NewRouter(handlers, cfg)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	db *postgres.DB,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			db.Close()
			return nil
		},
	})
}
