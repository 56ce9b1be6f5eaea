package api

import (
	"github.com/fiberbill/fiberbill/internal/api/cron"
	v1 "github.com/fiberbill/fiberbill/internal/api/v1"
	"github.com/fiberbill/fiberbill/internal/config"
	"github.com/fiberbill/fiberbill/internal/rest/middleware"
	"github.com/fiberbill/fiberbill/internal/types"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health     *v1.HealthHandler
	Subscriber *v1.SubscriberHandler
	Invoice    *v1.InvoiceHandler
	Billing    *v1.BillingHandler
	Router     *v1.RouterHandler
	ODP        *v1.ODPHandler
	AddonItem  *v1.AddonItemHandler

	CronBilling *cron.BillingHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration) *gin.Engine {
	if cfg.Logging.Level != types.LogLevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	cronGroup := router.Group("/cron")
	registerCronRoutes(cronGroup, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	subscribers := router.Group("/subscribers")
	{
		subscribers.POST("", handlers.Subscriber.CreateSubscriber)
		subscribers.GET("", handlers.Subscriber.ListSubscribers)
		subscribers.GET("/:id", handlers.Subscriber.GetSubscriber)
		subscribers.PUT("/:id", handlers.Subscriber.UpdateSubscriber)
		subscribers.DELETE("/:id", handlers.Subscriber.DeleteSubscriber)
		subscribers.POST("/:id/odp", handlers.Subscriber.AssignSlot)
		subscribers.PUT("/:id/odp", handlers.Subscriber.ReassignSlot)
		subscribers.DELETE("/:id/odp", handlers.Subscriber.ReleaseSlot)
		subscribers.POST("/:id/invoices", handlers.Invoice.GenerateForSubscriber)
		subscribers.GET("/:id/gateway-status", handlers.Billing.GatewayStatus)
	}

	invoices := router.Group("/invoices")
	{
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.POST("/:id/pay", handlers.Invoice.PayInvoice)
		invoices.POST("/:id/cancel", handlers.Invoice.CancelInvoice)
	}

	billing := router.Group("/billing")
	{
		billing.POST("/suspend", handlers.Billing.Suspend)
		billing.POST("/reinstate", handlers.Billing.Reinstate)
		billing.POST("/proration/preview", handlers.Invoice.PreviewProration)
	}

	routers := router.Group("/routers")
	{
		routers.POST("", handlers.Router.CreateRouter)
		routers.GET("", handlers.Router.ListRouters)
		routers.GET("/:id", handlers.Router.GetRouter)
		routers.PUT("/:id", handlers.Router.UpdateRouter)
		routers.DELETE("/:id", handlers.Router.DeleteRouter)
	}

	odps := router.Group("/odps")
	{
		odps.POST("", handlers.ODP.CreateODP)
		odps.GET("", handlers.ODP.ListODPs)
		odps.GET("/:id", handlers.ODP.GetODP)
		odps.PUT("/:id", handlers.ODP.UpdateODP)
		odps.DELETE("/:id", handlers.ODP.DeleteODP)
	}

	addonItems := router.Group("/addon-items")
	{
		addonItems.POST("", handlers.AddonItem.CreateAddonItem)
		addonItems.GET("", handlers.AddonItem.ListAddonItems)
		addonItems.GET("/:id", handlers.AddonItem.GetAddonItem)
		addonItems.DELETE("/:id", handlers.AddonItem.DeleteAddonItem)
	}
}

func registerCronRoutes(router *gin.RouterGroup, handlers Handlers) {
	billing := router.Group("/billing")
	{
		billing.POST("/invoices", handlers.CronBilling.GenerateInvoices)
		billing.POST("/suspensions", handlers.CronBilling.RunSuspensions)
	}
}
