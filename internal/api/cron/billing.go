package cron

import (
	"net/http"
	"time"

	"github.com/fiberbill/fiberbill/internal/config"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/logger"
	"github.com/fiberbill/fiberbill/internal/service"
	"github.com/fiberbill/fiberbill/internal/types"
	"github.com/gin-gonic/gin"
)

// BillingHandler exposes the scheduled billing entry points. The scheduler
// hits these once a day; both underlying jobs are safe to re-trigger.
type BillingHandler struct {
	invoiceService    service.InvoiceService
	suspensionService service.SuspensionService
	config            *config.Configuration
	logger            *logger.Logger
}

// NewBillingHandler creates a new billing cron handler
func NewBillingHandler(
	invoiceService service.InvoiceService,
	suspensionService service.SuspensionService,
	cfg *config.Configuration,
	logger *logger.Logger,
) *BillingHandler {
	return &BillingHandler{
		invoiceService:    invoiceService,
		suspensionService: suspensionService,
		config:            cfg,
		logger:            logger,
	}
}

// GenerateInvoices handles POST /cron/billing/invoices
func (h *BillingHandler) GenerateInvoices(c *gin.Context) {
	now := time.Now().UTC()
	h.logger.Infow("invoice generation triggered", "run_at", now)

	summary, err := h.invoiceService.GenerateMonthlyInvoices(c.Request.Context(), now)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// RunSuspensions handles POST /cron/billing/suspensions
func (h *BillingHandler) RunSuspensions(c *gin.Context) {
	now := time.Now().UTC()
	h.logger.Infow("suspension sweep triggered", "run_at", now)

	summary, err := h.suspensionService.RunSuspensionCycle(c.Request.Context(), now)
	if err != nil {
		// the day gate is an expected outcome for a daily scheduler, not a
		// server fault
		if ierr.IsInvalidOperation(err) {
			loc := h.config.BusinessLocation()
			c.JSON(http.StatusOK, gin.H{
				"skipped":       true,
				"reason":        err.Error(),
				"next_run_date": types.NextMonthDay(now, h.config.Billing.SuspensionDay, loc),
			})
			return
		}
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
