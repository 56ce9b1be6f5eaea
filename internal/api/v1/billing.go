package v1

import (
	"net/http"

	"github.com/fiberbill/fiberbill/internal/api/dto"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/logger"
	"github.com/fiberbill/fiberbill/internal/service"
	"github.com/gin-gonic/gin"
)

// BillingHandler exposes manual service control: suspend, reinstate, and
// live gateway status probes
type BillingHandler struct {
	suspension service.SuspensionService
	log        *logger.Logger
}

func NewBillingHandler(suspension service.SuspensionService, log *logger.Logger) *BillingHandler {
	return &BillingHandler{suspension: suspension, log: log}
}

// Suspend handles POST /billing/suspend
func (h *BillingHandler) Suspend(c *gin.Context) {
	var req dto.ServiceControlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.suspension.Suspend(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Reinstate handles POST /billing/reinstate
func (h *BillingHandler) Reinstate(c *gin.Context) {
	var req dto.ServiceControlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.suspension.Reinstate(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GatewayStatus handles GET /subscribers/:id/gateway-status
func (h *BillingHandler) GatewayStatus(c *gin.Context) {
	resp, err := h.suspension.GatewayStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
