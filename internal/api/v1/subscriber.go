package v1

import (
	"net/http"

	"github.com/fiberbill/fiberbill/internal/api/dto"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/logger"
	"github.com/fiberbill/fiberbill/internal/service"
	"github.com/fiberbill/fiberbill/internal/types"
	"github.com/gin-gonic/gin"
)

type SubscriberHandler struct {
	service    service.SubscriberService
	slotLedger service.SlotLedgerService
	log        *logger.Logger
}

func NewSubscriberHandler(
	service service.SubscriberService,
	slotLedger service.SlotLedgerService,
	log *logger.Logger,
) *SubscriberHandler {
	return &SubscriberHandler{
		service:    service,
		slotLedger: slotLedger,
		log:        log,
	}
}

// CreateSubscriber handles POST /subscribers
func (h *SubscriberHandler) CreateSubscriber(c *gin.Context) {
	var req dto.CreateSubscriberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateSubscriber(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetSubscriber handles GET /subscribers/:id
func (h *SubscriberHandler) GetSubscriber(c *gin.Context) {
	resp, err := h.service.GetSubscriber(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListSubscribers handles GET /subscribers
func (h *SubscriberHandler) ListSubscribers(c *gin.Context) {
	var filter types.SubscriberFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}

	resp, err := h.service.ListSubscribers(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateSubscriber handles PUT /subscribers/:id
func (h *SubscriberHandler) UpdateSubscriber(c *gin.Context) {
	var req dto.UpdateSubscriberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateSubscriber(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteSubscriber handles DELETE /subscribers/:id
func (h *SubscriberHandler) DeleteSubscriber(c *gin.Context) {
	if err := h.service.DeleteSubscriber(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "subscriber deleted"})
}

// AssignSlot handles POST /subscribers/:id/odp
func (h *SubscriberHandler) AssignSlot(c *gin.Context) {
	var req dto.SlotAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	req.SubscriberID = c.Param("id")

	resp, err := h.slotLedger.Assign(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ReassignSlot handles PUT /subscribers/:id/odp
func (h *SubscriberHandler) ReassignSlot(c *gin.Context) {
	var req dto.SlotAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	req.SubscriberID = c.Param("id")

	resp, err := h.slotLedger.Reassign(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ReleaseSlot handles DELETE /subscribers/:id/odp
func (h *SubscriberHandler) ReleaseSlot(c *gin.Context) {
	if err := h.slotLedger.Release(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "slot released"})
}
