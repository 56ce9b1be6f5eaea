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

type AddonItemHandler struct {
	service service.AddonItemService
	log     *logger.Logger
}

func NewAddonItemHandler(service service.AddonItemService, log *logger.Logger) *AddonItemHandler {
	return &AddonItemHandler{service: service, log: log}
}

// CreateAddonItem handles POST /addon-items
func (h *AddonItemHandler) CreateAddonItem(c *gin.Context) {
	var req dto.CreateAddonItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateAddonItem(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetAddonItem handles GET /addon-items/:id
func (h *AddonItemHandler) GetAddonItem(c *gin.Context) {
	resp, err := h.service.GetAddonItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListAddonItems handles GET /addon-items
func (h *AddonItemHandler) ListAddonItems(c *gin.Context) {
	var filter types.AddonItemFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}

	resp, err := h.service.ListAddonItems(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteAddonItem handles DELETE /addon-items/:id
func (h *AddonItemHandler) DeleteAddonItem(c *gin.Context) {
	if err := h.service.DeleteAddonItem(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "addon item deleted"})
}
