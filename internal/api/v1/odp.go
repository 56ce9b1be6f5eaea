package v1

import (
	"net/http"

	"github.com/fiberbill/fiberbill/internal/api/dto"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/logger"
	"github.com/fiberbill/fiberbill/internal/service"
	"github.com/gin-gonic/gin"
)

type ODPHandler struct {
	service service.ODPService
	log     *logger.Logger
}

func NewODPHandler(service service.ODPService, log *logger.Logger) *ODPHandler {
	return &ODPHandler{service: service, log: log}
}

// CreateODP handles POST /odps
func (h *ODPHandler) CreateODP(c *gin.Context) {
	var req dto.CreateODPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateODP(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetODP handles GET /odps/:id
func (h *ODPHandler) GetODP(c *gin.Context) {
	resp, err := h.service.GetODP(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListODPs handles GET /odps
func (h *ODPHandler) ListODPs(c *gin.Context) {
	resp, err := h.service.ListODPs(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateODP handles PUT /odps/:id
func (h *ODPHandler) UpdateODP(c *gin.Context) {
	var req dto.UpdateODPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateODP(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteODP handles DELETE /odps/:id
func (h *ODPHandler) DeleteODP(c *gin.Context) {
	if err := h.service.DeleteODP(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "odp deleted"})
}
