package v1

import (
	"net/http"

	"github.com/fiberbill/fiberbill/internal/api/dto"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/logger"
	"github.com/fiberbill/fiberbill/internal/service"
	"github.com/gin-gonic/gin"
)

type RouterHandler struct {
	service service.RouterService
	log     *logger.Logger
}

func NewRouterHandler(service service.RouterService, log *logger.Logger) *RouterHandler {
	return &RouterHandler{service: service, log: log}
}

// CreateRouter handles POST /routers
func (h *RouterHandler) CreateRouter(c *gin.Context) {
	var req dto.CreateRouterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateRouter(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetRouter handles GET /routers/:id
func (h *RouterHandler) GetRouter(c *gin.Context) {
	resp, err := h.service.GetRouter(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListRouters handles GET /routers
func (h *RouterHandler) ListRouters(c *gin.Context) {
	resp, err := h.service.ListRouters(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateRouter handles PUT /routers/:id
func (h *RouterHandler) UpdateRouter(c *gin.Context) {
	var req dto.UpdateRouterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateRouter(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteRouter handles DELETE /routers/:id
func (h *RouterHandler) DeleteRouter(c *gin.Context) {
	if err := h.service.DeleteRouter(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "router deleted"})
}
