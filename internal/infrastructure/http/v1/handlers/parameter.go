package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"servicecenter/internal/domain/parameter"
)

// ParameterService is the settings surface used by ParameterHandler.
type ParameterService interface {
	Get(ctx context.Context) (*parameter.Parameters, error)
	Update(ctx context.Context, in parameter.Parameters) (*parameter.Parameters, error)
}

// ParameterHandler handles company settings endpoints.
type ParameterHandler struct {
	*BaseHandler
	service ParameterService
}

// NewParameterHandler creates a parameter handler.
func NewParameterHandler(base *BaseHandler, service ParameterService) *ParameterHandler {
	return &ParameterHandler{BaseHandler: base, service: service}
}

// Get handles GET /parameters
func (h *ParameterHandler) Get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Update handles PUT /parameters
func (h *ParameterHandler) Update(c *gin.Context) {
	var in parameter.Parameters
	if !h.BindJSON(c, &in) {
		return
	}
	p, err := h.service.Update(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// RegisterRoutes registers the settings routes on the admin group.
func (h *ParameterHandler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("", h.Get)
	admin.PUT("", h.Update)
}
