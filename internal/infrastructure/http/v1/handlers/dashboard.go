package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"servicecenter/internal/domain/dashboard"
)

// DashboardService is the aggregation surface used by DashboardHandler.
type DashboardService interface {
	Complaints(ctx context.Context) (*dashboard.ComplaintOverview, error)
	Stock(ctx context.Context) (*dashboard.StockOverview, error)
	GRC(ctx context.Context) (*dashboard.GRCOverview, error)
}

// DashboardHandler serves the dashboard counters.
type DashboardHandler struct {
	*BaseHandler
	service DashboardService
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(base *BaseHandler, service DashboardService) *DashboardHandler {
	return &DashboardHandler{BaseHandler: base, service: service}
}

// Complaints handles GET /dashboard/complaints
func (h *DashboardHandler) Complaints(c *gin.Context) {
	out, err := h.service.Complaints(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, out)
}

// Stock handles GET /dashboard/stock
func (h *DashboardHandler) Stock(c *gin.Context) {
	out, err := h.service.Stock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, out)
}

// GRC handles GET /dashboard/grc
func (h *DashboardHandler) GRC(c *gin.Context) {
	out, err := h.service.GRC(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, out)
}

// RegisterRoutes registers dashboard routes.
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/complaints", h.Complaints)
	rg.GET("/stock", h.Stock)
	rg.GET("/grc", h.GRC)
}
