package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"servicecenter/internal/domain/employee"
)

// EmployeeService is the staff surface used by EmployeeHandler.
type EmployeeService interface {
	List(ctx context.Context) ([]employee.Summary, error)
	ListStandard(ctx context.Context) ([]employee.Summary, error)
	Create(ctx context.Context, in employee.CreateInput) (*employee.Employee, error)
	Delete(ctx context.Context, in employee.LeaveInput) error
}

// EmployeeHandler handles employee endpoints.
type EmployeeHandler struct {
	*BaseHandler
	service EmployeeService
}

// NewEmployeeHandler creates an employee handler.
func NewEmployeeHandler(base *BaseHandler, service EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{BaseHandler: base, service: service}
}

// List handles GET /employees
func (h *EmployeeHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": items})
}

// ListStandard handles GET /employees/standard
func (h *EmployeeHandler) ListStandard(c *gin.Context) {
	items, err := h.service.ListStandard(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": items})
}

// Create handles POST /employees
func (h *EmployeeHandler) Create(c *gin.Context) {
	var in employee.CreateInput
	if !h.BindJSON(c, &in) {
		return
	}
	created, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, created)
}

// Delete handles POST /employees/leave
func (h *EmployeeHandler) Delete(c *gin.Context) {
	var in employee.LeaveInput
	if !h.BindJSON(c, &in) {
		return
	}
	if err := h.service.Delete(c.Request.Context(), in); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "employee deleted")
}

// RegisterRoutes registers employee routes. Changes go to the admin group.
func (h *EmployeeHandler) RegisterRoutes(rg, admin *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/standard", h.ListStandard)

	admin.POST("", h.Create)
	admin.POST("/leave", h.Delete)
}
