package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"servicecenter/internal/domain/customer"
)

// CustomerService is the customer master surface used by CustomerHandler.
type CustomerService interface {
	Create(ctx context.Context, in customer.Details) (*customer.Customer, error)
	NextCode(ctx context.Context) (string, error)
	Names(ctx context.Context) ([]string, error)
	GetByCode(ctx context.Context, code string) (*customer.Customer, error)
	GetByName(ctx context.Context, name string) (*customer.Customer, error)
	Update(ctx context.Context, code string, in customer.Details) (*customer.Customer, error)
}

// CustomerHandler handles customer endpoints.
type CustomerHandler struct {
	*BaseHandler
	service CustomerService
}

// NewCustomerHandler creates a customer handler.
func NewCustomerHandler(base *BaseHandler, service CustomerService) *CustomerHandler {
	return &CustomerHandler{BaseHandler: base, service: service}
}

// Create handles POST /customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var in customer.Details
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

// NextCode handles GET /customers/next-code
func (h *CustomerHandler) NextCode(c *gin.Context) {
	code, err := h.service.NextCode(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"customer_code": code})
}

// Names handles GET /customers/names
func (h *CustomerHandler) Names(c *gin.Context) {
	names, err := h.service.Names(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": names})
}

// Get handles GET /customers/:code
func (h *CustomerHandler) Get(c *gin.Context) {
	item, err := h.service.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// GetByName handles GET /customers/by-name?name=
func (h *CustomerHandler) GetByName(c *gin.Context) {
	item, err := h.service.GetByName(c.Request.Context(), c.Query("name"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// Update handles PUT /customers/:code
func (h *CustomerHandler) Update(c *gin.Context) {
	var in customer.Details
	if !h.BindJSON(c, &in) {
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("code"), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// RegisterRoutes registers customer routes.
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/next-code", h.NextCode)
	rg.GET("/names", h.Names)
	rg.GET("/by-name", h.GetByName)
	rg.GET("/:code", h.Get)
	rg.PUT("/:code", h.Update)
}
