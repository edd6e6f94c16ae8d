package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"servicecenter/internal/domain"
	"servicecenter/internal/domain/reconcile"
	"servicecenter/internal/domain/stock"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StockService is the stock surface used by StockHandler.
type StockService interface {
	Upload(ctx context.Context, data []byte, filename string) (reconcile.Result, error)
	Enquiry(ctx context.Context, q stock.Query) (domain.ListResult[stock.Item], error)
	Get(ctx context.Context, code string) (*stock.Item, error)
	Catalog(ctx context.Context, division string) ([]stock.CatalogEntry, error)
	SetIndent(ctx context.Context, code string, in stock.IndentInput) (*stock.Item, error)
	PendingIndent(ctx context.Context, division string) ([]stock.Item, error)
	NextIndentNumber(ctx context.Context) (string, error)
	GenerateIndent(ctx context.Context, in stock.GenerateInput) (*stock.IndentResult, error)
	Move(ctx context.Context, in stock.MoveInput) (*stock.Item, error)
	IndentEnquiry(ctx context.Context, q stock.IndentQuery) (domain.ListResult[stock.Indent], error)
	ExportEnquiry(ctx context.Context, q stock.Query) ([]byte, error)
}

// StockHandler handles spare stock and indent endpoints.
type StockHandler struct {
	*BaseHandler
	service StockService
}

// NewStockHandler creates a stock handler.
func NewStockHandler(base *BaseHandler, service StockService) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service}
}

// Upload handles POST /stock/upload
func (h *StockHandler) Upload(c *gin.Context) {
	data, name, ok := h.ReadUpload(c)
	if !ok {
		return
	}
	res, err := h.service.Upload(c.Request.Context(), data, name)
	h.Reconciled(c, res, err)
}

// Enquiry handles GET /stock
func (h *StockHandler) Enquiry(c *gin.Context) {
	var q stock.Query
	if !h.BindQuery(c, &q) {
		return
	}
	list, err := h.service.Enquiry(c.Request.Context(), q)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, list)
}

// Export handles GET /stock/export
func (h *StockHandler) Export(c *gin.Context) {
	var q stock.Query
	if !h.BindQuery(c, &q) {
		return
	}
	data, err := h.service.ExportEnquiry(c.Request.Context(), q)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Attachment(c, "stock.xlsx", xlsxContentType, data)
}

// Catalog handles GET /stock/catalog?division=
func (h *StockHandler) Catalog(c *gin.Context) {
	entries, err := h.service.Catalog(c.Request.Context(), c.Query("division"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": entries})
}

// Get handles GET /stock/spares/:code
func (h *StockHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// SetIndent handles PUT /stock/spares/:code/indent
func (h *StockHandler) SetIndent(c *gin.Context) {
	var in stock.IndentInput
	if !h.BindJSON(c, &in) {
		return
	}
	item, err := h.service.SetIndent(c.Request.Context(), c.Param("code"), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// Move handles POST /stock/movements
func (h *StockHandler) Move(c *gin.Context) {
	var in stock.MoveInput
	if !h.BindJSON(c, &in) {
		return
	}
	item, err := h.service.Move(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// PendingIndent handles GET /stock/indents/pending?division=
func (h *StockHandler) PendingIndent(c *gin.Context) {
	items, err := h.service.PendingIndent(c.Request.Context(), c.Query("division"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": items})
}

// NextIndentNumber handles GET /stock/indents/next-number
func (h *StockHandler) NextIndentNumber(c *gin.Context) {
	n, err := h.service.NextIndentNumber(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"indent_number": n})
}

// GenerateIndent handles POST /stock/indents
func (h *StockHandler) GenerateIndent(c *gin.Context) {
	var in stock.GenerateInput
	if !h.BindJSON(c, &in) {
		return
	}
	res, err := h.service.GenerateIndent(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, res)
}

// IndentEnquiry handles GET /stock/indents
func (h *StockHandler) IndentEnquiry(c *gin.Context) {
	var q stock.IndentQuery
	if !h.BindQuery(c, &q) {
		return
	}
	list, err := h.service.IndentEnquiry(c.Request.Context(), q)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, list)
}

// RegisterRoutes registers stock routes. Uploads go to the admin group.
func (h *StockHandler) RegisterRoutes(rg, admin *gin.RouterGroup) {
	admin.POST("/upload", h.Upload)

	rg.GET("", h.Enquiry)
	rg.GET("/export", h.Export)
	rg.GET("/catalog", h.Catalog)
	rg.GET("/spares/:code", h.Get)
	rg.PUT("/spares/:code/indent", h.SetIndent)
	rg.POST("/movements", h.Move)

	indents := rg.Group("/indents")
	indents.GET("", h.IndentEnquiry)
	indents.POST("", h.GenerateIndent)
	indents.GET("/pending", h.PendingIndent)
	indents.GET("/next-number", h.NextIndentNumber)
}
