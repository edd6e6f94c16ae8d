package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"servicecenter/internal/domain"
	"servicecenter/internal/domain/grc"
	"servicecenter/internal/domain/reconcile"
)

// GRCService is the goods-return surface used by GRCHandler.
type GRCService interface {
	Upload(ctx context.Context, data []byte, filename string) (reconcile.Result, error)
	NotReceivedNumbers(ctx context.Context) ([]int, error)
	NotReceived(ctx context.Context, grcNumber int) ([]grc.Line, error)
	Receive(ctx context.Context, lines []grc.ReceiveInput) (int, error)
	ReturnsByDivision(ctx context.Context, division string) ([]grc.Line, error)
	SaveReturn(ctx context.Context, lines []grc.ReturnInput) (int, error)
	NextChallanNumber(ctx context.Context) (string, error)
	FinalizeReturn(ctx context.Context, in grc.FinalizeInput) (*grc.FinalizeResult, error)
	Enquiry(ctx context.Context, q grc.Query) (domain.ListResult[grc.EnquiryRow], error)
	ChallanReport(ctx context.Context, challanType string, req grc.ChallanRequest) ([]byte, error)
}

// GRCHandler handles goods receipt and return endpoints.
type GRCHandler struct {
	*BaseHandler
	service GRCService
}

// NewGRCHandler creates a GRC handler.
func NewGRCHandler(base *BaseHandler, service GRCService) *GRCHandler {
	return &GRCHandler{BaseHandler: base, service: service}
}

type receiveRequest struct {
	Lines []grc.ReceiveInput `json:"grc_rows" binding:"required,min=1"`
}

type returnRequest struct {
	Lines []grc.ReturnInput `json:"grc_rows" binding:"required,min=1"`
}

// Upload handles POST /grc/upload
func (h *GRCHandler) Upload(c *gin.Context) {
	data, name, ok := h.ReadUpload(c)
	if !ok {
		return
	}
	res, err := h.service.Upload(c.Request.Context(), data, name)
	h.Reconciled(c, res, err)
}

// NotReceivedNumbers handles GET /grc/receipts
func (h *GRCHandler) NotReceivedNumbers(c *gin.Context) {
	numbers, err := h.service.NotReceivedNumbers(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"grc_numbers": numbers})
}

// NotReceived handles GET /grc/receipts/:grc
func (h *GRCHandler) NotReceived(c *gin.Context) {
	n, ok := h.ParseIntParam(c, "grc")
	if !ok {
		return
	}
	lines, err := h.service.NotReceived(c.Request.Context(), n)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": lines})
}

// Receive handles POST /grc/receipts
func (h *GRCHandler) Receive(c *gin.Context) {
	var req receiveRequest
	if !h.BindJSON(c, &req) {
		return
	}
	n, err := h.service.Receive(c.Request.Context(), req.Lines)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, CountResponse{Count: int64(n)})
}

// ReturnsByDivision handles GET /grc/returns?division=
func (h *GRCHandler) ReturnsByDivision(c *gin.Context) {
	lines, err := h.service.ReturnsByDivision(c.Request.Context(), c.Query("division"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": lines})
}

// SaveReturn handles PUT /grc/returns
func (h *GRCHandler) SaveReturn(c *gin.Context) {
	var req returnRequest
	if !h.BindJSON(c, &req) {
		return
	}
	n, err := h.service.SaveReturn(c.Request.Context(), req.Lines)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, CountResponse{Count: int64(n)})
}

// NextChallanNumber handles GET /grc/challans/next-number
func (h *GRCHandler) NextChallanNumber(c *gin.Context) {
	n, err := h.service.NextChallanNumber(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"challan_number": n})
}

// FinalizeReturn handles POST /grc/challans
func (h *GRCHandler) FinalizeReturn(c *gin.Context) {
	var in grc.FinalizeInput
	if !h.BindJSON(c, &in) {
		return
	}
	res, err := h.service.FinalizeReturn(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, res)
}

// ChallanReport handles POST /grc/challans/report/:type and answers a PDF.
func (h *GRCHandler) ChallanReport(c *gin.Context) {
	var req grc.ChallanRequest
	if !h.BindJSON(c, &req) {
		return
	}
	challanType := c.Param("type")
	data, err := h.service.ChallanReport(c.Request.Context(), challanType, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	name := strings.ToLower(challanType) + "-" + req.ChallanNumber + ".pdf"
	h.Attachment(c, name, "application/pdf", data)
}

// Enquiry handles GET /grc
func (h *GRCHandler) Enquiry(c *gin.Context) {
	var q grc.Query
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

// RegisterRoutes registers GRC routes. Uploads go to the admin group.
func (h *GRCHandler) RegisterRoutes(rg, admin *gin.RouterGroup) {
	admin.POST("/upload", h.Upload)

	rg.GET("", h.Enquiry)

	receipts := rg.Group("/receipts")
	receipts.GET("", h.NotReceivedNumbers)
	receipts.GET("/:grc", h.NotReceived)
	receipts.POST("", h.Receive)

	returns := rg.Group("/returns")
	returns.GET("", h.ReturnsByDivision)
	returns.PUT("", h.SaveReturn)

	challans := rg.Group("/challans")
	challans.GET("/next-number", h.NextChallanNumber)
	challans.POST("", h.FinalizeReturn)
	challans.POST("/report/:type", h.ChallanReport)
}
