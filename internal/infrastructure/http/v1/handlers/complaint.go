package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"servicecenter/internal/domain"
	"servicecenter/internal/domain/complaint"
	"servicecenter/internal/domain/mail"
	"servicecenter/internal/domain/reconcile"
)

// ComplaintService is the complaint surface used by ComplaintHandler.
type ComplaintService interface {
	Upload(ctx context.Context, data []byte, filename string) (reconcile.Result, error)
	Enquiry(ctx context.Context, q complaint.Query) (domain.ListResult[complaint.Complaint], error)
	Create(ctx context.Context, in complaint.CreateInput, entryType string) (*complaint.Complaint, error)
	Get(ctx context.Context, number string) (*complaint.Complaint, error)
	Update(ctx context.Context, number string, patch complaint.Patch) (*complaint.Complaint, error)
	GetForRFR(ctx context.Context, number string) (*complaint.Complaint, error)
	CreateRFR(ctx context.Context, number string, in complaint.RFRInput) (string, error)
	Reallocate(ctx context.Context, from, to string, numbers []string) (int64, error)
	MarkMailSent(ctx context.Context, numbers []string) (int64, error)
	PendingMail(ctx context.Context, to mail.Recipient) (*mail.Message, error)
	SendPendingMail(ctx context.Context, recipients []mail.Recipient) (int, error)
}

// ComplaintHandler handles complaint endpoints.
type ComplaintHandler struct {
	*BaseHandler
	service ComplaintService
}

// NewComplaintHandler creates a complaint handler.
func NewComplaintHandler(base *BaseHandler, service ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{BaseHandler: base, service: service}
}

type reallocateRequest struct {
	From    string   `json:"from" binding:"required"`
	To      string   `json:"to" binding:"required"`
	Numbers []string `json:"complaint_numbers" binding:"required,min=1"`
}

type numbersRequest struct {
	Numbers []string `json:"complaint_numbers" binding:"required,min=1"`
}

type recipientsRequest struct {
	Recipients []mail.Recipient `json:"recipients" binding:"required,min=1,dive"`
}

// Upload handles POST /complaints/upload
func (h *ComplaintHandler) Upload(c *gin.Context) {
	data, name, ok := h.ReadUpload(c)
	if !ok {
		return
	}
	res, err := h.service.Upload(c.Request.Context(), data, name)
	h.Reconciled(c, res, err)
}

// Enquiry handles GET /complaints
func (h *ComplaintHandler) Enquiry(c *gin.Context) {
	var q complaint.Query
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

// Create handles POST /complaints and POST /complaints/crm
func (h *ComplaintHandler) Create(entryType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in complaint.CreateInput
		if !h.BindJSON(c, &in) {
			return
		}
		created, err := h.service.Create(c.Request.Context(), in, entryType)
		if err != nil {
			h.Error(c, err)
			return
		}
		h.Created(c, created)
	}
}

// Get handles GET /complaints/:number
func (h *ComplaintHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// Update handles PATCH /complaints/:number
func (h *ComplaintHandler) Update(c *gin.Context) {
	var patch complaint.Patch
	if !h.BindJSON(c, &patch) {
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("number"), patch)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// GetForRFR handles GET /complaints/:number/rfr
func (h *ComplaintHandler) GetForRFR(c *gin.Context) {
	item, err := h.service.GetForRFR(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// CreateRFR handles POST /complaints/:number/rfr
func (h *ComplaintHandler) CreateRFR(c *gin.Context) {
	var in complaint.RFRInput
	if !h.BindJSON(c, &in) {
		return
	}
	rfr, err := h.service.CreateRFR(c.Request.Context(), c.Param("number"), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, gin.H{"rfr_number": rfr})
}

// Reallocate handles POST /complaints/reallocate
func (h *ComplaintHandler) Reallocate(c *gin.Context) {
	var req reallocateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	n, err := h.service.Reallocate(c.Request.Context(), req.From, req.To, req.Numbers)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, CountResponse{Count: n})
}

// MarkMailSent handles POST /complaints/mail-sent
func (h *ComplaintHandler) MarkMailSent(c *gin.Context) {
	var req numbersRequest
	if !h.BindJSON(c, &req) {
		return
	}
	n, err := h.service.MarkMailSent(c.Request.Context(), req.Numbers)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, CountResponse{Count: n})
}

// PendingMail handles GET /complaints/pending-mail?name=&email=
func (h *ComplaintHandler) PendingMail(c *gin.Context) {
	var to mail.Recipient
	if !h.BindQuery(c, &to) {
		return
	}
	msg, err := h.service.PendingMail(c.Request.Context(), to)
	if err != nil {
		h.Error(c, err)
		return
	}
	if msg == nil {
		h.NoContent(c)
		return
	}
	h.OK(c, msg)
}

// SendPendingMail handles POST /complaints/pending-mail
func (h *ComplaintHandler) SendPendingMail(c *gin.Context) {
	var req recipientsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	sent, err := h.service.SendPendingMail(c.Request.Context(), req.Recipients)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, CountResponse{Count: int64(sent)})
}

// RegisterRoutes registers complaint routes. Uploads go to the admin group.
func (h *ComplaintHandler) RegisterRoutes(rg, admin *gin.RouterGroup) {
	admin.POST("/upload", h.Upload)

	rg.GET("", h.Enquiry)
	rg.POST("", h.Create(complaint.EntryNew))
	rg.POST("/crm", h.Create(complaint.EntryCRM))
	rg.POST("/reallocate", h.Reallocate)
	rg.POST("/mail-sent", h.MarkMailSent)
	rg.GET("/pending-mail", h.PendingMail)
	rg.POST("/pending-mail", h.SendPendingMail)
	rg.GET("/:number", h.Get)
	rg.PATCH("/:number", h.Update)
	rg.GET("/:number/rfr", h.GetForRFR)
	rg.POST("/:number/rfr", h.CreateRFR)
}
