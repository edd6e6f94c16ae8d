package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/domain/reconcile"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct {
	// maxUpload caps multipart feed files.
	maxUpload int64
}

// NewBaseHandler creates a new base handler.
func NewBaseHandler(maxUpload int64) *BaseHandler {
	return &BaseHandler{maxUpload: maxUpload}
}

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// CountResponse reports how many rows an operation touched.
type CountResponse struct {
	Count int64 `json:"count"`
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error processes error and sends appropriate response.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	h.HandleError(c, err)
}

// HandleError registers error on Gin context and aborts request.
// Actual JSON response is produced by middleware.ErrorHandler (single source of truth).
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParseIntParam parses an integer path parameter.
func (h *BaseHandler) ParseIntParam(c *gin.Context, key string) (int, bool) {
	n, err := strconv.Atoi(c.Param(key))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid path parameter").WithDetail(key, c.Param(key)))
		return 0, false
	}
	return n, true
}

// ReadUpload reads the "file" part of a multipart request.
func (h *BaseHandler) ReadUpload(c *gin.Context) ([]byte, string, bool) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}
	header, err := c.FormFile("file")
	if err != nil {
		h.Error(c, apperror.NewValidation("file is required").WithDetail("error", err.Error()))
		return nil, "", false
	}
	f, err := header.Open()
	if err != nil {
		h.Error(c, apperror.NewValidation("cannot open upload").WithDetail("error", err.Error()))
		return nil, "", false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		h.Error(c, apperror.NewValidation("cannot read upload").WithDetail("error", err.Error()))
		return nil, "", false
	}
	return data, header.Filename, true
}

// Reconciled answers an upload. Warnings and errors carry their own status through the error.
func (h *BaseHandler) Reconciled(c *gin.Context, res reconcile.Result, err error) {
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, res)
}

// Created sends 201 response with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// NoContent sends 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Success sends success response.
func (h *BaseHandler) Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: message})
}

// Attachment streams a generated file.
func (h *BaseHandler) Attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}
