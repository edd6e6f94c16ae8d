package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"servicecenter/internal/domain/notification"
)

// NotificationService is the staff task surface used by NotificationHandler.
type NotificationService interface {
	List(ctx context.Context) ([]notification.Notification, error)
	Count(ctx context.Context) (int64, error)
	Mine(ctx context.Context) ([]notification.Notification, error)
	Create(ctx context.Context, in notification.CreateInput) ([]notification.Notification, error)
	Resolve(ctx context.Context, id int64) error
}

// NotificationHandler handles notification endpoints.
type NotificationHandler struct {
	*BaseHandler
	service NotificationService
}

// NewNotificationHandler creates a notification handler.
func NewNotificationHandler(base *BaseHandler, service NotificationService) *NotificationHandler {
	return &NotificationHandler{BaseHandler: base, service: service}
}

// List handles GET /notifications
func (h *NotificationHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": items})
}

// Count handles GET /notifications/count
func (h *NotificationHandler) Count(c *gin.Context) {
	n, err := h.service.Count(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, CountResponse{Count: n})
}

// Mine handles GET /notifications/mine
func (h *NotificationHandler) Mine(c *gin.Context) {
	items, err := h.service.Mine(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": items})
}

// Create handles POST /notifications
func (h *NotificationHandler) Create(c *gin.Context) {
	var in notification.CreateInput
	if !h.BindJSON(c, &in) {
		return
	}
	items, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, gin.H{"items": items})
}

// Resolve handles POST /notifications/:id/resolve
func (h *NotificationHandler) Resolve(c *gin.Context) {
	id, ok := h.ParseIntParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Resolve(c.Request.Context(), int64(id)); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "notification resolved")
}

// RegisterRoutes registers notification routes. Raising and the full list are admin only.
func (h *NotificationHandler) RegisterRoutes(rg, admin *gin.RouterGroup) {
	rg.GET("/mine", h.Mine)
	rg.POST("/:id/resolve", h.Resolve)

	admin.GET("", h.List)
	admin.GET("/count", h.Count)
	admin.POST("", h.Create)
}
