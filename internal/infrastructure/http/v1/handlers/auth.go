// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"servicecenter/internal/core/apperror"
	appctx "servicecenter/internal/core/context"
	"servicecenter/internal/domain/auth"
)

// AuthService is the login surface used by AuthHandler.
type AuthService interface {
	Login(ctx context.Context, creds auth.Credentials) (*auth.Token, error)
	ChangePassword(ctx context.Context, req auth.ChangePassword) error
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*BaseHandler
	service AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service AuthService) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.Credentials
	if !h.BindJSON(c, &req) {
		return
	}

	token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, token)
}

// ChangePassword handles POST /auth/change-password for the caller's own account.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	ctx := c.Request.Context()

	var req auth.ChangePassword
	if !h.BindJSON(c, &req) {
		return
	}
	req.Username = appctx.GetUsername(ctx)

	if err := h.service.ChangePassword(ctx, req); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "password changed")
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user := appctx.GetUser(c.Request.Context())
	if user == nil {
		h.Error(c, apperror.NewUnauthorized("not authenticated"))
		return
	}
	h.OK(c, gin.H{"username": user.Username, "role": user.Role})
}

// RegisterRoutes registers auth routes.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/login", h.Login)

	protected.GET("/me", h.Me)
	protected.POST("/change-password", h.ChangePassword)
}
