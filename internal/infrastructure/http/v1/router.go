// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	appctx "servicecenter/internal/core/context"
	"servicecenter/internal/infrastructure/http/v1/handlers"
	"servicecenter/internal/infrastructure/http/v1/middleware"
	"servicecenter/pkg/logger"
)

// RouterConfig holds everything the router wires into handlers.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Database backs the readiness check
	Database handlers.Database

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// MaxUploadBytes caps feed uploads
	MaxUploadBytes int64

	// Development keeps gin in debug mode
	Development bool

	Auth          handlers.AuthService
	Complaints    handlers.ComplaintService
	Stock         handlers.StockService
	GRC           handlers.GRCService
	StockCGPISL   handlers.StockService
	GRCCGPISL     handlers.GRCService
	Customers     handlers.CustomerService
	Employees     handlers.EmployeeService
	Dashboard     handlers.DashboardService
	Notifications handlers.NotificationService
	Parameters    handlers.ParameterService
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Database)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	base := handlers.NewBaseHandler(cfg.MaxUploadBytes)

	v1 := router.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(base, cfg.Auth)
		protectedAuth := v1.Group("/auth")
		protectedAuth.Use(middleware.Auth(cfg.JWTValidator))
		authHandler.RegisterRoutes(v1.Group("/auth"), protectedAuth)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		registerDomainRoutes(protected, base, cfg)
	}

	return router
}

// registerDomainRoutes mounts every authenticated group. Each group gets an
// admin subgroup sharing its prefix for uploads and staff changes.
func registerDomainRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	adminOnly := middleware.RequireRole(appctx.RoleAdmin)

	group := func(prefix string) (*gin.RouterGroup, *gin.RouterGroup) {
		g := rg.Group(prefix)
		return g, g.Group("", adminOnly)
	}

	{
		g, admin := group("/complaints")
		handlers.NewComplaintHandler(base, cfg.Complaints).RegisterRoutes(g, admin)
	}
	{
		g, admin := group("/stock")
		handlers.NewStockHandler(base, cfg.Stock).RegisterRoutes(g, admin)
	}
	{
		g, admin := group("/grc")
		handlers.NewGRCHandler(base, cfg.GRC).RegisterRoutes(g, admin)
	}
	{
		g, admin := group("/cgpisl/stock")
		handlers.NewStockHandler(base, cfg.StockCGPISL).RegisterRoutes(g, admin)
	}
	{
		g, admin := group("/cgpisl/grc")
		handlers.NewGRCHandler(base, cfg.GRCCGPISL).RegisterRoutes(g, admin)
	}
	{
		g, admin := group("/employees")
		handlers.NewEmployeeHandler(base, cfg.Employees).RegisterRoutes(g, admin)
	}
	{
		g, admin := group("/notifications")
		handlers.NewNotificationHandler(base, cfg.Notifications).RegisterRoutes(g, admin)
	}
	{
		_, admin := group("/parameters")
		handlers.NewParameterHandler(base, cfg.Parameters).RegisterRoutes(admin)
	}

	handlers.NewCustomerHandler(base, cfg.Customers).RegisterRoutes(rg.Group("/customers"))
	handlers.NewDashboardHandler(base, cfg.Dashboard).RegisterRoutes(rg.Group("/dashboard"))
}
