package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stackmill/accessd/internal/api/handlers"
	"github.com/stackmill/accessd/internal/api/middleware"
	"github.com/stackmill/accessd/internal/audit"
	"github.com/stackmill/accessd/internal/auth"
	"github.com/stackmill/accessd/internal/config"
	"github.com/stackmill/accessd/internal/rbac"
	"github.com/stackmill/accessd/internal/service"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, db *gorm.DB, recorder *audit.Recorder, authenticator auth.Authenticator) *gin.Engine {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware())
	router.Use(corsMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", handlers.HealthCheck)
		public.POST("/auth/login", handlers.Login(authenticator))
	}

	// OIDC login/callback when the provider is configured
	if oidcAuth, isOIDC := authenticator.(*auth.OIDCAuthenticator); isOIDC {
		public.GET("/auth/oidc/login", handlers.OIDCLogin(oidcAuth))
		public.GET("/auth/oidc/callback", handlers.OIDCCallback(oidcAuth))
	}

	// Initialize handlers
	groupHandler := handlers.NewGroupHandler(service.NewGroupService(db, recorder), cfg.Web)
	permHandler := handlers.NewPermissionHandler(service.NewPermissionService(db, recorder), cfg.Web)

	// Protected routes (require authentication; each mutating route is
	// additionally gated by its capability)
	protected := router.Group("/api/v1")
	protected.Use(authenticator.Middleware())
	{
		protected.GET("/group", middleware.RequireCapability(rbac.CapGroupView), groupHandler.List)
		protected.POST("/group", middleware.RequireCapability(rbac.CapGroupAdd), groupHandler.Create)
		protected.PUT("/group/:id", middleware.RequireCapability(rbac.CapGroupEdit), groupHandler.Edit)
		protected.PUT("/group/:id/disable", middleware.RequireCapability(rbac.CapGroupDisable), groupHandler.Disable)
		protected.PUT("/group/:id/enable", middleware.RequireCapability(rbac.CapGroupEnable), groupHandler.Enable)
		protected.DELETE("/group/:id", middleware.RequireCapability(rbac.CapGroupDel), groupHandler.Delete)

		// Binding requires authentication only, mirroring the group
		// create/edit side-effect path
		protected.POST("/group_role", groupHandler.BindRole)

		protected.GET("/permission", middleware.RequireCapability(rbac.CapPermissionView), permHandler.List)
		protected.POST("/permission", middleware.RequireCapability(rbac.CapPermissionAdd), permHandler.Create)
		protected.PUT("/permission/:id", middleware.RequireCapability(rbac.CapPermissionEdit), permHandler.Edit)
		protected.PUT("/permission/:id/disable", middleware.RequireCapability(rbac.CapPermissionDisable), permHandler.Disable)
		protected.PUT("/permission/:id/enable", middleware.RequireCapability(rbac.CapPermissionEnable), permHandler.Enable)
		protected.DELETE("/permission/:id", middleware.RequireCapability(rbac.CapPermissionDel), permHandler.Delete)
	}

	// Swagger documentation
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	slog.Info("API router initialized", "mode", cfg.Server.Mode)
	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		slog.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"ip", c.ClientIP(),
		)
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
