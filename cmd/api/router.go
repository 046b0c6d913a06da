package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"
	"library-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(c.Config.App.CORSOrigins...),
	)

	api := router.Group("/api")
	{
		api.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(api, c)
		setupBookRoutes(api, c)
		setupMemberRoutes(api, c)
		setupTransactionRoutes(api, c)
		setupDashboardRoutes(api, c)
	}

	mountStatic(router, c.Config.Static.Dir)

	return router
}

// protected guards mutating routes. Both middlewares pass through when
// auth is disabled.
func protected(c *container.Container) []gin.HandlerFunc {
	enabled := c.Config.Auth.Enabled
	return []gin.HandlerFunc{
		middleware.OptionalAuth(enabled, c.JWTManager),
		middleware.OptionalAdmin(enabled),
	}
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(api *gin.RouterGroup, c *container.Container) {
	auth := api.Group("/auth")
	{
		auth.POST("/login", c.AuthHandler.Login)
	}
}

// ========================================
// BOOK ROUTES
// ========================================
func setupBookRoutes(api *gin.RouterGroup, c *container.Container) {
	books := api.Group("/books")
	{
		books.GET("", c.BookHandler.ListBooks)
		books.GET("/deleted", c.BookHandler.ListDeleted)
		books.GET("/:id", c.BookHandler.GetBook)
	}

	admin := api.Group("/books", protected(c)...)
	{
		admin.POST("", c.BookHandler.CreateBook)
		admin.PUT("/:id", c.BookHandler.UpdateBook)
		admin.DELETE("/:id", c.BookHandler.DeleteBook)
		admin.POST("/:id/cover", c.BookHandler.UploadCover)
	}
}

// ========================================
// MEMBER ROUTES
// ========================================
func setupMemberRoutes(api *gin.RouterGroup, c *container.Container) {
	members := api.Group("/members")
	{
		members.GET("", c.MemberHandler.ListMembers)
		members.GET("/:id", c.MemberHandler.GetMember)
	}

	admin := api.Group("/members", protected(c)...)
	{
		admin.POST("", c.MemberHandler.CreateMember)
		admin.PUT("/:id", c.MemberHandler.UpdateMember)
		admin.DELETE("/:id", c.MemberHandler.DeleteMember)
	}
}

// ========================================
// TRANSACTION ROUTES
// ========================================
func setupTransactionRoutes(api *gin.RouterGroup, c *container.Container) {
	txns := api.Group("/transactions")
	{
		txns.GET("", c.LendingHandler.ListAll)
		txns.GET("/active", c.LendingHandler.ListActive)
		txns.GET("/overdue", c.LendingHandler.ListOverdue)
		txns.GET("/export", c.LendingHandler.Export)
		txns.GET("/:id", c.LendingHandler.GetTransaction)
	}

	admin := api.Group("/transactions", protected(c)...)
	{
		admin.POST("/issue", c.LendingHandler.IssueBook)
		admin.POST("/return/:id", c.LendingHandler.ReturnBook)
	}
}

// ========================================
// DASHBOARD & ACTIVITY ROUTES
// ========================================
func setupDashboardRoutes(api *gin.RouterGroup, c *container.Container) {
	api.GET("/dashboard", c.DashboardHandler.GetDashboard)
	api.GET("/recent-activity", c.DashboardHandler.GetRecentActivity)

	if c.ActivityHandler != nil {
		api.GET("/activity/stream", c.ActivityHandler.Stream)
	}
}

// ========================================
// STATIC FRONTEND
// ========================================

// mountStatic serves the browser frontend from dir for every non-API path.
// Unknown API paths always get the JSON 404 envelope.
func mountStatic(router *gin.Engine, dir string) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		log.Info().Str("dir", dir).Msg("Static directory not found, frontend not served")
		router.NoRoute(func(c *gin.Context) {
			response.NotFound(c, "Route not found")
		})
		return
	}

	files := http.FileServer(http.Dir(dir))
	router.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/api" || strings.HasPrefix(path, "/api/") {
			response.NotFound(c, "Route not found")
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			response.NotFound(c, "Route not found")
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	})

	log.Info().Str("dir", dir).Msg("Serving static frontend")
}

// ========================================
// HEALTH
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else if err := appCtx.DB.HealthCheck(ctx); err != nil {
			dbStatus = fmt.Sprintf("error: %v", err)
			health["status"] = "degraded"
		}

		cacheStatus := "ok"
		if appCtx.Cache == nil {
			cacheStatus = "disconnected"
		} else if err := appCtx.Cache.Ping(ctx); err != nil {
			cacheStatus = fmt.Sprintf("error: %v", err)
		}

		storageStatus := "disabled"
		if appCtx.Storage != nil {
			storageStatus = "ok"
			if err := appCtx.Storage.Ping(ctx); err != nil {
				storageStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"cache":    cacheStatus,
			"storage":  storageStatus,
		}

		statusCode := http.StatusOK
		if health["status"] != "ok" {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, health)
	}
}
