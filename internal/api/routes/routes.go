package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/se1907800-collab/mediavalut/internal/api/handlers"
	"github.com/se1907800-collab/mediavalut/internal/config"
	"github.com/se1907800-collab/mediavalut/internal/middleware"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(router *gin.Engine, h *handlers.Handler, cfg *config.Config) {
	// Public routes
	public := router.Group("/")
	{
		public.GET("/health", h.HealthCheck)
		public.POST("/auth/login", h.Login)
	}

	// API routes
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))

	// Folder routes
	folders := api.Group("/folders")
	{
		folders.POST("", h.CreateFolder)
		folders.GET("/:id", h.GetFolder)
		folders.GET("/:id/path", h.GetFolderPath)
		folders.PUT("/:id", h.UpdateFolder)
		folders.DELETE("/:id", h.DeleteFolder)

		// Media lives inside its folder.
		folders.POST("/:id/media", h.AddMedia)
		folders.GET("/:id/media/:mediaId", h.GetMedia)
		folders.GET("/:id/media/:mediaId/thumbnail", h.ServeThumbnail)
		folders.PUT("/:id/media/:mediaId", h.UpdateMedia)
		folders.DELETE("/:id/media/:mediaId", h.DeleteMedia)
	}

	// Batch, import/export and sync routes
	api.POST("/batch", h.HandleBatchOperation)
	api.POST("/import/csv", h.ImportCSV)
	api.GET("/export/csv", h.ExportCSV)
	api.GET("/export/json", h.ExportJSON)
	api.GET("/sync/status", h.SyncStatus)
	api.POST("/sync/refresh", h.Resync)
	api.GET("/ws", h.WebSocket)
}
