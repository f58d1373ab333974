package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/indigenous-art-atlas/internal/auth"
	"github.com/indigenous-art-atlas/internal/config"
	"github.com/indigenous-art-atlas/internal/service"
	"github.com/indigenous-art-atlas/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// HealthChecker reports whether a backing store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter creates and configures the Gin router. health may be nil for
// stores without a connection to check.
func NewRouter(
	services *service.Services,
	authenticator *auth.Authenticator,
	health HealthChecker,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware(cfg.CORS))
	router.Use(metricsMiddleware())

	// Handlers
	artworkHandler := NewArtworkHandler(services, log)
	moderationHandler := NewModerationHandler(services, log)
	adminHandler := NewAdminHandler(services, log)
	limiter := newFlagLimiter(cfg.Flags)

	router.GET("/health", healthCheck(health))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(actorMiddleware(authenticator, log))
	{
		api.GET("/taxonomies", artworkHandler.Taxonomies)
		api.GET("/stats", artworkHandler.Stats)

		artworks := api.Group("/artworks")
		{
			artworks.GET("", artworkHandler.List)
			artworks.POST("", artworkHandler.Submit)
			artworks.GET("/:id", artworkHandler.Get)
			artworks.PATCH("/:id", artworkHandler.Edit)
			artworks.POST("/:id/images", artworkHandler.AttachImage)
			artworks.POST("/:id/flags", limiter.middleware(), artworkHandler.FileFlag)
		}

		moderation := api.Group("/moderation")
		{
			moderation.GET("/artworks", moderationHandler.ListByStatus)
			moderation.GET("/pending", moderationHandler.Pending)
			moderation.POST("/artworks/:id/approve", moderationHandler.Approve)
			moderation.POST("/artworks/:id/reject", moderationHandler.Reject)
			moderation.DELETE("/artworks/:id", moderationHandler.Delete)
			moderation.GET("/artworks/:id/log", moderationHandler.History)
			moderation.GET("/log", moderationHandler.Log)
			moderation.GET("/flags", moderationHandler.ListFlags)
			moderation.POST("/flags/:id/resolve", moderationHandler.ResolveFlag)
			moderation.DELETE("/flags/:id", moderationHandler.DeleteFlag)
		}

		admin := api.Group("/admin")
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.PATCH("/users/:id", adminHandler.SetUserActive)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody("not_found", "route not found"))
	})

	return router
}

// healthCheck returns the health status, including the store when one is configured
func healthCheck(health HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		database := "n/a"
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			database = "up"
			if err := health.HealthCheck(ctx); err != nil {
				status, code, database = "unhealthy", http.StatusServiceUnavailable, "down"
			}
		}

		c.JSON(code, gin.H{
			"status":    status,
			"database":  database,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   logger.ServiceName,
		})
	}
}
