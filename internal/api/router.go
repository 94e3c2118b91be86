// Package api assembles the gin router from the handlers.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roadsense/roadsense-backend-go/internal/config"
	"github.com/roadsense/roadsense-backend-go/internal/handler"
	"github.com/roadsense/roadsense-backend-go/internal/middleware"
)

// Handlers bundles the handler set the router mounts
type Handlers struct {
	Detections *handler.DetectionHandler
	Analytics  *handler.AnalyticsHandler
	Clusters   *handler.ClusterHandler
}

// SetupRouter builds the HTTP surface. Read endpoints are open; every
// mutating endpoint sits behind the auth guard.
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.RateLimit(300, time.Minute))

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, x-api-key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		storage := "local"
		if cfg.GCSBucket != "" {
			storage = "gcs:" + cfg.GCSBucket
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"inference": cfg.InferenceURL,
			"storage":   storage,
		})
	})

	auth := middleware.Auth(cfg.APIKeys, cfg.JWTSecret)

	api := r.Group("/api/v1")
	{
		detections := api.Group("/detections")
		{
			detections.POST("", auth, h.Detections.Create)
			detections.GET("/:id", h.Detections.Get)
			detections.PATCH("/:id/status", auth, h.Detections.UpdateStatus)
			detections.DELETE("/:id", auth, h.Detections.Delete)
		}

		analytics := api.Group("/analytics")
		{
			analytics.GET("/queue", h.Analytics.Queue)
			analytics.GET("/areas", h.Analytics.Areas)
			analytics.GET("/summary", h.Analytics.Summary)
		}

		clusters := api.Group("/clusters")
		{
			clusters.POST("/run", auth, h.Clusters.Run)
			clusters.GET("/runs", h.Clusters.ListRuns)
			clusters.GET("/runs/:id", h.Clusters.GetRun)
		}
	}

	return r
}
