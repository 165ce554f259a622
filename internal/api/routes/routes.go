// Package routes wires the Echo router to the handlers.
package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"jobradar/internal/api/handlers"
	"jobradar/internal/api/middleware"
	"jobradar/internal/background"
	"jobradar/internal/config"
	"jobradar/internal/discovery"
	"jobradar/internal/storage"
	"jobradar/pkg/utils"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, store storage.Storage, orchestrator *discovery.Orchestrator, taskManager background.TaskManager, cache *utils.RedisClient) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestValidation())
	e.Use(middleware.TimeoutConfig(cfg.Server.ReadTimeout))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(taskManager, cache))
		health.GET("/live", handlers.LivenessHandler)
	}

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		jobs := v1.Group("/jobs")
		{
			jobs.GET("", handlers.ListJobsHandler(store))
			jobs.POST("/mark-seen", handlers.MarkSeenHandler(store, cache))
			jobs.GET("/:id", handlers.GetJobHandler(store))
			jobs.PATCH("/:id", handlers.UpdateJobHandler(store, cache))
		}

		runs := v1.Group("/runs")
		{
			runs.GET("", handlers.ListRunsHandler(store))
			runs.GET("/latest", handlers.LatestRunHandler(store))
			runs.GET("/:id", handlers.GetRunHandler(store))
			runs.DELETE("/:id", handlers.DeleteRunHandler(store, cache))
		}

		v1.POST("/discover", handlers.DiscoverHandler(orchestrator, taskManager))
		v1.GET("/tasks/:processId", handlers.TaskStatusHandler(taskManager))
		v1.GET("/stats", handlers.StatsHandler(store, cache))
		v1.GET("/export", handlers.ExportHandler(store))
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "JobRadar PM Discovery",
			"version": "1.0.0",
			"status":  "running",
		})
	})
}
