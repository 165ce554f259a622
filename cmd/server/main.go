package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"jobradar/internal/api/routes"
	"jobradar/internal/background"
	"jobradar/internal/config"
	"jobradar/internal/discovery"
	"jobradar/internal/logging"
	"jobradar/internal/provider/apify"
	"jobradar/internal/storage"
	"jobradar/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logging system
	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()

	logger := logging.GetGlobalLogger()
	logger.Info("Starting JobRadar PM Discovery", map[string]interface{}{
		"port": cfg.Server.Port,
	})

	ctx := context.Background()

	// Initialize storage: Postgres when configured, in-memory otherwise
	var store storage.Storage
	if cfg.Database.URL != "" {
		pgStore, err := storage.NewPostgresStorage(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("Failed to connect to Postgres", map[string]interface{}{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		store = pgStore
		logger.Info("Connected to Postgres", map[string]interface{}{})
	} else {
		store = storage.NewMemoryStorage()
		logger.Warn("DATABASE_URL not set, using in-memory storage", map[string]interface{}{})
	}
	defer store.Close()

	// Initialize Redis stats cache when enabled
	var cache *utils.RedisClient
	if cfg.Redis.Enabled {
		cache = utils.NewRedisClient(cfg)
		if err := cache.Ping(ctx); err != nil {
			logger.Warn("Redis unreachable, stats caching disabled", map[string]interface{}{
				"error": err.Error(),
			})
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	// Initialize background task manager
	taskManager := background.NewTaskManager(cfg)
	if err := taskManager.Start(ctx); err != nil {
		logger.Error("Failed to start task manager", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// Initialize Apify client and discovery orchestrator
	apifyClient := apify.NewClient(cfg)
	defer apifyClient.Cleanup()

	orchestrator := discovery.NewOrchestrator(cfg, store, apifyClient, cache)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Setup routes
	routes.SetupRoutes(e, cfg, store, orchestrator, taskManager, cache)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...", map[string]interface{}{})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Stop the task manager first so in-flight runs can finish
		if err := taskManager.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping task manager", map[string]interface{}{
				"error": err.Error(),
			})
		}

		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{
				"error": err.Error(),
			})
		}

		logger.Info("Server shutdown complete", map[string]interface{}{})
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{
		"address": address,
	})

	if err := e.Start(address); err != nil && err != http.ErrServerClosed {
		logger.Error("Server failed to start", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
}
