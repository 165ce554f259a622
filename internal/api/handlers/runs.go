package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"jobradar/internal/background"
	"jobradar/internal/discovery"
	"jobradar/internal/logging"
	"jobradar/internal/storage"
	"jobradar/pkg/models"
	"jobradar/pkg/utils"
)

// ListRunsHandler returns every scrape run, newest first.
func ListRunsHandler(store storage.Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		runs, err := store.GetScrapeRuns(c.Request().Context())
		if err != nil {
			logging.GetGlobalLogger().Error("Failed to list runs", map[string]interface{}{
				"request_id": requestID(c),
				"error":      err.Error(),
			})
			return internalError(c, "Failed to list runs")
		}
		return c.JSON(http.StatusOK, runs)
	}
}

// LatestRunHandler returns the most recent run, or null when none exist.
// Dashboards poll this to track an in-flight run.
func LatestRunHandler(store storage.Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		run, err := store.GetLatestRun(c.Request().Context())
		if err != nil {
			logging.GetGlobalLogger().Error("Failed to get latest run", map[string]interface{}{
				"request_id": requestID(c),
				"error":      err.Error(),
			})
			return internalError(c, "Failed to get latest run")
		}
		return c.JSON(http.StatusOK, run)
	}
}

// GetRunHandler returns a single run by id.
func GetRunHandler(store storage.Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, "invalid_id", "run id must be an integer")
		}

		run, err := store.GetScrapeRunByID(c.Request().Context(), id)
		if err != nil {
			logging.GetGlobalLogger().Error("Failed to get run", map[string]interface{}{
				"request_id": requestID(c),
				"run_id":     id,
				"error":      err.Error(),
			})
			return internalError(c, "Failed to get run")
		}
		if run == nil {
			return errorJSON(c, http.StatusNotFound, "not_found", "Run not found")
		}
		return c.JSON(http.StatusOK, run)
	}
}

// DeleteRunHandler removes a run and every job it discovered.
func DeleteRunHandler(store storage.Storage, cache *utils.RedisClient) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, "invalid_id", "run id must be an integer")
		}

		ctx := c.Request().Context()
		run, err := store.GetScrapeRunByID(ctx, id)
		if err != nil {
			return internalError(c, "Failed to delete run")
		}
		if run == nil {
			return errorJSON(c, http.StatusNotFound, "not_found", "Run not found")
		}

		if err := store.DeleteScrapeRun(ctx, id); err != nil {
			logging.GetGlobalLogger().Error("Failed to delete run", map[string]interface{}{
				"request_id": requestID(c),
				"run_id":     id,
				"error":      err.Error(),
			})
			return internalError(c, "Failed to delete run")
		}

		if cache != nil {
			cache.InvalidateStats(ctx)
		}

		return c.JSON(http.StatusOK, map[string]bool{"success": true})
	}
}

// DiscoverHandler validates a discovery request, creates the run, and queues
// it for background execution. The response carries both the run id (for the
// run row) and the process id (for the task store).
func DiscoverHandler(orchestrator *discovery.Orchestrator, taskManager background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := logging.GetGlobalLogger()
		reqID := requestID(c)

		var req models.DiscoveryRequest
		if err := c.Bind(&req); err != nil {
			return errorJSON(c, http.StatusBadRequest, "invalid_request", "Invalid request format")
		}
		if err := validate.Struct(&req); err != nil {
			return errorJSON(c, http.StatusBadRequest, "validation_failed", err.Error())
		}
		req.ApplyDefaults()

		run, err := orchestrator.CreateRun(c.Request().Context(), req.RunConfig())
		if err != nil {
			logger.Error("Failed to create scrape run", map[string]interface{}{
				"request_id": reqID,
				"error":      err.Error(),
			})
			return internalError(c, "Failed to create scrape run")
		}

		processID := utils.GenerateRequestID()
		if err := taskManager.SubmitDiscoveryTask(c.Request().Context(), processID, run.ID, orchestrator); err != nil {
			logger.Error("Failed to queue discovery task", map[string]interface{}{
				"request_id": reqID,
				"run_id":     run.ID,
				"error":      err.Error(),
			})
			return errorJSON(c, http.StatusServiceUnavailable, "queue_full", "Discovery queue is full, try again later")
		}

		logger.Info("Discovery run accepted", map[string]interface{}{
			"request_id": reqID,
			"run_id":     run.ID,
			"process_id": processID,
			"sources":    req.Sources,
		})

		return c.JSON(http.StatusAccepted, models.DiscoveryAcceptedResponse{
			RunID:     run.ID,
			ProcessID: processID,
			Status:    run.Status,
			Message:   "Scrape job started",
			Timestamp: time.Now(),
		})
	}
}

// TaskStatusHandler exposes the background task record for a discovery run.
func TaskStatusHandler(taskManager background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		processID := c.Param("processId")

		result, err := taskManager.GetTaskResult(c.Request().Context(), processID)
		if err != nil {
			return errorJSON(c, http.StatusNotFound, "not_found", "Task not found")
		}
		return c.JSON(http.StatusOK, result)
	}
}
