package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"jobradar/internal/logging"
	"jobradar/internal/storage"
	"jobradar/pkg/models"
	"jobradar/pkg/utils"
)

// ListJobsHandler returns stored jobs, filterable by source, free-text
// search, and run id, with limit/offset paging.
func ListJobsHandler(store storage.Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		filter := models.JobFilter{
			Source: c.QueryParam("source"),
			Search: c.QueryParam("search"),
		}

		if raw := c.QueryParam("runId"); raw != "" {
			runID, err := strconv.Atoi(raw)
			if err != nil {
				return errorJSON(c, http.StatusBadRequest, "invalid_run_id", "runId must be an integer")
			}
			filter.RunID = &runID
		}
		if raw := c.QueryParam("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 1 {
				return errorJSON(c, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			}
			filter.Limit = limit
		}
		if raw := c.QueryParam("offset"); raw != "" {
			offset, err := strconv.Atoi(raw)
			if err != nil || offset < 0 {
				return errorJSON(c, http.StatusBadRequest, "invalid_offset", "offset must be a non-negative integer")
			}
			filter.Offset = offset
		}

		jobs, err := store.GetJobs(c.Request().Context(), filter)
		if err != nil {
			logging.GetGlobalLogger().Error("Failed to list jobs", map[string]interface{}{
				"request_id": requestID(c),
				"error":      err.Error(),
			})
			return internalError(c, "Failed to list jobs")
		}

		return c.JSON(http.StatusOK, jobs)
	}
}

// GetJobHandler returns a single job by id.
func GetJobHandler(store storage.Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, "invalid_id", "job id must be an integer")
		}

		job, err := store.GetJobByID(c.Request().Context(), id)
		if err != nil {
			logging.GetGlobalLogger().Error("Failed to get job", map[string]interface{}{
				"request_id": requestID(c),
				"job_id":     id,
				"error":      err.Error(),
			})
			return internalError(c, "Failed to get job")
		}
		if job == nil {
			return errorJSON(c, http.StatusNotFound, "not_found", "Job not found")
		}

		return c.JSON(http.StatusOK, job)
	}
}

// UpdateJobHandler applies a partial update (workflow status, freshness
// flag) to a job.
func UpdateJobHandler(store storage.Storage, cache *utils.RedisClient) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, "invalid_id", "job id must be an integer")
		}

		var update models.JobUpdate
		if err := c.Bind(&update); err != nil {
			return errorJSON(c, http.StatusBadRequest, "invalid_request", "Invalid request format")
		}
		if err := validate.Struct(&update); err != nil {
			return errorJSON(c, http.StatusBadRequest, "validation_failed", err.Error())
		}

		job, err := store.UpdateJob(c.Request().Context(), id, update)
		if err != nil {
			logging.GetGlobalLogger().Error("Failed to update job", map[string]interface{}{
				"request_id": requestID(c),
				"job_id":     id,
				"error":      err.Error(),
			})
			return internalError(c, "Failed to update job")
		}
		if job == nil {
			return errorJSON(c, http.StatusNotFound, "not_found", "Job not found")
		}

		if cache != nil {
			cache.InvalidateStats(c.Request().Context())
		}

		return c.JSON(http.StatusOK, job)
	}
}

// MarkSeenHandler clears the freshness flag on the given job ids.
func MarkSeenHandler(store storage.Storage, cache *utils.RedisClient) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.MarkSeenRequest
		if err := c.Bind(&req); err != nil {
			return errorJSON(c, http.StatusBadRequest, "invalid_request", "Invalid request format")
		}
		if err := validate.Struct(&req); err != nil {
			return errorJSON(c, http.StatusBadRequest, "validation_failed", err.Error())
		}

		if err := store.MarkJobsSeen(c.Request().Context(), req.IDs); err != nil {
			logging.GetGlobalLogger().Error("Failed to mark jobs seen", map[string]interface{}{
				"request_id": requestID(c),
				"count":      len(req.IDs),
				"error":      err.Error(),
			})
			return internalError(c, "Failed to mark jobs as seen")
		}

		if cache != nil {
			cache.InvalidateStats(c.Request().Context())
		}

		return c.JSON(http.StatusOK, map[string]bool{"success": true})
	}
}
