package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"jobradar/internal/logging"
	"jobradar/internal/storage"
	"jobradar/pkg/utils"
)

// StatsHandler returns the dashboard aggregate. Counts are served from the
// Redis cache when it holds a fresh copy; the TTL keeps staleness short.
func StatsHandler(store storage.Storage, cache *utils.RedisClient) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		if cache != nil {
			if stats, ok := cache.GetStats(ctx); ok {
				return c.JSON(http.StatusOK, stats)
			}
		}

		stats, err := store.GetStats(ctx)
		if err != nil {
			logging.GetGlobalLogger().Error("Failed to compute stats", map[string]interface{}{
				"request_id": requestID(c),
				"error":      err.Error(),
			})
			return internalError(c, "Failed to compute stats")
		}

		if cache != nil {
			cache.SetStats(ctx, stats)
		}

		return c.JSON(http.StatusOK, stats)
	}
}
