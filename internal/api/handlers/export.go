package handlers

import (
	"encoding/csv"
	"net/http"

	"github.com/labstack/echo/v4"

	"jobradar/internal/logging"
	"jobradar/internal/storage"
	"jobradar/pkg/models"
)

var csvHeader = []string{"Title", "Company", "Location", "Source", "URL", "Posted Date", "Relevance", "Salary"}

// ExportHandler streams every stored job as a CSV or JSON attachment.
// Format defaults to JSON.
func ExportHandler(store storage.Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		jobs, err := store.GetJobs(c.Request().Context(), models.JobFilter{})
		if err != nil {
			logging.GetGlobalLogger().Error("Failed to export jobs", map[string]interface{}{
				"request_id": requestID(c),
				"error":      err.Error(),
			})
			return internalError(c, "Failed to export jobs")
		}

		if c.QueryParam("format") == "csv" {
			return writeCSV(c, jobs)
		}

		c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=pm-jobs.json")
		return c.JSON(http.StatusOK, jobs)
	}
}

func writeCSV(c echo.Context, jobs []models.Job) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=pm-jobs.csv")
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, job := range jobs {
		record := []string{
			job.Title,
			job.Company,
			job.Location,
			job.Source,
			job.URL,
			deref(job.PostedDate),
			job.RelevanceReason,
			deref(job.Salary),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
