// Package handlers contains the Echo handlers for the jobradar API.
package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"jobradar/pkg/models"
	"jobradar/pkg/utils"
)

var validate = validator.New()

// requestID returns the id set by the validation middleware, generating one
// when the middleware did not run (tests hit handlers directly).
func requestID(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok && id != "" {
		return id
	}
	return utils.GenerateRequestID()
}

// errorJSON writes the standard error envelope.
func errorJSON(c echo.Context, status int, errCode, message string) error {
	return c.JSON(status, models.ErrorResponse{
		Error:     errCode,
		Message:   message,
		RequestID: requestID(c),
		Timestamp: time.Now(),
	})
}

// internalError hides backend details behind a generic message.
func internalError(c echo.Context, message string) error {
	return errorJSON(c, http.StatusInternalServerError, "internal_error", message)
}
