// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/secrethold/internal/errors"
	secretsDomain "github.com/allisson/secrethold/internal/secrets/domain"
)

// ErrorResponse represents a structured error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

type errorMapping struct {
	status  int
	name    string
	message string
}

// errorMappings maps each error category to its response. An empty message echoes the
// error text, which is only done for caller mistakes.
var errorMappings = map[error]errorMapping{
	apperrors.ErrNotFound:     {http.StatusNotFound, "not_found", "The requested resource was not found"},
	apperrors.ErrInvalidInput: {http.StatusUnprocessableEntity, "invalid_input", ""},
	apperrors.ErrUnauthorized: {http.StatusUnauthorized, "unauthorized", "The PIN does not open this secret"},
	apperrors.ErrIntegrity:    {http.StatusInternalServerError, "integrity_error", "Stored data failed an integrity check"},
	apperrors.ErrNotSupported: {http.StatusNotImplemented, "not_implemented", ""},
}

var internalError = errorMapping{http.StatusInternalServerError, "internal_error", "An internal error occurred"}

// HandleErrorGin maps domain errors to HTTP status codes and writes a JSON response.
// Errors carrying a caller-facing code (WRONG_PIN, WRONG_ID) expose it in the code field.
// Uncategorized errors become a 500 without leaking their text.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	mapping, ok := errorMappings[apperrors.Category(err)]
	if !ok {
		mapping = internalError
	}

	response := ErrorResponse{
		Error:   mapping.name,
		Message: mapping.message,
		Code:    secretsDomain.Code(err),
	}
	if response.Message == "" {
		response.Message = err.Error()
	}

	if logger != nil {
		level := slog.LevelWarn
		if mapping.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.LogAttrs(c.Request.Context(), level, "request failed",
			slog.Int("status_code", mapping.status),
			slog.String("error_code", mapping.name),
			slog.Any("error", err),
		)
	}

	c.JSON(mapping.status, response)
}

// HandleBadRequestGin writes a 400 response for malformed JSON or parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	writeClientError(c, http.StatusBadRequest, "bad_request", "bad request", err, logger)
}

// HandleValidationErrorGin writes a 422 response for request validation failures.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	writeClientError(c, http.StatusUnprocessableEntity, "validation_error", "validation failed", err, logger)
}

func writeClientError(c *gin.Context, status int, name, logMsg string, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn(logMsg, slog.Any("error", err))
	}
	c.JSON(status, ErrorResponse{Error: name, Message: err.Error()})
}
