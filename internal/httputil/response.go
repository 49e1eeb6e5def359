// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/keyvault-emulator/internal/errors"
)

// DefaultChallenge is sent in WWW-Authenticate when no middleware set a richer one.
const DefaultChallenge = `Bearer realm="keyvault-emulator"`

// ErrorBody is the inner object of a vault error response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents a structured vault error response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// NewErrorResponse builds an error response.
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Code: code, Message: message}}
}

// HandleErrorGin maps domain errors to HTTP status codes and returns a JSON response using Gin.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	var statusCode int
	var code string
	message := err.Error()

	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		statusCode, code = http.StatusNotFound, "NotFound"

	case apperrors.Is(err, apperrors.ErrConflict):
		statusCode, code = http.StatusConflict, "Conflict"

	case apperrors.Is(err, apperrors.ErrInvalidInput):
		statusCode, code = http.StatusBadRequest, "BadParameter"

	case apperrors.Is(err, apperrors.ErrDecryptionFailed):
		statusCode, code = http.StatusBadRequest, "BadParameter"

	case apperrors.Is(err, apperrors.ErrInvalidOperation):
		statusCode, code = http.StatusForbidden, "Forbidden"

	case apperrors.Is(err, apperrors.ErrNotImplemented):
		statusCode, code = http.StatusNotImplemented, "NotImplemented"

	case apperrors.Is(err, apperrors.ErrUnauthorized):
		statusCode, code = http.StatusUnauthorized, "Unauthorized"
		if c.Writer.Header().Get("WWW-Authenticate") == "" {
			c.Header("WWW-Authenticate", DefaultChallenge)
		}

	case apperrors.Is(err, apperrors.ErrForbidden):
		statusCode, code = http.StatusForbidden, "Forbidden"

	default:
		// For unknown/internal errors, don't expose details to the client
		statusCode, code = http.StatusInternalServerError, "InternalServerError"
		message = "An internal error occurred"
	}

	// Log the full error details (including wrapped errors)
	if logger != nil {
		level := slog.LevelWarn
		if statusCode >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", code),
			slog.Any("error", err),
		)
	}

	c.AbortWithStatusJSON(statusCode, NewErrorResponse(code, message))
}

// HandleBadRequestGin writes a 400 Bad Request response for malformed JSON or parameters using Gin.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, NewErrorResponse("BadParameter", err.Error()))
}

// HandleValidationErrorGin writes a 400 Bad Request response for validation errors using Gin.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, NewErrorResponse("BadParameter", err.Error()))
}
