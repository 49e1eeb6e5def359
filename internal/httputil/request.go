package httputil

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	customValidation "github.com/allisson/keyvault-emulator/internal/validation"
)

// Validatable is a request body that checks itself after binding.
type Validatable interface {
	Validate() error
}

// BindJSON decodes and validates the JSON body. It writes the error response and
// returns false on failure.
func BindJSON(c *gin.Context, req Validatable, logger *slog.Logger) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		HandleBadRequestGin(c, err, logger)
		return false
	}
	if err := req.Validate(); err != nil {
		HandleValidationErrorGin(c, customValidation.WrapValidationError(err), logger)
		return false
	}
	return true
}
