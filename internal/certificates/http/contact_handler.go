package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/keyvault-emulator/internal/certificates/http/dto"
	certificatesUseCase "github.com/allisson/keyvault-emulator/internal/certificates/usecase"
	"github.com/allisson/keyvault-emulator/internal/httputil"
)

// ContactHandler handles HTTP requests for the vault contact list.
type ContactHandler struct {
	contactUseCase certificatesUseCase.ContactUseCase
	logger         *slog.Logger
}

// NewContactHandler creates a new contact handler with required dependencies.
func NewContactHandler(contactUseCase certificatesUseCase.ContactUseCase, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		contactUseCase: contactUseCase,
		logger:         logger,
	}
}

// SetHandler replaces the contact list.
// PUT /certificates/contacts
func (h *ContactHandler) SetHandler(c *gin.Context) {
	var req dto.ContactsRequest
	if !httputil.BindJSON(c, &req, h.logger) {
		return
	}

	contacts, err := h.contactUseCase.Set(c.Request.Context(), req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapContactsToResponse(contacts))
}

// GetHandler returns the contact list.
// GET /certificates/contacts
func (h *ContactHandler) GetHandler(c *gin.Context) {
	contacts, err := h.contactUseCase.Get(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapContactsToResponse(contacts))
}

// DeleteHandler removes the contact list and returns it.
// DELETE /certificates/contacts
func (h *ContactHandler) DeleteHandler(c *gin.Context) {
	contacts, err := h.contactUseCase.Delete(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapContactsToResponse(contacts))
}
