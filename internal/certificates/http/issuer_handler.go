package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/keyvault-emulator/internal/certificates/http/dto"
	certificatesUseCase "github.com/allisson/keyvault-emulator/internal/certificates/usecase"
	"github.com/allisson/keyvault-emulator/internal/httputil"
)

// IssuerHandler handles HTTP requests for certificate issuers.
type IssuerHandler struct {
	issuerUseCase certificatesUseCase.IssuerUseCase
	logger        *slog.Logger
}

// NewIssuerHandler creates a new issuer handler with required dependencies.
func NewIssuerHandler(issuerUseCase certificatesUseCase.IssuerUseCase, logger *slog.Logger) *IssuerHandler {
	return &IssuerHandler{
		issuerUseCase: issuerUseCase,
		logger:        logger,
	}
}

// SetHandler creates or replaces an issuer.
// PUT /certificates/issuers/:name
func (h *IssuerHandler) SetHandler(c *gin.Context) {
	var req dto.SetIssuerRequest
	if !httputil.BindJSON(c, &req, h.logger) {
		return
	}

	issuer, err := h.issuerUseCase.Set(c.Request.Context(), c.Param("name"), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapIssuerToResponse(issuer))
}

// GetHandler returns an issuer.
// GET /certificates/issuers/:name
func (h *IssuerHandler) GetHandler(c *gin.Context) {
	issuer, err := h.issuerUseCase.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapIssuerToResponse(issuer))
}

// UpdateHandler changes the fields of an issuer that the request sets.
// PATCH /certificates/issuers/:name
func (h *IssuerHandler) UpdateHandler(c *gin.Context) {
	var req dto.IssuerRequest
	if !httputil.BindJSON(c, &req, h.logger) {
		return
	}

	issuer, err := h.issuerUseCase.Update(c.Request.Context(), c.Param("name"), req.ToPatch())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapIssuerToResponse(issuer))
}

// DeleteHandler deletes an issuer.
// DELETE /certificates/issuers/:name
func (h *IssuerHandler) DeleteHandler(c *gin.Context) {
	issuer, err := h.issuerUseCase.Delete(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapIssuerToResponse(issuer))
}

// ListHandler lists every issuer. Issuers are never paged.
// GET /certificates/issuers
func (h *IssuerHandler) ListHandler(c *gin.Context) {
	issuers, err := h.issuerUseCase.List(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, httputil.NewListResponse(dto.MapIssuersToItems(issuers), ""))
}
