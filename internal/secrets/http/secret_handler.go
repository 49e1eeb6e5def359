// Package http provides HTTP handlers for secret management operations.
// Secrets are versioned: every PUT creates a new version and older versions stay readable.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	entityDto "github.com/allisson/keyvault-emulator/internal/entity/http/dto"
	"github.com/allisson/keyvault-emulator/internal/httputil"
	"github.com/allisson/keyvault-emulator/internal/secrets/http/dto"
	secretsUseCase "github.com/allisson/keyvault-emulator/internal/secrets/usecase"
)

// SecretHandler handles HTTP requests for secret management operations.
type SecretHandler struct {
	secretUseCase secretsUseCase.SecretUseCase
	ids           domain.IDBuilder
	logger        *slog.Logger
}

// NewSecretHandler creates a new secret handler with required dependencies.
func NewSecretHandler(
	secretUseCase secretsUseCase.SecretUseCase,
	ids domain.IDBuilder,
	logger *slog.Logger,
) *SecretHandler {
	return &SecretHandler{
		secretUseCase: secretUseCase,
		ids:           ids,
		logger:        logger,
	}
}

// SetHandler writes a new secret version.
// PUT /secrets/:name
func (h *SecretHandler) SetHandler(c *gin.Context) {
	var req dto.SetSecretRequest
	if !httputil.BindJSON(c, &req, h.logger) {
		return
	}

	record, err := h.secretUseCase.Set(c.Request.Context(), c.Param("name"), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecretToResponse(record))
}

// GetHandler returns a secret version, or the current one when no version is given.
// GET /secrets/:name/:version
func (h *SecretHandler) GetHandler(c *gin.Context) {
	record, err := h.secretUseCase.Get(c.Request.Context(), c.Param("name"), c.Param("version"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecretToResponse(record))
}

// UpdateHandler changes attributes and tags of a secret version.
// PATCH /secrets/:name/:version
func (h *SecretHandler) UpdateHandler(c *gin.Context) {
	var req entityDto.UpdateRequest
	if !httputil.BindJSON(c, &req, h.logger) {
		return
	}

	record, err := h.secretUseCase.Update(c.Request.Context(), c.Param("name"), c.Param("version"), req.ToPatch())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecretToResponse(record))
}

// ListHandler pages over the current version of every secret. Values are not listed.
// GET /secrets?maxresults=N&$skiptoken=T
func (h *SecretHandler) ListHandler(c *gin.Context) {
	take, err := httputil.ParseMaxResults(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	page, err := h.secretUseCase.List(c.Request.Context(), httputil.SkipToken(c), take)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, httputil.NewListResponse(
		dto.MapSecretsToItems(page.Items),
		httputil.NextLink(c, h.ids.BaseURI, page.NextCursor, take),
	))
}

// ListVersionsHandler pages over every version of a secret.
// GET /secrets/:name/versions
func (h *SecretHandler) ListVersionsHandler(c *gin.Context) {
	take, err := httputil.ParseMaxResults(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	page, err := h.secretUseCase.ListVersions(c.Request.Context(), c.Param("name"), httputil.SkipToken(c), take)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, httputil.NewListResponse(
		dto.MapSecretsToItems(page.Items),
		httputil.NextLink(c, h.ids.BaseURI, page.NextCursor, take),
	))
}

// DeleteHandler soft-deletes every version of a secret.
// DELETE /secrets/:name
func (h *SecretHandler) DeleteHandler(c *gin.Context) {
	deleted, err := h.secretUseCase.Delete(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDeletedSecretToResponse(deleted))
}

// GetDeletedHandler returns a deleted secret.
// GET /deletedsecrets/:name
func (h *SecretHandler) GetDeletedHandler(c *gin.Context) {
	deleted, err := h.secretUseCase.GetDeleted(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDeletedSecretToResponse(deleted))
}

// ListDeletedHandler pages over deleted secrets.
// GET /deletedsecrets
func (h *SecretHandler) ListDeletedHandler(c *gin.Context) {
	take, err := httputil.ParseMaxResults(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	page, err := h.secretUseCase.ListDeleted(c.Request.Context(), httputil.SkipToken(c), take)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, httputil.NewListResponse(
		dto.MapDeletedSecretsToItems(h.ids, page.Items),
		httputil.NextLink(c, h.ids.BaseURI, page.NextCursor, take),
	))
}

// RecoverHandler restores a deleted secret.
// POST /deletedsecrets/:name/recover
func (h *SecretHandler) RecoverHandler(c *gin.Context) {
	record, err := h.secretUseCase.Recover(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecretToResponse(record))
}

// PurgeHandler permanently removes a deleted secret.
// DELETE /deletedsecrets/:name
func (h *SecretHandler) PurgeHandler(c *gin.Context) {
	if err := h.secretUseCase.Purge(c.Request.Context(), c.Param("name")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// BackupHandler returns an opaque backup of every version of a secret.
// POST /secrets/:name/backup
func (h *SecretHandler) BackupHandler(c *gin.Context) {
	blob, err := h.secretUseCase.Backup(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, entityDto.BackupResponse{Value: blob})
}

// RestoreHandler recreates a secret from a backup blob.
// POST /secrets/restore
func (h *SecretHandler) RestoreHandler(c *gin.Context) {
	var req entityDto.RestoreRequest
	if !httputil.BindJSON(c, &req, h.logger) {
		return
	}

	record, err := h.secretUseCase.Restore(c.Request.Context(), req.Value)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecretToResponse(record))
}
