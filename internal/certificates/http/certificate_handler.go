// Package http provides HTTP handlers for certificates, certificate issuers and the
// vault contact list.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/keyvault-emulator/internal/certificates/http/dto"
	certificatesUseCase "github.com/allisson/keyvault-emulator/internal/certificates/usecase"
	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	entityDto "github.com/allisson/keyvault-emulator/internal/entity/http/dto"
	"github.com/allisson/keyvault-emulator/internal/httputil"
)

// CertificateHandler handles HTTP requests for certificates, their policies and
// their pending operations.
type CertificateHandler struct {
	certificateUseCase certificatesUseCase.CertificateUseCase
	ids                domain.IDBuilder
	logger             *slog.Logger
}

// NewCertificateHandler creates a new certificate handler with required dependencies.
func NewCertificateHandler(
	certificateUseCase certificatesUseCase.CertificateUseCase,
	ids domain.IDBuilder,
	logger *slog.Logger,
) *CertificateHandler {
	return &CertificateHandler{
		certificateUseCase: certificateUseCase,
		ids:                ids,
		logger:             logger,
	}
}

// CreateHandler issues a new certificate version and returns its operation.
// POST /certificates/:name/create
func (h *CertificateHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateCertificateRequest
	if !httputil.BindJSON(c, &req, h.logger) {
		return
	}

	op, err := h.certificateUseCase.Create(c.Request.Context(), c.Param("name"), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusAccepted, dto.MapOperationToResponse(op))
}

// ImportHandler stores externally issued material as a new certificate version.
// POST /certificates/:name/import
func (h *CertificateHandler) ImportHandler(c *gin.Context) {
	var req dto.ImportCertificateRequest
	if !httputil.BindJSON(c, &req, h.logger) {
		return
	}

	record, err := h.certificateUseCase.Import(c.Request.Context(), c.Param("name"), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapCertificateToResponse(h.ids, record))
}

// MergeHandler completes a pending certificate with a signed chain.
// POST /certificates/:name/pending/merge
func (h *CertificateHandler) MergeHandler(c *gin.Context) {
	var req dto.MergeCertificateRequest
	if !httputil.BindJSON(c, &req, h.logger) {
		return
	}

	record, err := h.certificateUseCase.Merge(c.Request.Context(), c.Param("name"), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapCertificateToResponse(h.ids, record))
}

// GetHandler returns a certificate version, or the current one when no version is given.
// GET /certificates/:name/:version
func (h *CertificateHandler) GetHandler(c *gin.Context) {
	record, err := h.certificateUseCase.Get(c.Request.Context(), c.Param("name"), c.Param("version"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapCertificateToResponse(h.ids, record))
}

// UpdateHandler changes attributes and tags of a certificate version.
// PATCH /certificates/:name/:version
func (h *CertificateHandler) UpdateHandler(c *gin.Context) {
	var req entityDto.UpdateRequest
	if !httputil.BindJSON(c, &req, h.logger) {
		return
	}

	record, err := h.certificateUseCase.Update(
		c.Request.Context(),
		c.Param("name"),
		c.Param("version"),
		req.ToPatch(),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapCertificateToResponse(h.ids, record))
}

// ListHandler pages over the current version of every certificate.
// GET /certificates?maxresults=N&$skiptoken=T
func (h *CertificateHandler) ListHandler(c *gin.Context) {
	take, err := httputil.ParseMaxResults(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	page, err := h.certificateUseCase.List(c.Request.Context(), httputil.SkipToken(c), take)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, httputil.NewListResponse(
		dto.MapCertificatesToItems(page.Items),
		httputil.NextLink(c, h.ids.BaseURI, page.NextCursor, take),
	))
}

// ListVersionsHandler pages over every version of a certificate.
// GET /certificates/:name/versions
func (h *CertificateHandler) ListVersionsHandler(c *gin.Context) {
	take, err := httputil.ParseMaxResults(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	page, err := h.certificateUseCase.ListVersions(
		c.Request.Context(),
		c.Param("name"),
		httputil.SkipToken(c),
		take,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, httputil.NewListResponse(
		dto.MapCertificatesToItems(page.Items),
		httputil.NextLink(c, h.ids.BaseURI, page.NextCursor, take),
	))
}

// DeleteHandler soft-deletes a certificate with its key and secret.
// DELETE /certificates/:name
func (h *CertificateHandler) DeleteHandler(c *gin.Context) {
	deleted, err := h.certificateUseCase.Delete(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDeletedCertificateToResponse(h.ids, deleted))
}

// GetDeletedHandler returns a deleted certificate.
// GET /deletedcertificates/:name
func (h *CertificateHandler) GetDeletedHandler(c *gin.Context) {
	deleted, err := h.certificateUseCase.GetDeleted(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDeletedCertificateToResponse(h.ids, deleted))
}

// ListDeletedHandler pages over deleted certificates.
// GET /deletedcertificates
func (h *CertificateHandler) ListDeletedHandler(c *gin.Context) {
	take, err := httputil.ParseMaxResults(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	page, err := h.certificateUseCase.ListDeleted(c.Request.Context(), httputil.SkipToken(c), take)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, httputil.NewListResponse(
		dto.MapDeletedCertificatesToItems(h.ids, page.Items),
		httputil.NextLink(c, h.ids.BaseURI, page.NextCursor, take),
	))
}

// RecoverHandler restores a deleted certificate with its key and secret.
// POST /deletedcertificates/:name/recover
func (h *CertificateHandler) RecoverHandler(c *gin.Context) {
	record, err := h.certificateUseCase.Recover(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapCertificateToResponse(h.ids, record))
}

// PurgeHandler permanently removes a deleted certificate.
// DELETE /deletedcertificates/:name
func (h *CertificateHandler) PurgeHandler(c *gin.Context) {
	if err := h.certificateUseCase.Purge(c.Request.Context(), c.Param("name")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// BackupHandler returns an opaque backup of a certificate with its key and secret.
// POST /certificates/:name/backup
func (h *CertificateHandler) BackupHandler(c *gin.Context) {
	blob, err := h.certificateUseCase.Backup(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, entityDto.BackupResponse{Value: blob})
}

// RestoreHandler recreates a certificate from a backup blob.
// POST /certificates/restore
func (h *CertificateHandler) RestoreHandler(c *gin.Context) {
	var req entityDto.RestoreRequest
	if !httputil.BindJSON(c, &req, h.logger) {
		return
	}

	record, err := h.certificateUseCase.Restore(c.Request.Context(), req.Value)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapCertificateToResponse(h.ids, record))
}

// GetPolicyHandler returns the policy of a certificate.
// GET /certificates/:name/policy
func (h *CertificateHandler) GetPolicyHandler(c *gin.Context) {
	name := c.Param("name")
	policy, err := h.certificateUseCase.GetPolicy(c.Request.Context(), name)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPolicyToResponse(dto.PolicyID(h.ids, name), policy))
}

// UpdatePolicyHandler replaces fields of the policy of a certificate.
// PATCH /certificates/:name/policy
func (h *CertificateHandler) UpdatePolicyHandler(c *gin.Context) {
	var req dto.PolicyRequest
	if !httputil.BindJSON(c, &req, h.logger) {
		return
	}

	name := c.Param("name")
	policy, err := h.certificateUseCase.UpdatePolicy(c.Request.Context(), name, *req.ToPatch())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPolicyToResponse(dto.PolicyID(h.ids, name), policy))
}

// BindIssuerHandler points the policy of a certificate at an issuer.
// PUT /certificates/:name/policy/issuer
func (h *CertificateHandler) BindIssuerHandler(c *gin.Context) {
	var req dto.BindIssuerRequest
	if !httputil.BindJSON(c, &req, h.logger) {
		return
	}

	name := c.Param("name")
	policy, err := h.certificateUseCase.BindIssuer(c.Request.Context(), name, req.Name)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPolicyToResponse(dto.PolicyID(h.ids, name), policy))
}

// GetOperationHandler returns the issuance operation of a certificate.
// GET /certificates/:name/pending
func (h *CertificateHandler) GetOperationHandler(c *gin.Context) {
	op, err := h.certificateUseCase.GetOperation(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOperationToResponse(op))
}

// DeleteOperationHandler removes the issuance operation of a certificate.
// DELETE /certificates/:name/pending
func (h *CertificateHandler) DeleteOperationHandler(c *gin.Context) {
	op, err := h.certificateUseCase.DeleteOperation(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOperationToResponse(op))
}
