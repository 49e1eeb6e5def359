// Package http provides HTTP handlers for key management and key operations.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	entityDto "github.com/allisson/keyvault-emulator/internal/entity/http/dto"
	"github.com/allisson/keyvault-emulator/internal/httputil"
	keysDomain "github.com/allisson/keyvault-emulator/internal/keys/domain"
	"github.com/allisson/keyvault-emulator/internal/keys/http/dto"
	keysUseCase "github.com/allisson/keyvault-emulator/internal/keys/usecase"
	customValidation "github.com/allisson/keyvault-emulator/internal/validation"
)

// KeyHandler handles HTTP requests for keys.
type KeyHandler struct {
	keyUseCase keysUseCase.KeyUseCase
	ids        domain.IDBuilder
	logger     *slog.Logger
}

// NewKeyHandler creates a new key handler with required dependencies.
func NewKeyHandler(
	keyUseCase keysUseCase.KeyUseCase,
	ids domain.IDBuilder,
	logger *slog.Logger,
) *KeyHandler {
	return &KeyHandler{
		keyUseCase: keyUseCase,
		ids:        ids,
		logger:     logger,
	}
}

// CreateHandler generates a new key version.
// POST /keys/:name/create
func (h *KeyHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateKeyRequest
	if !httputil.BindJSON(c, &req, h.logger) {
		return
	}

	record, err := h.keyUseCase.Create(c.Request.Context(), c.Param("name"), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeyToResponse(record))
}

// ImportHandler stores caller-supplied key material as a new version.
// PUT /keys/:name
func (h *KeyHandler) ImportHandler(c *gin.Context) {
	var req dto.ImportKeyRequest
	if !httputil.BindJSON(c, &req, h.logger) {
		return
	}

	record, err := h.keyUseCase.Import(c.Request.Context(), c.Param("name"), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeyToResponse(record))
}

// GetHandler returns a key version, or the current one when no version is given.
// GET /keys/:name/:version
func (h *KeyHandler) GetHandler(c *gin.Context) {
	record, err := h.keyUseCase.Get(c.Request.Context(), c.Param("name"), c.Param("version"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeyToResponse(record))
}

// UpdateHandler changes attributes and tags of a key version.
// PATCH /keys/:name/:version
func (h *KeyHandler) UpdateHandler(c *gin.Context) {
	var req entityDto.UpdateRequest
	if !httputil.BindJSON(c, &req, h.logger) {
		return
	}

	record, err := h.keyUseCase.Update(c.Request.Context(), c.Param("name"), c.Param("version"), req.ToPatch())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeyToResponse(record))
}

// ListHandler pages over the current version of every key.
// GET /keys?maxresults=N&$skiptoken=T
func (h *KeyHandler) ListHandler(c *gin.Context) {
	take, err := httputil.ParseMaxResults(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	page, err := h.keyUseCase.List(c.Request.Context(), httputil.SkipToken(c), take)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, httputil.NewListResponse(
		dto.MapKeysToItems(page.Items),
		httputil.NextLink(c, h.ids.BaseURI, page.NextCursor, take),
	))
}

// ListVersionsHandler pages over every version of a key.
// GET /keys/:name/versions
func (h *KeyHandler) ListVersionsHandler(c *gin.Context) {
	take, err := httputil.ParseMaxResults(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	page, err := h.keyUseCase.ListVersions(c.Request.Context(), c.Param("name"), httputil.SkipToken(c), take)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, httputil.NewListResponse(
		dto.MapKeysToItems(page.Items),
		httputil.NextLink(c, h.ids.BaseURI, page.NextCursor, take),
	))
}

// DeleteHandler soft-deletes every version of a key.
// DELETE /keys/:name
func (h *KeyHandler) DeleteHandler(c *gin.Context) {
	deleted, err := h.keyUseCase.Delete(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDeletedKeyToResponse(deleted))
}

// GetDeletedHandler returns a deleted key.
// GET /deletedkeys/:name
func (h *KeyHandler) GetDeletedHandler(c *gin.Context) {
	deleted, err := h.keyUseCase.GetDeleted(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDeletedKeyToResponse(deleted))
}

// ListDeletedHandler pages over deleted keys.
// GET /deletedkeys
func (h *KeyHandler) ListDeletedHandler(c *gin.Context) {
	take, err := httputil.ParseMaxResults(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	page, err := h.keyUseCase.ListDeleted(c.Request.Context(), httputil.SkipToken(c), take)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, httputil.NewListResponse(
		dto.MapDeletedKeysToItems(h.ids, page.Items),
		httputil.NextLink(c, h.ids.BaseURI, page.NextCursor, take),
	))
}

// RecoverHandler restores a deleted key.
// POST /deletedkeys/:name/recover
func (h *KeyHandler) RecoverHandler(c *gin.Context) {
	record, err := h.keyUseCase.Recover(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeyToResponse(record))
}

// PurgeHandler permanently removes a deleted key.
// DELETE /deletedkeys/:name
func (h *KeyHandler) PurgeHandler(c *gin.Context) {
	if err := h.keyUseCase.Purge(c.Request.Context(), c.Param("name")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// BackupHandler returns an opaque backup of every version of a key.
// POST /keys/:name/backup
func (h *KeyHandler) BackupHandler(c *gin.Context) {
	blob, err := h.keyUseCase.Backup(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, entityDto.BackupResponse{Value: blob})
}

// RestoreHandler recreates a key from a backup blob.
// POST /keys/restore
func (h *KeyHandler) RestoreHandler(c *gin.Context) {
	var req entityDto.RestoreRequest
	if !httputil.BindJSON(c, &req, h.logger) {
		return
	}

	record, err := h.keyUseCase.Restore(c.Request.Context(), req.Value)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeyToResponse(record))
}

// RotateHandler creates a new key version with the properties of the current one.
// POST /keys/:name/rotate
func (h *KeyHandler) RotateHandler(c *gin.Context) {
	record, err := h.keyUseCase.Rotate(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeyToResponse(record))
}

// EncryptHandler encrypts a value with a key version.
// POST /keys/:name/:version/encrypt
func (h *KeyHandler) EncryptHandler(c *gin.Context) {
	h.encryptionOperation(c, h.keyUseCase.Encrypt)
}

// DecryptHandler decrypts a value with a key version.
// POST /keys/:name/:version/decrypt
func (h *KeyHandler) DecryptHandler(c *gin.Context) {
	h.encryptionOperation(c, h.keyUseCase.Decrypt)
}

// WrapKeyHandler wraps a symmetric key with a key version.
// POST /keys/:name/:version/wrapkey
func (h *KeyHandler) WrapKeyHandler(c *gin.Context) {
	h.encryptionOperation(c, h.keyUseCase.WrapKey)
}

// UnwrapKeyHandler unwraps a symmetric key with a key version.
// POST /keys/:name/:version/unwrapkey
func (h *KeyHandler) UnwrapKeyHandler(c *gin.Context) {
	h.encryptionOperation(c, h.keyUseCase.UnwrapKey)
}

type encryptionFunc func(
	ctx context.Context,
	name, version string,
	alg keysDomain.EncryptionAlgorithm,
	value []byte,
) (*keysUseCase.OperationResult, error)

func (h *KeyHandler) encryptionOperation(c *gin.Context, fn encryptionFunc) {
	var req dto.KeyOperationRequest
	if !httputil.BindJSON(c, &req, h.logger) {
		return
	}

	result, err := fn(
		c.Request.Context(),
		c.Param("name"),
		c.Param("version"),
		keysDomain.EncryptionAlgorithm(req.Algorithm),
		req.DecodedValue(),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOperationResult(result))
}

// SignHandler signs a digest with a key version.
// POST /keys/:name/:version/sign
func (h *KeyHandler) SignHandler(c *gin.Context) {
	var req dto.KeyOperationRequest
	if !httputil.BindJSON(c, &req, h.logger) {
		return
	}

	result, err := h.keyUseCase.Sign(
		c.Request.Context(),
		c.Param("name"),
		c.Param("version"),
		keysDomain.SignatureAlgorithm(req.Algorithm),
		req.DecodedValue(),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOperationResult(result))
}

// VerifyHandler checks a signature with a key version.
// POST /keys/:name/:version/verify
func (h *KeyHandler) VerifyHandler(c *gin.Context) {
	var req dto.VerifyRequest
	if !httputil.BindJSON(c, &req, h.logger) {
		return
	}

	digest, signature := req.Decoded()
	ok, err := h.keyUseCase.Verify(
		c.Request.Context(),
		c.Param("name"),
		c.Param("version"),
		keysDomain.SignatureAlgorithm(req.Algorithm),
		digest,
		signature,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.VerifyResponse{Value: ok})
}

// RandomBytesHandler returns random bytes.
// POST /rng
func (h *KeyHandler) RandomBytesHandler(c *gin.Context) {
	var req dto.RandomBytesRequest
	if !httputil.BindJSON(c, &req, h.logger) {
		return
	}

	out, err := h.keyUseCase.GetRandomBytes(c.Request.Context(), req.Count)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.RandomBytesResponse{Value: customValidation.EncodeBase64URL(out)})
}
