// Package http provides HTTP handlers for PIN protected secrets.
// Plaintext only leaves the server in reveal responses.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	cryptoDomain "github.com/allisson/secrethold/internal/crypto/domain"
	"github.com/allisson/secrethold/internal/httputil"
	secretsDomain "github.com/allisson/secrethold/internal/secrets/domain"
	"github.com/allisson/secrethold/internal/secrets/http/dto"
	secretsUseCase "github.com/allisson/secrethold/internal/secrets/usecase"
	customValidation "github.com/allisson/secrethold/internal/validation"
)

// SecretHandler handles HTTP requests for secret lifecycle operations.
type SecretHandler struct {
	secretUseCase  secretsUseCase.SecretUseCase[secretsUseCase.NoTx, string]
	secretEncoding cryptoDomain.Encoding
	logger         *slog.Logger
}

// NewSecretHandler creates a new secret handler. secretEncoding must match the use case
// configuration; it is used to reject undecodable secrets before any key derivation.
func NewSecretHandler(
	secretUseCase secretsUseCase.SecretUseCase[secretsUseCase.NoTx, string],
	secretEncoding cryptoDomain.Encoding,
	logger *slog.Logger,
) *SecretHandler {
	if secretEncoding == "" {
		secretEncoding = cryptoDomain.DefaultSecretEncoding
	}
	return &SecretHandler{
		secretUseCase:  secretUseCase,
		secretEncoding: secretEncoding,
		logger:         logger,
	}
}

// SetHandler encrypts and stores a secret under a PIN.
// PUT /v1/secrets/:id
// Returns 204 No Content.
func (h *SecretHandler) SetHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.SetSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(h.secretEncoding); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.secretUseCase.SetSecret(c.Request.Context(), id, *req.Secret, req.Pin, secretsUseCase.NoTx{}); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// RevealHandler decrypts a secret.
// POST /v1/secrets/:id/reveal
// Returns 200 OK with the plaintext, 404 when nothing is stored and 401 WRONG_PIN.
func (h *SecretHandler) RevealHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.RevealSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	secret, found, err := h.secretUseCase.GetSecret(c.Request.Context(), id, req.Pin)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, httputil.ErrorResponse{
			Error:   "not_found",
			Message: "The requested resource was not found",
		})
		return
	}

	c.JSON(http.StatusOK, dto.MapRevealSecretResponse(id, secret))
}

// ChangePinHandler re-encrypts a secret under a new PIN.
// POST /v1/secrets/:id/pin
// Returns 204 No Content, 404 WRONG_ID or 401 WRONG_PIN.
func (h *SecretHandler) ChangePinHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.ChangePinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	err := h.secretUseCase.ChangePin(c.Request.Context(), id, req.OldPin, req.NewPin, secretsUseCase.NoTx{})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// DeleteHandler removes a secret from storage and cache.
// DELETE /v1/secrets/:id
// Returns 204 No Content, also when nothing was stored.
func (h *SecretHandler) DeleteHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.secretUseCase.DeleteSecret(c.Request.Context(), id, secretsUseCase.NoTx{}); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// CachedHandler reports whether a secret is resident in the cache.
// GET /v1/secrets/:id/cached
func (h *SecretHandler) CachedHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	cached, err := h.secretUseCase.Cached(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapCachedResponse(id, cached))
}

// DeleteCacheHandler drops a secret from the cache only.
// DELETE /v1/secrets/:id/cache
func (h *SecretHandler) DeleteCacheHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.secretUseCase.DeleteCachedSecret(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// CleanCacheHandler drops every cached secret.
// DELETE /v1/cache. Caches that cannot be purged answer 501.
func (h *SecretHandler) CleanCacheHandler(c *gin.Context) {
	if err := h.secretUseCase.CleanCache(c.Request.Context()); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

func (h *SecretHandler) parseID(c *gin.Context) (secretsDomain.ID, bool) {
	id, err := secretsDomain.ParseID(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return "", false
	}
	return id, true
}
