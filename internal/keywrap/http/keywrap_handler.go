// Package http provides HTTP handlers for the key-wrapping API.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/keywrapper/internal/httputil"
	keywrapDomain "github.com/allisson/keywrapper/internal/keywrap/domain"
	"github.com/allisson/keywrapper/internal/keywrap/http/dto"
	keywrapUseCase "github.com/allisson/keywrapper/internal/keywrap/usecase"
	customValidation "github.com/allisson/keywrapper/internal/validation"
)

// KeyWrapHandler serves the /v1/keywrap endpoints.
type KeyWrapHandler struct {
	keyWrapUseCase keywrapUseCase.KeyWrapUseCase
	logger         *slog.Logger
}

// NewKeyWrapHandler creates a new key-wrapping handler.
func NewKeyWrapHandler(keyWrapUseCase keywrapUseCase.KeyWrapUseCase, logger *slog.Logger) *KeyWrapHandler {
	return &KeyWrapHandler{
		keyWrapUseCase: keyWrapUseCase,
		logger:         logger,
	}
}

// CreateWrappingKeyHandler generates a wrapping key descriptor.
// POST /v1/keywrap/keys - Returns 201 Created.
func (h *KeyWrapHandler) CreateWrappingKeyHandler(c *gin.Context) {
	descriptor, err := h.keyWrapUseCase.CreateWrappingKey(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.WrappingKeyResponse{WrappingKey: descriptor})
}

// EncryptHandler protects base64 plaintext under a supplied or generated key.
// POST /v1/keywrap/encrypt - Returns 200 OK with ciphertext and encoded wrapping key.
func (h *KeyWrapHandler) EncryptHandler(c *gin.Context) {
	var req dto.EncryptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	plaintext, key, err := req.Decode()
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid base64: %w", err), h.logger)
		return
	}
	defer keywrapDomain.Zero(plaintext)
	defer keywrapDomain.Zero(key)

	result, err := h.keyWrapUseCase.Encrypt(c.Request.Context(), plaintext, key)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEncryptResponse(result))
}

// ReencryptHandler protects base64 plaintext under an existing wrapping key.
// POST /v1/keywrap/reencrypt - Returns 200 OK; encoded equals the supplied wrapping key.
func (h *KeyWrapHandler) ReencryptHandler(c *gin.Context) {
	var req dto.ReencryptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	plaintext, err := decodeBase64(req.Plaintext)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	defer keywrapDomain.Zero(plaintext)

	result, err := h.keyWrapUseCase.Reencrypt(c.Request.Context(), plaintext, req.WrappingKey)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEncryptResponse(result))
}

// DecryptHandler recovers plaintext, falling back to the legacy format when needed.
// POST /v1/keywrap/decrypt - Returns 200 OK with base64 plaintext.
func (h *KeyWrapHandler) DecryptHandler(c *gin.Context) {
	var req dto.DecryptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	plaintext, err := h.keyWrapUseCase.Decrypt(c.Request.Context(), req.Ciphertext, req.WrappingKey)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	// SECURITY: zero plaintext once the response is rendered
	defer keywrapDomain.Zero(plaintext)

	c.JSON(http.StatusOK, dto.DecryptResponse{Plaintext: plaintext})
}

// RewrapHandler re-encrypts a batch of values with fresh IVs.
// POST /v1/keywrap/rewrap - Returns 200 OK with per-item outcomes in request order.
func (h *KeyWrapHandler) RewrapHandler(c *gin.Context) {
	var req dto.RewrapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	results, err := h.keyWrapUseCase.Rewrap(c.Request.Context(), req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRewrapResponse(results))
}
