package domain

import (
	"github.com/allisson/keywrapper/internal/errors"
)

// Codec error definitions.
//
// Every error wraps a sentinel from internal/errors so callers can classify
// failures without importing this package.
var (
	// ErrCipherUnavailable indicates AES-256-CBC or HMAC-SHA256 cannot be instantiated.
	ErrCipherUnavailable = errors.Wrap(errors.ErrUnavailable, "cipher unavailable")

	// ErrRandomnessUnavailable indicates the secure random source failed. Callers never
	// receive output produced with weaker randomness.
	ErrRandomnessUnavailable = errors.Wrap(errors.ErrUnavailable, "randomness unavailable")

	// ErrInvalidKeyFormat indicates a wrapping key descriptor without the version
	// prefix, with invalid base64 or with an unusable key length.
	ErrInvalidKeyFormat = errors.Wrap(errors.ErrInvalidInput, "invalid key format")

	// ErrMalformedEnvelope indicates ciphertext that is not base64 or is too short
	// to hold an IV and a tag.
	ErrMalformedEnvelope = errors.Wrap(errors.ErrInvalidInput, "malformed envelope")

	// ErrDecryptionFailed indicates the ciphertext decrypted to invalid padding.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrUnsupportedFormat indicates a descriptor whose version prefix no wrapper handles.
	ErrUnsupportedFormat = errors.Wrap(errors.ErrInvalidInput, "unsupported wrapping key format")

	// ErrKMSNotConfigured indicates a sealed descriptor was supplied but no KMS keeper is configured.
	ErrKMSNotConfigured = errors.Wrap(errors.ErrUnavailable, "kms keeper not configured")

	// ErrSealedKeyInvalid indicates a sealed descriptor that is not base64 or that the
	// KMS keeper refused to decrypt.
	ErrSealedKeyInvalid = errors.Wrap(errors.ErrInvalidInput, "invalid sealed wrapping key")

	// ErrPlaintextTooLarge indicates plaintext above the configured size limit.
	ErrPlaintextTooLarge = errors.Wrap(errors.ErrInvalidInput, "plaintext too large")

	// ErrVerificationFailed indicates the envelope tag did not match. It drives the
	// legacy fallback and is never returned from a KeyWrapper's Decrypt.
	ErrVerificationFailed = errors.New("envelope verification failed")
)
