// Package service implements the key-wrapping codecs: the HMAC-protected
// AES-256-CBC wrapper, the raw-key legacy wrapper, the verification-driven
// fallback between them and KMS sealing of wrapping key descriptors.
package service

import (
	"context"

	keywrapDomain "github.com/allisson/keywrapper/internal/keywrap/domain"
)

// Decrypter recovers plaintext from encoded cipherdata under a wrapping key descriptor.
type Decrypter interface {
	Decrypt(encodedCipherdata, wrappingKey string) ([]byte, error)
}

// KeyWrapper is a stateless codec for one wrapping format.
type KeyWrapper interface {
	Decrypter

	// Enabled reports whether the underlying primitives are available. A wrapper
	// that is not enabled must not be selected.
	Enabled() bool

	// GenerateKey returns the descriptor of a fresh random wrapping key.
	GenerateKey() (string, error)

	// Encrypt protects plaintext under key, generating a fresh key when key is empty.
	Encrypt(plaintext, key []byte) (keywrapDomain.EncryptResult, error)

	// Reencrypt protects plaintext under an existing wrapping key descriptor with a fresh IV.
	Reencrypt(plaintext []byte, wrappingKey string) (keywrapDomain.EncryptResult, error)
}

// WrapperManager selects the KeyWrapper able to handle a wrapping key descriptor.
type WrapperManager interface {
	// Default returns the wrapper used for newly generated keys.
	Default() (KeyWrapper, error)

	// ForWrappingKey returns the wrapper registered for the descriptor's version prefix.
	ForWrappingKey(wrappingKey string) (KeyWrapper, error)
}

// KMSKeeper is the subset of *secrets.Keeper used to seal wrapping key descriptors.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
