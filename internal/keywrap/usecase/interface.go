package usecase

import (
	"context"

	keywrapDomain "github.com/allisson/keywrapper/internal/keywrap/domain"
)

// KeySealer seals wrapping key descriptors with a KMS keeper.
type KeySealer interface {
	Enabled() bool
	Seal(ctx context.Context, descriptor string) (string, error)
	Unseal(ctx context.Context, descriptor string) (string, error)
}

// KeyWrapUseCase defines the key-wrapping operations exposed over HTTP and the CLI.
//
// Wrapping key arguments may be plain "$1$" descriptors or "$kms$" sealed ones.
type KeyWrapUseCase interface {
	// CreateWrappingKey returns the descriptor of a fresh wrapping key, sealed when a
	// KMS keeper is configured.
	CreateWrappingKey(ctx context.Context) (string, error)

	Encrypt(ctx context.Context, plaintext, key []byte) (*keywrapDomain.EncryptResult, error)
	Reencrypt(ctx context.Context, plaintext []byte, wrappingKey string) (*keywrapDomain.EncryptResult, error)

	// Decrypt returns the plaintext behind ciphertext.
	//
	// Security Note: callers MUST zero the returned slice after use with keywrapDomain.Zero.
	Decrypt(ctx context.Context, ciphertext, wrappingKey string) ([]byte, error)

	// Rewrap re-encrypts each item under its own wrapping key with a fresh IV, upgrading
	// legacy envelopes to the current format. Results keep the order of items and carry
	// per-item errors. The returned error is non-nil only if ctx is done.
	Rewrap(ctx context.Context, items []keywrapDomain.RewrapItem) ([]keywrapDomain.RewrapResult, error)
}
