package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	keywrapDomain "github.com/allisson/keywrapper/internal/keywrap/domain"
)

// KeySealer encrypts wrapping key descriptors with a KMS keeper so callers can
// persist "$kms$" descriptors instead of raw key material.
//
// A KeySealer without a keeper passes plain descriptors through and rejects sealed ones.
type KeySealer struct {
	keeper KMSKeeper
}

// NewKeySealer creates a KeySealer. keeper may be nil.
func NewKeySealer(keeper KMSKeeper) *KeySealer {
	return &KeySealer{keeper: keeper}
}

// Enabled reports whether a keeper is configured.
func (s *KeySealer) Enabled() bool {
	return s != nil && s.keeper != nil
}

// IsSealed reports whether descriptor carries the "$kms$" prefix.
func IsSealed(descriptor string) bool {
	return strings.HasPrefix(descriptor, keywrapDomain.SealedPrefix)
}

// Seal encrypts descriptor with the keeper. Already sealed descriptors are returned
// unchanged. Returns ErrKMSNotConfigured without a keeper.
func (s *KeySealer) Seal(ctx context.Context, descriptor string) (string, error) {
	if IsSealed(descriptor) {
		return descriptor, nil
	}
	if !s.Enabled() {
		return "", keywrapDomain.ErrKMSNotConfigured
	}

	ciphertext, err := s.keeper.Encrypt(ctx, []byte(descriptor))
	if err != nil {
		return "", fmt.Errorf("failed to seal wrapping key: %w", err)
	}

	return keywrapDomain.SealedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Unseal returns the plain descriptor behind a sealed one. Plain descriptors are
// returned unchanged.
func (s *KeySealer) Unseal(ctx context.Context, descriptor string) (string, error) {
	encoded, sealed := strings.CutPrefix(descriptor, keywrapDomain.SealedPrefix)
	if !sealed {
		return descriptor, nil
	}
	if !s.Enabled() {
		return "", keywrapDomain.ErrKMSNotConfigured
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", keywrapDomain.ErrSealedKeyInvalid, err)
	}

	plain, err := s.keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", keywrapDomain.ErrSealedKeyInvalid, err)
	}
	defer keywrapDomain.Zero(plain)

	return string(plain), nil
}

// Close releases the keeper.
func (s *KeySealer) Close() error {
	if !s.Enabled() {
		return nil
	}
	return s.keeper.Close()
}
