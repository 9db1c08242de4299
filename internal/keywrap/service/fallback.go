package service

import (
	"errors"

	keywrapDomain "github.com/allisson/keywrapper/internal/keywrap/domain"
)

// FallbackDecrypter tries the primary decrypter and, only when it reports
// ErrVerificationFailed, retries with the legacy decrypter using the same arguments.
// Every other primary error is returned as is.
type FallbackDecrypter struct {
	primary Decrypter
	legacy  Decrypter
}

// NewFallbackDecrypter creates a FallbackDecrypter.
func NewFallbackDecrypter(primary, legacy Decrypter) *FallbackDecrypter {
	return &FallbackDecrypter{primary: primary, legacy: legacy}
}

// Decrypt dispatches between the two formats by verification result.
func (f *FallbackDecrypter) Decrypt(encodedCipherdata, wrappingKey string) ([]byte, error) {
	plaintext, err := f.primary.Decrypt(encodedCipherdata, wrappingKey)
	if errors.Is(err, keywrapDomain.ErrVerificationFailed) {
		return f.legacy.Decrypt(encodedCipherdata, wrappingKey)
	}
	return plaintext, err
}
