package service

import (
	"errors"
	"fmt"
	"io"

	keywrapDomain "github.com/allisson/keywrapper/internal/keywrap/domain"
)

// RawKeyLen is the size of a legacy raw wrapping key: encryption key || HMAC key.
const RawKeyLen = 2 * keywrapDomain.KeyLen

// RawKeyWrapper implements the legacy raw-key format.
//
// The 64-byte wrapping key is used as-is: bytes 0-31 key AES-256-CBC and bytes
// 32-63 key HMAC-SHA256. Descriptor prefix, envelope layout and HMAC input are the
// same as the "$1$" format, only the SHA-512 derivation is missing.
type RawKeyWrapper struct {
	random io.Reader
}

// NewRawKeyWrapper creates a RawKeyWrapper. A nil reader selects crypto/rand.Reader.
func NewRawKeyWrapper(random io.Reader) *RawKeyWrapper {
	return &RawKeyWrapper{random: random}
}

// Enabled reports whether AES-256-CBC and HMAC-SHA256 are available.
func (w *RawKeyWrapper) Enabled() bool {
	return cipherAvailable()
}

// GenerateKey returns the descriptor of 64 fresh random bytes.
func (w *RawKeyWrapper) GenerateKey() (string, error) {
	raw, err := readRandom(w.random, RawKeyLen)
	if err != nil {
		return "", err
	}
	defer keywrapDomain.Zero(raw)
	return keywrapDomain.EncodeWrappingKey(raw), nil
}

// Encrypt protects plaintext under a 64-byte raw key, generating one when key is empty.
func (w *RawKeyWrapper) Encrypt(plaintext, key []byte) (keywrapDomain.EncryptResult, error) {
	if len(key) == 0 {
		generated, err := readRandom(w.random, RawKeyLen)
		if err != nil {
			return keywrapDomain.EncryptResult{}, err
		}
		defer keywrapDomain.Zero(generated)
		key = generated
	}
	if len(key) != RawKeyLen {
		return keywrapDomain.EncryptResult{}, fmt.Errorf(
			"%w: raw key must be %d bytes, got %d",
			keywrapDomain.ErrInvalidKeyFormat,
			RawKeyLen,
			len(key),
		)
	}

	iv, err := readRandom(w.random, keywrapDomain.IVLen)
	if err != nil {
		return keywrapDomain.EncryptResult{}, err
	}

	material := splitRawKey(key)
	defer material.Zero()

	env, err := sealEnvelope(material, iv, plaintext)
	if err != nil {
		return keywrapDomain.EncryptResult{}, err
	}

	return keywrapDomain.EncryptResult{
		Ciphertext: env.Encode(),
		Encoded:    keywrapDomain.EncodeWrappingKey(key),
	}, nil
}

// Reencrypt protects plaintext under the raw key behind wrappingKey with a fresh IV.
func (w *RawKeyWrapper) Reencrypt(
	plaintext []byte,
	wrappingKey string,
) (keywrapDomain.EncryptResult, error) {
	raw, err := keywrapDomain.ParseWrappingKey(wrappingKey)
	if err != nil {
		return keywrapDomain.EncryptResult{}, err
	}
	defer keywrapDomain.Zero(raw)
	return w.Encrypt(plaintext, raw)
}

// Decrypt verifies and decrypts a legacy envelope. This is the end of the
// fallback chain, so a tag mismatch is reported as ErrDecryptionFailed.
func (w *RawKeyWrapper) Decrypt(encodedCipherdata, wrappingKey string) ([]byte, error) {
	if !cipherAvailable() {
		return nil, keywrapDomain.ErrCipherUnavailable
	}

	raw, err := keywrapDomain.ParseWrappingKey(wrappingKey)
	if err != nil {
		return nil, err
	}
	defer keywrapDomain.Zero(raw)

	env, err := keywrapDomain.ParseEnvelope(encodedCipherdata)
	if err != nil {
		return nil, err
	}

	if len(raw) != RawKeyLen {
		return nil, fmt.Errorf("%w: envelope does not verify under the wrapping key", keywrapDomain.ErrDecryptionFailed)
	}

	material := splitRawKey(raw)
	defer material.Zero()

	plaintext, err := openEnvelope(material, env)
	if errors.Is(err, keywrapDomain.ErrVerificationFailed) {
		return nil, fmt.Errorf("%w: envelope does not verify under the wrapping key", keywrapDomain.ErrDecryptionFailed)
	}
	return plaintext, err
}

// splitRawKey copies the halves of a 64-byte raw key.
func splitRawKey(raw []byte) keywrapDomain.KeyMaterial {
	material := keywrapDomain.KeyMaterial{
		EncKey:  make([]byte, keywrapDomain.KeyLen),
		HMACKey: make([]byte, keywrapDomain.KeyLen),
	}
	copy(material.EncKey, raw[:keywrapDomain.KeyLen])
	copy(material.HMACKey, raw[keywrapDomain.KeyLen:])
	return material
}
