package service

import (
	"io"

	keywrapDomain "github.com/allisson/keywrapper/internal/keywrap/domain"
)

// AES256CBCSHA256KeyWrapper implements KeyWrapper for the "$1$" format.
//
// A single raw wrapping key is hashed with SHA-512; the first half keys AES-256-CBC
// (PKCS#7 padded) and the second half keys HMAC-SHA256 over
// "$1$" || "aes-256-cbc" || IV || ciphertext. The envelope is
// base64(IV || ciphertext || tag).
//
// Envelopes whose tag does not verify are handed to the legacy decrypter with the
// original arguments, because the raw-key format predating this one shares the
// same envelope layout and can only be told apart by failed verification.
//
// Thread safety:
//
//	The wrapper holds no mutable state; key material is rederived on every call.
//	It is safe for concurrent use when the configured random reader is.
type AES256CBCSHA256KeyWrapper struct {
	random    io.Reader
	decrypter Decrypter
}

// NewAES256CBCSHA256KeyWrapper creates the wrapper.
//
// A nil random reader selects crypto/rand.Reader. A nil legacy decrypter selects a
// RawKeyWrapper sharing the same random reader.
func NewAES256CBCSHA256KeyWrapper(random io.Reader, legacy Decrypter) *AES256CBCSHA256KeyWrapper {
	if legacy == nil {
		legacy = NewRawKeyWrapper(random)
	}
	return &AES256CBCSHA256KeyWrapper{
		random:    random,
		decrypter: NewFallbackDecrypter(NewHMACDecrypter(), legacy),
	}
}

// Enabled reports whether AES-256-CBC and HMAC-SHA256 are available.
func (w *AES256CBCSHA256KeyWrapper) Enabled() bool {
	return cipherAvailable()
}

// GenerateKey returns "$1$" + base64 of 32 fresh random bytes.
func (w *AES256CBCSHA256KeyWrapper) GenerateKey() (string, error) {
	raw, err := readRandom(w.random, keywrapDomain.KeyLen)
	if err != nil {
		return "", err
	}
	defer keywrapDomain.Zero(raw)
	return keywrapDomain.EncodeWrappingKey(raw), nil
}

// Encrypt protects plaintext. An empty key is replaced by 32 fresh random bytes;
// the returned Encoded field always describes the key actually used.
//
// Returns ErrRandomnessUnavailable if the random source fails.
func (w *AES256CBCSHA256KeyWrapper) Encrypt(
	plaintext, key []byte,
) (keywrapDomain.EncryptResult, error) {
	if len(key) == 0 {
		generated, err := readRandom(w.random, keywrapDomain.KeyLen)
		if err != nil {
			return keywrapDomain.EncryptResult{}, err
		}
		defer keywrapDomain.Zero(generated)
		key = generated
	}

	iv, err := readRandom(w.random, keywrapDomain.IVLen)
	if err != nil {
		return keywrapDomain.EncryptResult{}, err
	}

	return w.encryptWithIV(plaintext, key, iv)
}

// Reencrypt protects plaintext under the raw key behind wrappingKey with a fresh IV.
// The returned Encoded field equals the canonical form of wrappingKey.
//
// Returns ErrInvalidKeyFormat for descriptors without the "$1$" prefix or with bad base64.
func (w *AES256CBCSHA256KeyWrapper) Reencrypt(
	plaintext []byte,
	wrappingKey string,
) (keywrapDomain.EncryptResult, error) {
	raw, err := keywrapDomain.ParseWrappingKey(wrappingKey)
	if err != nil {
		return keywrapDomain.EncryptResult{}, err
	}
	defer keywrapDomain.Zero(raw)

	iv, err := readRandom(w.random, keywrapDomain.IVLen)
	if err != nil {
		return keywrapDomain.EncryptResult{}, err
	}

	return w.encryptWithIV(plaintext, raw, iv)
}

// Decrypt verifies and decrypts encodedCipherdata. Verification failure is not an
// error here: it routes the call to the legacy decrypter, whose result and errors
// are returned unchanged.
func (w *AES256CBCSHA256KeyWrapper) Decrypt(encodedCipherdata, wrappingKey string) ([]byte, error) {
	return w.decrypter.Decrypt(encodedCipherdata, wrappingKey)
}

func (w *AES256CBCSHA256KeyWrapper) encryptWithIV(
	plaintext, raw, iv []byte,
) (keywrapDomain.EncryptResult, error) {
	if !w.Enabled() {
		return keywrapDomain.EncryptResult{}, keywrapDomain.ErrCipherUnavailable
	}

	material := keywrapDomain.DeriveKeyMaterial(raw)
	defer material.Zero()

	env, err := sealEnvelope(material, iv, plaintext)
	if err != nil {
		return keywrapDomain.EncryptResult{}, err
	}

	return keywrapDomain.EncryptResult{
		Ciphertext: env.Encode(),
		Encoded:    keywrapDomain.EncodeWrappingKey(raw),
	}, nil
}

// HMACDecrypter is the verifying half of the "$1$" format. Unlike the wrapper it
// reports a tag mismatch as ErrVerificationFailed so a dispatcher can act on it.
type HMACDecrypter struct{}

// NewHMACDecrypter creates an HMACDecrypter.
func NewHMACDecrypter() *HMACDecrypter {
	return &HMACDecrypter{}
}

// Decrypt parses the descriptor and envelope, verifies the tag with a
// constant-time comparison and decrypts on match.
func (d *HMACDecrypter) Decrypt(encodedCipherdata, wrappingKey string) ([]byte, error) {
	if !cipherAvailable() {
		return nil, keywrapDomain.ErrCipherUnavailable
	}

	raw, err := keywrapDomain.ParseWrappingKey(wrappingKey)
	if err != nil {
		return nil, err
	}
	material := keywrapDomain.DeriveKeyMaterial(raw)
	keywrapDomain.Zero(raw)
	defer material.Zero()

	env, err := keywrapDomain.ParseEnvelope(encodedCipherdata)
	if err != nil {
		return nil, err
	}

	return openEnvelope(material, env)
}
