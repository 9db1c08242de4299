package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	keywrapDomain "github.com/allisson/keywrapper/internal/keywrap/domain"
)

// cipherAvailable probes that AES-256 and HMAC-SHA256 can be instantiated.
func cipherAvailable() bool {
	if _, err := aes.NewCipher(make([]byte, keywrapDomain.KeyLen)); err != nil {
		return false
	}
	mac := hmac.New(sha256.New, make([]byte, keywrapDomain.KeyLen))
	return mac.Size() == keywrapDomain.HMACLen
}

// readRandom fills n bytes from r. Any short read is fatal.
func readRandom(r io.Reader, n int) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", keywrapDomain.ErrRandomnessUnavailable, err)
	}
	return buf, nil
}

// cbcEncrypt pads plaintext with PKCS#7 and encrypts it with AES-256-CBC.
func cbcEncrypt(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", keywrapDomain.ErrCipherUnavailable, err)
	}

	padded := pkcs7Pad(plaintext)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	keywrapDomain.Zero(padded)

	return ciphertext, nil
}

// cbcDecrypt decrypts AES-256-CBC ciphertext and strips PKCS#7 padding.
func cbcDecrypt(key, iv, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%keywrapDomain.BlockSize != 0 {
		return nil, fmt.Errorf(
			"%w: ciphertext length %d is not a positive multiple of %d",
			keywrapDomain.ErrMalformedEnvelope,
			len(ciphertext),
			keywrapDomain.BlockSize,
		)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", keywrapDomain.ErrCipherUnavailable, err)
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded)
	if err != nil {
		keywrapDomain.Zero(padded)
		return nil, err
	}
	return plaintext, nil
}

// computeTag returns HMAC-SHA256(hmacKey, Prefix || Method || iv || ciphertext).
func computeTag(hmacKey []byte, env keywrapDomain.Envelope) []byte {
	mac := hmac.New(sha256.New, hmacKey)
	mac.Write(env.AuthenticatedData())
	return mac.Sum(nil)
}

// sealEnvelope encrypts plaintext and authenticates the result with the given subkeys.
func sealEnvelope(material keywrapDomain.KeyMaterial, iv, plaintext []byte) (keywrapDomain.Envelope, error) {
	ciphertext, err := cbcEncrypt(material.EncKey, iv, plaintext)
	if err != nil {
		return keywrapDomain.Envelope{}, err
	}

	env := keywrapDomain.Envelope{IV: iv, Ciphertext: ciphertext}
	env.Tag = computeTag(material.HMACKey, env)
	return env, nil
}

// openEnvelope verifies the tag in constant time and decrypts on match.
// A mismatch returns ErrVerificationFailed without touching the ciphertext.
func openEnvelope(material keywrapDomain.KeyMaterial, env keywrapDomain.Envelope) ([]byte, error) {
	expected := computeTag(material.HMACKey, env)
	if !hmac.Equal(expected, env.Tag) {
		return nil, keywrapDomain.ErrVerificationFailed
	}
	return cbcDecrypt(material.EncKey, env.IV, env.Ciphertext)
}
