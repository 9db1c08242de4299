package service

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/keywrapper/internal/errors"
	keywrapDomain "github.com/allisson/keywrapper/internal/keywrap/domain"
)

func TestAES256CBCSHA256KeyWrapper_Enabled(t *testing.T) {
	assert.True(t, NewAES256CBCSHA256KeyWrapper(nil, nil).Enabled())
}

func TestAES256CBCSHA256KeyWrapper_KnownVector(t *testing.T) {
	t.Run("Encrypt", func(t *testing.T) {
		wrapper := NewAES256CBCSHA256KeyWrapper(bytes.NewReader(make([]byte, keywrapDomain.IVLen)), nil)

		result, err := wrapper.Encrypt([]byte("hello"), make([]byte, keywrapDomain.KeyLen))
		require.NoError(t, err)
		assert.Equal(t, helloVector, result.Ciphertext)
		assert.Equal(t, zeroKeyDescriptor, result.Encoded)
	})

	t.Run("Decrypt", func(t *testing.T) {
		wrapper := NewAES256CBCSHA256KeyWrapper(nil, nil)

		plaintext, err := wrapper.Decrypt(helloVector, zeroKeyDescriptor)
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), plaintext)
	})
}

func TestAES256CBCSHA256KeyWrapper_GenerateKey(t *testing.T) {
	wrapper := NewAES256CBCSHA256KeyWrapper(nil, nil)

	descriptor, err := wrapper.GenerateKey()
	require.NoError(t, err)

	raw, err := keywrapDomain.ParseWrappingKey(descriptor)
	require.NoError(t, err)
	assert.Len(t, raw, keywrapDomain.KeyLen)

	other, err := wrapper.GenerateKey()
	require.NoError(t, err)
	assert.NotEqual(t, descriptor, other)

	_, err = NewAES256CBCSHA256KeyWrapper(failingReader{}, nil).GenerateKey()
	assert.ErrorIs(t, err, keywrapDomain.ErrRandomnessUnavailable)
}

func TestAES256CBCSHA256KeyWrapper_RoundTrip(t *testing.T) {
	wrapper := NewAES256CBCSHA256KeyWrapper(nil, nil)

	for _, size := range []int{0, 1, 5, 15, 16, 17, 31, 32, 33, 1024, 4099} {
		plaintext := make([]byte, size)
		_, err := rand.Read(plaintext)
		require.NoError(t, err)

		result, err := wrapper.Encrypt(plaintext, nil)
		require.NoError(t, err, "size %d", size)

		decrypted, err := wrapper.Decrypt(result.Ciphertext, result.Encoded)
		require.NoError(t, err, "size %d", size)
		assert.Equal(t, plaintext, decrypted, "size %d", size)
	}
}

func TestAES256CBCSHA256KeyWrapper_Encrypt(t *testing.T) {
	wrapper := NewAES256CBCSHA256KeyWrapper(nil, nil)

	t.Run("GeneratesThirtyTwoByteKey", func(t *testing.T) {
		result, err := wrapper.Encrypt([]byte("secret"), nil)
		require.NoError(t, err)

		raw, err := keywrapDomain.ParseWrappingKey(result.Encoded)
		require.NoError(t, err)
		assert.Len(t, raw, keywrapDomain.KeyLen)
	})

	t.Run("GeneratedKeysDiffer", func(t *testing.T) {
		first, err := wrapper.Encrypt([]byte("secret"), nil)
		require.NoError(t, err)
		second, err := wrapper.Encrypt([]byte("secret"), nil)
		require.NoError(t, err)
		assert.NotEqual(t, first.Encoded, second.Encoded)
	})

	t.Run("WipesGeneratedKey", func(t *testing.T) {
		random := &retainingReader{fill: 0x5a}
		result, err := NewAES256CBCSHA256KeyWrapper(random, nil).Encrypt([]byte("secret"), nil)
		require.NoError(t, err)

		assert.Equal(t, keywrapDomain.EncodeWrappingKey(bytes.Repeat([]byte{0x5a}, keywrapDomain.KeyLen)), result.Encoded)
		require.NotEmpty(t, random.bufs)
		assert.Equal(t, make([]byte, keywrapDomain.KeyLen), random.bufs[0])
	})

	t.Run("EncodedReflectsSuppliedKey", func(t *testing.T) {
		key := bytes.Repeat([]byte{0x42}, keywrapDomain.KeyLen)
		result, err := wrapper.Encrypt([]byte("secret"), key)
		require.NoError(t, err)
		assert.Equal(t, keywrapDomain.EncodeWrappingKey(key), result.Encoded)
	})

	t.Run("DoesNotModifySuppliedKey", func(t *testing.T) {
		key := bytes.Repeat([]byte{0x42}, keywrapDomain.KeyLen)
		_, err := wrapper.Encrypt([]byte("secret"), key)
		require.NoError(t, err)
		assert.Equal(t, bytes.Repeat([]byte{0x42}, keywrapDomain.KeyLen), key)
	})

	t.Run("EnvelopeSize", func(t *testing.T) {
		for _, size := range []int{0, 5, 16, 32, 100} {
			result, err := wrapper.Encrypt(make([]byte, size), nil)
			require.NoError(t, err)

			padded := size + keywrapDomain.BlockSize - size%keywrapDomain.BlockSize
			assert.Equal(
				t,
				keywrapDomain.IVLen+padded+keywrapDomain.HMACLen,
				decodedLen(t, result.Ciphertext),
				"size %d",
				size,
			)
		}
	})

	t.Run("UniqueIVs", func(t *testing.T) {
		key := bytes.Repeat([]byte{0x07}, keywrapDomain.KeyLen)
		seen := make(map[string]struct{}, 1000)

		for i := 0; i < 1000; i++ {
			result, err := wrapper.Encrypt([]byte("same plaintext"), key)
			require.NoError(t, err)

			env, err := keywrapDomain.ParseEnvelope(result.Ciphertext)
			require.NoError(t, err)

			iv := string(env.IV)
			_, dup := seen[iv]
			require.False(t, dup, "IV reused at iteration %d", i)
			seen[iv] = struct{}{}
		}
	})

	t.Run("Error_RandomnessUnavailable_Key", func(t *testing.T) {
		failing := NewAES256CBCSHA256KeyWrapper(failingReader{}, nil)
		_, err := failing.Encrypt([]byte("secret"), nil)
		assert.ErrorIs(t, err, keywrapDomain.ErrRandomnessUnavailable)
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	})

	t.Run("Error_RandomnessUnavailable_IV", func(t *testing.T) {
		failing := NewAES256CBCSHA256KeyWrapper(failingReader{}, nil)
		_, err := failing.Encrypt([]byte("secret"), make([]byte, keywrapDomain.KeyLen))
		assert.ErrorIs(t, err, keywrapDomain.ErrRandomnessUnavailable)
	})

	t.Run("Error_ShortRandomRead", func(t *testing.T) {
		short := NewAES256CBCSHA256KeyWrapper(bytes.NewReader(make([]byte, 4)), nil)
		_, err := short.Encrypt([]byte("secret"), make([]byte, keywrapDomain.KeyLen))
		assert.ErrorIs(t, err, keywrapDomain.ErrRandomnessUnavailable)
	})
}

func TestAES256CBCSHA256KeyWrapper_Reencrypt(t *testing.T) {
	wrapper := NewAES256CBCSHA256KeyWrapper(nil, nil)
	plaintext := []byte("rotate me")

	original, err := wrapper.Encrypt(plaintext, nil)
	require.NoError(t, err)

	t.Run("PreservesKeyIdentity", func(t *testing.T) {
		first, err := wrapper.Reencrypt(plaintext, original.Encoded)
		require.NoError(t, err)
		second, err := wrapper.Reencrypt(plaintext, original.Encoded)
		require.NoError(t, err)

		assert.Equal(t, original.Encoded, first.Encoded)
		assert.Equal(t, original.Encoded, second.Encoded)
		assert.NotEqual(t, first.Ciphertext, second.Ciphertext)

		for _, result := range []keywrapDomain.EncryptResult{first, second} {
			decrypted, err := wrapper.Decrypt(result.Ciphertext, original.Encoded)
			require.NoError(t, err)
			assert.Equal(t, plaintext, decrypted)
		}
	})

	t.Run("KnownVector", func(t *testing.T) {
		fixed := NewAES256CBCSHA256KeyWrapper(bytes.NewReader(make([]byte, keywrapDomain.IVLen)), nil)
		result, err := fixed.Reencrypt([]byte("hello"), zeroKeyDescriptor)
		require.NoError(t, err)
		assert.Equal(t, helloVector, result.Ciphertext)
		assert.Equal(t, zeroKeyDescriptor, result.Encoded)
	})

	tests := []struct {
		name        string
		wrappingKey string
	}{
		{name: "Error_MissingPrefix", wrappingKey: "AAAA"},
		{name: "Error_InvalidBase64", wrappingKey: "$1$%%%"},
		{name: "Error_Empty", wrappingKey: ""},
		{name: "Error_NonCanonicalBase64", wrappingKey: "$1$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAB="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wrapper.Reencrypt(plaintext, tt.wrappingKey)
			assert.ErrorIs(t, err, keywrapDomain.ErrInvalidKeyFormat)
		})
	}

	t.Run("Error_RandomnessUnavailable", func(t *testing.T) {
		failing := NewAES256CBCSHA256KeyWrapper(failingReader{}, nil)
		_, err := failing.Reencrypt(plaintext, original.Encoded)
		assert.ErrorIs(t, err, keywrapDomain.ErrRandomnessUnavailable)
	})
}

func TestAES256CBCSHA256KeyWrapper_Decrypt(t *testing.T) {
	t.Run("TamperTriggersLegacyFallback", func(t *testing.T) {
		envLen := decodedLen(t, helloVector)
		positions := map[string]int{
			"iv":         0,
			"ciphertext": keywrapDomain.IVLen + 3,
			"tag":        envLen - 1,
		}

		for name, index := range positions {
			t.Run(name, func(t *testing.T) {
				legacy := &mockDecrypter{}
				wrapper := NewAES256CBCSHA256KeyWrapper(nil, legacy)
				tampered := flipBit(t, helloVector, index)

				legacy.On("Decrypt", tampered, zeroKeyDescriptor).Return([]byte("legacy-sentinel"), nil).Once()

				plaintext, err := wrapper.Decrypt(tampered, zeroKeyDescriptor)
				require.NoError(t, err)
				assert.Equal(t, []byte("legacy-sentinel"), plaintext)
				legacy.AssertExpectations(t)
			})
		}
	})

	t.Run("WrongKeyTriggersLegacyFallback", func(t *testing.T) {
		legacy := &mockDecrypter{}
		wrapper := NewAES256CBCSHA256KeyWrapper(nil, legacy)
		otherKey := keywrapDomain.EncodeWrappingKey(bytes.Repeat([]byte{1}, keywrapDomain.KeyLen))

		legacy.On("Decrypt", helloVector, otherKey).Return(nil, keywrapDomain.ErrDecryptionFailed).Once()

		_, err := wrapper.Decrypt(helloVector, otherKey)
		assert.ErrorIs(t, err, keywrapDomain.ErrDecryptionFailed)
		legacy.AssertExpectations(t)
	})

	t.Run("LegacyErrorsPropagateUnchanged", func(t *testing.T) {
		legacy := &mockDecrypter{}
		wrapper := NewAES256CBCSHA256KeyWrapper(nil, legacy)
		tampered := flipBit(t, helloVector, keywrapDomain.IVLen)
		legacyErr := apperrors.New("legacy backend exploded")

		legacy.On("Decrypt", tampered, zeroKeyDescriptor).Return(nil, legacyErr).Once()

		_, err := wrapper.Decrypt(tampered, zeroKeyDescriptor)
		assert.Same(t, legacyErr, err)
	})

	t.Run("DecryptsLegacyRawKeyValues", func(t *testing.T) {
		wrapper := NewAES256CBCSHA256KeyWrapper(nil, nil)

		plaintext, err := wrapper.Decrypt(helloRawVector, zeroRawKeyDescriptor)
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), plaintext)
	})

	t.Run("TamperedWithRealLegacyFails", func(t *testing.T) {
		wrapper := NewAES256CBCSHA256KeyWrapper(nil, nil)
		tampered := flipBit(t, helloVector, keywrapDomain.IVLen)

		plaintext, err := wrapper.Decrypt(tampered, zeroKeyDescriptor)
		assert.Nil(t, plaintext)
		assert.ErrorIs(t, err, keywrapDomain.ErrDecryptionFailed)
	})

	t.Run("Error_MalformedEnvelope_NoFallback", func(t *testing.T) {
		legacy := &mockDecrypter{}
		wrapper := NewAES256CBCSHA256KeyWrapper(nil, legacy)

		for _, input := range []string{
			"not-base64!!",
			"",
			base64.StdEncoding.EncodeToString(make([]byte, keywrapDomain.MinEnvelopeLen-1)),
		} {
			_, err := wrapper.Decrypt(input, zeroKeyDescriptor)
			assert.ErrorIs(t, err, keywrapDomain.ErrMalformedEnvelope, "input %q", input)
		}
		legacy.AssertNotCalled(t, "Decrypt", mock.Anything, mock.Anything)
	})

	t.Run("Error_InvalidKeyFormat_NoFallback", func(t *testing.T) {
		legacy := &mockDecrypter{}
		wrapper := NewAES256CBCSHA256KeyWrapper(nil, legacy)

		_, err := wrapper.Decrypt(helloVector, "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=")
		assert.ErrorIs(t, err, keywrapDomain.ErrInvalidKeyFormat)
		legacy.AssertNotCalled(t, "Decrypt", mock.Anything, mock.Anything)
	})
}

func TestHMACDecrypter_Decrypt(t *testing.T) {
	decrypter := NewHMACDecrypter()

	t.Run("Success", func(t *testing.T) {
		plaintext, err := decrypter.Decrypt(helloVector, zeroKeyDescriptor)
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), plaintext)
	})

	t.Run("MismatchIsVerificationFailure", func(t *testing.T) {
		_, err := decrypter.Decrypt(flipBit(t, helloVector, 20), zeroKeyDescriptor)
		assert.ErrorIs(t, err, keywrapDomain.ErrVerificationFailed)
	})

	t.Run("AuthenticEmptyCiphertextIsMalformed", func(t *testing.T) {
		material := keywrapDomain.DeriveKeyMaterial(make([]byte, keywrapDomain.KeyLen))
		env := keywrapDomain.Envelope{IV: make([]byte, keywrapDomain.IVLen)}
		env.Tag = computeTag(material.HMACKey, env)

		_, err := decrypter.Decrypt(env.Encode(), zeroKeyDescriptor)
		assert.ErrorIs(t, err, keywrapDomain.ErrMalformedEnvelope)
	})

	t.Run("AuthenticBadPaddingFails", func(t *testing.T) {
		material := keywrapDomain.DeriveKeyMaterial(make([]byte, keywrapDomain.KeyLen))
		block, err := aes.NewCipher(material.EncKey)
		require.NoError(t, err)

		// A zero final byte is never valid PKCS#7 padding.
		env := keywrapDomain.Envelope{
			IV:         make([]byte, keywrapDomain.IVLen),
			Ciphertext: make([]byte, keywrapDomain.BlockSize),
		}
		cipher.NewCBCEncrypter(block, env.IV).CryptBlocks(env.Ciphertext, make([]byte, keywrapDomain.BlockSize))
		env.Tag = computeTag(material.HMACKey, env)

		plaintext, err := decrypter.Decrypt(env.Encode(), zeroKeyDescriptor)
		assert.Nil(t, plaintext)
		assert.ErrorIs(t, err, keywrapDomain.ErrDecryptionFailed)
	})
}
