package service

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	zeroKeyDescriptor    = "$1$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="
	zeroRawKeyDescriptor = "$1$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=="

	// Computed with `openssl enc -aes-256-cbc` and HMAC-SHA256 for a zero key,
	// zero IV and the plaintext "hello".
	helloVector    = "AAAAAAAAAAAAAAAAAAAAAC+tBzKoM4IB8Sj8S0ePQaYdGF3P0b1WFEt6Ln7A2HWW/98veY6PYmS7LOcc6Pk1Jg=="
	helloRawVector = "AAAAAAAAAAAAAAAAAAAAAMI13iTSOeA8yON3xgT8pnvZ2aUb50z5ndIbo9KlFUIdZeM45i/h6d8g4uWMmDv1uA=="
)

// mockDecrypter records legacy fallback calls.
type mockDecrypter struct {
	mock.Mock
}

func (m *mockDecrypter) Decrypt(encodedCipherdata, wrappingKey string) ([]byte, error) {
	args := m.Called(encodedCipherdata, wrappingKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// failingReader simulates an exhausted entropy source.
type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy exhausted")
}

// retainingReader fills every read with fill and keeps the buffers it was handed,
// so tests can inspect them after the caller is done.
type retainingReader struct {
	fill byte
	bufs [][]byte
}

func (r *retainingReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.fill
	}
	r.bufs = append(r.bufs, p)
	return len(p), nil
}

// flipBit decodes an envelope, flips one bit at index and re-encodes it.
func flipBit(t *testing.T, encoded string, index int) string {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	data[index] ^= 0x01
	return base64.StdEncoding.EncodeToString(data)
}

func decodedLen(t *testing.T, encoded string) int {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	return len(data)
}
