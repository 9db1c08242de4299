package service

import (
	"crypto/subtle"
	"fmt"

	keywrapDomain "github.com/allisson/keywrapper/internal/keywrap/domain"
)

// pkcs7Pad appends PKCS#7 padding, matching OpenSSL's default for aes-256-cbc.
// Block-aligned input gains a full block of padding.
func pkcs7Pad(data []byte) []byte {
	padLen := keywrapDomain.BlockSize - len(data)%keywrapDomain.BlockSize
	out := make([]byte, len(data)+padLen)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(padLen)
	}
	return out
}

// pkcs7Unpad validates and strips PKCS#7 padding without branching on padding bytes.
func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data)%keywrapDomain.BlockSize != 0 {
		return nil, fmt.Errorf("%w: invalid padded length %d", keywrapDomain.ErrDecryptionFailed, len(data))
	}

	padLen := int(data[len(data)-1])
	good := subtle.ConstantTimeLessOrEq(1, padLen) & subtle.ConstantTimeLessOrEq(padLen, keywrapDomain.BlockSize)

	// Inspect the whole final block so timing does not depend on padLen.
	tail := data[len(data)-keywrapDomain.BlockSize:]
	for i := range tail {
		inPad := subtle.ConstantTimeLessOrEq(keywrapDomain.BlockSize-i, padLen)
		matches := subtle.ConstantTimeByteEq(tail[i], byte(padLen))
		good &= subtle.ConstantTimeSelect(inPad, matches, 1)
	}

	if good != 1 {
		return nil, fmt.Errorf("%w: invalid padding", keywrapDomain.ErrDecryptionFailed)
	}

	return data[:len(data)-padLen], nil
}
