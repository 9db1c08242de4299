package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ParseWrappingKey strips the version prefix from a wrapping key descriptor and
// returns the raw key bytes.
//
// Returns ErrInvalidKeyFormat when the prefix is missing, the remainder is not
// canonical padded base64 or the decoded key is empty. Non-zero padding bits are
// rejected so that EncodeWrappingKey(raw) reproduces the descriptor exactly.
func ParseWrappingKey(descriptor string) ([]byte, error) {
	encoded, ok := strings.CutPrefix(descriptor, Prefix)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrInvalidKeyFormat, Prefix)
	}

	raw, err := base64.StdEncoding.Strict().DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidKeyFormat)
	}

	return raw, nil
}

// EncodeWrappingKey builds the descriptor persisted by callers: Prefix + base64(raw).
func EncodeWrappingKey(raw []byte) string {
	return Prefix + base64.StdEncoding.EncodeToString(raw)
}

// FormatPrefix returns the "$<tag>$" prefix of a descriptor, or false when the
// descriptor does not start with a dollar-delimited tag.
func FormatPrefix(descriptor string) (string, bool) {
	if !strings.HasPrefix(descriptor, "$") {
		return "", false
	}
	end := strings.IndexByte(descriptor[1:], '$')
	if end <= 0 {
		return "", false
	}
	return descriptor[:end+2], true
}
