// Package validation provides custom jellydator/validation rules for request DTOs.
package validation

import (
	"encoding/base64"
	"strings"

	validation "github.com/jellydator/validation"

	keywrapDomain "github.com/allisson/keywrapper/internal/keywrap/domain"
)

// Base64 validates that a string is standard padded base64.
var Base64 = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_base64_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if _, err := base64.StdEncoding.DecodeString(s); err != nil {
		return validation.NewError("validation_base64", "must be valid base64-encoded data")
	}
	return nil
})

// WrappingKey validates that a string looks like a wrapping key descriptor: either
// "$1$" + base64 or a "$kms$" sealed descriptor. The codec still performs the full parse.
var WrappingKey = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_wrapping_key_type", "must be a string")
	}
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, keywrapDomain.SealedPrefix) {
		return nil
	}
	if _, err := keywrapDomain.ParseWrappingKey(s); err != nil {
		return validation.NewError(
			"validation_wrapping_key",
			"must be a \"$1$\" wrapping key descriptor or a \"$kms$\" sealed descriptor",
		)
	}
	return nil
})
