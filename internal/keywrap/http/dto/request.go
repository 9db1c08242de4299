// Package dto provides request and response bodies for the key-wrapping HTTP API.
package dto

import (
	"encoding/base64"

	validation "github.com/jellydator/validation"

	keywrapDomain "github.com/allisson/keywrapper/internal/keywrap/domain"
	customValidation "github.com/allisson/keywrapper/internal/validation"
)

// MaxRewrapItems caps the size of a single rewrap request.
const MaxRewrapItems = 1000

// EncryptRequest protects plaintext under key, or under a fresh key when key is omitted.
type EncryptRequest struct {
	Plaintext string `json:"plaintext"` // base64
	Key       string `json:"key"`       // optional base64 raw key
}

// Validate checks if the encrypt request is valid. Empty plaintext is allowed.
func (r *EncryptRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Plaintext, customValidation.Base64),
		validation.Field(&r.Key, customValidation.Base64),
	)
}

// Decode returns the decoded plaintext and key. Call after Validate.
func (r *EncryptRequest) Decode() (plaintext, key []byte, err error) {
	if plaintext, err = base64.StdEncoding.DecodeString(r.Plaintext); err != nil {
		return nil, nil, err
	}
	if key, err = base64.StdEncoding.DecodeString(r.Key); err != nil {
		return nil, nil, err
	}
	return plaintext, key, nil
}

// ReencryptRequest protects plaintext under an existing wrapping key.
type ReencryptRequest struct {
	Plaintext   string `json:"plaintext"` // base64
	WrappingKey string `json:"wrapping_key"`
}

// Validate checks if the reencrypt request is valid.
func (r *ReencryptRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Plaintext, customValidation.Base64),
		validation.Field(&r.WrappingKey,
			validation.Required,
			customValidation.NotBlank,
			customValidation.WrappingKey,
		),
	)
}

// DecryptRequest recovers the plaintext behind ciphertext.
type DecryptRequest struct {
	Ciphertext  string `json:"ciphertext"`
	WrappingKey string `json:"wrapping_key"`
}

// Validate checks if the decrypt request is valid. Envelope structure is checked by the codec.
func (r *DecryptRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Ciphertext, validation.Required, customValidation.NotBlank),
		validation.Field(&r.WrappingKey,
			validation.Required,
			customValidation.NotBlank,
			customValidation.WrappingKey,
		),
	)
}

// RewrapItemRequest is one value in a rewrap batch.
type RewrapItemRequest struct {
	Ciphertext  string `json:"ciphertext"`
	WrappingKey string `json:"wrapping_key"`
}

// Validate checks a single rewrap item.
func (r RewrapItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Ciphertext, validation.Required, customValidation.NotBlank),
		validation.Field(&r.WrappingKey, validation.Required, customValidation.WrappingKey),
	)
}

// RewrapRequest re-encrypts a batch of values under their own wrapping keys.
type RewrapRequest struct {
	Items []RewrapItemRequest `json:"items"`
}

// Validate checks if the rewrap request is valid.
func (r *RewrapRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Items, validation.Required, customValidation.MaxItems(MaxRewrapItems)),
	)
}

// ToDomain converts the request items.
func (r *RewrapRequest) ToDomain() []keywrapDomain.RewrapItem {
	items := make([]keywrapDomain.RewrapItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = keywrapDomain.RewrapItem{Ciphertext: item.Ciphertext, WrappingKey: item.WrappingKey}
	}
	return items
}
