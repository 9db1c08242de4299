package dto

import (
	keywrapDomain "github.com/allisson/keywrapper/internal/keywrap/domain"
)

// EncryptResponse is returned by encrypt and reencrypt.
type EncryptResponse struct {
	Ciphertext string `json:"ciphertext"`
	Encoded    string `json:"encoded"`
}

// MapEncryptResponse converts a codec result.
func MapEncryptResponse(result *keywrapDomain.EncryptResult) EncryptResponse {
	return EncryptResponse{Ciphertext: result.Ciphertext, Encoded: result.Encoded}
}

// DecryptResponse carries the recovered plaintext. encoding/json writes []byte as base64.
type DecryptResponse struct {
	Plaintext []byte `json:"plaintext"`
}

// WrappingKeyResponse carries a freshly generated wrapping key descriptor.
type WrappingKeyResponse struct {
	WrappingKey string `json:"wrapping_key"`
}

// RewrapItemResponse is the outcome for the request item at the same index.
type RewrapItemResponse struct {
	Ciphertext  string `json:"ciphertext,omitempty"`
	WrappingKey string `json:"wrapping_key"`
	Error       string `json:"error,omitempty"`
}

// RewrapResponse lists per-item outcomes in request order.
type RewrapResponse struct {
	Items     []RewrapItemResponse `json:"items"`
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
}

// MapRewrapResponse converts rewrap results, counting failures.
func MapRewrapResponse(results []keywrapDomain.RewrapResult) RewrapResponse {
	resp := RewrapResponse{Items: make([]RewrapItemResponse, len(results))}
	for i, r := range results {
		item := RewrapItemResponse{Ciphertext: r.Ciphertext, WrappingKey: r.WrappingKey}
		if r.Err != nil {
			item.Error = r.Err.Error()
			resp.Failed++
		} else {
			resp.Succeeded++
		}
		resp.Items[i] = item
	}
	return resp
}
