package domain

// RewrapItem is one protected value submitted for re-encryption.
type RewrapItem struct {
	Ciphertext  string `json:"ciphertext"`
	WrappingKey string `json:"wrapping_key"`
}

// RewrapResult is the outcome for the RewrapItem at the same index. On success
// Ciphertext holds a fresh "$1$" envelope under the unchanged WrappingKey; on
// failure Err is set and Ciphertext is empty.
type RewrapResult struct {
	Ciphertext  string
	WrappingKey string
	Err         error
}
