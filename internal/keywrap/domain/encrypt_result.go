package domain

// EncryptResult carries the protected value and the descriptor of the wrapping key
// that protects it. Callers persist both to decrypt later.
type EncryptResult struct {
	Ciphertext string `json:"ciphertext"` // base64(IV || ciphertext || tag)
	Encoded    string `json:"encoded"`    // Prefix + base64(raw wrapping key)
}
