// Package domain defines the wire format of the key-wrapping codec: wrapping key
// descriptors, derived key material and the IV || ciphertext || tag envelope.
package domain

const (
	// Prefix tags format version 1 on both wrapping key descriptors and the HMAC input.
	Prefix = "$1$"

	// SealedPrefix tags a descriptor whose "$1$" form was encrypted by a KMS keeper.
	SealedPrefix = "$kms$"

	// Method names the cipher bound into every tag.
	Method = "aes-256-cbc"

	// KeyLen is the size of a freshly generated raw wrapping key and of each derived subkey.
	KeyLen = 32

	// IVLen is the CBC initialization vector size.
	IVLen = 16

	// HMACLen is the size of the HMAC-SHA256 tag appended to every envelope.
	HMACLen = 32

	// BlockSize is the AES block size used for PKCS#7 padding.
	BlockSize = 16
)
