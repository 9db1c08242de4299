package domain

import (
	"crypto/sha512"
)

// KeyMaterial holds the two subkeys derived from one raw wrapping key.
// It is derived on every operation and never cached.
type KeyMaterial struct {
	EncKey  []byte // First half of SHA-512(raw), AES-256 key
	HMACKey []byte // Second half of SHA-512(raw), HMAC-SHA256 key
}

// DeriveKeyMaterial hashes the raw wrapping key with SHA-512 and splits the
// digest into disjoint encryption and authentication halves.
func DeriveKeyMaterial(raw []byte) KeyMaterial {
	sum := sha512.Sum512(raw)
	material := KeyMaterial{
		EncKey:  make([]byte, KeyLen),
		HMACKey: make([]byte, KeyLen),
	}
	copy(material.EncKey, sum[:KeyLen])
	copy(material.HMACKey, sum[KeyLen:])
	Zero(sum[:])
	return material
}

// Zero wipes both subkeys.
func (k KeyMaterial) Zero() {
	Zero(k.EncKey)
	Zero(k.HMACKey)
}
