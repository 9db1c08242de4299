package domain

import (
	"encoding/base64"
	"fmt"
)

// MinEnvelopeLen is the smallest decoded envelope: an IV and a tag around an empty ciphertext.
const MinEnvelopeLen = IVLen + HMACLen

// Envelope is the decoded wire form IV || Ciphertext || Tag.
type Envelope struct {
	IV         []byte
	Ciphertext []byte
	Tag        []byte
}

// ParseEnvelope base64-decodes encoded cipherdata and slices it into its parts.
//
// Returns ErrMalformedEnvelope for invalid base64 or fewer than MinEnvelopeLen bytes.
// The returned slices alias one backing array.
func ParseEnvelope(encoded string) (Envelope, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if len(data) < MinEnvelopeLen {
		return Envelope{}, fmt.Errorf(
			"%w: got %d bytes, need at least %d",
			ErrMalformedEnvelope,
			len(data),
			MinEnvelopeLen,
		)
	}

	return Envelope{
		IV:         data[:IVLen],
		Ciphertext: data[IVLen : len(data)-HMACLen],
		Tag:        data[len(data)-HMACLen:],
	}, nil
}

// Bytes concatenates the envelope parts.
func (e Envelope) Bytes() []byte {
	out := make([]byte, 0, len(e.IV)+len(e.Ciphertext)+len(e.Tag))
	out = append(out, e.IV...)
	out = append(out, e.Ciphertext...)
	out = append(out, e.Tag...)
	return out
}

// Encode returns base64(IV || Ciphertext || Tag).
func (e Envelope) Encode() string {
	return base64.StdEncoding.EncodeToString(e.Bytes())
}

// AuthenticatedData is the HMAC input: Prefix || Method || IV || Ciphertext.
func (e Envelope) AuthenticatedData() []byte {
	out := make([]byte, 0, len(Prefix)+len(Method)+len(e.IV)+len(e.Ciphertext))
	out = append(out, Prefix...)
	out = append(out, Method...)
	out = append(out, e.IV...)
	out = append(out, e.Ciphertext...)
	return out
}
