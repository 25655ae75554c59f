package service

import (
	"fmt"
	"strings"

	cryptoDomain "github.com/allisson/secrethold/internal/crypto/domain"
)

const envelopeFields = 5

// EnvelopeCodec serializes envelopes as pinSalt:iv:masterTag:pinTag:ciphertext, each field
// encoded with the same binary-safe encoding.
type EnvelopeCodec struct {
	encoding cryptoDomain.Encoding
}

// NewEnvelopeCodec returns a codec for encoding, which must not be able to produce the
// delimiter. An empty encoding selects base64url.
func NewEnvelopeCodec(encoding cryptoDomain.Encoding) (*EnvelopeCodec, error) {
	if encoding == "" {
		encoding = cryptoDomain.DefaultEnvelopeEncoding
	}
	if !encoding.BinarySafe() {
		return nil, fmt.Errorf("%w: %q cannot encode envelope fields", cryptoDomain.ErrUnsupportedEncoding, string(encoding))
	}
	return &EnvelopeCodec{encoding: encoding}, nil
}

// Serialize implements EnvelopeSerializer.
func (c *EnvelopeCodec) Serialize(envelope *cryptoDomain.Envelope) (string, error) {
	if err := envelope.Validate(); err != nil {
		return "", err
	}

	fields := [envelopeFields][]byte{
		envelope.PinSalt,
		envelope.IV,
		envelope.MasterTag,
		envelope.PinTag,
		envelope.Ciphertext,
	}
	encoded := make([]string, envelopeFields)
	for i, f := range fields {
		encoded[i] = c.encoding.EncodeToString(f)
	}
	return strings.Join(encoded, cryptoDomain.EnvelopeDelimiter), nil
}

// Parse implements EnvelopeSerializer.
func (c *EnvelopeCodec) Parse(encoded string) (*cryptoDomain.Envelope, error) {
	parts := strings.Split(encoded, cryptoDomain.EnvelopeDelimiter)
	if len(parts) != envelopeFields {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", cryptoDomain.ErrMalformedEnvelope, envelopeFields, len(parts))
	}

	names := [envelopeFields]string{"pin salt", "iv", "master tag", "pin tag", "ciphertext"}
	var decoded [envelopeFields][]byte
	for i, part := range parts {
		b, err := c.encoding.DecodeString(part)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid %s: %v", cryptoDomain.ErrMalformedEnvelope, names[i], err)
		}
		decoded[i] = b
	}

	envelope := &cryptoDomain.Envelope{
		EnvelopeHeader: cryptoDomain.EnvelopeHeader{
			PinSalt:   decoded[0],
			IV:        decoded[1],
			MasterTag: decoded[2],
			PinTag:    decoded[3],
		},
		Ciphertext: decoded[4],
	}
	if err := envelope.Validate(); err != nil {
		return nil, err
	}
	return envelope, nil
}
