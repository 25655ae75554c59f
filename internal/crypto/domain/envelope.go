package domain

import "fmt"

// EnvelopeHeader carries everything besides the ciphertext that is needed to open an
// envelope: the PIN salt, the IV shared by both layers and one tag per layer.
type EnvelopeHeader struct {
	PinSalt   []byte
	IV        []byte
	MasterTag []byte
	PinTag    []byte
}

// Envelope is the persisted unit of one secret. It is serialized as
// pinSalt:iv:masterTag:pinTag:ciphertext.
type Envelope struct {
	EnvelopeHeader
	Ciphertext []byte
}

// Validate checks that every header field is present. An empty ciphertext is legal and
// corresponds to an empty secret.
func (e *Envelope) Validate() error {
	if e == nil {
		return fmt.Errorf("%w: nil envelope", ErrMalformedEnvelope)
	}
	fields := []struct {
		name  string
		value []byte
	}{
		{"pin salt", e.PinSalt},
		{"iv", e.IV},
		{"master tag", e.MasterTag},
		{"pin tag", e.PinTag},
	}
	for _, f := range fields {
		if len(f.value) == 0 {
			return fmt.Errorf("%w: missing %s", ErrMalformedEnvelope, f.name)
		}
	}
	return nil
}
