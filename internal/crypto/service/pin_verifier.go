package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/text/unicode/norm"

	cryptoDomain "github.com/allisson/secrethold/internal/crypto/domain"
)

// pinVerifierInfo is the HKDF info that separates the verifier key from the master key.
const pinVerifierInfo = "secrethold-pin-verifier-v1"

// PinVerifierSize is the length of a PIN verifier in bytes.
const PinVerifierSize = sha256.Size

// PinVerifier computes keyed fingerprints of (id, PIN) pairs so that a PIN can be checked
// against a cached plaintext without running the KDF. Fingerprints are
// HMAC-SHA256(HKDF-SHA256(masterKey), len(id) || id || len(pin) || NFC(pin)).
type PinVerifier struct {
	masterKey *cryptoDomain.MasterKey
}

// NewPinVerifier creates a PinVerifier keyed by masterKey.
func NewPinVerifier(masterKey *cryptoDomain.MasterKey) *PinVerifier {
	return &PinVerifier{masterKey: masterKey}
}

// Sum returns the verifier for id and pin.
func (v *PinVerifier) Sum(id, pin string) ([]byte, error) {
	var sum []byte
	err := v.masterKey.Use(func(key []byte) error {
		macKey := make([]byte, sha256.Size)
		defer cryptoDomain.Zero(macKey)
		if _, err := io.ReadFull(hkdf.New(sha256.New, key, nil, []byte(pinVerifierInfo)), macKey); err != nil {
			return fmt.Errorf("failed to derive pin verifier key: %w", err)
		}

		normalized := norm.NFC.Bytes([]byte(pin))
		defer cryptoDomain.Zero(normalized)

		mac := hmac.New(sha256.New, macKey)
		mac.Write(appendLengthPrefixed(nil, []byte(id)))
		mac.Write(appendLengthPrefixed(nil, normalized))
		sum = mac.Sum(nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sum, nil
}

// Verify reports whether expected is the verifier for id and pin. The comparison runs in
// constant time.
func (v *PinVerifier) Verify(id, pin string, expected []byte) (bool, error) {
	sum, err := v.Sum(id, pin)
	if err != nil {
		return false, err
	}
	return hmac.Equal(sum, expected), nil
}

func appendLengthPrefixed(buf, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}
