// Package domain defines identities, errors and caller-facing error codes for PIN
// protected secrets.
package domain

import (
	"github.com/allisson/secrethold/internal/errors"
)

// Error codes surfaced to callers alongside the matching errors.
const (
	CodeWrongPin = "WRONG_PIN"
	CodeWrongID  = "WRONG_ID"
)

// Secret-specific error definitions.
var (
	// ErrWrongPin indicates the PIN did not open the stored envelope. A tampered envelope
	// produces the same error so callers cannot tell which layer failed.
	ErrWrongPin = errors.Wrap(errors.ErrUnauthorized, "wrong pin")

	// ErrWrongID indicates a mutation was attempted on an id with no stored envelope.
	ErrWrongID = errors.Wrap(errors.ErrNotFound, "unknown id")

	// ErrInvalidID indicates an empty or unrepresentable id.
	ErrInvalidID = errors.Wrap(errors.ErrInvalidInput, "invalid secret id")

	// ErrEmptyPin indicates an empty PIN.
	ErrEmptyPin = errors.Wrap(errors.ErrInvalidInput, "pin must not be empty")

	// ErrInvalidSecret indicates a plaintext that does not decode under the secret encoding.
	ErrInvalidSecret = errors.Wrap(errors.ErrInvalidInput, "invalid secret encoding")

	// ErrCachePurgeUnsupported indicates the configured cache cannot be purged as a whole.
	ErrCachePurgeUnsupported = errors.Wrap(errors.ErrNotSupported, "cache does not support purging")
)

// Code returns the caller-facing code for err, or an empty string when err carries none.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrWrongPin):
		return CodeWrongPin
	case errors.Is(err, ErrWrongID):
		return CodeWrongID
	default:
		return ""
	}
}
