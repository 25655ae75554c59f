// Package service implements the envelope-encryption engine: PIN key derivation, the
// streaming double AES-GCM cipher layer and the textual envelope codec.
package service

import (
	"context"
	"io"

	cryptoDomain "github.com/allisson/secrethold/internal/crypto/domain"
)

// KeyDeriver stretches a PIN and salt into a symmetric key.
type KeyDeriver interface {
	// DeriveKey is deterministic for identical inputs. The caller owns the returned slice
	// and must zero it when done.
	DeriveKey(ctx context.Context, pin string, salt []byte) ([]byte, error)
}

// Stage is one authenticated-encryption context that transforms a byte stream chunk by
// chunk and yields its tag once the stream is exhausted.
type Stage interface {
	// Process transforms src into dst. dst must be at least len(src) bytes and may alias src.
	Process(dst, src []byte) error

	// Finalize must be called exactly once after the last Process call. It returns the
	// computed tag; decrypting stages fail with ErrAuthenticationFailed on mismatch.
	Finalize() ([]byte, error)
}

// EnvelopeCipher encrypts and decrypts envelopes under a master key and a PIN.
type EnvelopeCipher interface {
	// EncryptEnvelope streams src through the PIN layer and then the master layer into dst.
	EncryptEnvelope(
		ctx context.Context,
		dst io.Writer,
		src io.Reader,
		masterKey *cryptoDomain.MasterKey,
		pin string,
	) (*cryptoDomain.EnvelopeHeader, error)

	// DecryptEnvelope verifies both layers before writing any plaintext to dst, provided src
	// yields the same bytes on each read. A source that changes between reads still fails
	// with ErrAuthenticationFailed, but dst may already hold unverified output.
	DecryptEnvelope(
		ctx context.Context,
		dst io.Writer,
		src io.ReadSeeker,
		masterKey *cryptoDomain.MasterKey,
		pin string,
		header *cryptoDomain.EnvelopeHeader,
	) error

	// Seal is EncryptEnvelope for in-memory plaintexts.
	Seal(ctx context.Context, plaintext []byte, masterKey *cryptoDomain.MasterKey, pin string) (*cryptoDomain.Envelope, error)

	// Open is DecryptEnvelope for in-memory envelopes.
	Open(ctx context.Context, envelope *cryptoDomain.Envelope, masterKey *cryptoDomain.MasterKey, pin string) ([]byte, error)
}

// EnvelopeSerializer converts envelopes to and from their delimited text form.
type EnvelopeSerializer interface {
	Serialize(envelope *cryptoDomain.Envelope) (string, error)
	Parse(encoded string) (*cryptoDomain.Envelope, error)
}
