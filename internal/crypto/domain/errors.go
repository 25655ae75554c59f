package domain

import (
	"github.com/allisson/secrethold/internal/errors"
)

// Cryptographic error definitions.
//
// The authentication error deliberately does not say which layer failed: a wrong PIN and a
// tampered envelope are indistinguishable to callers.
var (
	// ErrInvalidKeySize indicates a master key or derived key of the wrong length.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrUnsupportedDigest indicates a PBKDF2 digest name that is not supported.
	ErrUnsupportedDigest = errors.Wrap(errors.ErrInvalidInput, "unsupported digest")

	// ErrUnsupportedEncoding indicates an unknown text encoding name.
	ErrUnsupportedEncoding = errors.Wrap(errors.ErrInvalidInput, "unsupported encoding")

	// ErrKeyDerivation indicates the PIN could not be stretched into a key.
	ErrKeyDerivation = errors.New("key derivation failed")

	// ErrCipherConfig indicates malformed key, IV or tag lengths handed to the cipher layer.
	ErrCipherConfig = errors.New("invalid cipher configuration")

	// ErrAuthenticationFailed indicates that at least one layer's tag did not verify.
	ErrAuthenticationFailed = errors.Wrap(errors.ErrUnauthorized, "authentication failed")

	// ErrMalformedEnvelope indicates a serialized envelope that cannot be parsed.
	ErrMalformedEnvelope = errors.Wrap(errors.ErrIntegrity, "malformed envelope")

	// ErrStageFinalized indicates use of a cipher stage after Finalize was called.
	ErrStageFinalized = errors.New("cipher stage already finalized")

	// ErrMasterKeyNotSet indicates that no master key material was configured.
	ErrMasterKeyNotSet = errors.New("master key not set")

	// ErrInvalidMasterKeyBase64 indicates master key material that is not valid base64.
	ErrInvalidMasterKeyBase64 = errors.Wrap(errors.ErrInvalidInput, "invalid master key base64")

	// ErrMasterKeyClosed indicates use of a master key after Close.
	ErrMasterKeyClosed = errors.New("master key closed")
)
