package domain

import (
	"crypto/sha1" //nolint:gosec // accepted for compatibility with existing PIN derivations
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"strings"
)

// Digest names the hash function used by PBKDF2 when stretching a PIN.
type Digest string

const (
	SHA1   Digest = "sha1"
	SHA256 Digest = "sha256"
	SHA384 Digest = "sha384"
	SHA512 Digest = "sha512"
)

// ParseDigest converts a configuration value such as "sha256" or "SHA-512" into a Digest.
func ParseDigest(s string) (Digest, error) {
	d := Digest(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", ""))
	if _, err := d.HashFunc(); err != nil {
		return "", err
	}
	return d, nil
}

// HashFunc returns the constructor of the hash named by d.
func (d Digest) HashFunc() (func() hash.Hash, error) {
	switch d {
	case SHA1:
		return sha1.New, nil
	case SHA256:
		return sha256.New, nil
	case SHA384:
		return sha512.New384, nil
	case SHA512:
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDigest, string(d))
	}
}
