package usecase

import (
	"encoding/base64"
	"strings"

	cryptoService "github.com/allisson/secrethold/internal/crypto/service"
)

// cacheEntrySeparator follows the fixed-length verifier in a cache entry.
const cacheEntrySeparator = "."

var verifierEncoding = base64.RawURLEncoding

// encodeCacheEntry lays a cache value out as base64url(verifier) "." secret. The verifier
// has a fixed encoded length, so the secret may contain any character.
func encodeCacheEntry(verifier []byte, secret string) string {
	return verifierEncoding.EncodeToString(verifier) + cacheEntrySeparator + secret
}

func decodeCacheEntry(entry string) ([]byte, string, bool) {
	n := verifierEncoding.EncodedLen(cryptoService.PinVerifierSize)
	if len(entry) < n+len(cacheEntrySeparator) || !strings.HasPrefix(entry[n:], cacheEntrySeparator) {
		return nil, "", false
	}
	verifier, err := verifierEncoding.DecodeString(entry[:n])
	if err != nil {
		return nil, "", false
	}
	return verifier, entry[n+len(cacheEntrySeparator):], true
}
