package dto

import (
	secretsDomain "github.com/allisson/secrethold/internal/secrets/domain"
)

// RevealSecretResponse carries a plaintext secret.
// SECURITY: Must be transmitted over HTTPS in production.
type RevealSecretResponse struct {
	ID     string `json:"id"`
	Secret string `json:"secret"`
}

// CachedResponse reports whether a secret is resident in the cache.
type CachedResponse struct {
	ID     string `json:"id"`
	Cached bool   `json:"cached"`
}

// MapRevealSecretResponse builds the response for a revealed secret.
func MapRevealSecretResponse(id secretsDomain.ID, secret string) RevealSecretResponse {
	return RevealSecretResponse{ID: id.String(), Secret: secret}
}

// MapCachedResponse builds the response for a cache residency check.
func MapCachedResponse(id secretsDomain.ID, cached bool) CachedResponse {
	return CachedResponse{ID: id.String(), Cached: cached}
}
