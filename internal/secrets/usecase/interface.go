// Package usecase defines the secret lifecycle: cache-aside reads, write-through writes,
// PIN rotation and deletion over pluggable storage and cache backends.
package usecase

import (
	"context"
	"time"

	secretsDomain "github.com/allisson/secrethold/internal/secrets/domain"
)

// Storage persists serialized envelopes.
//
// Tx is an opaque transaction handle forwarded verbatim from the caller; its zero value
// means no transaction. Read returns an error wrapping apperrors.ErrNotFound when no
// envelope exists. Delete of a missing id is not an error.
type Storage[Tx any] interface {
	Read(ctx context.Context, id secretsDomain.ID) (string, error)
	Write(ctx context.Context, id secretsDomain.ID, encryptedData string, tx Tx) error
	Delete(ctx context.Context, id secretsDomain.ID, tx Tx) error
}

// Cache holds plaintext secrets for a limited time.
//
// A zero ttl means the entry expires immediately. Read reports whether the key was present.
type Cache interface {
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Contains(ctx context.Context, key string) (bool, error)
}

// Purger is implemented by caches that can drop every entry at once.
type Purger interface {
	Purge(ctx context.Context) error
}

// Transform post-processes a plaintext secret before GetSecret returns it.
type Transform[T any] func(ctx context.Context, secret string) (T, error)

// IdentityTransform returns the secret unchanged.
func IdentityTransform(_ context.Context, secret string) (string, error) {
	return secret, nil
}

// SecretUseCase is the public lifecycle API for PIN protected secrets.
type SecretUseCase[Tx any, T any] interface {
	// GetSecret returns the secret for id. The boolean is false, with a nil error, when
	// no secret exists. A cache hit is returned without consulting storage.
	GetSecret(ctx context.Context, id secretsDomain.ID, pin string) (T, bool, error)

	// SetSecret encrypts secret under pin with a fresh salt and IV and writes it to both
	// storage and cache.
	SetSecret(ctx context.Context, id secretsDomain.ID, secret, pin string, tx Tx) error

	// ChangePin re-encrypts the stored secret under newPin. It fails with ErrWrongID when
	// nothing is stored for id and with ErrWrongPin when oldPin does not open it.
	ChangePin(ctx context.Context, id secretsDomain.ID, oldPin, newPin string, tx Tx) error

	// DeleteSecret removes id from storage and cache. Deleting a missing id succeeds.
	DeleteSecret(ctx context.Context, id secretsDomain.ID, tx Tx) error

	// Cached reports whether id is resident in the cache. Storage is never consulted.
	Cached(ctx context.Context, id secretsDomain.ID) (bool, error)

	// DeleteCachedSecret drops id from the cache only.
	DeleteCachedSecret(ctx context.Context, id secretsDomain.ID) error

	// CleanCache drops every cached secret, or fails with ErrCachePurgeUnsupported.
	CleanCache(ctx context.Context) error
}
