package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/allisson/secrethold/internal/cache"
	cryptoDomain "github.com/allisson/secrethold/internal/crypto/domain"
	cryptoService "github.com/allisson/secrethold/internal/crypto/service"
	apperrors "github.com/allisson/secrethold/internal/errors"
	secretsDomain "github.com/allisson/secrethold/internal/secrets/domain"
)

// DefaultCacheTTL is how long a plaintext stays cached after its last use.
const DefaultCacheTTL = 10 * time.Minute

// Config holds construction options for a SecretUseCase.
type Config[T any] struct {
	// MasterKey is required and is never exposed by the use case.
	MasterKey *cryptoDomain.MasterKey

	// SecretEncoding is how plaintext secret strings map to bytes. Defaults to utf8.
	SecretEncoding cryptoDomain.Encoding

	// CacheTTL is applied to every cache write. Zero makes entries expire immediately.
	CacheTTL time.Duration

	// CacheNamespace, when set, prefixes cache keys so several use cases can share a cache.
	CacheNamespace string

	// Transform is applied to secrets returned by GetSecret. It may only be nil when T is
	// string, in which case IdentityTransform is used.
	Transform Transform[T]
}

type secretUseCase[Tx any, T any] struct {
	storage        Storage[Tx]
	cache          Cache
	cipher         cryptoService.EnvelopeCipher
	codec          cryptoService.EnvelopeSerializer
	masterKey      *cryptoDomain.MasterKey
	pinVerifier    *cryptoService.PinVerifier
	secretEncoding cryptoDomain.Encoding
	cacheTTL       time.Duration
	cacheNamespace string
	transform      Transform[T]
	logger         *slog.Logger
}

// NewSecretUseCase wires storage, cache and the envelope engine into a SecretUseCase.
func NewSecretUseCase[Tx any, T any](
	cfg Config[T],
	storage Storage[Tx],
	secretCache Cache,
	cipher cryptoService.EnvelopeCipher,
	codec cryptoService.EnvelopeSerializer,
	logger *slog.Logger,
) (SecretUseCase[Tx, T], error) {
	if cfg.MasterKey == nil {
		return nil, cryptoDomain.ErrMasterKeyNotSet
	}
	if storage == nil || secretCache == nil || cipher == nil || codec == nil {
		return nil, apperrors.New("storage, cache, cipher and codec are required")
	}
	if cfg.CacheTTL < 0 {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "negative cache ttl %s", cfg.CacheTTL)
	}

	encoding := cfg.SecretEncoding
	if encoding == "" {
		encoding = cryptoDomain.DefaultSecretEncoding
	}
	encoding, err := cryptoDomain.ParseEncoding(string(encoding))
	if err != nil {
		return nil, err
	}

	transform := cfg.Transform
	if transform == nil {
		var identity any = Transform[string](IdentityTransform)
		t, ok := identity.(Transform[T])
		if !ok {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "transform is required for non-string secrets")
		}
		transform = t
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &secretUseCase[Tx, T]{
		storage:        storage,
		cache:          secretCache,
		cipher:         cipher,
		codec:          codec,
		masterKey:      cfg.MasterKey,
		pinVerifier:    cryptoService.NewPinVerifier(cfg.MasterKey),
		secretEncoding: encoding,
		cacheTTL:       cfg.CacheTTL,
		cacheNamespace: cfg.CacheNamespace,
		transform:      transform,
		logger:         logger,
	}, nil
}

func (s *secretUseCase[Tx, T]) GetSecret(ctx context.Context, id secretsDomain.ID, pin string) (T, bool, error) {
	var zero T
	if pin == "" {
		return zero, false, secretsDomain.ErrEmptyPin
	}

	secret, hit, err := s.readCache(ctx, id, pin)
	if err != nil {
		return zero, false, err
	}
	if hit {
		s.logger.DebugContext(ctx, "secret cache hit", slog.String("id", id.String()))
		return s.wrap(ctx, secret)
	}
	s.logger.DebugContext(ctx, "secret cache miss", slog.String("id", id.String()))

	encryptedData, err := s.storage.Read(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}

	secret, err = s.open(ctx, encryptedData, pin)
	if err != nil {
		return zero, false, err
	}

	if err := s.writeCache(ctx, id, secret, pin); err != nil {
		return zero, false, err
	}

	return s.wrap(ctx, secret)
}

func (s *secretUseCase[Tx, T]) SetSecret(ctx context.Context, id secretsDomain.ID, secret, pin string, tx Tx) error {
	if pin == "" {
		return secretsDomain.ErrEmptyPin
	}

	encryptedData, canonical, err := s.seal(ctx, secret, pin)
	if err != nil {
		return err
	}

	return s.writeThrough(ctx, id, encryptedData, canonical, pin, tx)
}

func (s *secretUseCase[Tx, T]) ChangePin(
	ctx context.Context,
	id secretsDomain.ID,
	oldPin, newPin string,
	tx Tx,
) error {
	if oldPin == "" || newPin == "" {
		return secretsDomain.ErrEmptyPin
	}

	encryptedData, err := s.storage.Read(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return secretsDomain.ErrWrongID
	}
	if err != nil {
		return err
	}

	secret, err := s.open(ctx, encryptedData, oldPin)
	if err != nil {
		return err
	}

	newEncryptedData, canonical, err := s.seal(ctx, secret, newPin)
	if err != nil {
		return err
	}

	s.logger.DebugContext(ctx, "secret pin changed", slog.String("id", id.String()))
	return s.writeThrough(ctx, id, newEncryptedData, canonical, newPin, tx)
}

func (s *secretUseCase[Tx, T]) DeleteSecret(ctx context.Context, id secretsDomain.ID, tx Tx) error {
	var g errgroup.Group
	g.Go(func() error {
		return s.storage.Delete(ctx, id, tx)
	})
	g.Go(func() error {
		return s.cache.Delete(ctx, s.cacheKey(id))
	})
	return g.Wait()
}

func (s *secretUseCase[Tx, T]) Cached(ctx context.Context, id secretsDomain.ID) (bool, error) {
	return s.cache.Contains(ctx, s.cacheKey(id))
}

func (s *secretUseCase[Tx, T]) DeleteCachedSecret(ctx context.Context, id secretsDomain.ID) error {
	return s.cache.Delete(ctx, s.cacheKey(id))
}

func (s *secretUseCase[Tx, T]) CleanCache(ctx context.Context) error {
	purger, ok := s.cache.(Purger)
	if !ok {
		return secretsDomain.ErrCachePurgeUnsupported
	}
	return purger.Purge(ctx)
}

// writeThrough issues the storage and cache writes concurrently. Both are always attempted
// and the first error is returned; there is no rollback when only one of them fails.
func (s *secretUseCase[Tx, T]) writeThrough(
	ctx context.Context,
	id secretsDomain.ID,
	encryptedData, secret, pin string,
	tx Tx,
) error {
	var g errgroup.Group
	g.Go(func() error {
		return s.storage.Write(ctx, id, encryptedData, tx)
	})
	g.Go(func() error {
		return s.writeCache(ctx, id, secret, pin)
	})
	return g.Wait()
}

// readCache returns the cached secret for id once pin matches the verifier stored with
// it. A mismatch is ErrWrongPin; an entry that does not decode is treated as a miss.
func (s *secretUseCase[Tx, T]) readCache(ctx context.Context, id secretsDomain.ID, pin string) (string, bool, error) {
	entry, hit, err := s.cache.Read(ctx, s.cacheKey(id))
	if err != nil || !hit {
		return "", false, err
	}

	verifier, secret, ok := decodeCacheEntry(entry)
	if !ok {
		return "", false, nil
	}

	match, err := s.pinVerifier.Verify(id.String(), pin, verifier)
	if err != nil {
		return "", false, err
	}
	if !match {
		return "", false, secretsDomain.ErrWrongPin
	}
	return secret, true, nil
}

// writeCache stores secret together with the verifier of pin.
func (s *secretUseCase[Tx, T]) writeCache(ctx context.Context, id secretsDomain.ID, secret, pin string) error {
	verifier, err := s.pinVerifier.Sum(id.String(), pin)
	if err != nil {
		return err
	}
	return s.cache.Write(ctx, s.cacheKey(id), encodeCacheEntry(verifier, secret), s.cacheTTL)
}

// open parses and decrypts an envelope into the secret's string form.
func (s *secretUseCase[Tx, T]) open(ctx context.Context, encryptedData, pin string) (string, error) {
	envelope, err := s.codec.Parse(encryptedData)
	if err != nil {
		return "", err
	}

	plaintext, err := s.cipher.Open(ctx, envelope, s.masterKey, pin)
	if errors.Is(err, cryptoDomain.ErrAuthenticationFailed) {
		return "", secretsDomain.ErrWrongPin
	}
	if err != nil {
		return "", err
	}
	defer cryptoDomain.Zero(plaintext)

	return s.secretEncoding.EncodeToString(plaintext), nil
}

// seal encrypts secret and returns the serialized envelope together with the canonical
// string form of the secret, which is what later reads return.
func (s *secretUseCase[Tx, T]) seal(ctx context.Context, secret, pin string) (string, string, error) {
	plaintext, err := s.secretEncoding.DecodeString(secret)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", secretsDomain.ErrInvalidSecret, err)
	}
	defer cryptoDomain.Zero(plaintext)

	envelope, err := s.cipher.Seal(ctx, plaintext, s.masterKey, pin)
	if err != nil {
		return "", "", err
	}

	encryptedData, err := s.codec.Serialize(envelope)
	if err != nil {
		return "", "", err
	}

	return encryptedData, s.secretEncoding.EncodeToString(plaintext), nil
}

func (s *secretUseCase[Tx, T]) wrap(ctx context.Context, secret string) (T, bool, error) {
	value, err := s.transform(ctx, secret)
	if err != nil {
		var zero T
		return zero, false, err
	}
	return value, true, nil
}

func (s *secretUseCase[Tx, T]) cacheKey(id secretsDomain.ID) string {
	if s.cacheNamespace == "" {
		return id.String()
	}
	return cache.BuildKey(s.cacheNamespace, id.String())
}
