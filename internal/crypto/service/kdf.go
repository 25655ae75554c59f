package service

import (
	"context"
	"fmt"
	"hash"
	"runtime"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/sync/semaphore"
	"golang.org/x/text/unicode/norm"

	cryptoDomain "github.com/allisson/secrethold/internal/crypto/domain"
)

// KDFConfig configures PBKDF2KeyDeriver. Zero values select the defaults.
type KDFConfig struct {
	Iterations     int
	KeyLength      int
	Digest         cryptoDomain.Digest
	MaxConcurrency int
}

// PBKDF2KeyDeriver derives PIN keys with PBKDF2.
//
// PINs are normalized to Unicode NFC first so that canonically equivalent inputs derive
// the same key. The number of derivations running at once is capped, which keeps a burst
// of PIN checks from occupying every CPU.
type PBKDF2KeyDeriver struct {
	iterations int
	keyLength  int
	hashFunc   func() hash.Hash
	sem        *semaphore.Weighted
}

// NewPBKDF2KeyDeriver validates cfg and returns a deriver.
func NewPBKDF2KeyDeriver(cfg KDFConfig) (*PBKDF2KeyDeriver, error) {
	if cfg.Iterations == 0 {
		cfg.Iterations = cryptoDomain.DefaultIterations
	}
	if cfg.KeyLength == 0 {
		cfg.KeyLength = cryptoDomain.KeySize
	}
	if cfg.Digest == "" {
		cfg.Digest = cryptoDomain.DefaultDigest
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = runtime.GOMAXPROCS(0)
	}

	if cfg.Iterations < 1 {
		return nil, fmt.Errorf("%w: iterations must be at least 1", cryptoDomain.ErrKeyDerivation)
	}
	if cfg.KeyLength < 1 {
		return nil, fmt.Errorf("%w: key length must be positive", cryptoDomain.ErrKeyDerivation)
	}

	hashFunc, err := cfg.Digest.HashFunc()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cryptoDomain.ErrKeyDerivation, err)
	}

	return &PBKDF2KeyDeriver{
		iterations: cfg.Iterations,
		keyLength:  cfg.KeyLength,
		hashFunc:   hashFunc,
		sem:        semaphore.NewWeighted(int64(cfg.MaxConcurrency)),
	}, nil
}

// DeriveKey returns PBKDF2(NFC(pin), salt). It blocks while the concurrency cap is reached
// and gives up when ctx is done.
func (d *PBKDF2KeyDeriver) DeriveKey(ctx context.Context, pin string, salt []byte) ([]byte, error) {
	if pin == "" {
		return nil, fmt.Errorf("%w: empty pin", cryptoDomain.ErrKeyDerivation)
	}
	if len(salt) == 0 {
		return nil, fmt.Errorf("%w: empty salt", cryptoDomain.ErrKeyDerivation)
	}

	if err := d.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer d.sem.Release(1)

	password := norm.NFC.Bytes([]byte(pin))
	defer cryptoDomain.Zero(password)

	return pbkdf2.Key(password, salt, d.iterations, d.keyLength, d.hashFunc), nil
}
