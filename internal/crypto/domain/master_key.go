package domain

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/awnumar/memguard"
)

// KMSKeeper is the subset of *gocloud.dev/secrets.Keeper used to unwrap master key material.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// MasterKey holds the long-lived key of the master layer.
//
// The key bytes live sealed inside a memguard enclave and are only decrypted into a
// locked buffer for the duration of a Use callback. A MasterKey is safe for concurrent use.
type MasterKey struct {
	mu      sync.RWMutex
	enclave *memguard.Enclave
}

// NewMasterKey seals key into a new MasterKey. The key must be exactly KeySize bytes.
// The caller's slice is wiped once its contents have been sealed.
func NewMasterKey(key []byte) (*MasterKey, error) {
	if len(key) != KeySize {
		Zero(key)
		return nil, fmt.Errorf("%w: master key must be %d bytes, got %d", ErrInvalidKeySize, KeySize, len(key))
	}
	return &MasterKey{enclave: memguard.NewEnclave(key)}, nil
}

// Use decrypts the key into locked memory, calls fn with it and destroys the buffer
// afterwards. fn must not retain the slice.
func (m *MasterKey) Use(fn func(key []byte) error) error {
	m.mu.RLock()
	enclave := m.enclave
	m.mu.RUnlock()
	if enclave == nil {
		return ErrMasterKeyClosed
	}

	buf, err := enclave.Open()
	if err != nil {
		return fmt.Errorf("failed to open master key enclave: %w", err)
	}
	defer buf.Destroy()

	return fn(buf.Bytes())
}

// Close drops the sealed key. Later calls to Use fail with ErrMasterKeyClosed.
func (m *MasterKey) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enclave = nil
}

// LoadMasterKey decodes base64 master key material. When keeper is not nil the decoded
// bytes are treated as KMS ciphertext and decrypted first.
func LoadMasterKey(ctx context.Context, encoded string, keeper KMSKeeper) (*MasterKey, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, ErrMasterKeyNotSet
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMasterKeyBase64, err)
	}

	if keeper != nil {
		plaintext, err := keeper.Decrypt(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt master key with KMS: %w", err)
		}
		raw = plaintext
	}

	return NewMasterKey(raw)
}
