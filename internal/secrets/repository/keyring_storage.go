package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	apperrors "github.com/allisson/secrethold/internal/errors"
	secretsDomain "github.com/allisson/secrethold/internal/secrets/domain"
)

// DefaultKeyringService is the keyring service name envelopes are filed under.
const DefaultKeyringService = "secrethold"

// KeyringStorage stores envelopes in the operating system keyring, one item per id.
// Keyrings have no transactions, so tx is ignored.
type KeyringStorage[Tx any] struct {
	service string
}

// NewKeyringStorage creates a KeyringStorage filing items under service.
func NewKeyringStorage[Tx any](service string) *KeyringStorage[Tx] {
	if service == "" {
		service = DefaultKeyringService
	}
	return &KeyringStorage[Tx]{service: service}
}

// Read retrieves the envelope stored for id.
func (k *KeyringStorage[Tx]) Read(_ context.Context, id secretsDomain.ID) (string, error) {
	data, err := keyring.Get(k.service, id.String())
	if errors.Is(err, keyring.ErrNotFound) {
		return "", apperrors.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read keyring item: %w", err)
	}
	return data, nil
}

// Write stores encryptedData for id.
func (k *KeyringStorage[Tx]) Write(_ context.Context, id secretsDomain.ID, encryptedData string, _ Tx) error {
	if err := keyring.Set(k.service, id.String(), encryptedData); err != nil {
		return fmt.Errorf("failed to write keyring item: %w", err)
	}
	return nil
}

// Delete removes id. Deleting a missing id is not an error.
func (k *KeyringStorage[Tx]) Delete(_ context.Context, id secretsDomain.ID, _ Tx) error {
	err := keyring.Delete(k.service, id.String())
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete keyring item: %w", err)
	}
	return nil
}
