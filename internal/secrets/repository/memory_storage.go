// Package repository implements envelope storages: an in-memory reference storage,
// PostgreSQL and MySQL tables, a bbolt file and the operating system keyring.
package repository

import (
	"context"
	"sync"

	apperrors "github.com/allisson/secrethold/internal/errors"
	secretsDomain "github.com/allisson/secrethold/internal/secrets/domain"
)

// TxJournal is implemented by transaction handles that want to observe MemoryStorage
// mutations, e.g. to replay or roll them back.
type TxJournal interface {
	RecordWrite(id secretsDomain.ID, encryptedData string)
	RecordDelete(id secretsDomain.ID)
}

// MemoryStorage keeps envelopes in a map. It is the reference storage for tests and
// single-process use and persists nothing.
//
// The transaction handle is never required. When it implements TxJournal, every
// mutation is mirrored into it before being applied.
type MemoryStorage[Tx any] struct {
	mu      sync.RWMutex
	entries map[secretsDomain.ID]string
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage[Tx any]() *MemoryStorage[Tx] {
	return &MemoryStorage[Tx]{entries: make(map[secretsDomain.ID]string)}
}

// Read returns the envelope stored for id.
func (m *MemoryStorage[Tx]) Read(_ context.Context, id secretsDomain.ID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.entries[id]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return data, nil
}

// Write stores encryptedData for id, replacing any previous envelope.
func (m *MemoryStorage[Tx]) Write(_ context.Context, id secretsDomain.ID, encryptedData string, tx Tx) error {
	if journal, ok := any(tx).(TxJournal); ok {
		journal.RecordWrite(id, encryptedData)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = encryptedData
	return nil
}

// Delete removes id.
func (m *MemoryStorage[Tx]) Delete(_ context.Context, id secretsDomain.ID, tx Tx) error {
	if journal, ok := any(tx).(TxJournal); ok {
		journal.RecordDelete(id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Len returns the number of stored envelopes.
func (m *MemoryStorage[Tx]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
