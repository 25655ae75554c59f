package repository

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"

	apperrors "github.com/allisson/secrethold/internal/errors"
	secretsDomain "github.com/allisson/secrethold/internal/secrets/domain"
)

// EnvelopesBucket is the bbolt bucket holding envelopes keyed by id.
var EnvelopesBucket = []byte("envelopes")

// BoltStorage stores envelopes in a bbolt database file.
//
// Write and Delete use the supplied writable transaction when tx is not nil and open
// their own otherwise. Read always uses its own read-only transaction, so callers must
// not hold a writable transaction on the same goroutine while reading.
type BoltStorage struct {
	db *bolt.DB
}

// OpenBoltStorage opens or creates the database at path and ensures the bucket exists.
func OpenBoltStorage(path string) (*BoltStorage, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(EnvelopesBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", EnvelopesBucket, err)
	}

	return &BoltStorage{db: db}, nil
}

// DB exposes the underlying database so callers can open transactions to pass to Write
// and Delete.
func (b *BoltStorage) DB() *bolt.DB {
	return b.db
}

// Close closes the database file.
func (b *BoltStorage) Close() error {
	return b.db.Close()
}

// Read retrieves the envelope stored for id.
func (b *BoltStorage) Read(_ context.Context, id secretsDomain.ID) (string, error) {
	var encryptedData string
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(EnvelopesBucket).Get([]byte(id))
		if v == nil {
			return apperrors.ErrNotFound
		}
		encryptedData = string(v)
		return nil
	})
	return encryptedData, err
}

// Write stores encryptedData for id.
func (b *BoltStorage) Write(_ context.Context, id secretsDomain.ID, encryptedData string, tx *bolt.Tx) error {
	return b.update(tx, func(bucket *bolt.Bucket) error {
		return bucket.Put([]byte(id), []byte(encryptedData))
	})
}

// Delete removes id. Deleting a missing id is not an error.
func (b *BoltStorage) Delete(_ context.Context, id secretsDomain.ID, tx *bolt.Tx) error {
	return b.update(tx, func(bucket *bolt.Bucket) error {
		return bucket.Delete([]byte(id))
	})
}

func (b *BoltStorage) update(tx *bolt.Tx, fn func(bucket *bolt.Bucket) error) error {
	if tx != nil {
		bucket := tx.Bucket(EnvelopesBucket)
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", EnvelopesBucket)
		}
		return fn(bucket)
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return fn(tx.Bucket(EnvelopesBucket))
	})
}
