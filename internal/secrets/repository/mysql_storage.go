package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/allisson/secrethold/internal/database"
	apperrors "github.com/allisson/secrethold/internal/errors"
	secretsDomain "github.com/allisson/secrethold/internal/secrets/domain"
)

// MySQLStorage stores envelopes in the secret_envelopes table of a MySQL database.
type MySQLStorage struct {
	db *sql.DB
}

// NewMySQLStorage creates a new MySQLStorage.
func NewMySQLStorage(db *sql.DB) *MySQLStorage {
	return &MySQLStorage{db: db}
}

// Read retrieves the envelope stored for id.
func (m *MySQLStorage) Read(ctx context.Context, id secretsDomain.ID) (string, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT encrypted_data FROM secret_envelopes WHERE id = ?`

	var encryptedData string
	if err := querier.QueryRowContext(ctx, query, id.String()).Scan(&encryptedData); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", apperrors.Wrap(err, "failed to read secret envelope")
	}

	return encryptedData, nil
}

// Write inserts or replaces the envelope for id.
func (m *MySQLStorage) Write(ctx context.Context, id secretsDomain.ID, encryptedData string, tx *sql.Tx) error {
	querier := database.Pick(ctx, m.db, tx)

	query := `INSERT INTO secret_envelopes (id, encrypted_data, created_at, updated_at)
			  VALUES (?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE encrypted_data = VALUES(encrypted_data), updated_at = VALUES(updated_at)`

	now := time.Now().UTC()
	if _, err := querier.ExecContext(ctx, query, id.String(), encryptedData, now, now); err != nil {
		return apperrors.Wrap(err, "failed to write secret envelope")
	}
	return nil
}

// Delete removes the envelope for id. Deleting a missing id is not an error.
func (m *MySQLStorage) Delete(ctx context.Context, id secretsDomain.ID, tx *sql.Tx) error {
	querier := database.Pick(ctx, m.db, tx)

	query := `DELETE FROM secret_envelopes WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, id.String()); err != nil {
		return apperrors.Wrap(err, "failed to delete secret envelope")
	}
	return nil
}
