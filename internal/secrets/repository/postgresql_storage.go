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

// PostgreSQLStorage stores envelopes in the secret_envelopes table of a PostgreSQL
// database. A nil tx runs statements on the transaction carried by ctx, if any, and on
// the pool otherwise.
type PostgreSQLStorage struct {
	db *sql.DB
}

// NewPostgreSQLStorage creates a new PostgreSQLStorage.
func NewPostgreSQLStorage(db *sql.DB) *PostgreSQLStorage {
	return &PostgreSQLStorage{db: db}
}

// Read retrieves the envelope stored for id.
func (p *PostgreSQLStorage) Read(ctx context.Context, id secretsDomain.ID) (string, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT encrypted_data FROM secret_envelopes WHERE id = $1`

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
func (p *PostgreSQLStorage) Write(ctx context.Context, id secretsDomain.ID, encryptedData string, tx *sql.Tx) error {
	querier := database.Pick(ctx, p.db, tx)

	query := `INSERT INTO secret_envelopes (id, encrypted_data, created_at, updated_at)
			  VALUES ($1, $2, $3, $3)
			  ON CONFLICT (id) DO UPDATE SET encrypted_data = EXCLUDED.encrypted_data, updated_at = EXCLUDED.updated_at`

	if _, err := querier.ExecContext(ctx, query, id.String(), encryptedData, time.Now().UTC()); err != nil {
		return apperrors.Wrap(err, "failed to write secret envelope")
	}
	return nil
}

// Delete removes the envelope for id. Deleting a missing id is not an error.
func (p *PostgreSQLStorage) Delete(ctx context.Context, id secretsDomain.ID, tx *sql.Tx) error {
	querier := database.Pick(ctx, p.db, tx)

	query := `DELETE FROM secret_envelopes WHERE id = $1`

	if _, err := querier.ExecContext(ctx, query, id.String()); err != nil {
		return apperrors.Wrap(err, "failed to delete secret envelope")
	}
	return nil
}
