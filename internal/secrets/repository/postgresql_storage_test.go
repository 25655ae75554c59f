package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/secrethold/internal/errors"
	"github.com/allisson/secrethold/internal/testutil"
)

const (
	pgSelect = `SELECT encrypted_data FROM secret_envelopes WHERE id = $1`
	pgUpsert = `INSERT INTO secret_envelopes (id, encrypted_data, created_at, updated_at)
			  VALUES ($1, $2, $3, $3)
			  ON CONFLICT (id) DO UPDATE SET encrypted_data = EXCLUDED.encrypted_data, updated_at = EXCLUDED.updated_at`
	pgDelete = `DELETE FROM secret_envelopes WHERE id = $1`
)

func TestPostgreSQLStorage_Read(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		mock.ExpectQuery(testutil.Query(pgSelect)).
			WithArgs("1").
			WillReturnRows(sqlmock.NewRows([]string{"encrypted_data"}).AddRow("envelope"))

		data, err := NewPostgreSQLStorage(db).Read(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "envelope", data)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		mock.ExpectQuery(testutil.Query(pgSelect)).
			WithArgs("1").
			WillReturnError(sql.ErrNoRows)

		_, err := NewPostgreSQLStorage(db).Read(ctx, "1")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("Error_Backend", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		backendErr := errors.New("connection reset")
		mock.ExpectQuery(testutil.Query(pgSelect)).
			WithArgs("1").
			WillReturnError(backendErr)

		_, err := NewPostgreSQLStorage(db).Read(ctx, "1")
		assert.ErrorIs(t, err, backendErr)
		assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestPostgreSQLStorage_Write(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_WithoutTx", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		mock.ExpectExec(testutil.Query(pgUpsert)).
			WithArgs("1", "envelope", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewPostgreSQLStorage(db).Write(ctx, "1", "envelope", nil))
	})

	t.Run("Success_WithTx", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(testutil.Query(pgUpsert)).
			WithArgs("1", "envelope", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx, err := db.Begin()
		require.NoError(t, err)
		require.NoError(t, NewPostgreSQLStorage(db).Write(ctx, "1", "envelope", tx))
		require.NoError(t, tx.Commit())
	})

	t.Run("Error", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		mock.ExpectExec(testutil.Query(pgUpsert)).
			WithArgs("1", "envelope", sqlmock.AnyArg()).
			WillReturnError(errors.New("disk full"))

		err := NewPostgreSQLStorage(db).Write(ctx, "1", "envelope", nil)
		assert.ErrorContains(t, err, "failed to write secret envelope")
	})
}

func TestPostgreSQLStorage_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Missing", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		mock.ExpectExec(testutil.Query(pgDelete)).
			WithArgs("1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, NewPostgreSQLStorage(db).Delete(ctx, "1", nil))
	})

	t.Run("Error", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		mock.ExpectExec(testutil.Query(pgDelete)).
			WithArgs("1").
			WillReturnError(errors.New("boom"))

		assert.Error(t, NewPostgreSQLStorage(db).Delete(ctx, "1", nil))
	})
}
