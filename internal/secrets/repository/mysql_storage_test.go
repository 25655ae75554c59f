package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/secrethold/internal/errors"
	"github.com/allisson/secrethold/internal/testutil"
)

const (
	mysqlSelect = `SELECT encrypted_data FROM secret_envelopes WHERE id = ?`
	mysqlUpsert = `INSERT INTO secret_envelopes (id, encrypted_data, created_at, updated_at)
			  VALUES (?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE encrypted_data = VALUES(encrypted_data), updated_at = VALUES(updated_at)`
	mysqlDelete = `DELETE FROM secret_envelopes WHERE id = ?`
)

func TestMySQLStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Read", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		mock.ExpectQuery(testutil.Query(mysqlSelect)).
			WithArgs("7").
			WillReturnRows(sqlmock.NewRows([]string{"encrypted_data"}).AddRow("envelope"))

		data, err := NewMySQLStorage(db).Read(ctx, "7")
		require.NoError(t, err)
		assert.Equal(t, "envelope", data)
	})

	t.Run("Error_ReadNotFound", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		mock.ExpectQuery(testutil.Query(mysqlSelect)).
			WithArgs("7").
			WillReturnError(sql.ErrNoRows)

		_, err := NewMySQLStorage(db).Read(ctx, "7")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("Success_Write", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		mock.ExpectExec(testutil.Query(mysqlUpsert)).
			WithArgs("7", "envelope", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewMySQLStorage(db).Write(ctx, "7", "envelope", nil))
	})

	t.Run("Success_Delete", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		mock.ExpectExec(testutil.Query(mysqlDelete)).
			WithArgs("7").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewMySQLStorage(db).Delete(ctx, "7", nil))
	})
}
