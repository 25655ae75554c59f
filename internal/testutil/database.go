// Package testutil provides helpers shared by storage and transaction tests.
//
// SQL code is exercised against go-sqlmock rather than live servers:
//
//	db, mock := testutil.NewMockDB(t)
//	mock.ExpectExec(testutil.Query("DELETE FROM secret_envelopes WHERE id = $1")).
//		WithArgs("1").
//		WillReturnResult(sqlmock.NewResult(0, 1))
//
// Expectations are verified automatically when the test finishes.
package testutil

import (
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewMockDB returns a sqlmock-backed *sql.DB that is closed, and whose expectations are
// checked, during test cleanup.
func NewMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	return db, mock
}

// Query turns a literal SQL statement into the regular expression sqlmock matches against.
func Query(query string) string {
	return "^" + regexp.QuoteMeta(query) + "$"
}
