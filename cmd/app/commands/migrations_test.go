package commands

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("driver-without-migrations", func(t *testing.T) {
		err := RunMigrations(logger, "../../../migrations", "bbolt", "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "has no migrations")
	})

	t.Run("invalid-connection-string", func(t *testing.T) {
		err := RunMigrations(logger, "../../../migrations", "postgres", "invalid-connection-string")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to build migration url")
	})

	t.Run("missing-directory", func(t *testing.T) {
		err := RunMigrations(logger, t.TempDir(), "mysql", "user:pass@tcp(127.0.0.1:1)/db")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to create migrate instance")
	})
}
