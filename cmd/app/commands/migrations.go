package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/allisson/secrethold/internal/config"
	"github.com/allisson/secrethold/internal/database"
)

// RunMigrations applies the secret_envelopes schema for the postgres and mysql storage
// drivers. dir holds one folder per database flavour. Returns nil if no migrations are
// pending.
func RunMigrations(logger *slog.Logger, dir, driver, connectionString string) error {
	var folder string
	switch driver {
	case config.StoragePostgres:
		folder = "postgresql"
	case config.StorageMySQL:
		folder = "mysql"
	default:
		return fmt.Errorf("storage driver %q has no migrations", driver)
	}

	logger.Info("running database migrations",
		slog.String("driver", driver),
	)

	databaseURL, err := database.MigrationURL(driver, connectionString)
	if err != nil {
		return fmt.Errorf("failed to build migration url: %w", err)
	}

	m, err := migrate.New("file://"+filepath.ToSlash(filepath.Join(dir, folder)), databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}
