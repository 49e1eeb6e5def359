package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/allisson/keyvault-emulator/internal/config"
)

// RunMigrations applies the pending schema migrations for a SQL storage driver.
// Migrations live in migrations/postgresql or migrations/mysql. Returns nil when the
// schema is already up to date.
func RunMigrations(logger *slog.Logger, driver, connectionString string) error {
	logger.Info("running database migrations", slog.String("driver", driver))

	var migrationsPath string
	switch driver {
	case config.StorageDriverPostgres:
		migrationsPath = "file://migrations/postgresql"
	case config.StorageDriverMySQL:
		migrationsPath = "file://migrations/mysql"
	default:
		return fmt.Errorf("failed to create migrate instance: storage driver %q has no migrations", driver)
	}

	m, err := migrate.New(migrationsPath, migrationDatabaseURL(driver, connectionString))
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

// migrationDatabaseURL turns the driver connection string into the URL form the
// migrate database drivers expect. MySQL DSNs carry no scheme.
func migrationDatabaseURL(driver, connectionString string) string {
	if driver == config.StorageDriverMySQL && !strings.HasPrefix(connectionString, "mysql://") {
		return "mysql://" + connectionString
	}
	return connectionString
}
