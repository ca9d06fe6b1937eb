package migration

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrator handles database migrations
type Migrator struct {
	dialect string
	migrate *migrate.Migrate
	logger  *zap.Logger
}

// NewMigrator creates a migrator for dialect ("mysql", "postgres" or
// "sqlite"). The migrator takes ownership of db and closes it on Close.
func NewMigrator(db *sql.DB, dialect string, logger *zap.Logger) (*Migrator, error) {
	source, err := iofs.New(migrationsFS, path.Join("migrations", dialect))
	if err != nil {
		return nil, fmt.Errorf("no migrations for %s: %w", dialect, err)
	}

	var driver database.Driver

	switch dialect {
	case "sqlite":
		driver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
		}

	case "mysql":
		driver, err = mysql.WithInstance(db, &mysql.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to create mysql driver: %w", err)
		}

	case "postgres":
		driver, err = postgres.WithInstance(db, &postgres.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres driver: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported database dialect: %s", dialect)
	}

	instance, err := migrate.NewWithInstance("iofs", source, dialect, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator instance: %w", err)
	}

	return &Migrator{
		dialect: dialect,
		migrate: instance,
		logger:  logger,
	}, nil
}

// Up applies all pending migrations
func (m *Migrator) Up(ctx context.Context) error {
	return m.run(ctx, "up", func() error {
		if err := m.migrate.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	})
}

// down reverts every applied migration
func (m *Migrator) down(ctx context.Context) error {
	return m.run(ctx, "down", func() error {
		if err := m.migrate.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	})
}

// run executes fn in the background so ctx can abandon a stuck migration
func (m *Migrator) run(ctx context.Context, name string, fn func() error) error {
	m.logger.Info("Starting migrations...", zap.String("direction", name))
	errChan := make(chan error, 1)

	go func() {
		errChan <- fn()
	}()

	select {
	case <-ctx.Done():
		m.logger.Warn("Migration cancelled by context")
		return fmt.Errorf("migration cancelled: %w", ctx.Err())
	case err := <-errChan:
		if err != nil {
			m.logger.Error("Migration failed", zap.Error(err))
			return fmt.Errorf("migration %s failed: %w", name, err)
		}
		m.logger.Info("Migrations completed successfully", zap.String("direction", name))
		return nil
	}
}

// Version returns the current migration version. A database that was never
// migrated reports version 0.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Close releases resources
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	if sourceErr == nil && dbErr == nil {
		return nil
	}

	var errMsg string
	if sourceErr != nil {
		errMsg = fmt.Sprintf("source error: %v", sourceErr)
	}
	if dbErr != nil {
		if errMsg != "" {
			errMsg += "; "
		}
		errMsg += fmt.Sprintf("database error: %v", dbErr)
	}

	return fmt.Errorf("failed to close migrator: %s", errMsg)
}
