package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ipreverse/internal/config"
	"ipreverse/internal/database/migration"

	"go.uber.org/zap"
)

// New creates the connector described by cfg, applying migrations first
// when cfg.AutoMigrate is set
func New(cfg *config.DatabaseConfig, logger *zap.Logger) (*SQLConnector, error) {
	d, err := lookupDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn, err := DSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build DSN: %w", err)
	}

	if cfg.AutoMigrate {
		if err := runMigrations(d, dsn, logger); err != nil {
			logger.Error("Failed to run migrations", zap.Error(err))
			return nil, err
		}
	}

	opts := Options{
		MaxOpenConns:       cfg.MaxOpenConns,
		MaxIdleConns:       cfg.MaxIdleConns,
		ConnMaxLifetime:    cfg.ConnMaxLifetime,
		ConnectTimeout:     cfg.ConnectTimeout,
		QueryTimeout:       cfg.QueryTimeout,
		SlowQueryThreshold: cfg.SlowQueryTime,
	}

	connector, err := newConnector(cfg.Driver, dsn, opts, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logger.Info("Database connector ready",
		zap.String("driver", cfg.Driver),
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name))

	return connector, nil
}

// runMigrations applies the embedded migrations on a dedicated handle.
// golang-migrate closes the *sql.DB it is given, so it never sees the pool.
func runMigrations(d dialect, dsn string, logger *zap.Logger) error {
	db, err := sql.Open(d.sqlDriver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}

	migrator, err := migration.NewMigrator(db, d.migrations, logger)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	defer func() {
		if err := migrator.Close(); err != nil {
			logger.Error("Failed to close migrator", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	logger.Info("Running migrations to latest version", zap.String("dialect", d.migrations))
	if err := migrator.Up(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("database schema is dirty at version %d", version)
	}

	logger.Info("Database schema ready", zap.Uint("version", version))
	return nil
}
