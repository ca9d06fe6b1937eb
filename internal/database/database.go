package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"ipreverse/internal/types"

	"go.uber.org/zap"
)

// SQLConnector is a Connector backed by a database/sql pool
type SQLConnector struct {
	db      *sql.DB
	driver  string
	dialect dialect
	opts    Options
	logger  *zap.Logger
	metrics metrics
}

// metrics represents connector counters
type metrics struct {
	connects      int64
	connectErrors int64
	queryCount    int64
	queryErrors   int64
	slowQueries   int64
}

// _ implements Connector
var _ Connector = (*SQLConnector)(nil)

// newConnector opens the pool. sql.Open does not dial, so an unreachable
// server is only noticed by Connect.
func newConnector(driver, dsn string, opts Options, logger *zap.Logger) (*SQLConnector, error) {
	d, err := lookupDialect(driver)
	if err != nil {
		return nil, err
	}

	// Set default options
	if opts.MaxOpenConns < 0 {
		opts.MaxOpenConns = 0
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = 2
	}

	db, err := sql.Open(d.sqlDriver, dsn)
	if err != nil {
		return nil, NewError(OpOpen, err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	return &SQLConnector{
		db:      db,
		driver:  driver,
		dialect: d,
		opts:    opts,
		logger:  logger,
	}, nil
}

// Connect checks out a dedicated connection and verifies it is alive
func (c *SQLConnector) Connect(ctx context.Context) (Conn, error) {
	if c.opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.ConnectTimeout)
		defer cancel()
	}

	conn, err := c.db.Conn(ctx)
	if err != nil {
		atomic.AddInt64(&c.metrics.connectErrors, 1)
		return nil, NewError(OpConnect, err)
	}

	if err := conn.PingContext(ctx); err != nil {
		atomic.AddInt64(&c.metrics.connectErrors, 1)
		if closeErr := conn.Close(); closeErr != nil && !errors.Is(closeErr, sql.ErrConnDone) {
			c.logger.Warn("Failed to release dead connection", zap.Error(closeErr))
		}
		return nil, NewError(OpPing, err)
	}

	atomic.AddInt64(&c.metrics.connects, 1)
	return &sqlConn{conn: conn, connector: c}, nil
}

// Close closes the pool
func (c *SQLConnector) Close() error {
	return c.db.Close()
}

// Driver returns the configured driver name
func (c *SQLConnector) Driver() string {
	return c.driver
}

// Stats returns pool and statement statistics
func (c *SQLConnector) Stats() Stats {
	dbStats := c.db.Stats()
	return Stats{
		OpenConnections: dbStats.OpenConnections,
		InUse:           dbStats.InUse,
		Idle:            dbStats.Idle,
		WaitCount:       dbStats.WaitCount,
		WaitDuration:    dbStats.WaitDuration,
		Connects:        atomic.LoadInt64(&c.metrics.connects),
		ConnectErrors:   atomic.LoadInt64(&c.metrics.connectErrors),
		QueryCount:      atomic.LoadInt64(&c.metrics.queryCount),
		QueryErrors:     atomic.LoadInt64(&c.metrics.queryErrors),
		SlowQueries:     atomic.LoadInt64(&c.metrics.slowQueries),
	}
}

// recordMetrics records statement metrics and warns about slow statements
func (c *SQLConnector) recordMetrics(query string, start time.Time, err error) {
	duration := time.Since(start)

	atomic.AddInt64(&c.metrics.queryCount, 1)
	if err != nil {
		atomic.AddInt64(&c.metrics.queryErrors, 1)
	}

	if c.opts.SlowQueryThreshold > 0 && duration > c.opts.SlowQueryThreshold {
		atomic.AddInt64(&c.metrics.slowQueries, 1)
		c.logger.Warn("Slow query detected",
			zap.String("query", query),
			zap.Duration("duration", duration))
	}
}

// sqlConn is a Conn over a *sql.Conn
type sqlConn struct {
	conn      *sql.Conn
	connector *SQLConnector
}

// InsertIPLog writes rec in a committed transaction
func (s *sqlConn) InsertIPLog(ctx context.Context, rec types.IPLog) error {
	if s.connector.opts.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.connector.opts.QueryTimeout)
		defer cancel()
	}

	query := s.connector.dialect.insertIPLog
	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		start := time.Now()
		_, err := tx.ExecContext(ctx, query, rec.ClientIP, rec.ReversedIP)
		s.connector.recordMetrics(query, start, err)
		if err != nil {
			return NewError(OpInsert, err)
		}
		return nil
	})
}

// withTransaction runs fn in a transaction, rolling back on error or panic
func (s *sqlConn) withTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return NewError(OpBegin, err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.connector.logger.Error("Transaction rollback failed during panic",
					zap.Error(rbErr))
			}
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return NewError(OpCommit, err)
	}
	return nil
}

// Close returns the connection to the pool
func (s *sqlConn) Close() error {
	return s.conn.Close()
}
