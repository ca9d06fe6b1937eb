package database

import (
	"context"

	"ipreverse/internal/types"
)

// Connector hands out scoped database connections
type Connector interface {
	// Connect checks out a connection. Callers must Close it.
	Connect(ctx context.Context) (Conn, error)
	Close() error
}

// Conn is one checked-out connection
type Conn interface {
	// InsertIPLog writes rec in its own committed transaction
	InsertIPLog(ctx context.Context, rec types.IPLog) error
	// Close returns the connection to the pool
	Close() error
}
