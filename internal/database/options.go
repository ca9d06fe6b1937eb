package database

import "time"

// Options defines connector options
type Options struct {
	// Connection settings
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `json:"connect_timeout"`

	// Query settings
	QueryTimeout       time.Duration `json:"query_timeout"`
	SlowQueryThreshold time.Duration `json:"slow_query_threshold"`
}

// Stats represents connector statistics
type Stats struct {
	// Pool stats
	OpenConnections int           `json:"open_connections"`
	InUse           int           `json:"in_use"`
	Idle            int           `json:"idle"`
	WaitCount       int64         `json:"wait_count"`
	WaitDuration    time.Duration `json:"wait_duration"`

	// Connection checkouts
	Connects      int64 `json:"connects"`
	ConnectErrors int64 `json:"connect_errors"`

	// Statement stats
	QueryCount  int64 `json:"query_count"`
	QueryErrors int64 `json:"query_errors"`
	SlowQueries int64 `json:"slow_queries"`
}
