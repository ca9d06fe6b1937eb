package config

import "time"

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig represents database configuration. Host, User, Password
// and Name come from DB_HOST, DB_USER, DB_PASSWORD and DB_NAME; DSN, when
// set, is handed to the driver verbatim instead.
type DatabaseConfig struct {
	Driver   string            `mapstructure:"driver" validate:"required,oneof=mysql postgres pgx sqlite"`
	Host     string            `mapstructure:"host"`
	Port     int               `mapstructure:"port" validate:"gte=0,lte=65535"`
	User     string            `mapstructure:"user"`
	Password string            `mapstructure:"password"`
	Name     string            `mapstructure:"name"`
	DSN      string            `mapstructure:"dsn"`
	Params   map[string]string `mapstructure:"params"`

	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout" validate:"gte=0"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout" validate:"gte=0"`
	SlowQueryTime   time.Duration `mapstructure:"slow_query_time" validate:"gte=0"`

	// Create ip_logs on startup. Off by default; the schema is normally
	// owned by whoever provisions the database.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}
