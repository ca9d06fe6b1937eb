package database

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"ipreverse/internal/config"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// dialect captures what differs between the supported drivers
type dialect struct {
	// sqlDriver is the name registered with database/sql
	sqlDriver string
	// migrations is the directory of embedded migrations to apply
	migrations string
	// insertIPLog is the single statement the service ever runs
	insertIPLog string
	// buildDSN assembles a DSN from discrete settings
	buildDSN func(cfg *config.DatabaseConfig) (string, error)
}

var dialects = map[string]dialect{
	config.DriverMySQL: {
		sqlDriver:   "mysql",
		migrations:  "mysql",
		insertIPLog: "INSERT INTO ip_logs (client_ip, reversed_ip) VALUES (?, ?)",
		buildDSN:    mysqlDSN,
	},
	config.DriverPostgres: {
		sqlDriver:   "postgres",
		migrations:  "postgres",
		insertIPLog: "INSERT INTO ip_logs (client_ip, reversed_ip) VALUES ($1, $2)",
		buildDSN:    postgresDSN,
	},
	config.DriverPgx: {
		sqlDriver:   "pgx",
		migrations:  "postgres",
		insertIPLog: "INSERT INTO ip_logs (client_ip, reversed_ip) VALUES ($1, $2)",
		buildDSN:    postgresDSN,
	},
	config.DriverSQLite: {
		sqlDriver:   "sqlite3",
		migrations:  "sqlite",
		insertIPLog: "INSERT INTO ip_logs (client_ip, reversed_ip) VALUES (?, ?)",
		buildDSN:    sqliteDSN,
	},
}

// lookupDialect returns the dialect for a configured driver name
func lookupDialect(driver string) (dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported database driver: %s", driver)
	}
	return d, nil
}

// DSN returns cfg.DSN when set, otherwise a DSN built for cfg.Driver
func DSN(cfg *config.DatabaseConfig) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	d, err := lookupDialect(cfg.Driver)
	if err != nil {
		return "", err
	}
	return d.buildDSN(cfg)
}

// mysqlDSN builds a go-sql-driver DSN. An empty host lets the driver fall
// back to 127.0.0.1:3306.
func mysqlDSN(cfg *config.DatabaseConfig) (string, error) {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Timeout = cfg.ConnectTimeout

	if cfg.Host != "" {
		port := cfg.Port
		if port == 0 {
			port = 3306
		}
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	}

	if len(cfg.Params) > 0 {
		mc.Params = make(map[string]string, len(cfg.Params))
		for k, v := range cfg.Params {
			mc.Params[k] = v
		}
	}

	return mc.FormatDSN(), nil
}

// postgresDSN builds a postgres:// URL understood by both lib/pq and pgx
func postgresDSN(cfg *config.DatabaseConfig) (string, error) {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + cfg.Name,
	}

	switch {
	case cfg.Password != "":
		u.User = url.UserPassword(cfg.User, cfg.Password)
	case cfg.User != "":
		u.User = url.User(cfg.User)
	}

	query := url.Values{}
	for k, v := range cfg.Params {
		query.Set(k, v)
	}
	if query.Get("connect_timeout") == "" && cfg.ConnectTimeout > 0 {
		secs := int(cfg.ConnectTimeout.Seconds())
		if secs < 1 {
			secs = 1
		}
		query.Set("connect_timeout", strconv.Itoa(secs))
	}
	u.RawQuery = query.Encode()

	return u.String(), nil
}

// sqliteDSN treats the database name as a file path
func sqliteDSN(cfg *config.DatabaseConfig) (string, error) {
	path := cfg.Name
	if path == "" {
		return "", fmt.Errorf("sqlite requires a database file name")
	}

	// Every pooled connection would get its own private in-memory database
	if isSQLiteMemory(path) {
		return "", fmt.Errorf("sqlite in-memory database %q is not supported, use a file path", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}

	params := map[string]string{
		"_busy_timeout": "5000",
		"_journal_mode": "WAL",
	}
	for k, v := range cfg.Params {
		params[k] = v
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	return path + "?" + strings.Join(pairs, "&"), nil
}

// isSQLiteMemory reports whether name selects an in-memory sqlite database
func isSQLiteMemory(name string) bool {
	return name == ":memory:" ||
		strings.HasPrefix(name, "file::memory:") ||
		strings.Contains(name, "mode=memory")
}
