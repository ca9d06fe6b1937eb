package database

import (
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"ipreverse/internal/config"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSNVerbatim(t *testing.T) {
	dsn, err := DSN(&config.DatabaseConfig{Driver: config.DriverMySQL, DSN: "u:p@tcp(h:1)/d", Host: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "u:p@tcp(h:1)/d", dsn)
}

func TestDSNUnsupportedDriver(t *testing.T) {
	_, err := DSN(&config.DatabaseConfig{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver: oracle")
}

func TestMySQLDSN(t *testing.T) {
	dsn, err := DSN(&config.DatabaseConfig{
		Driver:         config.DriverMySQL,
		Host:           "db.internal",
		User:           "logger",
		Password:       "p@ss:word",
		Name:           "ips",
		ConnectTimeout: 5 * time.Second,
		Params:         map[string]string{"sql_mode": "ANSI"},
	})
	require.NoError(t, err)

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "tcp", parsed.Net)
	assert.Equal(t, "db.internal:3306", parsed.Addr)
	assert.Equal(t, "logger", parsed.User)
	assert.Equal(t, "p@ss:word", parsed.Passwd)
	assert.Equal(t, "ips", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, 5*time.Second, parsed.Timeout)
	assert.Equal(t, "ANSI", parsed.Params["sql_mode"])
}

func TestMySQLDSNCustomPort(t *testing.T) {
	dsn, err := DSN(&config.DatabaseConfig{Driver: config.DriverMySQL, Host: "::1", Port: 3307, Name: "ips"})
	require.NoError(t, err)

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "[::1]:3307", parsed.Addr)
}

func TestPostgresDSN(t *testing.T) {
	for _, driver := range []string{config.DriverPostgres, config.DriverPgx} {
		t.Run(driver, func(t *testing.T) {
			dsn, err := DSN(&config.DatabaseConfig{
				Driver:         driver,
				Host:           "pg.internal",
				User:           "logger",
				Password:       "s3cret",
				Name:           "ips",
				ConnectTimeout: 1500 * time.Millisecond,
				Params:         map[string]string{"sslmode": "disable"},
			})
			require.NoError(t, err)

			u, err := url.Parse(dsn)
			require.NoError(t, err)
			assert.Equal(t, "postgres", u.Scheme)
			assert.Equal(t, "pg.internal:5432", u.Host)
			assert.Equal(t, "/ips", u.Path)
			assert.Equal(t, "logger", u.User.Username())
			pass, _ := u.User.Password()
			assert.Equal(t, "s3cret", pass)
			assert.Equal(t, "disable", u.Query().Get("sslmode"))
			assert.Equal(t, "1", u.Query().Get("connect_timeout"))
		})
	}
}

func TestPostgresDSNDefaults(t *testing.T) {
	dsn, err := DSN(&config.DatabaseConfig{Driver: config.DriverPostgres, Name: "ips"})
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost:5432/ips", dsn)
}

func TestSQLiteDSN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ips.db")
	dsn, err := DSN(&config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Name:   path,
		Params: map[string]string{"_foreign_keys": "on"},
	})
	require.NoError(t, err)
	assert.Equal(t, path+"?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL", dsn)
	assert.DirExists(t, filepath.Dir(path))
}

func TestSQLiteDSNRequiresName(t *testing.T) {
	_, err := DSN(&config.DatabaseConfig{Driver: config.DriverSQLite})
	require.Error(t, err)
}

func TestSQLiteDSNRejectsMemory(t *testing.T) {
	for _, name := range []string{":memory:", "file::memory:?cache=shared", "file:ips?mode=memory&cache=shared"} {
		t.Run(name, func(t *testing.T) {
			_, err := DSN(&config.DatabaseConfig{Driver: config.DriverSQLite, Name: name})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "in-memory database")
		})
	}
}

func TestPostgresDSNPasswordWithoutUser(t *testing.T) {
	dsn, err := DSN(&config.DatabaseConfig{Driver: config.DriverPostgres, Password: "secret", Name: "ips"})
	require.NoError(t, err)

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "", u.User.Username())
	pass, ok := u.User.Password()
	assert.True(t, ok)
	assert.Equal(t, "secret", pass)
}
