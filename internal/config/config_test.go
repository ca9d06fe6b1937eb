package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every bound variable for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		if old, ok := os.LookupEnv(env); ok {
			t.Cleanup(func() { _ = os.Setenv(env, old) })
		} else {
			t.Cleanup(func() { _ = os.Unsetenv(env) })
		}
		require.NoError(t, os.Unsetenv(env))
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("", "")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:80", cfg.Server.Address)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Empty(t, cfg.Log.File)
}

func TestLoadConfigEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "logger")
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("DB_NAME", "ips")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_AUTO_MIGRATE", "true")

	cfg, err := LoadConfig("", "")
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "logger", cfg.Database.User)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "ips", cfg.Database.Name)
	assert.Equal(t, 3307, cfg.Database.Port)
	assert.True(t, cfg.Database.AutoMigrate)
}

func TestLoadConfigFileAndPrecedence(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
server:
  address: ":8080"
  read_timeout: 5s
  trusted_proxies:
    - 10.0.0.0/8
database:
  driver: postgres
  host: from-file
  name: ipdb
  params:
    sslmode: disable
log:
  level: debug
  format: json
`)
	t.Setenv("DB_HOST", "from-env")

	cfg, err := LoadConfig(path, "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.Server.TrustedProxies)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.Database.Host)
	assert.Equal(t, "ipdb", cfg.Database.Name)
	assert.Equal(t, map[string]string{"sslmode": "disable"}, cfg.Database.Params)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfigEnvFile(t *testing.T) {
	clearEnv(t)
	envFile := writeFile(t, ".env", "DB_HOST=dotenv-host\nDB_NAME=dotenv-db\n")
	t.Setenv("DB_NAME", "real-env")

	cfg, err := LoadConfig("", envFile)
	require.NoError(t, err)

	assert.Equal(t, "dotenv-host", cfg.Database.Host)
	assert.Equal(t, "real-env", cfg.Database.Name, "dotenv must not override the environment")
}

func TestLoadConfigMissingEnvFileIsIgnored(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig("", filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestLoadConfigErrors(t *testing.T) {
	testCases := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "unsupported driver",
			env:     map[string]string{"DB_DRIVER": "oracle"},
			wantErr: "database.driver must be one of",
		},
		{
			name:    "bad log level",
			env:     map[string]string{"LOG_LEVEL": "verbose"},
			wantErr: "log.level must be one of",
		},
		{
			name:    "bad listen address",
			env:     map[string]string{"SERVER_ADDRESS": "nowhere"},
			wantErr: "server.address",
		},
		{
			name:    "bad trusted proxy",
			yaml:    "server:\n  trusted_proxies: [\"not-a-network\"]\n",
			wantErr: "server.trusted_proxies[0]",
		},
		{
			name:    "port out of range",
			env:     map[string]string{"DB_PORT": "70000"},
			wantErr: "database.port must be at most 65535",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			path := ""
			if tc.yaml != "" {
				path = writeFile(t, "config.yaml", tc.yaml)
			}

			_, err := LoadConfig(path, "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
