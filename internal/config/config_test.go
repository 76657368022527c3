package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "sanctions.db", cfg.Store.SQLitePath)
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
	assert.Equal(t, int32(2), cfg.Database.MinConns)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, 2048, cfg.Anthropic.MaxTokens)
	assert.Equal(t, "/tmp/sanctions", cfg.Sync.TempDir)
	assert.Equal(t, 300, cfg.Sync.TimeoutSecs)
	assert.Equal(t, 4, cfg.Screening.DefaultThreshold)
	assert.Equal(t, 20, cfg.Screening.DefaultLimit)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
  sqlite_path: /var/lib/sanctions/list.db
log:
  level: debug
  format: console
server:
  port: 9090
screening:
  default_threshold: 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/var/lib/sanctions/list.db", cfg.Store.SQLitePath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Screening.DefaultThreshold)
	// Defaults still apply for unset values
	assert.Equal(t, 20, cfg.Screening.DefaultLimit)
	assert.Equal(t, "/tmp/sanctions", cfg.Sync.TempDir)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("SANCTIONS_STORE_DRIVER", "postgres")
	t.Setenv("SANCTIONS_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("SANCTIONS_SERVER_PORT", "3000")
	t.Setenv("SANCTIONS_DATABASE_URL", "postgres://localhost/sanctions")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/sanctions", cfg.Database.URL)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "postgres"
	cfg.Store.SQLitePath = "sanctions.db"
	cfg.Server.Port = 8080
	cfg.Sync.TempDir = "/tmp/sanctions"
	cfg.Screening.DefaultThreshold = 4
	cfg.Screening.DefaultLimit = 20
	return cfg
}

func TestValidateSync_Postgres(t *testing.T) {
	cfg := validDefaults()
	cfg.Database.URL = "postgres://localhost/sanctions"

	assert.NoError(t, cfg.Validate("sync"))
}

func TestValidateSync_MissingDatabaseURL(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("sync")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database.url is required")
}

func TestValidateSync_SQLite(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "sqlite"

	assert.NoError(t, cfg.Validate("sync"))

	cfg.Store.SQLitePath = ""
	err := cfg.Validate("sync")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.sqlite_path is required")
}

func TestValidateSync_UnknownDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "oracle"
	cfg.Database.URL = "postgres://localhost/sanctions"

	err := cfg.Validate("sync")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be postgres or sqlite")
}

func TestValidateServe_ValidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Database.URL = "postgres://localhost/sanctions"
	cfg.Server.Port = 9090

	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Database.URL = "postgres://localhost/sanctions"
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateScreeningBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Database.URL = "postgres://localhost/sanctions"

	cfg.Screening.DefaultThreshold = 11
	err := cfg.Validate("screen")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "default_threshold must be between 0 and 10")

	cfg.Screening.DefaultThreshold = 4
	cfg.Screening.DefaultLimit = 0
	err = cfg.Validate("screen")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "default_limit must be between 1 and 100")

	cfg.Screening.DefaultLimit = 100
	assert.NoError(t, cfg.Validate("screen"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := &Config{}
	cfg.Store.Driver = "postgres"

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url is required")
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "default_threshold")
}
