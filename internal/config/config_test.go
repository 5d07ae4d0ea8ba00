package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, int32(10), cfg.Store.MaxConns)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 3001, cfg.Server.Port)
	assert.InDelta(t, 2.0, cfg.LeadSource.RequestsPerSecond, 0.001)
	assert.Equal(t, 30, cfg.LeadSource.TimeoutSecs)
	assert.Equal(t, "leads.xlsx", cfg.Sheets.OutputPath)
	assert.Equal(t, "https://login.salesforce.com", cfg.Salesforce.LoginURL)
	assert.Equal(t, "5611201", cfg.Capture.CNAE)
	assert.Equal(t, 30, cfg.Capture.WindowDays)
	assert.Equal(t, 1000, cfg.Capture.Limit)
	assert.Equal(t, 300, cfg.Capture.BatchSize)
	assert.Equal(t, 3, cfg.Capture.BatchDelaySecs)
	assert.Equal(t, "standard", cfg.Qualify.Preset)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
store:
  driver: sqlite
  database_url: assistpro.db
log:
  level: debug
  format: console
server:
  port: 9090
capture:
  cnae: "4781400"
  uf: SP
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "4781400", cfg.Capture.CNAE)
	assert.Equal(t, "SP", cfg.Capture.UF)
	// Defaults still apply for unset values
	assert.Equal(t, 300, cfg.Capture.BatchSize)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("ASSISTPRO_STORE_DRIVER", "postgres")
	t.Setenv("ASSISTPRO_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chTempDir(t)

	t.Setenv("ASSISTPRO_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
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

// validDefaults returns a Config populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "assistpro.db"
	cfg.Server.Port = 3001
	cfg.Capture.CNAE = "5611201"
	cfg.Capture.WindowDays = 30
	cfg.Capture.BatchSize = 300
	return cfg
}

func TestValidateServe(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("serve"))

	cfg.Server.Port = 0
	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateServe_PostgresNeedsURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "postgres"
	cfg.Store.DatabaseURL = ""

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")

	cfg.Store.DatabaseURL = "postgres://localhost/assistpro"
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateServe_UnknownDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be postgres or sqlite")
}

func TestValidateCapture_MissingFields(t *testing.T) {
	cfg := validDefaults()
	// Lead source credentials are empty

	err := cfg.Validate("capture")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "lead_source.base_url is required")
	assert.Contains(t, err.Error(), "lead_source.api_key is required")
}

func TestValidateCapture_AllPresent(t *testing.T) {
	cfg := validDefaults()
	cfg.LeadSource.BaseURL = "https://api.example.com"
	cfg.LeadSource.APIKey = "key-123"

	assert.NoError(t, cfg.Validate("capture"))
}

func TestValidateCapture_BatchBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.LeadSource.BaseURL = "https://api.example.com"
	cfg.LeadSource.APIKey = "key-123"

	cfg.Capture.BatchSize = 0
	err := cfg.Validate("capture")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "capture.batch_size must be between 1 and 1000")

	cfg.Capture.BatchSize = 1001
	err = cfg.Validate("capture")
	assert.Error(t, err)

	cfg.Capture.BatchSize = 1000
	assert.NoError(t, cfg.Validate("capture"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
