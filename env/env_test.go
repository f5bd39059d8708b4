package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type relayConfig struct {
	Host     string `envconfig:"RELAY_HOST" default:"localhost"`
	Port     int    `envconfig:"RELAY_PORT" default:"2525"`
	From     string `envconfig:"RELAY_FROM"`
	StartTLS bool   `envconfig:"RELAY_STARTTLS" default:"false"`
}

type requiredConfig struct {
	Host string `envconfig:"RELAY_HOST" required:"true"`
}

func writeEnvFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestInitConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	var cfg relayConfig
	require.NoError(t, InitConfig(&cfg))

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 2525, cfg.Port)
	assert.Empty(t, cfg.From)
	assert.False(t, cfg.StartTLS)
}

func TestInitConfig_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RELAY_HOST", "smtp.example.com")
	t.Setenv("RELAY_PORT", "587")
	t.Setenv("RELAY_STARTTLS", "true")

	var cfg relayConfig
	require.NoError(t, InitConfig(&cfg))

	assert.Equal(t, "smtp.example.com", cfg.Host)
	assert.Equal(t, 587, cfg.Port)
	assert.True(t, cfg.StartTLS)
}

func TestInitConfig_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	writeEnvFile(t, dir, DefaultEnvFile, "RELAY_HOST=fromdotenv\nRELAY_FROM=noreply@example.com\n")
	t.Chdir(dir)
	t.Setenv("RELAY_PORT", "465")

	var cfg relayConfig
	require.NoError(t, InitConfig(&cfg))

	assert.Equal(t, "fromdotenv", cfg.Host)
	assert.Equal(t, "noreply@example.com", cfg.From)
	assert.Equal(t, 465, cfg.Port)

	// godotenv.Load sets process variables; drop them for other tests
	os.Unsetenv("RELAY_HOST")
	os.Unsetenv("RELAY_FROM")
}

func TestInitConfigFrom_EnvironmentWins(t *testing.T) {
	dir := t.TempDir()
	file := writeEnvFile(t, dir, "relay.env", "RELAY_HOST=fromfile\n")
	t.Setenv("RELAY_HOST", "override")

	var cfg relayConfig
	require.NoError(t, InitConfigFrom(&cfg, file))

	assert.Equal(t, "override", cfg.Host)
}

func TestInitConfigFrom_MissingFilesSkipped(t *testing.T) {
	var cfg relayConfig
	err := InitConfigFrom(&cfg, filepath.Join(t.TempDir(), "absent.env"))

	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Host)
}

func TestInitConfig_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("missing required", func(t *testing.T) {
		var cfg requiredConfig
		err := InitConfig(&cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to envconfig.Process")
	})

	t.Run("invalid int", func(t *testing.T) {
		t.Setenv("RELAY_PORT", "invalid")
		var cfg relayConfig
		err := InitConfig(&cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to envconfig.Process")
	})

	t.Run("nil config", func(t *testing.T) {
		err := InitConfig(nil)
		require.Error(t, err)
	})
}
