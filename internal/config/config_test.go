package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.APIURL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 1, cfg.SlotCapacity)
	assert.NotEmpty(t, cfg.SessionFile)
	assert.False(t, cfg.IsDev())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CLINIC_API_URL", "https://clinic.example.com/")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("SLOT_CAPACITY", "4")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("ENV", "development")

	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, "https://clinic.example.com", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 4, cfg.SlotCapacity)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.True(t, cfg.IsDev())
}

func TestLoadFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CLINIC_SESSION_FILE=/tmp/s.json\nLOG_LEVEL=debug\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/s.json", cfg.SessionFile)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsBadCapacity(t *testing.T) {
	t.Setenv("SLOT_CAPACITY", "0")
	_, err := Load(noEnvFile(t))
	assert.Error(t, err)
}

func TestLoadStub(t *testing.T) {
	_, err := LoadStub(noEnvFile(t))
	assert.Error(t, err, "JWT_SECRET is required")

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("SEED_DEMO", "false")
	cfg, err := LoadStub(noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.SeedDemo)
	assert.Equal(t, 1, cfg.SlotCapacity)
	assert.True(t, cfg.IsDev())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, "production", "warn")
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())

	log.Info().Msg("dropped")
	assert.Empty(t, buf.String())
	log.Warn().Str("k", "v").Msg("kept")
	assert.Contains(t, buf.String(), `"k":"v"`)

	assert.Equal(t, zerolog.InfoLevel, NewLogger(&buf, "production", "nonsense").GetLevel())
}
