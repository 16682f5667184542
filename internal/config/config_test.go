package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "API_KEYS", "CODELENS_PROVIDER", "CODELENS_MODEL",
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY", "OPENAI_BASE_URL",
		"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET",
		"MINIO_REGION", "MINIO_USE_SSL", "CONFIG_PATH",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.EqualValues(t, DefaultMaxBodyBytes, cfg.Server.MaxBodyBytes)
	assert.Equal(t, DefaultRateBurst, cfg.Server.RateLimit.Burst)
	assert.Equal(t, DefaultRatePerSec, cfg.Server.RateLimit.RefillRate)
	assert.Equal(t, "gemini", cfg.Provider.Name)
	assert.Equal(t, DefaultGeminiModel, cfg.Provider.Model)
	assert.Equal(t, DefaultTimeout, cfg.Provider.Timeout)
	assert.Empty(t, cfg.Provider.APIKey)
	assert.False(t, cfg.StorageEnabled())
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, `
server:
  port: 9090
  api_keys: [k1, k2]
  rate_limit:
    burst: 5
    refill_per_second: 0.5
provider:
  name: OpenAI
  api_key: sk-file
  timeout: 15s
analysis:
  strict_languages: true
minio:
  endpoint: localhost:9000
  bucketName: reports
  presignExpiry: 2h
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"k1", "k2"}, cfg.Server.APIKeys)
	assert.Equal(t, 5, cfg.Server.RateLimit.Burst)
	assert.Equal(t, 0.5, cfg.Server.RateLimit.RefillRate)
	assert.Equal(t, "openai", cfg.Provider.Name)
	assert.Equal(t, DefaultOpenAIModel, cfg.Provider.Model)
	assert.Equal(t, "sk-file", cfg.Provider.APIKey)
	assert.Equal(t, 15*time.Second, cfg.Provider.Timeout)
	assert.True(t, cfg.Analysis.StrictLanguages)
	assert.False(t, cfg.Analysis.RecountAggregates)
	assert.True(t, cfg.StorageEnabled())
	assert.Equal(t, 2*time.Hour, cfg.Minio.PresignExpiry)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, "server:\n  port: 9090\n")
	t.Setenv("PORT", "7000")
	t.Setenv("API_KEYS", "a, b,,")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("MINIO_ENDPOINT", "minio:9000")
	t.Setenv("MINIO_BUCKET", "b")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, []string{"a", "b"}, cfg.Server.APIKeys)
	assert.Equal(t, "google-key", cfg.Provider.APIKey)
	assert.True(t, cfg.Minio.UseSSL)
	assert.True(t, cfg.StorageEnabled())

	// GEMINI_API_KEY wins over GOOGLE_API_KEY
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	cfg, err = Load(p)
	require.NoError(t, err)
	assert.Equal(t, "gemini-key", cfg.Provider.APIKey)
}

func TestLoad_OpenAIEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CODELENS_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("GEMINI_API_KEY", "ignored")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider.Name)
	assert.Equal(t, "sk-env", cfg.Provider.APIKey)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Provider.BaseURL)
	assert.Equal(t, DefaultOpenAIModel, cfg.Provider.Model)
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeFile(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	clearEnv(t)
	assert.Equal(t, "config.yaml", Path())
	t.Setenv("CONFIG_PATH", "/etc/codelens.yaml")
	assert.Equal(t, "/etc/codelens.yaml", Path())
}
