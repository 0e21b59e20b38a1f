package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/samuel/internal/model"
)

var allKeys = []string{
	keyAPIKey, keySteamID, keyDataDir, keyMaxAge, keyBackend, keyRedisURL,
	keySteamAPIURL, keyFetchTimeout, keyRuntimeTimeout, keySteamworksLib,
	keyLogLevel, keyOutput, keyVerbose,
}

// clearEnv unsets every key for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv(keyAPIKey, "secret")
	t.Setenv(keySteamID, "76561197960287930")
}

func noDotenv(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv(keyDataDir, "/tmp/samuel-data")

	cfg, err := Load(newFlags(t), noDotenv(t))
	require.NoError(t, err)

	assert.Equal(t, model.Credentials{APIKey: "secret", AccountID: "76561197960287930"}, cfg.Credentials)
	assert.Equal(t, 24*time.Hour, cfg.MaxAge)
	assert.Equal(t, BackendFile, cfg.CacheBackend)
	assert.Equal(t, "https://api.steampowered.com", cfg.SteamAPIURL)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 10*time.Second, cfg.RuntimeTimeout)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, OutputText, cfg.Output)
	assert.False(t, cfg.Verbose)

	assert.Equal(t, filepath.Join("/tmp/samuel-data", "samuel.cache"), cfg.CachePath())
	assert.Equal(t, filepath.Join("/tmp/samuel-data", "samuel.db"), cfg.BoltPath())
}

func TestLoadDefaultDataDir(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(nil, noDotenv(t))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local", "share", "samuel"), cfg.DataDir)
}

func TestLoadCollectsEveryProblem(t *testing.T) {
	clearEnv(t)
	t.Setenv(keyMaxAge, "soon")
	t.Setenv(keyBackend, "postgres")

	_, err := Load(nil, noDotenv(t))
	require.ErrorIs(t, err, model.ErrConfig)
	assert.ErrorContains(t, err, "API_KEY is required")
	assert.ErrorContains(t, err, "STEAM_ID is required")
	assert.ErrorContains(t, err, `CACHE_MAX_AGE: invalid duration "soon"`)
	assert.ErrorContains(t, err, `unknown CACHE_BACKEND "postgres"`)
}

func TestLoadRejectsNonNumericSteamID(t *testing.T) {
	clearEnv(t)
	t.Setenv(keyAPIKey, "secret")
	t.Setenv(keySteamID, "gaben")

	_, err := Load(nil, noDotenv(t))
	require.ErrorIs(t, err, model.ErrConfig)
	assert.ErrorContains(t, err, "STEAM_ID must be a 64-bit numeric account id")
}

func TestLoadRejectsNonPositiveDuration(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv(keyRuntimeTimeout, "0s")

	_, err := Load(nil, noDotenv(t))
	require.ErrorIs(t, err, model.ErrConfig)
	assert.ErrorContains(t, err, "RUNTIME_TIMEOUT must be positive")
}

func TestLoadRedisNeedsURL(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv(keyBackend, "redis")

	_, err := Load(nil, noDotenv(t))
	require.ErrorIs(t, err, model.ErrConfig)
	assert.ErrorContains(t, err, "REDIS_URL is required")

	t.Setenv(keyRedisURL, "redis://localhost:6379/0")
	cfg, err := Load(nil, noDotenv(t))
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.CacheBackend)
}

func TestLoadDurationsAcceptDays(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv(keyMaxAge, "1w")

	cfg, err := Load(nil, noDotenv(t))
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, cfg.MaxAge)
}

func TestFlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv(keyDataDir, "/from/env")
	t.Setenv(keyMaxAge, "1h")

	flags := newFlags(t, "--data-dir", "/from/flag", "--max-age", "2d", "--cache-backend", "bolt", "-o", "json", "-v")
	cfg, err := Load(flags, noDotenv(t))
	require.NoError(t, err)

	assert.Equal(t, "/from/flag", cfg.DataDir)
	assert.Equal(t, 48*time.Hour, cfg.MaxAge)
	assert.Equal(t, BackendBolt, cfg.CacheBackend)
	assert.Equal(t, OutputJSON, cfg.Output)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestUnsetFlagsLeaveEnv(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv(keyDataDir, "/from/env")

	cfg, err := Load(newFlags(t), noDotenv(t))
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.DataDir)
}

func TestLoadReadsDotenv(t *testing.T) {
	clearEnv(t)
	t.Setenv(keyDataDir, "/data")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("API_KEY=from-dotenv\nSTEAM_ID=42\nDATA_DIR=/ignored\n"), 0600))

	cfg, err := Load(nil, envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Credentials.APIKey)
	assert.Equal(t, "42", cfg.Credentials.AccountID)
	// real environment wins over the file
	assert.Equal(t, "/data", cfg.DataDir)
}

func TestLoadRejectsUnknownOutputAndLevel(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv(keyLogLevel, "chatty")

	_, err := Load(newFlags(t, "-o", "yaml"), noDotenv(t))
	require.ErrorIs(t, err, model.ErrConfig)
	assert.ErrorContains(t, err, `unknown output format "yaml"`)
	assert.ErrorContains(t, err, `unknown LOG_LEVEL "chatty"`)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in    string
		want  slog.Level
		valid bool
	}{
		{"DEBUG", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"Warn", slog.LevelWarn, true},
		{"ERROR", slog.LevelError, true},
		{"nonsense", slog.LevelWarn, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLogLevel(tt.in)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
