// Package config builds the process-wide configuration once at startup from
// flags, the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xhit/go-str2duration/v2"

	"github.com/mcoot/samuel/internal/model"
)

const appName = "samuel"

// Backend selects the snapshot store implementation
type Backend string

const (
	BackendFile  Backend = "file"
	BackendBolt  Backend = "bolt"
	BackendRedis Backend = "redis"
)

// Output formats
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Keys double as environment variable names
const (
	keyAPIKey         = "API_KEY"
	keySteamID        = "STEAM_ID"
	keyDataDir        = "DATA_DIR"
	keyMaxAge         = "CACHE_MAX_AGE"
	keyBackend        = "CACHE_BACKEND"
	keyRedisURL       = "REDIS_URL"
	keySteamAPIURL    = "STEAM_API_URL"
	keyFetchTimeout   = "FETCH_TIMEOUT"
	keyRuntimeTimeout = "RUNTIME_TIMEOUT"
	keySteamworksLib  = "STEAMWORKS_LIB"
	keyLogLevel       = "LOG_LEVEL"
	keyOutput         = "SAMUEL_OUTPUT"
	keyVerbose        = "SAMUEL_VERBOSE"
)

// flagKeys maps persistent flag names to the key they override
var flagKeys = map[string]string{
	"data-dir":      keyDataDir,
	"max-age":       keyMaxAge,
	"cache-backend": keyBackend,
	"output":        keyOutput,
	"verbose":       keyVerbose,
}

// Config is everything the commands need, resolved and validated
type Config struct {
	Credentials model.Credentials

	DataDir      string
	MaxAge       time.Duration
	CacheBackend Backend
	RedisURL     string

	SteamAPIURL    string
	FetchTimeout   time.Duration
	RuntimeTimeout time.Duration
	SteamworksLib  string

	LogLevel slog.Level
	Output   string
	Verbose  bool
}

// CachePath is where the file backend keeps the snapshot
func (c *Config) CachePath() string {
	return filepath.Join(c.DataDir, appName+".cache")
}

// BoltPath is the bolt backend's database file
func (c *Config) BoltPath() string {
	return filepath.Join(c.DataDir, appName+".db")
}

// RegisterFlags adds the persistent flags Load understands
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("data-dir", "", "Data directory (env: DATA_DIR)")
	flags.String("max-age", "", "Maximum cache age, e.g. 24h, 1d (env: CACHE_MAX_AGE)")
	flags.String("cache-backend", "", "Cache backend: file, bolt, redis (env: CACHE_BACKEND)")
	flags.StringP("output", "o", "", "Output format: text, json")
	flags.BoolP("verbose", "v", false, "Verbose output")
}

// Load resolves configuration from flags, then the environment, then the
// given dotenv files (".env" when none are named), then defaults. Every
// problem found is reported together in a single ErrConfig.
func Load(flags *pflag.FlagSet, envFiles ...string) (*Config, error) {
	if err := loadDotenv(envFiles); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrConfig, err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault(keyMaxAge, "24h")
	v.SetDefault(keyBackend, string(BackendFile))
	v.SetDefault(keySteamAPIURL, "https://api.steampowered.com")
	v.SetDefault(keyFetchTimeout, "30s")
	v.SetDefault(keyRuntimeTimeout, "10s")
	v.SetDefault(keyLogLevel, "WARN")
	v.SetDefault(keyOutput, OutputText)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("%w: %v", model.ErrConfig, err)
				}
			}
		}
	}

	var problems []string
	problem := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	cfg := &Config{
		Credentials: model.Credentials{
			APIKey:    strings.TrimSpace(v.GetString(keyAPIKey)),
			AccountID: strings.TrimSpace(v.GetString(keySteamID)),
		},
		RedisURL:      v.GetString(keyRedisURL),
		SteamAPIURL:   v.GetString(keySteamAPIURL),
		SteamworksLib: v.GetString(keySteamworksLib),
		Output:        strings.ToLower(v.GetString(keyOutput)),
		Verbose:       v.GetBool(keyVerbose),
	}

	if cfg.Credentials.APIKey == "" {
		problem("%s is required", keyAPIKey)
	}
	switch id := cfg.Credentials.AccountID; {
	case id == "":
		problem("%s is required", keySteamID)
	case !isSteamID(id):
		problem("%s must be a 64-bit numeric account id, got %q", keySteamID, id)
	}

	cfg.DataDir = v.GetString(keyDataDir)
	if cfg.DataDir == "" {
		dir, err := defaultDataDir()
		if err != nil {
			problem("%s is not set and %v", keyDataDir, err)
		}
		cfg.DataDir = dir
	}

	cfg.MaxAge = duration(v, keyMaxAge, problem)
	cfg.FetchTimeout = duration(v, keyFetchTimeout, problem)
	cfg.RuntimeTimeout = duration(v, keyRuntimeTimeout, problem)

	cfg.CacheBackend = Backend(strings.ToLower(v.GetString(keyBackend)))
	switch cfg.CacheBackend {
	case BackendFile, BackendBolt:
	case BackendRedis:
		if cfg.RedisURL == "" {
			problem("%s is required when %s=redis", keyRedisURL, keyBackend)
		}
	default:
		problem("unknown %s %q (want file, bolt or redis)", keyBackend, cfg.CacheBackend)
	}

	if cfg.Output != OutputText && cfg.Output != OutputJSON {
		problem("unknown output format %q (want text or json)", cfg.Output)
	}

	level, ok := ParseLogLevel(v.GetString(keyLogLevel))
	if !ok {
		problem("unknown %s %q", keyLogLevel, v.GetString(keyLogLevel))
	}
	cfg.LogLevel = level
	if cfg.Verbose {
		cfg.LogLevel = slog.LevelDebug
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", model.ErrConfig, strings.Join(problems, "; "))
	}
	return cfg, nil
}

// ParseLogLevel accepts slog level names in any case, including offsets
// such as "INFO+2"
func ParseLogLevel(s string) (slog.Level, bool) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelWarn, false
	}
	return level, true
}

func duration(v *viper.Viper, key string, problem func(string, ...any)) time.Duration {
	raw := v.GetString(key)
	d, err := str2duration.ParseDuration(raw)
	if err != nil {
		problem("%s: invalid duration %q", key, raw)
		return 0
	}
	if d <= 0 {
		problem("%s must be positive, got %q", key, raw)
		return 0
	}
	return d
}

func loadDotenv(files []string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("reading %s: %w", f, err)
		}
	}
	return nil
}

func defaultDataDir() (string, error) {
	if runtime.GOOS == "windows" {
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, appName), nil
		}
		return "", errors.New("LOCALAPPDATA is not set")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

func isSteamID(s string) bool {
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}
