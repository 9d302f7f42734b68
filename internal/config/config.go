// Package config loads the application settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/joho/godotenv"

	"github.com/goliatone/go-pokedex/cache"
	"github.com/goliatone/go-pokedex/internal/logging"
	"github.com/goliatone/go-pokedex/internal/pokeapi"
	"github.com/goliatone/go-pokedex/internal/storage"
)

type Config struct {
	Environment string
	LogLevel    string
	LogFormat   string

	HTTPAddr    string
	CORSOrigins []string

	APIBaseURL  string
	HTTPTimeout time.Duration

	DBDriver    string
	DatabaseURL string

	PageSize int

	MemoryCache   bool
	CacheCapacity int
	CacheTTL      time.Duration
}

// Load reads the optional .env files, then the environment, and validates
// the result.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "load env file").
				WithMetadata(map[string]any{"file": file})
		}
	}

	defaults := cache.DefaultConfig()
	cfg := &Config{
		Environment: getEnv("POKEDEX_ENV", "development"),
		LogLevel:    getEnv("POKEDEX_LOG_LEVEL", "info"),
		LogFormat:   getEnv("POKEDEX_LOG_FORMAT", logging.FormatText),

		HTTPAddr:    getEnv("POKEDEX_HTTP_ADDR", ":8080"),
		CORSOrigins: getEnvList("POKEDEX_CORS_ORIGINS", []string{"*"}),

		APIBaseURL:  getEnv("POKEDEX_API_BASE_URL", pokeapi.DefaultBaseURL),
		HTTPTimeout: getEnvDuration("POKEDEX_HTTP_TIMEOUT", pokeapi.DefaultTimeout),

		DBDriver:    getEnv("POKEDEX_DB_DRIVER", storage.DriverSQLite),
		DatabaseURL: getEnv("POKEDEX_DATABASE_URL", ""),

		PageSize: getEnvInt("POKEDEX_PAGE_SIZE", 20),

		MemoryCache:   getEnvBool("POKEDEX_MEMORY_CACHE", defaults.Enabled),
		CacheCapacity: getEnvInt("POKEDEX_CACHE_CAPACITY", defaults.Capacity),
		CacheTTL:      getEnvDuration("POKEDEX_CACHE_TTL", defaults.TTL),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.Required, validation.In("debug", "info", "warn", "error", "fatal")),
		validation.Field(&c.LogFormat, validation.In(logging.FormatText, logging.FormatJSON, logging.FormatLogfmt)),
		validation.Field(&c.HTTPAddr, validation.Required),
		validation.Field(&c.APIBaseURL, validation.Required),
		validation.Field(&c.HTTPTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.DBDriver, validation.Required, validation.In(storage.DriverSQLite, storage.DriverPostgres)),
		validation.Field(&c.DatabaseURL, validation.When(c.DBDriver == storage.DriverPostgres, validation.Required)),
		validation.Field(&c.PageSize, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.CacheCapacity, validation.When(c.MemoryCache, validation.Required, validation.Min(1))),
		validation.Field(&c.CacheTTL, validation.When(c.MemoryCache, validation.Required, validation.Min(time.Second))),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid configuration")
	}
	return nil
}

// IsProduction reports whether POKEDEX_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// CacheConfig derives the memory layer settings.
func (c *Config) CacheConfig() cache.Config {
	cfg := cache.DefaultConfig()
	cfg.Enabled = c.MemoryCache
	cfg.Capacity = c.CacheCapacity
	cfg.TTL = c.CacheTTL
	if cfg.NumShards > cfg.Capacity {
		cfg.NumShards = cfg.Capacity
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
