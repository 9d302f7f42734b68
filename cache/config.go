package cache

import (
	"time"

	"github.com/goliatone/go-pokedex/internal/cacheinfra"
)

// DefaultNamespace prefixes every key written by the pokedex repository decorator.
const DefaultNamespace = "pokedex"

// Config controls the in-process memory layer that sits in front of the
// persistent catalog cache.
type Config struct {
	// Enabled turns the memory layer on. When false the repository is used undecorated.
	Enabled bool
	// Namespace is prepended to every key so a refresh can drop them by prefix.
	Namespace string

	Capacity           int
	NumShards          int
	TTL                time.Duration
	EvictionPercentage int

	// EarlyRefresh re-reads hot entries in the background before they expire.
	EarlyRefresh *EarlyRefreshConfig
	// MissingRecordStorage remembers lookups that returned sturdyc.ErrNotFound.
	MissingRecordStorage bool
}

// EarlyRefreshConfig mirrors the underlying sturdyc early refresh options.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration
	MaxAsyncRefreshTime time.Duration
	SyncRefreshTime     time.Duration
	RetryBaseDelay      time.Duration
}

// DefaultConfig returns the configuration the application ships with. The
// catalog barely changes, so entries live for ten minutes and no early refresh
// is scheduled.
func DefaultConfig() Config {
	base := cacheinfra.DefaultConfig()
	return Config{
		Enabled:              true,
		Namespace:            DefaultNamespace,
		Capacity:             2048,
		NumShards:            16,
		TTL:                  10 * time.Minute,
		EvictionPercentage:   base.EvictionPercentage,
		MissingRecordStorage: false,
	}
}

// Validate checks whether the configuration values are valid. A disabled
// configuration is always valid.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	return c.toInternal().Validate()
}

// NewCacheService constructs the sturdyc backed cache service.
func NewCacheService(cfg Config) (CacheService, error) {
	svc, err := cacheinfra.NewSturdycService(cfg.toInternal())
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// KeySerializer returns a serializer bound to the configured namespace.
func (c Config) KeySerializer() KeySerializer {
	if c.Namespace == "" {
		return NewDefaultKeySerializer()
	}
	return NewNamespacedKeySerializer(c.Namespace)
}

func (c Config) toInternal() cacheinfra.Config {
	out := cacheinfra.Config{
		Capacity:             c.Capacity,
		NumShards:            c.NumShards,
		TTL:                  c.TTL,
		EvictionPercentage:   c.EvictionPercentage,
		MissingRecordStorage: c.MissingRecordStorage,
	}
	if c.EarlyRefresh != nil {
		out.EarlyRefresh = &cacheinfra.EarlyRefreshConfig{
			MinAsyncRefreshTime: c.EarlyRefresh.MinAsyncRefreshTime,
			MaxAsyncRefreshTime: c.EarlyRefresh.MaxAsyncRefreshTime,
			SyncRefreshTime:     c.EarlyRefresh.SyncRefreshTime,
			RetryBaseDelay:      c.EarlyRefresh.RetryBaseDelay,
		}
	}
	return out
}
