package repositorycache

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-pokedex/cache"
	"github.com/goliatone/go-pokedex/pokedex"
)

// Method segments used in cache keys.
const (
	methodGetPokemonList    = "get_pokemon_list"
	methodGetPokemonDetails = "get_pokemon_details"
)

// maxSharedAttempts bounds how often a caller rejoins a shared fetch that was
// cancelled by another caller.
const maxSharedAttempts = 3

var _ pokedex.Repository = (*CachedRepository)(nil)

// CachedRepository decorates a pokedex.Repository with an in-process memory layer.
type CachedRepository struct {
	base          pokedex.Repository
	cache         cache.CacheService
	keySerializer cache.KeySerializer
	logger        *log.Logger
}

// Option customises a CachedRepository.
type Option func(*CachedRepository)

// WithLogger reports invalidation failures to logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *CachedRepository) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a CachedRepository that wraps base.
func New(base pokedex.Repository, cacheService cache.CacheService, keySerializer cache.KeySerializer, opts ...Option) *CachedRepository {
	c := &CachedRepository{
		base:          base,
		cache:         cacheService,
		keySerializer: keySerializer,
		logger:        log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetPokemonList returns a page, served from memory when the same page was read before.
func (c *CachedRepository) GetPokemonList(ctx context.Context, limit, offset int) ([]pokedex.Pokemon, error) {
	key := c.keySerializer.SerializeKey(methodGetPokemonList, limit, offset)
	return getOrFetch(ctx, c.cache, key, func(ctx context.Context) ([]pokedex.Pokemon, error) {
		return c.base.GetPokemonList(ctx, limit, offset)
	})
}

// GetPokemonDetails returns a details record. Keys differing only in case or
// surrounding space share an entry.
func (c *CachedRepository) GetPokemonDetails(ctx context.Context, nameOrID string) (pokedex.PokemonDetails, error) {
	normalized := pokedex.NormalizeKey(nameOrID)
	key := c.keySerializer.SerializeKey(methodGetPokemonDetails, normalized)
	return getOrFetch(ctx, c.cache, key, func(ctx context.Context) (pokedex.PokemonDetails, error) {
		return c.base.GetPokemonDetails(ctx, normalized)
	})
}

// RefreshPokemonList passes through and drops every list and details entry on success.
func (c *CachedRepository) RefreshPokemonList(ctx context.Context) error {
	if err := c.base.RefreshPokemonList(ctx); err != nil {
		return err
	}
	for _, method := range []string{methodGetPokemonList, methodGetPokemonDetails} {
		prefix := c.keySerializer.SerializeKey(method) + cache.KeySeparator
		if err := c.cache.DeleteByPrefix(ctx, prefix); err != nil {
			c.logger.Warn("cache invalidation failed", "prefix", prefix, "err", err)
		}
	}
	return nil
}

// getOrFetch reads through the cache. Concurrent callers of a key share one
// fetch running on the first caller's context, so a caller whose own context
// is still live rejoins when that shared fetch was cancelled.
func getOrFetch[T any](ctx context.Context, svc cache.CacheService, key string, fetchFn cache.FetchFn[T]) (T, error) {
	var (
		value T
		err   error
	)
	for attempt := 0; attempt < maxSharedAttempts; attempt++ {
		value, err = cache.GetOrFetch(ctx, svc, key, fetchFn)
		if err == nil || ctx.Err() != nil || !isCancellation(err) {
			return value, err
		}
	}
	return value, err
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
