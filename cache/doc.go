// Package cache provides the in-process caching contracts used by the pokedex
// repository decorator.
//
// # Overview
//
// Two interfaces are exported together with their default implementations:
//
//   - CacheService: read-through GetOrFetch plus key and prefix deletion
//   - KeySerializer: builds stable cache keys from method names and arguments
//
// NewCacheService returns the sturdyc backed implementation configured from
// Config. DefaultConfig mirrors the defaults the application ships with.
//
// # Basic Usage
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	keys := cache.NewNamespacedKeySerializer("pokedex")
//	key := keys.SerializeKey("GetPokemonDetails", "25")
//	details, err := cache.GetOrFetch(ctx, svc, key, func(ctx context.Context) (pokedex.PokemonDetails, error) {
//		return repo.GetPokemonDetails(ctx, "25")
//	})
//
// # Keys
//
// Keys are the namespace, the method and every argument joined with
// KeySeparator. Basic values are rendered directly, slices and maps
// recursively (maps with sorted pairs), anything else as JSON. Namespaces let
// a caller drop a whole key space with DeleteByPrefix.
package cache
