// Package repositorycache provides an in-process read-through decorator for
// pokedex.Repository.
//
// # Overview
//
// The persistent catalog cache already avoids remote calls, but every read
// still costs a database round trip and a mapping pass. CachedRepository keeps
// the mapped pages and details records in a cache.CacheService so repeated
// reads are served from memory. Concurrent readers of the same key share a
// single call to the base repository.
//
// # Basic Usage
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	repo := repositorycache.New(base, svc, cache.NewNamespacedKeySerializer("pokedex"))
//	page, err := repo.GetPokemonList(ctx, 20, 0)
//
// # Keys
//
// Keys are built by the KeySerializer from a method segment and the call
// arguments, for example pokedex::get_pokemon_list::20::0. Details keys use
// the trimmed, lower-cased name or id.
//
// # Invalidation
//
// RefreshPokemonList delegates to the base repository and, only if that
// succeeds, deletes every key under the list and details method prefixes.
// Errors are never cached, so a failed read is retried on the next call.
//
// # Cancellation
//
// A shared fetch runs on the context of the caller that started it. When
// that caller is cancelled, the other waiters receive the cancellation error;
// any of them whose own context is still live starts a fresh fetch.
package repositorycache
