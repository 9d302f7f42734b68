// Package catalog implements pokedex.Repository as a cache-aside read
// through the local store in front of the remote catalog.
package catalog

import (
	"context"
	"strconv"

	"github.com/goliatone/go-pokedex/analytics"
	"github.com/goliatone/go-pokedex/internal/pokeapi"
	"github.com/goliatone/go-pokedex/internal/storage"
	"github.com/goliatone/go-pokedex/pokedex"
)

// Remote is the subset of the PokeAPI client the repository reads from.
type Remote interface {
	ListPokemon(ctx context.Context, limit, offset int) (pokeapi.ListResponse, error)
	GetPokemonDetails(ctx context.Context, nameOrID string) (pokeapi.DetailsResponse, error)
}

// Store is the subset of the local store the repository uses.
type Store interface {
	InsertPage(ctx context.Context, limit, offset int, entities []storage.PokemonEntity) error
	ListPokemon(ctx context.Context, limit, offset int) ([]storage.PokemonEntity, bool, error)
	InsertDetails(ctx context.Context, entity storage.PokemonDetailsEntity) error
	GetDetailsByID(ctx context.Context, id int) (storage.PokemonDetailsEntity, bool, error)
	GetDetailsByName(ctx context.Context, name string) (storage.PokemonDetailsEntity, bool, error)
	ClearEverything(ctx context.Context) error
}

// Engineering events.
const (
	EventListFetchStart      = "pokemon_list_fetch_start"
	EventListFetchSuccess    = "pokemon_list_fetch_success"
	EventListFetchError      = "pokemon_list_fetch_error"
	EventDetailsFetchStart   = "pokemon_details_fetch_start"
	EventDetailsFetchSuccess = "pokemon_details_fetch_success"
	EventDetailsFetchError   = "pokemon_details_fetch_error"
)

// Repository reads through the store and fills it from the remote on a miss.
type Repository struct {
	remote  Remote
	store   Store
	tracker analytics.EngineeringTracker
}

var _ pokedex.Repository = (*Repository)(nil)

// New builds a Repository. A nil tracker discards engineering events.
func New(remote Remote, store Store, tracker analytics.EngineeringTracker) *Repository {
	if tracker == nil {
		tracker = analytics.Nop{}
	}
	return &Repository{remote: remote, store: store, tracker: tracker}
}

// GetPokemonList returns the cached page when the same (limit, offset) window
// was stored before and holds any rows, and fetches the page remotely
// otherwise.
func (r *Repository) GetPokemonList(ctx context.Context, limit, offset int) ([]pokedex.Pokemon, error) {
	cached, fetched, err := r.store.ListPokemon(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if fetched && len(cached) > 0 {
		return entitiesToPokemon(cached), nil
	}
	return r.fetchAndCacheList(ctx, limit, offset)
}

func (r *Repository) fetchAndCacheList(ctx context.Context, limit, offset int) ([]pokedex.Pokemon, error) {
	params := analytics.Params{
		"limit":  strconv.Itoa(limit),
		"offset": strconv.Itoa(offset),
	}
	r.tracker.TrackInfo(EventListFetchStart, params)

	resp, err := r.remote.ListPokemon(ctx, limit, offset)
	if err != nil {
		r.tracker.TrackError(EventListFetchError, err, params)
		return nil, err
	}

	r.tracker.TrackInfo(EventListFetchSuccess, analytics.Params{
		"limit":  params["limit"],
		"offset": params["offset"],
		"count":  strconv.Itoa(len(resp.Results)),
	})

	entities := listToEntities(resp.Results, offset)
	if err := r.store.InsertPage(ctx, limit, offset, entities); err != nil {
		r.tracker.TrackError(EventListFetchError, err, params)
		return nil, err
	}
	return entitiesToPokemon(entities), nil
}

// GetPokemonDetails looks up numeric keys by id and anything else by name,
// returning the cached record on a hit.
func (r *Repository) GetPokemonDetails(ctx context.Context, nameOrID string) (pokedex.PokemonDetails, error) {
	key := pokedex.NormalizeKey(nameOrID)

	var (
		cached storage.PokemonDetailsEntity
		found  bool
		err    error
	)
	if id, convErr := strconv.Atoi(key); convErr == nil {
		cached, found, err = r.store.GetDetailsByID(ctx, id)
	} else {
		cached, found, err = r.store.GetDetailsByName(ctx, key)
	}
	if err != nil {
		return pokedex.PokemonDetails{}, err
	}
	if found {
		return entityToDetails(cached), nil
	}
	return r.fetchAndCacheDetails(ctx, key)
}

func (r *Repository) fetchAndCacheDetails(ctx context.Context, key string) (pokedex.PokemonDetails, error) {
	params := analytics.Params{"nameOrId": key}
	r.tracker.TrackInfo(EventDetailsFetchStart, params)

	resp, err := r.remote.GetPokemonDetails(ctx, key)
	if err != nil {
		r.tracker.TrackError(EventDetailsFetchError, err, params)
		return pokedex.PokemonDetails{}, err
	}
	r.tracker.TrackInfo(EventDetailsFetchSuccess, params)

	entity := detailsToEntity(resp)
	if err := r.store.InsertDetails(ctx, entity); err != nil {
		r.tracker.TrackError(EventDetailsFetchError, err, params)
		return pokedex.PokemonDetails{}, err
	}
	return entityToDetails(entity), nil
}

// RefreshPokemonList clears the list and details caches.
func (r *Repository) RefreshPokemonList(ctx context.Context) error {
	return r.store.ClearEverything(ctx)
}
