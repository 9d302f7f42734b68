package catalog

import (
	"github.com/goliatone/go-pokedex/internal/pokeapi"
	"github.com/goliatone/go-pokedex/internal/storage"
	"github.com/goliatone/go-pokedex/pokedex"
)

// listItemToEntity maps a list entry found at position in the remote listing.
// Entries whose url carries no numeric id are dropped.
func listItemToEntity(item pokeapi.NamedResource, position int) (storage.PokemonEntity, bool) {
	id, ok := pokeapi.ExtractIDFromURL(item.URL)
	if !ok {
		return storage.PokemonEntity{}, false
	}
	return storage.PokemonEntity{
		ID:       id,
		Position: position,
		Name:     item.Name,
		ImageURL: pokeapi.ArtworkURL(id),
	}, true
}

func listToEntities(items []pokeapi.NamedResource, offset int) []storage.PokemonEntity {
	out := make([]storage.PokemonEntity, 0, len(items))
	for i, item := range items {
		if e, ok := listItemToEntity(item, offset+i); ok {
			out = append(out, e)
		}
	}
	return out
}

func detailsToEntity(d pokeapi.DetailsResponse) storage.PokemonDetailsEntity {
	types := make([]storage.TypeRecord, 0, len(d.Types))
	for _, t := range d.Types {
		types = append(types, storage.TypeRecord{Name: t.Type.Name})
	}
	stats := make([]storage.StatRecord, 0, len(d.Stats))
	for _, s := range d.Stats {
		stats = append(stats, storage.StatRecord{Name: s.Stat.Name, BaseStat: s.BaseStat})
	}

	e := storage.PokemonDetailsEntity{
		ID:       d.ID,
		Name:     d.Name,
		ImageURL: d.ImageURL(),
		Height:   d.Height,
		Weight:   d.Weight,
	}
	e.SetTypes(types)
	e.SetStats(stats)
	return e
}

func entityToPokemon(e storage.PokemonEntity) pokedex.Pokemon {
	return pokedex.Pokemon{
		ID:       e.ID,
		Name:     pokedex.DisplayName(e.Name),
		ImageURL: e.ImageURL,
	}
}

func entitiesToPokemon(entities []storage.PokemonEntity) []pokedex.Pokemon {
	out := make([]pokedex.Pokemon, 0, len(entities))
	for _, e := range entities {
		out = append(out, entityToPokemon(e))
	}
	return out
}

func entityToDetails(e storage.PokemonDetailsEntity) pokedex.PokemonDetails {
	rawTypes := e.Types()
	types := make([]pokedex.PokemonType, 0, len(rawTypes))
	for _, t := range rawTypes {
		types = append(types, pokedex.PokemonType{Name: pokedex.DisplayName(t.Name)})
	}
	rawStats := e.Stats()
	stats := make([]pokedex.PokemonStat, 0, len(rawStats))
	for _, s := range rawStats {
		stats = append(stats, pokedex.PokemonStat{Name: pokedex.StatName(s.Name), BaseStat: s.BaseStat})
	}

	return pokedex.PokemonDetails{
		ID:       e.ID,
		Name:     pokedex.DisplayName(e.Name),
		ImageURL: e.ImageURL,
		Height:   float64(e.Height) / 10,
		Weight:   float64(e.Weight) / 10,
		Types:    types,
		Stats:    stats,
	}
}
