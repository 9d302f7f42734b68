package storage

import (
	"encoding/json"

	"github.com/uptrace/bun"
)

// PokemonEntity is a row of the pokemon table. Name is stored as returned by
// the remote catalog. Position is the zero-based index of the entry in the
// remote listing, so a page maps to a position range.
type PokemonEntity struct {
	bun.BaseModel `bun:"table:pokemon,alias:p"`

	ID       int    `bun:"id,pk"`
	Position int    `bun:"position,notnull"`
	Name     string `bun:"name,notnull"`
	ImageURL string `bun:"image_url,notnull"`
}

// ListWindowEntity records a (limit, offset) page that was fetched from the
// remote catalog and stored.
type ListWindowEntity struct {
	bun.BaseModel `bun:"table:list_windows,alias:lw"`

	Limit  int `bun:"page_limit,pk"`
	Offset int `bun:"page_offset,pk"`
}

// PokemonDetailsEntity is a row of the pokemon_details table. Height and
// Weight keep the remote units (decimetres and hectograms).
type PokemonDetailsEntity struct {
	bun.BaseModel `bun:"table:pokemon_details,alias:pd"`

	ID        int    `bun:"id,pk"`
	Name      string `bun:"name,notnull"`
	ImageURL  string `bun:"image_url,notnull"`
	Height    int    `bun:"height,notnull"`
	Weight    int    `bun:"weight,notnull"`
	TypesJSON string `bun:"types_json,notnull"`
	StatsJSON string `bun:"stats_json,notnull"`
}

// TypeRecord is a persisted type tag.
type TypeRecord struct {
	Name string `json:"name"`
}

// StatRecord is a persisted base stat.
type StatRecord struct {
	Name     string `json:"name"`
	BaseStat int    `json:"base_stat"`
}

// Types decodes the types column. A corrupt column yields an empty list.
func (e PokemonDetailsEntity) Types() []TypeRecord {
	return decodeList[TypeRecord](e.TypesJSON)
}

// Stats decodes the stats column. A corrupt column yields an empty list.
func (e PokemonDetailsEntity) Stats() []StatRecord {
	return decodeList[StatRecord](e.StatsJSON)
}

// SetTypes encodes types into the types column.
func (e *PokemonDetailsEntity) SetTypes(types []TypeRecord) {
	e.TypesJSON = encodeList(types)
}

// SetStats encodes stats into the stats column.
func (e *PokemonDetailsEntity) SetStats(stats []StatRecord) {
	e.StatsJSON = encodeList(stats)
}

func encodeList[T any](items []T) string {
	if len(items) == 0 {
		return "[]"
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func decodeList[T any](raw string) []T {
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return []T{}
	}
	return out
}
