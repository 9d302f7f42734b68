package pokedex

import (
	"context"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Pokemon is a single entry of the paginated catalog list.
type Pokemon struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// PokemonType is a type tag such as "Grass".
type PokemonType struct {
	Name string `json:"name"`
}

// PokemonStat is a named base stat.
type PokemonStat struct {
	Name     string `json:"name"`
	BaseStat int    `json:"base_stat"`
}

// PokemonDetails is the full record of a single creature. Height is in metres
// and Weight in kilograms.
type PokemonDetails struct {
	ID       int           `json:"id"`
	Name     string        `json:"name"`
	ImageURL string        `json:"image_url"`
	Height   float64       `json:"height"`
	Weight   float64       `json:"weight"`
	Types    []PokemonType `json:"types"`
	Stats    []PokemonStat `json:"stats"`
}

// Repository is the data contract used by the use cases.
type Repository interface {
	GetPokemonList(ctx context.Context, limit, offset int) ([]Pokemon, error)
	GetPokemonDetails(ctx context.Context, nameOrID string) (PokemonDetails, error)
	RefreshPokemonList(ctx context.Context) error
}

// DisplayName upper-cases the first letter of name.
func DisplayName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || !unicode.IsLower(r) {
		return name
	}
	return string(unicode.ToTitle(r)) + name[size:]
}

// StatName turns a raw stat name like "special-attack" into "Special Attack".
func StatName(raw string) string {
	words := strings.Split(strings.ReplaceAll(raw, "-", " "), " ")
	for i, w := range words {
		words[i] = DisplayName(w)
	}
	return strings.Join(words, " ")
}

// Matches reports whether p satisfies a search query: a case-insensitive
// substring of the name or the exact id. A blank query matches everything.
func (p Pokemon) Matches(query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
		return true
	}
	return strconv.Itoa(p.ID) == query
}

// Filter returns the entries of list matching query.
func Filter(list []Pokemon, query string) []Pokemon {
	out := make([]Pokemon, 0, len(list))
	for _, p := range list {
		if p.Matches(query) {
			out = append(out, p)
		}
	}
	return out
}
