package pokeapi

import (
	"strconv"
	"strings"
)

// ArtworkBaseURL is where the official artwork for a list entry is served from.
const ArtworkBaseURL = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/other/official-artwork/"

// NamedResource is the {name, url} pair PokeAPI uses for references.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ListResponse is the body of GET pokemon?limit=&offset=.
type ListResponse struct {
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  []NamedResource `json:"results"`
}

// DetailsResponse is the subset of GET pokemon/{nameOrID} the catalog keeps.
// Height is in decimetres and Weight in hectograms.
type DetailsResponse struct {
	ID      int        `json:"id"`
	Name    string     `json:"name"`
	Height  int        `json:"height"`
	Weight  int        `json:"weight"`
	Types   []TypeSlot `json:"types"`
	Sprites Sprites    `json:"sprites"`
	Stats   []StatSlot `json:"stats"`
}

type TypeSlot struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

type StatSlot struct {
	BaseStat int           `json:"base_stat"`
	Effort   int           `json:"effort"`
	Stat     NamedResource `json:"stat"`
}

type Sprites struct {
	FrontDefault *string       `json:"front_default"`
	Other        *OtherSprites `json:"other"`
}

type OtherSprites struct {
	OfficialArtwork *Artwork `json:"official-artwork"`
}

type Artwork struct {
	FrontDefault *string `json:"front_default"`
}

// ImageURL prefers the official artwork and falls back to the default sprite.
func (d DetailsResponse) ImageURL() string {
	if o := d.Sprites.Other; o != nil && o.OfficialArtwork != nil && o.OfficialArtwork.FrontDefault != nil {
		return *o.OfficialArtwork.FrontDefault
	}
	if d.Sprites.FrontDefault != nil {
		return *d.Sprites.FrontDefault
	}
	return ""
}

// ExtractIDFromURL parses the trailing id of a resource url such as
// https://pokeapi.co/api/v2/pokemon/25/.
func ExtractIDFromURL(raw string) (int, bool) {
	trimmed := strings.TrimRight(raw, "/")
	segment := trimmed[strings.LastIndex(trimmed, "/")+1:]
	id, err := strconv.Atoi(segment)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ArtworkURL returns the official artwork url for id.
func ArtworkURL(id int) string {
	return ArtworkBaseURL + strconv.Itoa(id) + ".png"
}
