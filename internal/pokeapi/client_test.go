package pokeapi

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-pokedex/pkg/testsupport"
)

func newTestClient(t *testing.T, api *testsupport.FakePokeAPI) *Client {
	t.Helper()
	c, err := NewClient(Config{BaseURL: api.BaseURL(), Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	c, err := NewClient(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.baseURL.String())
	assert.Equal(t, DefaultTimeout, c.http.Timeout)

	c, err = NewClient(Config{BaseURL: "http://localhost:9000/api/v2"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/api/v2/", c.baseURL.String())

	_, err = NewClient(Config{BaseURL: "not a url"})
	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryBadInput))
}

func TestClient_ListPokemon(t *testing.T) {
	api := testsupport.NewFakePokeAPI(t)
	api.HandleFixture(t, "pokemon?limit=3&offset=0", testsupport.FixturePath("list_page.json"))
	c := newTestClient(t, api)

	got, err := c.ListPokemon(context.Background(), 3, 0)
	require.NoError(t, err)

	assert.Equal(t, 1302, got.Count)
	require.NotNil(t, got.Next)
	assert.Nil(t, got.Previous)
	require.Len(t, got.Results, 3)
	assert.Equal(t, "bulbasaur", got.Results[0].Name)
	assert.Equal(t, "https://pokeapi.co/api/v2/pokemon/1/", got.Results[0].URL)
	assert.Equal(t, 1, api.Hits("pokemon?limit=3&offset=0"))
}

func TestClient_GetPokemonDetails(t *testing.T) {
	api := testsupport.NewFakePokeAPI(t)
	api.HandleFixture(t, "pokemon/1", testsupport.FixturePath("details_bulbasaur.json"))
	api.HandleFixture(t, "pokemon/bulbasaur", testsupport.FixturePath("details_bulbasaur.json"))
	c := newTestClient(t, api)

	for _, key := range []string{"1", "bulbasaur"} {
		got, err := c.GetPokemonDetails(context.Background(), key)
		require.NoError(t, err)

		assert.Equal(t, 1, got.ID)
		assert.Equal(t, "bulbasaur", got.Name)
		assert.Equal(t, 7, got.Height)
		assert.Equal(t, 69, got.Weight)
		require.Len(t, got.Types, 2)
		assert.Equal(t, "grass", got.Types[0].Type.Name)
		assert.Equal(t, "poison", got.Types[1].Type.Name)
		require.Len(t, got.Stats, 6)
		assert.Equal(t, "special-attack", got.Stats[3].Stat.Name)
		assert.Equal(t, 65, got.Stats[3].BaseStat)
		assert.Equal(t, ArtworkURL(1), got.ImageURL())
	}
}

func TestClient_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		api := testsupport.NewFakePokeAPI(t)
		c := newTestClient(t, api)

		_, err := c.GetPokemonDetails(ctx, "nobody")
		require.Error(t, err)
		assert.True(t, goerrors.IsNotFound(err))

		var gerr *goerrors.Error
		require.True(t, goerrors.As(err, &gerr))
		assert.Equal(t, http.StatusNotFound, gerr.Code)
		assert.Equal(t, "NOT_FOUND", gerr.TextCode)
	})

	t.Run("server error", func(t *testing.T) {
		api := testsupport.NewFakePokeAPI(t)
		api.Handle("pokemon?limit=20&offset=0", http.StatusServiceUnavailable, []byte("maintenance"))
		c := newTestClient(t, api)

		_, err := c.ListPokemon(ctx, 20, 0)
		var gerr *goerrors.Error
		require.True(t, goerrors.As(err, &gerr))
		assert.Equal(t, goerrors.CategoryExternal, gerr.Category)
		assert.Equal(t, http.StatusServiceUnavailable, gerr.Code)
		assert.Equal(t, "maintenance", gerr.Metadata["body"])
	})

	t.Run("undecodable body", func(t *testing.T) {
		api := testsupport.NewFakePokeAPI(t)
		api.Handle("pokemon/1", http.StatusOK, []byte("{not json"))
		c := newTestClient(t, api)

		_, err := c.GetPokemonDetails(ctx, "1")
		var gerr *goerrors.Error
		require.True(t, goerrors.As(err, &gerr))
		assert.Equal(t, goerrors.CategoryExternal, gerr.Category)
		assert.Equal(t, TextCodeDecodeFailed, gerr.TextCode)
	})

	t.Run("network failure", func(t *testing.T) {
		api := testsupport.NewFakePokeAPI(t)
		c := newTestClient(t, api)
		api.Close()

		_, err := c.ListPokemon(ctx, 20, 0)
		var gerr *goerrors.Error
		require.True(t, goerrors.As(err, &gerr))
		assert.Equal(t, goerrors.CategoryExternal, gerr.Category)
		assert.Equal(t, TextCodeNetworkUnavailable, gerr.TextCode)
	})

	t.Run("cancelled context", func(t *testing.T) {
		api := testsupport.NewFakePokeAPI(t)
		c := newTestClient(t, api)

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := c.ListPokemon(cctx, 20, 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.False(t, goerrors.IsCategory(err, goerrors.CategoryExternal))
	})
}

func TestExtractIDFromURL(t *testing.T) {
	tests := []struct {
		url    string
		id     int
		wantOK bool
	}{
		{"https://pokeapi.co/api/v2/pokemon/25/", 25, true},
		{"https://pokeapi.co/api/v2/pokemon/25", 25, true},
		{"https://pokeapi.co/api/v2/pokemon/10001///", 10001, true},
		{"https://pokeapi.co/api/v2/pokemon/unknown/", 0, false},
		{"", 0, false},
		{"42", 42, true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			id, ok := ExtractIDFromURL(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestDetailsResponse_ImageURL(t *testing.T) {
	var withoutArtwork DetailsResponse
	testsupport.LoadFixtureJSON(t, testsupport.FixturePath("details_no_artwork.json"), &withoutArtwork)
	assert.Equal(t, "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/10001.png", withoutArtwork.ImageURL())

	assert.Equal(t, "", DetailsResponse{}.ImageURL())
}

func TestArtworkURL(t *testing.T) {
	assert.Equal(t, "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/other/official-artwork/25.png", ArtworkURL(25))
}
