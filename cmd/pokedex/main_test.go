package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-pokedex/internal/config"
	"github.com/goliatone/go-pokedex/internal/storage"
	"github.com/goliatone/go-pokedex/pkg/di"
	"github.com/goliatone/go-pokedex/pkg/testsupport"
	"github.com/goliatone/go-pokedex/pokedex"
)

func newContainer(t *testing.T, api *testsupport.FakePokeAPI) *di.Container {
	t.Helper()
	cfg := &config.Config{
		LogLevel:      "info",
		HTTPAddr:      "127.0.0.1:0",
		APIBaseURL:    api.BaseURL(),
		HTTPTimeout:   5 * time.Second,
		DBDriver:      storage.DriverSQLite,
		DatabaseURL:   fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		PageSize:      2,
		MemoryCache:   true,
		CacheCapacity: 64,
		CacheTTL:      time.Minute,
	}
	c, err := di.NewContainer(context.Background(), cfg, di.WithLogger(log.New(&bytes.Buffer{})))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func newAPI(t *testing.T) *testsupport.FakePokeAPI {
	api := testsupport.NewFakePokeAPI(t)
	api.HandlePage(2, 0, 1, 2)
	api.HandlePage(2, 2, 3, 2)
	api.HandlePage(2, 4, 5, 0)
	api.Handle("pokemon/3", http.StatusOK, testsupport.DetailsJSON(3, "venusaur"))
	api.Handle("pokemon/venusaur", http.StatusOK, testsupport.DetailsJSON(3, "venusaur"))
	return api
}

func TestRun_Help(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), "help", nil, nil, &out))
	assert.Contains(t, out.String(), "COMMANDS:")

	out.Reset()
	assert.Error(t, run(context.Background(), "dance", nil, nil, &out))
	assert.Contains(t, out.String(), "Unknown command: dance")
}

func TestListCmd(t *testing.T) {
	c := newContainer(t, newAPI(t))
	var out bytes.Buffer

	require.NoError(t, dispatch(context.Background(), c, "list", []string{"-offset", "2"}, nil, &out))
	assert.Contains(t, out.String(), "ID")
	assert.Contains(t, out.String(), "Pokemon-3")
	assert.Contains(t, out.String(), "Pokemon-4")

	out.Reset()
	require.NoError(t, dispatch(context.Background(), c, "list", []string{"-json"}, nil, &out))
	var list []pokedex.Pokemon
	require.NoError(t, json.Unmarshal(out.Bytes(), &list))
	assert.Len(t, list, 2)

	err := dispatch(context.Background(), c, "list", []string{"-limit", "0"}, nil, &out)
	assert.Error(t, err)
}

func TestShowCmd(t *testing.T) {
	c := newContainer(t, newAPI(t))
	var out bytes.Buffer

	require.NoError(t, dispatch(context.Background(), c, "show", []string{"Venusaur"}, nil, &out))
	assert.Contains(t, out.String(), "#003 Venusaur")
	assert.Contains(t, out.String(), "Height: 1.0 m")
	assert.Contains(t, out.String(), "Types:  Normal")
	assert.Contains(t, out.String(), "Hp")

	assert.Error(t, dispatch(context.Background(), c, "show", nil, nil, &out))
}

func TestRefreshCmd(t *testing.T) {
	api := newAPI(t)
	c := newContainer(t, api)
	var out bytes.Buffer

	require.NoError(t, dispatch(context.Background(), c, "list", nil, nil, &out))
	require.NoError(t, dispatch(context.Background(), c, "refresh", nil, nil, &out))
	assert.Contains(t, out.String(), "Local cache cleared.")
	require.NoError(t, dispatch(context.Background(), c, "list", nil, nil, &out))
	assert.Equal(t, 2, api.Hits("pokemon?limit=2&offset=0"))
}

func TestBrowseCmd(t *testing.T) {
	c := newContainer(t, newAPI(t))
	in := strings.NewReader("n\n/pokemon-4\n/\n3\nhello\nq\n")
	var out bytes.Buffer

	require.NoError(t, dispatch(context.Background(), c, "browse", nil, in, &out))

	got := out.String()
	assert.Contains(t, got, "#001 Pokemon-1")
	assert.Contains(t, got, "#004 Pokemon-4")
	assert.Contains(t, got, "(n for more)")
	assert.Contains(t, got, "#003 Venusaur")
	assert.Contains(t, got, `Unknown command "hello"`)
}

func TestBrowseCmd_EndOfInput(t *testing.T) {
	c := newContainer(t, newAPI(t))
	var out bytes.Buffer

	require.NoError(t, dispatch(context.Background(), c, "browse", nil, strings.NewReader(""), &out))
	assert.Contains(t, out.String(), "#002 Pokemon-2")
}

func TestServeCmd_Shutdown(t *testing.T) {
	c := newContainer(t, newAPI(t))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- serveCmd(ctx, c, []string{"-addr", "127.0.0.1:0"}) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
