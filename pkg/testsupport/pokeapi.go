package testsupport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// APIPrefix is the path the fake server mounts the catalog under.
const APIPrefix = "/api/v2/"

type cannedResponse struct {
	status int
	body   []byte
}

// FakePokeAPI is an httptest server that answers catalog requests with canned
// bodies and counts every hit. Routes are matched on path plus query first,
// then on the bare path. Unknown routes answer 404.
type FakePokeAPI struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]cannedResponse
	hits   map[string]int
	total  int
}

// NewFakePokeAPI starts a server that is closed when the test ends.
func NewFakePokeAPI(t testing.TB) *FakePokeAPI {
	t.Helper()

	f := &FakePokeAPI{
		routes: make(map[string]cannedResponse),
		hits:   make(map[string]int),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// BaseURL is the value to configure the pokeapi client with.
func (f *FakePokeAPI) BaseURL() string {
	return f.URL + APIPrefix
}

// Handle registers a response for route, e.g. "pokemon/25" or
// "pokemon?limit=20&offset=0". Query parameters must be sorted by key.
func (f *FakePokeAPI) Handle(route string, status int, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[APIPrefix+route] = cannedResponse{status: status, body: body}
}

// HandleJSON registers a 200 response with v encoded as JSON.
func (f *FakePokeAPI) HandleJSON(t testing.TB, route string, v any) {
	t.Helper()
	body, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal response for %s: %v", route, err)
	}
	f.Handle(route, http.StatusOK, body)
}

// HandleFixture registers a 200 response with the content of a fixture file.
func (f *FakePokeAPI) HandleFixture(t testing.TB, route, path string) {
	t.Helper()
	f.Handle(route, http.StatusOK, LoadFixture(t, path))
}

// HandlePage registers a list page of count sequential entries starting at
// firstID for the given limit and offset.
func (f *FakePokeAPI) HandlePage(limit, offset, firstID, count int) {
	f.Handle(fmt.Sprintf("pokemon?limit=%d&offset=%d", limit, offset), http.StatusOK, ListPageJSON(f.BaseURL(), firstID, count))
}

// Hits returns how many requests matched route.
func (f *FakePokeAPI) Hits(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[APIPrefix+route]
}

// TotalHits returns the number of requests served, matched or not.
func (f *FakePokeAPI) TotalHits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

func (f *FakePokeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.total++
	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}
	resp, ok := f.routes[key]
	if !ok {
		key = r.URL.Path
		resp, ok = f.routes[key]
	}
	if ok {
		f.hits[key]++
	}
	f.mu.Unlock()

	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(resp.status)
	_, _ = w.Write(resp.body)
}

// ListPageJSON builds a list response body with count entries named
// "pokemon-<id>" starting at firstID.
func ListPageJSON(baseURL string, firstID, count int) []byte {
	type item struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	results := make([]item, 0, count)
	for id := firstID; id < firstID+count; id++ {
		results = append(results, item{
			Name: fmt.Sprintf("pokemon-%d", id),
			URL:  fmt.Sprintf("%spokemon/%d/", baseURL, id),
		})
	}
	body, _ := json.Marshal(map[string]any{
		"count":   firstID + count,
		"results": results,
	})
	return body
}

// DetailsJSON builds a minimal details body for id and name.
func DetailsJSON(id int, name string) []byte {
	body, _ := json.Marshal(map[string]any{
		"id":     id,
		"name":   name,
		"height": 10,
		"weight": 100,
		"types":  []map[string]any{{"slot": 1, "type": map[string]string{"name": "normal"}}},
		"sprites": map[string]any{
			"front_default": fmt.Sprintf("https://img.example/%d.png", id),
		},
		"stats": []map[string]any{{"base_stat": 50, "effort": 0, "stat": map[string]string{"name": "hp"}}},
	})
	return body
}
