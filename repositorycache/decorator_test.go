package repositorycache

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-pokedex/cache"
	"github.com/goliatone/go-pokedex/pokedex"
)

// mockRepository tracks method calls for testing
type mockRepository struct {
	mu            sync.Mutex
	calls         []string
	listResult    []pokedex.Pokemon
	listError     error
	detailsResult pokedex.PokemonDetails
	detailsError  error
	refreshError  error
}

func (m *mockRepository) recordCall(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, method)
}

func (m *mockRepository) getCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockRepository) GetPokemonList(ctx context.Context, limit, offset int) ([]pokedex.Pokemon, error) {
	m.recordCall(fmt.Sprintf("GetPokemonList(%d,%d)", limit, offset))
	return m.listResult, m.listError
}

func (m *mockRepository) GetPokemonDetails(ctx context.Context, nameOrID string) (pokedex.PokemonDetails, error) {
	m.recordCall("GetPokemonDetails(" + nameOrID + ")")
	return m.detailsResult, m.detailsError
}

func (m *mockRepository) RefreshPokemonList(ctx context.Context) error {
	m.recordCall("RefreshPokemonList")
	return m.refreshError
}

// mockCacheService tracks cache operations and stores successful fetches
type mockCacheService struct {
	mu        sync.Mutex
	calls     []string
	storage   map[string]any
	errors    map[string]error
	deleteErr error
}

func newMockCacheService() *mockCacheService {
	return &mockCacheService{
		storage: make(map[string]any),
		errors:  make(map[string]error),
	}
}

func (m *mockCacheService) recordCall(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, method)
}

func (m *mockCacheService) getCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockCacheService) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	m.recordCall("GetOrFetch:" + key)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err, exists := m.errors[key]; exists {
		return nil, err
	}
	if value, exists := m.storage[key]; exists {
		return value, nil
	}

	result := reflect.ValueOf(fetchFn).Call([]reflect.Value{reflect.ValueOf(ctx)})
	if !result[1].IsNil() {
		return nil, result[1].Interface().(error)
	}

	value := result[0].Interface()
	m.storage[key] = value
	return value, nil
}

func (m *mockCacheService) Delete(ctx context.Context, key string) error {
	m.recordCall("Delete:" + key)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.storage, key)
	return m.deleteErr
}

func (m *mockCacheService) DeleteByPrefix(ctx context.Context, prefix string) error {
	m.recordCall("DeleteByPrefix:" + prefix)
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.storage {
		if strings.HasPrefix(key, prefix) {
			delete(m.storage, key)
		}
	}
	return m.deleteErr
}

func (m *mockCacheService) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.storage)
}

func newTestRepository(base *mockRepository, svc *mockCacheService) *CachedRepository {
	return New(base, svc, cache.NewNamespacedKeySerializer("pokedex"))
}

func TestCachedRepository_GetPokemonList(t *testing.T) {
	ctx := context.Background()
	base := &mockRepository{listResult: []pokedex.Pokemon{{ID: 1, Name: "Bulbasaur"}}}
	svc := newMockCacheService()
	repo := newTestRepository(base, svc)

	for i := 0; i < 3; i++ {
		got, err := repo.GetPokemonList(ctx, 20, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].Name != "Bulbasaur" {
			t.Fatalf("unexpected page %+v", got)
		}
	}

	if calls := base.getCalls(); !reflect.DeepEqual(calls, []string{"GetPokemonList(20,0)"}) {
		t.Errorf("expected a single base call, got %v", calls)
	}

	if _, err := repo.GetPokemonList(ctx, 20, 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(base.getCalls()) != 2 {
		t.Errorf("expected another page to reach the base repository")
	}

	cacheCalls := svc.getCalls()
	if cacheCalls[0] != "GetOrFetch:pokedex::get_pokemon_list::20::0" {
		t.Errorf("unexpected key %q", cacheCalls[0])
	}
}

func TestCachedRepository_GetPokemonDetails(t *testing.T) {
	ctx := context.Background()
	base := &mockRepository{detailsResult: pokedex.PokemonDetails{ID: 25, Name: "Pikachu"}}
	svc := newMockCacheService()
	repo := newTestRepository(base, svc)

	for _, key := range []string{"pikachu", " Pikachu", "PIKACHU "} {
		got, err := repo.GetPokemonDetails(ctx, key)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != 25 {
			t.Fatalf("unexpected details %+v", got)
		}
	}

	if calls := base.getCalls(); !reflect.DeepEqual(calls, []string{"GetPokemonDetails(pikachu)"}) {
		t.Errorf("expected one normalized base call, got %v", calls)
	}
	if svc.getCalls()[0] != "GetOrFetch:pokedex::get_pokemon_details::pikachu" {
		t.Errorf("unexpected key %q", svc.getCalls()[0])
	}
}

func TestCachedRepository_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	baseErr := errors.New("remote down")
	base := &mockRepository{listError: baseErr}
	svc := newMockCacheService()
	repo := newTestRepository(base, svc)

	for i := 0; i < 2; i++ {
		if _, err := repo.GetPokemonList(ctx, 20, 0); !errors.Is(err, baseErr) {
			t.Fatalf("expected %v, got %v", baseErr, err)
		}
	}
	if len(base.getCalls()) != 2 {
		t.Errorf("expected the base to be called on every failed read, got %v", base.getCalls())
	}
	if svc.len() != 0 {
		t.Errorf("expected nothing stored, got %d entries", svc.len())
	}
}

func TestCachedRepository_CacheErrorPropagates(t *testing.T) {
	base := &mockRepository{}
	svc := newMockCacheService()
	cacheErr := errors.New("cache unavailable")
	svc.errors["pokedex::get_pokemon_list::20::0"] = cacheErr
	repo := newTestRepository(base, svc)

	if _, err := repo.GetPokemonList(context.Background(), 20, 0); !errors.Is(err, cacheErr) {
		t.Errorf("expected %v, got %v", cacheErr, err)
	}
	if len(base.getCalls()) != 0 {
		t.Errorf("expected base not to be called")
	}
}

func TestCachedRepository_RefreshPokemonList(t *testing.T) {
	ctx := context.Background()

	t.Run("success drops list and details entries by prefix", func(t *testing.T) {
		base := &mockRepository{
			listResult:    []pokedex.Pokemon{{ID: 1}},
			detailsResult: pokedex.PokemonDetails{ID: 1},
		}
		svc := newMockCacheService()
		svc.storage["other::entry"] = "kept"
		repo := newTestRepository(base, svc)

		repo.GetPokemonList(ctx, 20, 0)
		repo.GetPokemonList(ctx, 20, 20)
		repo.GetPokemonDetails(ctx, "1")

		if err := repo.RefreshPokemonList(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if svc.len() != 1 {
			t.Errorf("expected only the foreign entry to survive, got %d entries", svc.len())
		}

		var prefixes []string
		for _, call := range svc.getCalls() {
			if strings.HasPrefix(call, "DeleteByPrefix:") {
				prefixes = append(prefixes, strings.TrimPrefix(call, "DeleteByPrefix:"))
			}
		}
		wantPrefixes := []string{"pokedex::get_pokemon_list::", "pokedex::get_pokemon_details::"}
		if !reflect.DeepEqual(prefixes, wantPrefixes) {
			t.Errorf("expected prefixes %v, got %v", wantPrefixes, prefixes)
		}

		repo.GetPokemonList(ctx, 20, 0)
		want := []string{"GetPokemonList(20,0)", "GetPokemonList(20,20)", "GetPokemonDetails(1)", "RefreshPokemonList", "GetPokemonList(20,0)"}
		if calls := base.getCalls(); !reflect.DeepEqual(calls, want) {
			t.Errorf("expected %v, got %v", want, calls)
		}
	})

	t.Run("failure keeps cached entries", func(t *testing.T) {
		refreshErr := errors.New("database locked")
		base := &mockRepository{listResult: []pokedex.Pokemon{{ID: 1}}, refreshError: refreshErr}
		svc := newMockCacheService()
		repo := newTestRepository(base, svc)

		repo.GetPokemonList(ctx, 20, 0)
		if err := repo.RefreshPokemonList(ctx); !errors.Is(err, refreshErr) {
			t.Fatalf("expected %v, got %v", refreshErr, err)
		}
		if svc.len() != 1 {
			t.Errorf("expected cached entry to survive a failed refresh")
		}
	})

	t.Run("invalidation failures do not fail the refresh", func(t *testing.T) {
		base := &mockRepository{listResult: []pokedex.Pokemon{{ID: 1}}}
		svc := newMockCacheService()
		svc.deleteErr = errors.New("delete failed")
		repo := newTestRepository(base, svc)

		repo.GetPokemonList(ctx, 20, 0)
		if err := repo.RefreshPokemonList(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestCachedRepository_WithSturdyc(t *testing.T) {
	ctx := context.Background()
	svc, err := cache.NewCacheService(cache.DefaultConfig())
	if err != nil {
		t.Fatalf("failed to build cache service: %v", err)
	}
	base := &mockRepository{listResult: []pokedex.Pokemon{{ID: 4, Name: "Charmander"}}}
	repo := New(base, svc, cache.DefaultConfig().KeySerializer())

	for i := 0; i < 2; i++ {
		got, err := repo.GetPokemonList(ctx, 20, 0)
		if err != nil || len(got) != 1 {
			t.Fatalf("unexpected result %+v (%v)", got, err)
		}
	}
	if len(base.getCalls()) != 1 {
		t.Errorf("expected one base call, got %v", base.getCalls())
	}

	if err := repo.RefreshPokemonList(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo.GetPokemonList(ctx, 20, 0)
	if len(base.getCalls()) != 3 {
		t.Errorf("expected a fresh read after refresh, got %v", base.getCalls())
	}
}

// blockingRepository blocks its first list call until ctx is done and answers
// every later call immediately.
type blockingRepository struct {
	mockRepository
	started chan struct{}
	once    sync.Once
}

func (b *blockingRepository) GetPokemonList(ctx context.Context, limit, offset int) ([]pokedex.Pokemon, error) {
	first := false
	b.once.Do(func() { first = true })
	b.recordCall(fmt.Sprintf("GetPokemonList(%d,%d)", limit, offset))
	if first {
		close(b.started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return b.listResult, nil
}

func newSturdycService(t *testing.T) cache.CacheService {
	t.Helper()
	svc, err := cache.NewCacheService(cache.DefaultConfig())
	if err != nil {
		t.Fatalf("failed to build cache service: %v", err)
	}
	return svc
}

func TestCachedRepository_CancelledSharedFetch(t *testing.T) {
	base := &blockingRepository{
		mockRepository: mockRepository{listResult: []pokedex.Pokemon{{ID: 1, Name: "Bulbasaur"}}},
		started:        make(chan struct{}),
	}
	repo := New(base, newSturdycService(t), cache.NewNamespacedKeySerializer("pokedex"))

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := repo.GetPokemonList(leaderCtx, 20, 0)
		leaderErr <- err
	}()
	<-base.started

	type result struct {
		page []pokedex.Pokemon
		err  error
	}
	joined := make(chan result, 1)
	go func() {
		page, err := repo.GetPokemonList(context.Background(), 20, 0)
		joined <- result{page, err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancelLeader()

	if err := <-leaderErr; !errors.Is(err, context.Canceled) {
		t.Errorf("expected the cancelled caller to see context.Canceled, got %v", err)
	}

	select {
	case got := <-joined:
		if got.err != nil {
			t.Fatalf("expected the live caller to succeed, got %v", got.err)
		}
		if len(got.page) != 1 || got.page[0].Name != "Bulbasaur" {
			t.Errorf("unexpected page %+v", got.page)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("live caller never returned")
	}

	if calls := base.getCalls(); len(calls) != 2 {
		t.Errorf("expected the live caller to fetch again, got %v", calls)
	}
}

func TestCachedRepository_CancelledCallerDoesNotRetry(t *testing.T) {
	base := &blockingRepository{started: make(chan struct{})}
	repo := New(base, newSturdycService(t), cache.NewNamespacedKeySerializer("pokedex"))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-base.started
		cancel()
	}()

	if _, err := repo.GetPokemonList(ctx, 20, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls := base.getCalls(); len(calls) != 1 {
		t.Errorf("expected a single base call, got %v", calls)
	}
}
