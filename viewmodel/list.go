package viewmodel

import (
	"context"
	"io"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-pokedex/analytics"
	"github.com/goliatone/go-pokedex/pokedex"
)

const (
	DefaultPageSize = 20
	eventBuffer     = 16

	ScreenPokedex = "PokedexScreen"

	EventSearchQuery       = "search_query"
	EventPokemonSelected   = "pokemon_selected"
	EventFetchPokemonList  = "fetch_pokemon_list"
	EventPokemonListLoaded = "pokemon_list_loaded"
	EventPokemonListError  = "pokemon_list_error"
	EventListRefreshed     = "list_refreshed"
	EventListRefreshError  = "list_refresh_error"
)

// ListSource is the use case surface the list screen needs.
type ListSource interface {
	GetPokemonList(ctx context.Context, limit, offset int) ([]pokedex.Pokemon, error)
	RefreshPokemonList(ctx context.Context) error
}

// ListOption configures a ListModel.
type ListOption func(*ListModel)

// WithPageSize overrides DefaultPageSize. Values below 1 are ignored.
func WithPageSize(size int) ListOption {
	return func(m *ListModel) {
		if size > 0 {
			m.pageSize = size
		}
	}
}

// WithListLogger sets the logger used for dropped events.
func WithListLogger(logger *log.Logger) ListOption {
	return func(m *ListModel) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// ListModel drives the paginated list screen.
type ListModel struct {
	source   ListSource
	tracker  analytics.Tracker
	logger   *log.Logger
	pageSize int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	state       *publisher[ListState]
	events      chan Snackbar
	items       []pokedex.Pokemon
	page        int
	canLoadMore bool
	query       string
	refreshing  bool
	fetching    bool
	fetchCancel context.CancelFunc
	generation  uint64
	closed      bool
}

// NewListModel returns a model in the initial loading state. Nothing is
// fetched until Start is called.
func NewListModel(source ListSource, tracker analytics.Tracker, opts ...ListOption) *ListModel {
	if tracker == nil {
		tracker = analytics.Nop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &ListModel{
		source:      source,
		tracker:     tracker,
		logger:      log.New(io.Discard),
		pageSize:    DefaultPageSize,
		ctx:         ctx,
		cancel:      cancel,
		state:       newPublisher[ListState](ListLoading{InitialLoading: true}),
		events:      make(chan Snackbar, eventBuffer),
		canLoadMore: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start tracks the screen view and loads the first page.
func (m *ListModel) Start() {
	m.tracker.TrackScreen(ScreenPokedex, nil)
	m.FetchPokemonList(false)
}

// State returns the latest published state.
func (m *ListModel) State() ListState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.current
}

// Updates delivers state changes, keeping only the newest unread value. It is
// closed by Close.
func (m *ListModel) Updates() <-chan ListState {
	return m.state.updates
}

// Events delivers snackbar notifications. It is closed by Close.
func (m *ListModel) Events() <-chan Snackbar {
	return m.events
}

// Refreshing reports whether a RefreshList call is running.
func (m *ListModel) Refreshing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshing
}

// FetchPokemonList loads the next page. A forced fetch starts over from the
// first page and cancels the fetch in flight; otherwise the call is ignored
// while a fetch is running.
func (m *ListModel) FetchPokemonList(forceRefresh bool) {
	m.tracker.TrackEvent(EventFetchPokemonList, analytics.Params{
		"forceRefresh": strconv.FormatBool(forceRefresh),
	})

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if forceRefresh {
		if m.fetchCancel != nil {
			m.fetchCancel()
		}
		m.page = 0
		m.items = nil
		m.canLoadMore = true
		m.state.set(ListLoading{InitialLoading: !m.refreshing})
	} else if m.fetching {
		m.mu.Unlock()
		return
	}

	m.generation++
	gen := m.generation
	ctx, cancel := context.WithCancel(m.ctx)
	m.fetching = true
	m.fetchCancel = cancel
	page := m.page
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer cancel()

		list, err := m.source.GetPokemonList(ctx, m.pageSize, page*m.pageSize)
		if ctx.Err() != nil {
			m.discard(gen)
			return
		}
		if err != nil {
			m.handleFetchFailure(gen, err)
			return
		}
		m.handleFetchSuccess(gen, page, list)
	}()
}

// LoadMore fetches the next page when the last one was full.
func (m *ListModel) LoadMore() {
	m.mu.Lock()
	canLoadMore := m.canLoadMore
	m.mu.Unlock()
	if canLoadMore {
		m.FetchPokemonList(false)
	}
}

// RefreshList clears the cached catalog and reloads from the first page.
func (m *ListModel) RefreshList() {
	m.mu.Lock()
	if m.closed || m.refreshing {
		m.mu.Unlock()
		return
	}
	m.refreshing = true
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer func() {
			m.mu.Lock()
			m.refreshing = false
			m.mu.Unlock()
		}()

		err := m.source.RefreshPokemonList(m.ctx)
		if m.ctx.Err() != nil {
			return
		}
		if err != nil {
			msg := ErrorMessage(err, true)
			m.tracker.TrackEvent(EventListRefreshError, analytics.Params{"error": msg})
			m.mu.Lock()
			m.emit(Snackbar{Message: msg})
			m.mu.Unlock()
			return
		}
		m.tracker.TrackEvent(EventListRefreshed, nil)
		m.FetchPokemonList(true)
	}()
}

// OnSearchQueryChanged filters the loaded items by name or exact id.
func (m *ListModel) OnSearchQueryChanged(query string) {
	m.tracker.TrackEvent(EventSearchQuery, analytics.Params{"query": query})

	m.mu.Lock()
	defer m.mu.Unlock()
	m.query = query
	if len(m.items) > 0 {
		m.state.set(ListSuccess{
			Pokemon:     pokedex.Filter(m.items, query),
			CanLoadMore: m.canLoadMore,
		})
		return
	}
	if _, ok := m.state.current.(ListSuccess); ok {
		m.state.set(ListSuccess{Pokemon: []pokedex.Pokemon{}, CanLoadMore: false})
	}
}

// OnPokemonClick records a selection.
func (m *ListModel) OnPokemonClick(id int) {
	m.tracker.TrackEvent(EventPokemonSelected, analytics.Params{"pokemon_id": strconv.Itoa(id)})
}

// Wait blocks until every running fetch and refresh has finished.
func (m *ListModel) Wait() {
	m.wg.Wait()
}

// Close cancels running work, waits for it and closes the channels.
func (m *ListModel) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.cancel()
	m.mu.Unlock()

	m.wg.Wait()

	m.mu.Lock()
	m.state.close()
	close(m.events)
	m.mu.Unlock()
}

func (m *ListModel) discard(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen == m.generation {
		m.fetching = false
		m.fetchCancel = nil
	}
}

func (m *ListModel) handleFetchSuccess(gen uint64, page int, list []pokedex.Pokemon) {
	m.mu.Lock()
	if gen != m.generation || m.closed {
		m.mu.Unlock()
		return
	}
	m.fetching = false
	m.fetchCancel = nil
	m.canLoadMore = len(list) == m.pageSize
	m.items = append(m.items, list...)
	if len(list) > 0 {
		m.page++
	}
	m.state.set(ListSuccess{
		Pokemon:     pokedex.Filter(m.items, m.query),
		CanLoadMore: m.canLoadMore,
	})
	m.mu.Unlock()

	m.tracker.TrackEvent(EventPokemonListLoaded, analytics.Params{
		"page":        strconv.Itoa(page),
		"loadedCount": strconv.Itoa(len(list)),
	})
}

func (m *ListModel) handleFetchFailure(gen uint64, err error) {
	msg := ErrorMessage(err, false)

	m.mu.Lock()
	if gen != m.generation || m.closed {
		m.mu.Unlock()
		return
	}
	m.fetching = false
	m.fetchCancel = nil
	if len(m.items) == 0 {
		m.canLoadMore = false
		m.state.set(ListError{Message: msg})
	} else {
		m.canLoadMore = false
		m.emit(Snackbar{Message: msg})
		m.state.set(ListSuccess{
			Pokemon:     pokedex.Filter(m.items, m.query),
			CanLoadMore: false,
		})
	}
	m.mu.Unlock()

	m.tracker.TrackEvent(EventPokemonListError, analytics.Params{"error": msg})
}

// emit must be called with mu held.
func (m *ListModel) emit(ev Snackbar) {
	if m.closed {
		return
	}
	select {
	case m.events <- ev:
	default:
		m.logger.Debug("dropped snackbar", "message", ev.Message)
	}
}
