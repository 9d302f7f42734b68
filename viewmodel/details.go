package viewmodel

import (
	"context"
	"strconv"
	"sync"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-pokedex/analytics"
	"github.com/goliatone/go-pokedex/pokedex"
)

const (
	ScreenPokemonDetails = "PokemonDetailsScreen"

	EventFetchPokemonDetails  = "fetch_pokemon_details"
	EventPokemonDetailsLoaded = "pokemon_details_loaded"
	EventPokemonDetailsError  = "pokemon_details_error"
)

// DetailsSource is the use case surface the details screen needs.
type DetailsSource interface {
	GetPokemonDetails(ctx context.Context, nameOrID string) (pokedex.PokemonDetails, error)
}

// DetailsModel drives the details screen of a single creature.
type DetailsModel struct {
	source    DetailsSource
	tracker   analytics.Tracker
	pokemonID int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	state       *publisher[DetailsState]
	fetchCancel context.CancelFunc
	generation  uint64
	closed      bool
}

// NewDetailsModel returns a model for pokemonID, which must be positive.
func NewDetailsModel(source DetailsSource, tracker analytics.Tracker, pokemonID int) (*DetailsModel, error) {
	if pokemonID <= 0 {
		return nil, goerrors.New("pokemon id must be positive", goerrors.CategoryBadInput).
			WithTextCode(pokedex.TextCodeInvalidArgument).
			WithMetadata(map[string]any{"pokemon_id": pokemonID})
	}
	if tracker == nil {
		tracker = analytics.Nop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &DetailsModel{
		source:    source,
		tracker:   tracker,
		pokemonID: pokemonID,
		ctx:       ctx,
		cancel:    cancel,
		state:     newPublisher[DetailsState](DetailsLoading{}),
	}, nil
}

// PokemonID returns the id the model was built for.
func (m *DetailsModel) PokemonID() int {
	return m.pokemonID
}

// Start tracks the screen view and fetches the details.
func (m *DetailsModel) Start() {
	m.tracker.TrackScreen(ScreenPokemonDetails, nil)
	m.tracker.TrackEvent(EventFetchPokemonDetails, m.params())
	m.FetchDetails()
}

func (m *DetailsModel) State() DetailsState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.current
}

func (m *DetailsModel) Updates() <-chan DetailsState {
	return m.state.updates
}

// FetchDetails publishes DetailsLoading and loads the record, replacing any
// fetch still running.
func (m *DetailsModel) FetchDetails() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if m.fetchCancel != nil {
		m.fetchCancel()
	}
	m.generation++
	gen := m.generation
	ctx, cancel := context.WithCancel(m.ctx)
	m.fetchCancel = cancel
	m.state.set(DetailsLoading{})
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer cancel()

		details, err := m.source.GetPokemonDetails(ctx, strconv.Itoa(m.pokemonID))
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			msg := ErrorMessage(err, false)
			if !m.publish(gen, DetailsError{Message: msg}) {
				return
			}
			params := m.params()
			params["error"] = msg
			m.tracker.TrackEvent(EventPokemonDetailsError, params)
			return
		}

		if m.publish(gen, DetailsSuccess{Details: details}) {
			m.tracker.TrackEvent(EventPokemonDetailsLoaded, analytics.Params{
				"pokemon_id": strconv.Itoa(details.ID),
			})
		}
	}()
}

func (m *DetailsModel) Wait() {
	m.wg.Wait()
}

// Close cancels the running fetch, waits for it and closes Updates.
func (m *DetailsModel) Close() {
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
	m.mu.Unlock()
}

func (m *DetailsModel) publish(gen uint64, state DetailsState) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation || m.closed {
		return false
	}
	m.fetchCancel = nil
	m.state.set(state)
	return true
}

func (m *DetailsModel) params() analytics.Params {
	return analytics.Params{"pokemon_id": strconv.Itoa(m.pokemonID)}
}
