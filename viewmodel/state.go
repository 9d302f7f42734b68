package viewmodel

import "github.com/goliatone/go-pokedex/pokedex"

// ListState is one of ListLoading, ListSuccess or ListError.
type ListState interface {
	listState()
}

type ListLoading struct {
	// InitialLoading is false when the load was started by a pull to refresh.
	InitialLoading bool
}

type ListSuccess struct {
	Pokemon     []pokedex.Pokemon
	CanLoadMore bool
}

type ListError struct {
	Message string
}

func (ListLoading) listState() {}
func (ListSuccess) listState() {}
func (ListError) listState()   {}

// DetailsState is one of DetailsLoading, DetailsSuccess or DetailsError.
type DetailsState interface {
	detailsState()
}

type DetailsLoading struct{}

type DetailsSuccess struct {
	Details pokedex.PokemonDetails
}

type DetailsError struct {
	Message string
}

func (DetailsLoading) detailsState() {}
func (DetailsSuccess) detailsState() {}
func (DetailsError) detailsState()   {}

// Snackbar is a transient message for the user.
type Snackbar struct {
	Message string
}

// publisher keeps the current state and a conflated copy on updates. The
// owning model's mutex guards every call.
type publisher[S any] struct {
	current S
	updates chan S
	closed  bool
}

func newPublisher[S any](initial S) *publisher[S] {
	p := &publisher[S]{
		current: initial,
		updates: make(chan S, 1),
	}
	p.updates <- initial
	return p
}

func (p *publisher[S]) set(state S) {
	if p.closed {
		return
	}
	p.current = state
	select {
	case <-p.updates:
	default:
	}
	p.updates <- state
}

func (p *publisher[S]) close() {
	if p.closed {
		return
	}
	p.closed = true
	close(p.updates)
}
