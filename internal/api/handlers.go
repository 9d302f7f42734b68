package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-pokedex/pokedex"
)

// ListResponse is the body of GET /api/pokemon.
type ListResponse struct {
	Pokemon     []pokedex.Pokemon `json:"pokemon"`
	Limit       int               `json:"limit"`
	Offset      int               `json:"offset"`
	CanLoadMore bool              `json:"can_load_more"`
}

func (s *Server) handleListPokemon(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", s.pageSize)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	list, err := s.catalog.GetPokemonList(r.Context(), limit, offset)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if list == nil {
		list = []pokedex.Pokemon{}
	}

	respondJSON(w, http.StatusOK, ListResponse{
		Pokemon:     list,
		Limit:       limit,
		Offset:      offset,
		CanLoadMore: len(list) == limit,
	})
}

func (s *Server) handleGetPokemon(w http.ResponseWriter, r *http.Request) {
	details, err := s.catalog.GetPokemonDetails(r.Context(), chi.URLParam(r, "nameOrID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, details)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.RefreshPokemonList(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.logger.Warn("health check failed", "err", err)
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryBadInput, key+" must be an integer").
			WithTextCode(pokedex.TextCodeInvalidArgument).
			WithMetadata(map[string]any{key: raw})
	}
	return v, nil
}
