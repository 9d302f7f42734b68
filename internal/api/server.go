// Package api exposes the catalog over HTTP.
package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/goliatone/go-pokedex/pokedex"
)

const DefaultPageSize = 20

// Catalog is the use case surface served over HTTP. *pokedex.Service
// satisfies it.
type Catalog interface {
	GetPokemonList(ctx context.Context, limit, offset int) ([]pokedex.Pokemon, error)
	GetPokemonDetails(ctx context.Context, nameOrID string) (pokedex.PokemonDetails, error)
	RefreshPokemonList(ctx context.Context) error
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

type Options struct {
	Logger      *log.Logger
	CORSOrigins []string
	PageSize    int
	Health      HealthCheck
}

// Server holds the HTTP server dependencies.
type Server struct {
	catalog  Catalog
	logger   *log.Logger
	pageSize int
	health   HealthCheck
	router   chi.Router
}

// New creates the API server and registers its routes.
func New(catalog Catalog, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s := &Server{
		catalog:  catalog,
		logger:   logger.WithPrefix("http"),
		pageSize: pageSize,
		health:   opts.Health,
		router:   chi.NewRouter(),
	}

	s.setupMiddleware(origins)
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api/pokemon", func(r chi.Router) {
		r.Get("/", s.handleListPokemon)
		r.Post("/refresh", s.handleRefresh)
		r.Get("/{nameOrID}", s.handleGetPokemon)
	})

	s.router.Get("/healthz", s.handleHealth)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
