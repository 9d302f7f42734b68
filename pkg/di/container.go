package di

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-pokedex/analytics"
	"github.com/goliatone/go-pokedex/cache"
	"github.com/goliatone/go-pokedex/internal/api"
	"github.com/goliatone/go-pokedex/internal/catalog"
	"github.com/goliatone/go-pokedex/internal/config"
	"github.com/goliatone/go-pokedex/internal/logging"
	"github.com/goliatone/go-pokedex/internal/pokeapi"
	"github.com/goliatone/go-pokedex/internal/storage"
	"github.com/goliatone/go-pokedex/pokedex"
	"github.com/goliatone/go-pokedex/repositorycache"
	"github.com/goliatone/go-pokedex/viewmodel"
)

// Tracker receives both product analytics and engineering diagnostics.
type Tracker interface {
	analytics.Tracker
	analytics.EngineeringTracker
}

// Option overrides a dependency the container would otherwise build.
type Option func(*Container)

// WithLogger replaces the logger built from the configuration.
func WithLogger(logger *log.Logger) Option {
	return func(c *Container) {
		c.logger = logger
	}
}

// WithTracker replaces the log backed tracker.
func WithTracker(tracker Tracker) Option {
	return func(c *Container) {
		c.tracker = tracker
	}
}

// WithTransport sets the round tripper of the remote client.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Container) {
		c.transport = rt
	}
}

// Container owns the application singletons: the persistent store, the
// remote client, the repository chain and the use case service.
type Container struct {
	config    *config.Config
	logger    *log.Logger
	tracker   Tracker
	transport http.RoundTripper

	store         *storage.Store
	remote        *pokeapi.Client
	catalog       *catalog.Repository
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	repository    pokedex.Repository
	service       *pokedex.Service
}

// NewContainer builds every dependency from cfg. The caller must Close the
// container to release the database.
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	c := &Container{config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
		if err != nil {
			return nil, err
		}
		c.logger = logger
	}
	if c.tracker == nil {
		c.tracker = analytics.NewLogTracker(c.logger)
	}

	store, err := storage.Open(ctx, storage.Options{
		Driver: cfg.DBDriver,
		DSN:    cfg.DatabaseURL,
		Logger: c.logger.WithPrefix("storage"),
	})
	if err != nil {
		return nil, err
	}
	c.store = store

	remote, err := pokeapi.NewClient(pokeapi.Config{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.HTTPTimeout,
		Transport: c.transport,
		Logger:    c.logger.WithPrefix("pokeapi"),
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	c.remote = remote

	c.catalog = catalog.New(remote, store, c.tracker)
	c.repository = c.catalog

	cacheCfg := cfg.CacheConfig()
	if cacheCfg.Enabled {
		svc, err := cache.NewCacheService(cacheCfg)
		if err != nil {
			store.Close()
			return nil, err
		}
		c.cacheService = svc
		c.keySerializer = cacheCfg.KeySerializer()
		c.repository = repositorycache.New(c.catalog, svc, c.keySerializer,
			repositorycache.WithLogger(c.logger.WithPrefix("cache")))
	}

	c.service = pokedex.NewService(c.repository)

	c.logger.Debug("container ready",
		"driver", cfg.DBDriver,
		"api", cfg.APIBaseURL,
		"memory_cache", cacheCfg.Enabled,
	)
	return c, nil
}

func (c *Container) Config() *config.Config {
	return c.config
}

func (c *Container) Logger() *log.Logger {
	return c.logger
}

func (c *Container) Tracker() Tracker {
	return c.tracker
}

func (c *Container) Store() *storage.Store {
	return c.store
}

// CacheService returns the memory layer, or nil when it is disabled.
func (c *Container) CacheService() cache.CacheService {
	return c.cacheService
}

// KeySerializer returns the memory layer key serializer, or nil when it is
// disabled.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Repository returns the outermost repository: the memory decorator when it
// is enabled, the catalog repository otherwise.
func (c *Container) Repository() pokedex.Repository {
	return c.repository
}

func (c *Container) Service() *pokedex.Service {
	return c.service
}

// Handler builds the HTTP API on top of the service.
func (c *Container) Handler() http.Handler {
	return api.New(c.service, api.Options{
		Logger:      c.logger,
		CORSOrigins: c.config.CORSOrigins,
		PageSize:    c.config.PageSize,
		Health: func(ctx context.Context) error {
			return c.store.DB().PingContext(ctx)
		},
	})
}

// NewListModel returns a list screen model backed by the service.
func (c *Container) NewListModel() *viewmodel.ListModel {
	return viewmodel.NewListModel(c.service, c.tracker,
		viewmodel.WithPageSize(c.config.PageSize),
		viewmodel.WithListLogger(c.logger.WithPrefix("list")),
	)
}

// NewDetailsModel returns a details screen model for pokemonID.
func (c *Container) NewDetailsModel(pokemonID int) (*viewmodel.DetailsModel, error) {
	return viewmodel.NewDetailsModel(c.service, c.tracker, pokemonID)
}

// Close releases the database.
func (c *Container) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}
