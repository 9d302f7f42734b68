package storage

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	goerrors "github.com/goliatone/go-errors"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// DefaultDSN is a database file in the working directory.
	DefaultDSN = "file:pokedex.db?cache=shared&_busy_timeout=5000"
)

// Options selects and configures the database.
type Options struct {
	Driver string
	DSN    string
	Logger *log.Logger
}

// Store is the local persistent cache of the catalog.
type Store struct {
	db     *bun.DB
	logger *log.Logger
}

// Open connects to the configured database and creates the tables.
func Open(ctx context.Context, opts Options) (*Store, error) {
	driver := strings.ToLower(strings.TrimSpace(opts.Driver))
	if driver == "" {
		driver = DriverSQLite
	}
	dsn := opts.DSN
	if dsn == "" && driver == DriverSQLite {
		dsn = DefaultDSN
	}

	var db *bun.DB
	switch driver {
	case DriverSQLite:
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "open sqlite database")
		}
		// sqlite serialises writers, a single connection avoids SQLITE_BUSY.
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case DriverPostgres:
		if dsn == "" {
			return nil, goerrors.New("postgres driver requires a database url", goerrors.CategoryBadInput).
				WithTextCode("MISSING_DSN")
		}
		sqldb, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "open postgres database")
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		return nil, goerrors.New("unsupported database driver "+driver, goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"driver": driver})
	}

	store := New(db, opts.Logger)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "connect to database")
	}
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an open bun database. Queries are logged at debug level.
func New(db *bun.DB, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	db.AddQueryHook(&queryLogger{logger: logger})
	return &Store{db: db, logger: logger}
}

// Migrate creates the tables that do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	models := []any{(*PokemonEntity)(nil), (*ListWindowEntity)(nil), (*PokemonDetailsEntity)(nil)}
	for _, model := range models {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "create table")
		}
	}
	return nil
}

// DB exposes the underlying database.
func (s *Store) DB() *bun.DB {
	return s.db
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertAll upserts list entries.
func (s *Store) InsertAll(ctx context.Context, entities []PokemonEntity) error {
	return insertEntities(ctx, s.db, entities)
}

// InsertPage upserts the entries of one remote page and records the window
// as fetched, in one transaction.
func (s *Store) InsertPage(ctx context.Context, limit, offset int, entities []PokemonEntity) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := insertEntities(ctx, tx, entities); err != nil {
			return err
		}
		window := &ListWindowEntity{Limit: limit, Offset: offset}
		_, err := tx.NewInsert().
			Model(window).
			On("CONFLICT (page_limit, page_offset) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "record list window").
				WithMetadata(map[string]any{"limit": limit, "offset": offset})
		}
		return nil
	})
}

func insertEntities(ctx context.Context, db bun.IDB, entities []PokemonEntity) error {
	if len(entities) == 0 {
		return nil
	}
	_, err := db.NewInsert().
		Model(&entities).
		On("CONFLICT (id) DO UPDATE").
		Set("position = EXCLUDED.position").
		Set("name = EXCLUDED.name").
		Set("image_url = EXCLUDED.image_url").
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "insert pokemon")
	}
	return nil
}

// ListPokemon returns the entries whose position falls in
// [offset, offset+limit), ordered by position. The bool reports whether that
// exact window was stored by InsertPage.
func (s *Store) ListPokemon(ctx context.Context, limit, offset int) ([]PokemonEntity, bool, error) {
	fetched, err := s.db.NewSelect().
		Model((*ListWindowEntity)(nil)).
		Where("lw.page_limit = ?", limit).
		Where("lw.page_offset = ?", offset).
		Exists(ctx)
	if err != nil {
		return nil, false, goerrors.Wrap(err, goerrors.CategoryInternal, "lookup list window")
	}

	var out []PokemonEntity
	err = s.db.NewSelect().
		Model(&out).
		Where("p.position >= ?", offset).
		Where("p.position < ?", offset+limit).
		Order("p.position ASC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, false, goerrors.Wrap(err, goerrors.CategoryInternal, "list pokemon")
	}
	return out, fetched, nil
}

// Count returns the number of list entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.db.NewSelect().Model((*PokemonEntity)(nil)).Count(ctx)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "count pokemon")
	}
	return n, nil
}

// ClearAll removes every list entry and forgets the fetched windows.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := clearTable(ctx, tx, (*PokemonEntity)(nil)); err != nil {
			return err
		}
		return clearTable(ctx, tx, (*ListWindowEntity)(nil))
	})
}

// InsertDetails upserts a details record.
func (s *Store) InsertDetails(ctx context.Context, entity PokemonDetailsEntity) error {
	if entity.TypesJSON == "" {
		entity.TypesJSON = "[]"
	}
	if entity.StatsJSON == "" {
		entity.StatsJSON = "[]"
	}
	_, err := s.db.NewInsert().
		Model(&entity).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("image_url = EXCLUDED.image_url").
		Set("height = EXCLUDED.height").
		Set("weight = EXCLUDED.weight").
		Set("types_json = EXCLUDED.types_json").
		Set("stats_json = EXCLUDED.stats_json").
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "insert pokemon details").
			WithMetadata(map[string]any{"id": entity.ID})
	}
	return nil
}

// GetDetailsByID looks up a details record. The bool reports whether it exists.
func (s *Store) GetDetailsByID(ctx context.Context, id int) (PokemonDetailsEntity, bool, error) {
	return s.getDetails(ctx, "pd.id = ?", id)
}

// GetDetailsByName looks up a details record by its lower-cased name.
func (s *Store) GetDetailsByName(ctx context.Context, name string) (PokemonDetailsEntity, bool, error) {
	return s.getDetails(ctx, "LOWER(pd.name) = ?", strings.ToLower(name))
}

func (s *Store) getDetails(ctx context.Context, where string, arg any) (PokemonDetailsEntity, bool, error) {
	var out PokemonDetailsEntity
	err := s.db.NewSelect().Model(&out).Where(where, arg).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return PokemonDetailsEntity{}, false, nil
	}
	if err != nil {
		return PokemonDetailsEntity{}, false, goerrors.Wrap(err, goerrors.CategoryInternal, "get pokemon details")
	}
	return out, true, nil
}

// ClearAllDetails removes every details record.
func (s *Store) ClearAllDetails(ctx context.Context) error {
	return clearTable(ctx, s.db, (*PokemonDetailsEntity)(nil))
}

// ClearEverything empties every table in one transaction.
func (s *Store) ClearEverything(ctx context.Context) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range []any{(*PokemonEntity)(nil), (*ListWindowEntity)(nil), (*PokemonDetailsEntity)(nil)} {
			if err := clearTable(ctx, tx, model); err != nil {
				return err
			}
		}
		return nil
	})
}

func clearTable(ctx context.Context, db bun.IDB, model any) error {
	if _, err := db.NewDelete().Model(model).Where("1 = 1").Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "clear table")
	}
	return nil
}

type queryLogger struct {
	logger *log.Logger
}

func (h *queryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *queryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	keyvals := []any{"op", event.Operation(), "duration", time.Since(event.StartTime)}
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		h.logger.Warn("query failed", append(keyvals, "query", event.Query, "err", event.Err)...)
		return
	}
	h.logger.Debug("query", append(keyvals, "query", event.Query)...)
}
