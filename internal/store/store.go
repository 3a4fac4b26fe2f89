package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/schema"
)

// DefaultBusyTimeout is how long a connection waits on a file lock held by
// another process before failing.
const DefaultBusyTimeout = 5 * time.Second

// Store is an open catalog file.
type Store struct {
	db       *sql.DB
	gate     *Gate
	registry *schema.Registry
	logger   *slog.Logger
	path     string
}

type options struct {
	gate        *Gate
	registry    *schema.Registry
	logger      *slog.Logger
	busyTimeout time.Duration
}

// Option configures Open.
type Option func(*options)

// WithGate shares a writer gate between stores. Stores opened without one get
// a private gate.
func WithGate(g *Gate) Option {
	return func(o *options) { o.gate = g }
}

// WithRegistry supplies the table registry. Defaults to schema.New().
func WithRegistry(r *schema.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithLogger sets the logger used for transaction and schema events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBusyTimeout overrides DefaultBusyTimeout.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) { o.busyTimeout = d }
}

// Open creates or opens the catalog file at path and brings its schema up to
// date inside one exclusive transaction.
//
// Every connection is configured with:
//   - foreign_keys=ON so cascading keys are enforced
//   - recursive_triggers=ON so trigger chains run to completion
//   - busy_timeout for lock contention with other processes
//
// and the file uses WAL journaling. Open is idempotent.
func Open(path string, opts ...Option) (*Store, error) {
	o := options{busyTimeout: DefaultBusyTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.gate == nil {
		o.gate = NewGate()
	}
	if o.registry == nil {
		o.registry = schema.New()
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if strings.TrimSpace(path) == "" {
		return nil, catalog.NewError(catalog.KindIO, "open store", "database path is required", nil)
	}

	db, err := sql.Open("sqlite3", dsn(path, o.busyTimeout))
	if err != nil {
		return nil, catalog.NewError(catalog.KindIO, "open store", "failed to open database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, catalog.NewError(catalog.KindIO, "open store", "failed to connect to database", err)
	}

	// SQLite allows one writer at a time; the gate serializes callers and a
	// single pooled connection keeps in-memory databases alive between calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, catalog.NewError(catalog.KindIO, "open store", "failed to apply pragmas", err)
	}

	s := &Store{
		db:       db,
		gate:     o.gate,
		registry: o.registry,
		logger:   o.logger,
		path:     path,
	}

	if err := s.applySchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// dsn appends the per-connection pragmas understood by go-sqlite3.
func dsn(path string, busyTimeout time.Duration) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_foreign_keys=on&_recursive_triggers=on&_busy_timeout=%d",
		path, sep, busyTimeout.Milliseconds())
}

// applyPragmas sets file-level configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema runs the schema migrations in one exclusive transaction. Any
// failure rolls back the whole schema creation.
func (s *Store) applySchema(ctx context.Context) error {
	err := s.WithTransaction(ctx, func(ctx context.Context, tx *Tx) (Outcome, error) {
		if err := schema.Apply(ctx, tx); err != nil {
			return Rollback, err
		}
		return Commit, nil
	})
	if err != nil {
		return catalog.NewError(catalog.KindSchema, "create schema", "schema creation rolled back", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Registry returns the table registry the store was opened with.
func (s *Store) Registry() *schema.Registry {
	return s.registry
}

// Gate returns the writer gate guarding this store.
func (s *Store) Gate() *Gate {
	return s.gate
}

// Logger returns the store's logger.
func (s *Store) Logger() *slog.Logger {
	return s.logger
}

// Path returns the path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
