package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/schema"
)

// Outcome tells WithTransaction how to finish a unit of work.
type Outcome int

const (
	// Commit makes the unit of work durable.
	Commit Outcome = iota
	// Rollback discards the unit of work without reporting an error.
	Rollback
)

func (o Outcome) String() string {
	if o == Commit {
		return "commit"
	}
	return "rollback"
}

// Tx is one exclusive transaction pinned to a single connection. It
// satisfies schema.Querier.
type Tx struct {
	conn     *sql.Conn
	id       string
	registry *schema.Registry
	logger   *slog.Logger
}

// ID returns the transaction's correlation id.
func (tx *Tx) ID() string { return tx.id }

// Registry returns the table registry of the owning store.
func (tx *Tx) Registry() *schema.Registry { return tx.registry }

// Logger returns the store logger tagged with the transaction id.
func (tx *Tx) Logger() *slog.Logger { return tx.logger }

// ExecContext runs a statement inside the transaction.
func (tx *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return tx.conn.ExecContext(ctx, query, args...)
}

// QueryContext runs a query inside the transaction.
func (tx *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return tx.conn.QueryContext(ctx, query, args...)
}

// QueryRowContext runs a single-row query inside the transaction.
func (tx *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return tx.conn.QueryRowContext(ctx, query, args...)
}

type txKey struct{}

// InTransaction reports whether ctx was handed out by WithTransaction.
func InTransaction(ctx context.Context) bool {
	return ctx.Value(txKey{}) != nil
}

// WithTransaction runs body inside BEGIN EXCLUSIVE TRANSACTION.
//
// The writer gate is held for the whole call. A Commit outcome issues COMMIT;
// a Rollback outcome, a returned error or a panic issues ROLLBACK, and the
// error or panic is passed on to the caller. Nesting is a broken contract:
// calling WithTransaction with a context obtained from an enclosing body
// panics with *catalog.InvariantError.
func (s *Store) WithTransaction(ctx context.Context, body func(ctx context.Context, tx *Tx) (Outcome, error)) error {
	if InTransaction(ctx) {
		panic(catalog.Invariantf(catalog.InvariantNestedTransaction,
			"transaction %v is already active on this context", ctx.Value(txKey{})))
	}

	if err := s.gate.Acquire(ctx); err != nil {
		return fmt.Errorf("acquire writer gate: %w", err)
	}
	defer s.gate.Release()

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return catalog.NewError(catalog.KindIO, "begin transaction", "failed to get connection", err)
	}
	defer conn.Close()

	id := uuid.Must(uuid.NewV7()).String()
	if _, err := conn.ExecContext(ctx, "BEGIN EXCLUSIVE TRANSACTION"); err != nil {
		return schema.Classify("begin transaction", err)
	}
	started := time.Now()
	s.logger.Debug("transaction begin", "tx", id)

	tx := &Tx{conn: conn, id: id, registry: s.registry, logger: s.logger.With("tx", id)}
	finished := false
	defer func() {
		if !finished {
			// body panicked
			s.rollback(conn, id, "panic")
		}
	}()

	outcome, bodyErr := body(context.WithValue(ctx, txKey{}, id), tx)
	finished = true

	if bodyErr != nil {
		s.rollback(conn, id, bodyErr.Error())
		return bodyErr
	}
	if outcome == Rollback {
		s.rollback(conn, id, "requested")
		return nil
	}

	if _, err := conn.ExecContext(context.WithoutCancel(ctx), "COMMIT"); err != nil {
		s.rollback(conn, id, err.Error())
		return schema.Classify("commit transaction", err)
	}
	s.logger.Debug("transaction commit", "tx", id, "elapsed", time.Since(started))
	return nil
}

func (s *Store) rollback(conn *sql.Conn, id, reason string) {
	if _, err := conn.ExecContext(context.Background(), "ROLLBACK"); err != nil {
		s.logger.Error("transaction rollback failed", "tx", id, "reason", reason, "error", err)
		return
	}
	s.logger.Debug("transaction rollback", "tx", id, "reason", reason)
}

// Read runs fn inside a transaction that always rolls back. Use it for reads
// that must observe one consistent snapshot across tables.
func (s *Store) Read(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	return s.WithTransaction(ctx, func(ctx context.Context, tx *Tx) (Outcome, error) {
		if err := fn(ctx, tx); err != nil {
			return Rollback, err
		}
		return Rollback, nil
	})
}

// Update runs fn inside a transaction that commits when fn returns nil.
func (s *Store) Update(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	return s.WithTransaction(ctx, func(ctx context.Context, tx *Tx) (Outcome, error) {
		if err := fn(ctx, tx); err != nil {
			return Rollback, err
		}
		return Commit, nil
	})
}
