package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/config"
	"github.com/roach88/catalog/internal/store"
)

// session is the open catalog of one command invocation.
type session struct {
	cfg       *config.Config
	store     *store.Store
	logger    *slog.Logger
	formatter *OutputFormatter
}

// newFormatter builds the formatter for cmd from the global flags.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// openSession loads configuration, applies the global flags on top and
// opens the catalog file, creating it and its directory when missing.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	formatter := newFormatter(opts, cmd)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		_ = formatter.Error(ErrorCode(err), err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.DBPath = opts.Database
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	logger := config.NewLogger(cfg, cmd.ErrOrStderr())

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			err = catalog.NewError(catalog.KindIO, "open store", "failed to create database directory", err)
			_ = formatter.Error(ErrorCode(err), err.Error(), nil)
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
	}

	formatter.VerboseLog("opening %s", cfg.DBPath)
	st, err := store.Open(cfg.DBPath,
		store.WithLogger(logger),
		store.WithBusyTimeout(cfg.BusyTimeout()),
	)
	if err != nil {
		_ = formatter.Error(ErrorCode(err), err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	return &session{cfg: cfg, store: st, logger: logger, formatter: formatter}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

// update runs fn in a committed transaction.
func (s *session) update(cmd *cobra.Command, fn func(ctx context.Context, tx *store.Tx) error) error {
	return s.store.Update(commandContext(cmd), fn)
}

// read runs fn in a transaction that is always rolled back.
func (s *session) read(cmd *cobra.Command, fn func(ctx context.Context, tx *store.Tx) error) error {
	return s.store.Read(commandContext(cmd), fn)
}

// fail reports err through the formatter and returns the matching exit
// error.
func (s *session) fail(message string, err error) error {
	_ = s.formatter.Error(ErrorCode(err), err.Error(), nil)
	return wrapCatalogError(message, err)
}

// usageError reports a bad argument before any database work.
func usageError(opts *RootOptions, cmd *cobra.Command, err error) error {
	_ = newFormatter(opts, cmd).Error(ErrorCode(err), err.Error(), nil)
	return WrapExitError(ExitCommandError, "invalid arguments", err)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
