// Package testutil holds fixtures shared by the catalog package tests.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/reorder"
	"github.com/roach88/catalog/internal/store"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OpenStore opens a fresh catalog file in a temporary directory. The store
// is closed when the test ends.
func OpenStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(path, store.WithLogger(DiscardLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// Update runs fn in a committed transaction and fails the test on error.
func Update(t *testing.T, s *store.Store, fn func(ctx context.Context, tx *store.Tx) error) {
	t.Helper()
	require.NoError(t, s.Update(context.Background(), fn))
}

// Read runs fn in a rolled-back transaction and fails the test on error.
func Read(t *testing.T, s *store.Store, fn func(ctx context.Context, tx *store.Tx) error) {
	t.Helper()
	require.NoError(t, s.Read(context.Background(), fn))
}

// Names returns the names of scope in position order.
func Names(t *testing.T, s *store.Store, scope func(tx *store.Tx) reorder.Scope) []string {
	t.Helper()
	var names []string
	Read(t, s, func(ctx context.Context, tx *store.Tx) error {
		siblings, err := reorder.Siblings(ctx, tx, scope(tx))
		for _, sib := range siblings {
			names = append(names, sib.Name)
		}
		return err
	})
	return names
}

// Positions returns name→position for scope.
func Positions(t *testing.T, s *store.Store, scope func(tx *store.Tx) reorder.Scope) map[string]int {
	t.Helper()
	out := map[string]int{}
	Read(t, s, func(ctx context.Context, tx *store.Tx) error {
		siblings, err := reorder.Siblings(ctx, tx, scope(tx))
		for _, sib := range siblings {
			out[sib.Name] = sib.Position
		}
		return err
	})
	return out
}

// RequireContiguous fails the test unless every sibling set in the file has
// positions {0..n-1}.
func RequireContiguous(t *testing.T, s *store.Store) {
	t.Helper()
	Read(t, s, func(ctx context.Context, tx *store.Tx) error {
		violations, err := reorder.VerifyAll(ctx, tx, tx.Registry())
		require.NoError(t, err)
		require.Empty(t, violations)
		return nil
	})
}

// Tool inserts studio "studio", game key.Game, and the map, tab and tool of
// key, skipping levels that already exist.
func Tool(ctx context.Context, tx *store.Tx, key catalog.ToolKey) error {
	steps := []struct {
		exists string
		args   []any
		insert func() error
	}{
		{"SELECT EXISTS (SELECT 1 FROM studios WHERE name = ?)", []any{"studio"}, func() error {
			_, err := tx.InsertStudio(ctx, catalog.Studio{StudioKey: catalog.StudioKey{Name: "studio"}})
			return err
		}},
		{"SELECT EXISTS (SELECT 1 FROM games WHERE name = ?)", []any{key.Game}, func() error {
			_, err := tx.InsertGame(ctx, catalog.Game{GameKey: catalog.GameKey{Name: key.Game}, Studio: "studio"})
			return err
		}},
		{"SELECT EXISTS (SELECT 1 FROM maps WHERE name = ? AND game = ?)", key.Parent().Parent().Values(), func() error {
			_, err := tx.InsertMap(ctx, catalog.Map{MapKey: key.Parent().Parent()})
			return err
		}},
		{"SELECT EXISTS (SELECT 1 FROM tabs WHERE name = ? AND map = ? AND game = ?)", key.Parent().Values(), func() error {
			_, err := tx.InsertTab(ctx, catalog.Tab{TabKey: key.Parent()})
			return err
		}},
		{"SELECT EXISTS (SELECT 1 FROM tools WHERE name = ? AND tab = ? AND map = ? AND game = ?)", key.Values(), func() error {
			_, err := tx.InsertTool(ctx, catalog.Tool{ToolKey: key})
			return err
		}},
	}
	for _, step := range steps {
		var exists bool
		if err := tx.QueryRowContext(ctx, step.exists, step.args...).Scan(&exists); err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := step.insert(); err != nil {
			return err
		}
	}
	return nil
}

// Galleries inserts first-level galleries named names under tool.
func Galleries(ctx context.Context, tx *store.Tx, tool catalog.ToolKey, names ...string) error {
	for _, n := range names {
		if _, err := tx.InsertGallery(ctx, catalog.Gallery{GalleryKey: tool.Gallery(n)}); err != nil {
			return err
		}
	}
	return nil
}

// Images inserts first-level images named names into gallery.
func Images(ctx context.Context, tx *store.Tx, gallery catalog.GalleryKey, names ...string) error {
	for _, n := range names {
		if _, err := tx.InsertMedia(ctx, catalog.Media{MediaKey: gallery.Media(n), Type: catalog.MediaImage}); err != nil {
			return err
		}
	}
	return nil
}

// DefaultTool is the tool most tests build on.
var DefaultTool = catalog.ToolKey{Game: "game", Map: "map", Tab: "A", Name: "tool"}
