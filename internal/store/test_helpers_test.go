package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/schema"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testTool = catalog.ToolKey{Game: "game", Map: "map", Tab: "tab", Name: "tool"}

// createTestTool inserts the studio → tool chain of testTool.
func createTestTool(t *testing.T, s *Store) {
	t.Helper()
	mustUpdate(t, s, func(ctx context.Context, tx *Tx) error {
		if _, err := tx.InsertStudio(ctx, catalog.Studio{StudioKey: catalog.StudioKey{Name: "studio"}}); err != nil {
			return err
		}
		if _, err := tx.InsertGame(ctx, catalog.Game{GameKey: catalog.GameKey{Name: "game"}, Studio: "studio"}); err != nil {
			return err
		}
		if _, err := tx.InsertMap(ctx, catalog.Map{MapKey: testTool.Parent().Parent()}); err != nil {
			return err
		}
		if _, err := tx.InsertTab(ctx, catalog.Tab{TabKey: testTool.Parent()}); err != nil {
			return err
		}
		_, err := tx.InsertTool(ctx, catalog.Tool{ToolKey: testTool, Icon: "brush"})
		return err
	})
}

func mustUpdate(t *testing.T, s *Store, fn func(ctx context.Context, tx *Tx) error) {
	t.Helper()
	if err := s.Update(context.Background(), fn); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
}

func update(s *Store, fn func(ctx context.Context, tx *Tx) error) error {
	return s.Update(context.Background(), fn)
}

func countRows(t *testing.T, s *Store, query string, args ...any) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	return n
}

func image(gallery, name string) catalog.Media {
	return catalog.Media{MediaKey: testTool.Gallery(gallery).Media(name), Type: catalog.MediaImage}
}

func video(gallery, name string) catalog.Media {
	return catalog.Media{MediaKey: testTool.Gallery(gallery).Media(name), Type: catalog.MediaVideo}
}

func classify(err error) error {
	return schema.Classify("test statement", err)
}

func galleryPosition(t *testing.T, s *Store, name string) int {
	t.Helper()
	var pos int
	if err := s.db.QueryRow("SELECT position FROM galleries WHERE name = ?", name).Scan(&pos); err != nil {
		t.Fatalf("read position of %q: %v", name, err)
	}
	return pos
}
