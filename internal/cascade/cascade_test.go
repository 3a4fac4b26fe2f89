package cascade_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/catalog/internal/cascade"
	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/reorder"
	"github.com/roach88/catalog/internal/store"
	"github.com/roach88/catalog/internal/testutil"
)

var tool = testutil.DefaultTool

func count(t *testing.T, s *store.Store, query string, args ...any) int {
	t.Helper()
	var n int
	testutil.Read(t, s, func(ctx context.Context, tx *store.Tx) error {
		return tx.QueryRowContext(ctx, query, args...).Scan(&n)
	})
	return n
}

func firstLevel(tx *store.Tx) reorder.Scope {
	return reorder.GalleriesOf(tx.Registry(), tool)
}

// buildForest creates
//
//	g0
//	root ── a ── a1 (media: img + variant img-v, outline, label)
//	     └─ b
//	g2
//
// with search tokens on root, a1 and g2.
func buildForest(t *testing.T) *store.Store {
	t.Helper()
	s := testutil.OpenStore(t)
	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		require.NoError(t, testutil.Tool(ctx, tx, tool))
		require.NoError(t, testutil.Galleries(ctx, tx, tool, "g0", "root", "g2"))
		for _, g := range []catalog.Gallery{
			{GalleryKey: tool.Gallery("a"), Master: "root"},
			{GalleryKey: tool.Gallery("b"), Master: "root"},
			{GalleryKey: tool.Gallery("a1"), Master: "a"},
		} {
			if _, err := tx.InsertGallery(ctx, g); err != nil {
				return err
			}
		}
		a1 := tool.Gallery("a1")
		require.NoError(t, testutil.Images(ctx, tx, a1, "img"))
		_, err := tx.InsertMedia(ctx, catalog.Media{MediaKey: a1.Media("img-v"), Type: catalog.MediaImage, Master: "img"})
		require.NoError(t, err)
		require.NoError(t, tx.InsertOutline(ctx, catalog.Outline{Media: a1.Media("img"), Opacity: 1}))
		_, err = tx.InsertLabel(ctx, catalog.Label{Media: a1.Media("img"), Text: "hello", Opacity: 1})
		require.NoError(t, err)
		for _, g := range []string{"root", "a1", "g2"} {
			require.NoError(t, tx.SetSearchToken(ctx, catalog.SearchToken{Gallery: tool.Gallery(g), Token: "tok-" + g}))
		}
		return nil
	})
	return s
}

func TestDeleteGallery_RemovesSubtree(t *testing.T) {
	s := buildForest(t)

	var report cascade.Report
	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		var err error
		report, err = cascade.DeleteGallery(ctx, tx, tool.Gallery("root"))
		return err
	})

	assert.Equal(t, cascade.Report{Galleries: 4, Media: 2, SearchTokens: 2}, report)
	assert.Equal(t, []string{"g0", "g2"}, testutil.Names(t, s, firstLevel))
	assert.Equal(t, 2, count(t, s, "SELECT COUNT(*) FROM galleries"))
	assert.Equal(t, 0, count(t, s, "SELECT COUNT(*) FROM subgalleries"))
	assert.Equal(t, 0, count(t, s, "SELECT COUNT(*) FROM media"))
	assert.Equal(t, 0, count(t, s, "SELECT COUNT(*) FROM media_variants"))
	assert.Equal(t, 0, count(t, s, "SELECT COUNT(*) FROM outlines"))
	assert.Equal(t, 0, count(t, s, "SELECT COUNT(*) FROM labels"))
	assert.Equal(t, 1, count(t, s, "SELECT COUNT(*) FROM search_tokens WHERE gallery = 'g2'"))
	testutil.RequireContiguous(t, s)
}

func TestDeleteGallery_SlaveRemovesOwnEdgeOnly(t *testing.T) {
	s := buildForest(t)

	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		_, err := cascade.DeleteGallery(ctx, tx, tool.Gallery("a"))
		return err
	})

	slaves := testutil.Positions(t, s, func(tx *store.Tx) reorder.Scope {
		return reorder.SubgalleriesOf(tx.Registry(), tool.Gallery("root"))
	})
	assert.Equal(t, map[string]int{"b": 0}, slaves)
	assert.Equal(t, []string{"g0", "root", "g2"}, testutil.Names(t, s, firstLevel))
	assert.Equal(t, 1, count(t, s, "SELECT COUNT(*) FROM subgalleries"))
	assert.Equal(t, 2, count(t, s, "SELECT COUNT(*) FROM search_tokens"))
	testutil.RequireContiguous(t, s)
}

func TestDeleteGallery_NotFound(t *testing.T) {
	s := buildForest(t)

	err := s.Update(context.Background(), func(ctx context.Context, tx *store.Tx) error {
		_, err := cascade.DeleteGallery(ctx, tx, tool.Gallery("ghost"))
		return err
	})
	assert.True(t, catalog.IsNotFound(err), "got %v", err)
}

func TestDeleteGallery_ClosesGap(t *testing.T) {
	s := testutil.OpenStore(t)
	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		require.NoError(t, testutil.Tool(ctx, tx, tool))
		return testutil.Galleries(ctx, tx, tool, "p0", "p1", "p2", "p3")
	})

	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		_, err := cascade.DeleteGallery(ctx, tx, tool.Gallery("p1"))
		return err
	})

	assert.Equal(t, map[string]int{"p0": 0, "p2": 1, "p3": 2}, testutil.Positions(t, s, firstLevel))
}

func TestDeleteMedia_RemovesVariants(t *testing.T) {
	s := buildForest(t)
	a1 := tool.Gallery("a1")

	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		report, err := cascade.DeleteMedia(ctx, tx, a1.Media("img"))
		assert.Equal(t, 2, report.Media)
		return err
	})

	assert.Equal(t, 0, count(t, s, "SELECT COUNT(*) FROM media"))
	assert.Equal(t, 0, count(t, s, "SELECT COUNT(*) FROM labels"))
}

func TestDeleteMedia_VariantKeepsMaster(t *testing.T) {
	s := buildForest(t)
	a1 := tool.Gallery("a1")

	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		_, err := cascade.DeleteMedia(ctx, tx, a1.Media("img-v"))
		return err
	})

	assert.Equal(t, 1, count(t, s, "SELECT COUNT(*) FROM media WHERE name = 'img'"))
	assert.Equal(t, 0, count(t, s, "SELECT COUNT(*) FROM media_variants"))
	assert.Equal(t, 1, count(t, s, "SELECT COUNT(*) FROM outlines"))
}

func TestDeleteGame_RemovesChain(t *testing.T) {
	s := testutil.OpenStore(t)
	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		if _, err := tx.InsertStudio(ctx, catalog.Studio{StudioKey: catalog.StudioKey{Name: "s"}}); err != nil {
			return err
		}
		if _, err := tx.InsertGame(ctx, catalog.Game{GameKey: catalog.GameKey{Name: "g"}, Studio: "s"}); err != nil {
			return err
		}
		_, err := tx.InsertMap(ctx, catalog.Map{MapKey: catalog.MapKey{Game: "g", Name: "m"}})
		return err
	})

	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		_, err := cascade.DeleteGame(ctx, tx, catalog.GameKey{Name: "g"})
		return err
	})

	assert.Equal(t, 0, count(t, s, "SELECT COUNT(*) FROM maps"))
	assert.Equal(t, 0, count(t, s, "SELECT COUNT(*) FROM games"))
	assert.Equal(t, 1, count(t, s, "SELECT COUNT(*) FROM studios"))
}

func TestDeleteTool_RemovesTokensAndClosesGap(t *testing.T) {
	s := buildForest(t)
	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		return testutil.Tool(ctx, tx, tool.Parent().Tool("after"))
	})

	var report cascade.Report
	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		var err error
		report, err = cascade.DeleteTool(ctx, tx, tool)
		return err
	})

	assert.Equal(t, cascade.Report{Galleries: 6, Media: 2, SearchTokens: 3}, report)
	assert.Equal(t, 0, count(t, s, "SELECT COUNT(*) FROM search_tokens"))
	assert.Equal(t, 0, count(t, s, "SELECT COUNT(*) FROM galleries"))
	tools := testutil.Positions(t, s, func(tx *store.Tx) reorder.Scope {
		return reorder.ToolsOf(tx.Registry(), tool.Parent())
	})
	assert.Equal(t, map[string]int{"after": 0}, tools)
}

func TestDeleteStudio_RemovesTokensOfAllGames(t *testing.T) {
	s := buildForest(t)

	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		_, err := cascade.DeleteStudio(ctx, tx, catalog.StudioKey{Name: "studio"})
		return err
	})

	for _, table := range []string{"studios", "games", "maps", "tabs", "tools", "galleries", "search_tokens"} {
		assert.Equal(t, 0, count(t, s, "SELECT COUNT(*) FROM "+table), table)
	}
}

func TestDeleteLabel_ClosesGap(t *testing.T) {
	s := buildForest(t)
	img := tool.Gallery("a1").Media("img")
	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		for _, text := range []string{"second", "third"} {
			if _, err := tx.InsertLabel(ctx, catalog.Label{Media: img, Text: text, Opacity: 1}); err != nil {
				return err
			}
		}
		return nil
	})

	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		return cascade.DeleteLabel(ctx, tx, img, "hello")
	})

	labels := testutil.Positions(t, s, func(tx *store.Tx) reorder.Scope {
		return reorder.LabelsOf(tx.Registry(), img)
	})
	assert.Equal(t, map[string]int{"second": 0, "third": 1}, labels)
}
