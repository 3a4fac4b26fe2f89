package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/catalog/internal/reorder"
	"github.com/roach88/catalog/internal/store"
)

func TestTool_SkipsExistingLevels(t *testing.T) {
	s := OpenStore(t)

	Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		require.NoError(t, Tool(ctx, tx, DefaultTool))
		return Tool(ctx, tx, DefaultTool.InTab("B"))
	})

	tabs := Names(t, s, func(tx *store.Tx) reorder.Scope {
		return reorder.TabsOf(tx.Registry(), DefaultTool.Parent().Parent())
	})
	assert.Equal(t, []string{"A", "B"}, tabs)
	RequireContiguous(t, s)
}

func TestGalleries_AppendsInOrder(t *testing.T) {
	s := OpenStore(t)

	Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		require.NoError(t, Tool(ctx, tx, DefaultTool))
		return Galleries(ctx, tx, DefaultTool, "g0", "g1", "g2")
	})

	got := Positions(t, s, func(tx *store.Tx) reorder.Scope {
		return reorder.GalleriesOf(tx.Registry(), DefaultTool)
	})
	assert.Equal(t, map[string]int{"g0": 0, "g1": 1, "g2": 2}, got)
}
