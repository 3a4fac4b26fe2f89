package reorder_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/reorder"
	"github.com/roach88/catalog/internal/store"
	"github.com/roach88/catalog/internal/testutil"
)

var tool = testutil.DefaultTool

func galleries(tx *store.Tx) reorder.Scope {
	return reorder.GalleriesOf(tx.Registry(), tool)
}

func setupGalleries(t *testing.T, names ...string) *store.Store {
	t.Helper()
	s := testutil.OpenStore(t)
	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		require.NoError(t, testutil.Tool(ctx, tx, tool))
		return testutil.Galleries(ctx, tx, tool, names...)
	})
	return s
}

func TestShiftDown_ClosesGap(t *testing.T) {
	s := setupGalleries(t, "g0", "g1", "g2", "g3")

	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM galleries WHERE name = 'g1'")
		require.NoError(t, err)
		n, err := reorder.ShiftDown(ctx, tx, galleries(tx), 1)
		assert.Equal(t, int64(2), n)
		return err
	})

	assert.Equal(t, map[string]int{"g0": 0, "g2": 1, "g3": 2}, testutil.Positions(t, s, galleries))
	testutil.RequireContiguous(t, s)
}

func TestShiftUp_OpensSlot(t *testing.T) {
	s := setupGalleries(t, "g0", "g1", "g2")

	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		n, err := reorder.ShiftUp(ctx, tx, galleries(tx), 1)
		assert.Equal(t, int64(2), n)
		return err
	})

	assert.Equal(t, map[string]int{"g0": 0, "g1": 2, "g2": 3}, testutil.Positions(t, s, galleries))
}

func TestShift_LeavesOtherScopesAlone(t *testing.T) {
	s := setupGalleries(t, "g0", "g1")
	other := tool.InTab("B")
	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		require.NoError(t, testutil.Tool(ctx, tx, other))
		return testutil.Galleries(ctx, tx, other, "h0", "h1")
	})

	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		_, err := reorder.ShiftUp(ctx, tx, galleries(tx), 0)
		return err
	})

	got := testutil.Positions(t, s, func(tx *store.Tx) reorder.Scope {
		return reorder.GalleriesOf(tx.Registry(), other)
	})
	assert.Equal(t, map[string]int{"h0": 0, "h1": 1}, got)
}

func TestScope_SeparatesFirstLevelFromSlaves(t *testing.T) {
	s := setupGalleries(t, "root", "other")
	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		for _, n := range []string{"s0", "s1"} {
			_, err := tx.InsertGallery(ctx, catalog.Gallery{GalleryKey: tool.Gallery(n), Master: "root"})
			require.NoError(t, err)
		}
		return nil
	})

	assert.Equal(t, []string{"root", "other"}, testutil.Names(t, s, galleries))
	slaves := testutil.Positions(t, s, func(tx *store.Tx) reorder.Scope {
		return reorder.SubgalleriesOf(tx.Registry(), tool.Gallery("root"))
	})
	assert.Equal(t, map[string]int{"s0": 0, "s1": 1}, slaves)
	testutil.RequireContiguous(t, s)
}

func TestBatch_WritesOnlyChangedRows(t *testing.T) {
	s := setupGalleries(t, "g0", "g1", "g2")

	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		n, err := reorder.Batch(ctx, tx, galleries(tx), func(drafts []*reorder.Draft) {
			drafts[0].Position, drafts[1].Position = 1, 0
		})
		assert.Equal(t, 2, n)
		return err
	})

	assert.Equal(t, []string{"g1", "g0", "g2"}, testutil.Names(t, s, galleries))
}

func TestBatch_DraftsKeepCapturedValues(t *testing.T) {
	s := setupGalleries(t, "g0", "g1")

	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		_, err := reorder.Batch(ctx, tx, galleries(tx), func(drafts []*reorder.Draft) {
			for _, d := range drafts {
				d.Position = 1 - d.Previous()
			}
			assert.Equal(t, "g0", drafts[0].Name())
			assert.Equal(t, 0, drafts[0].Previous())
			assert.True(t, drafts[0].Changed())
		})
		return err
	})

	assert.Equal(t, []string{"g1", "g0"}, testutil.Names(t, s, galleries))
}

func TestBatch_IgnoresSliceReordering(t *testing.T) {
	s := setupGalleries(t, "g0", "g1", "g2")

	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		_, err := reorder.Batch(ctx, tx, galleries(tx), func(drafts []*reorder.Draft) {
			drafts[2].Position = 0
			drafts[0].Position = 2
			drafts[0], drafts[2] = drafts[2], nil
		})
		return err
	})

	assert.Equal(t, []string{"g2", "g1", "g0"}, testutil.Names(t, s, galleries))
}

func TestBatch_PanicsOnBrokenPositions(t *testing.T) {
	s := setupGalleries(t, "g0", "g1", "g2")

	cases := map[string]func(drafts []*reorder.Draft){
		"duplicate": func(d []*reorder.Draft) { d[2].Position = 1 },
		"gap":       func(d []*reorder.Draft) { d[2].Position = 3 },
		"negative":  func(d []*reorder.Draft) { d[0].Position = -1 },
	}
	for name, transform := range cases {
		t.Run(name, func(t *testing.T) {
			err := func() (err error) {
				defer func() {
					r := recover()
					require.NotNil(t, r)
					inv, ok := r.(*catalog.InvariantError)
					require.True(t, ok, "panic value %T", r)
					assert.Equal(t, catalog.InvariantPositions, inv.Invariant)
				}()
				return s.Update(context.Background(), func(ctx context.Context, tx *store.Tx) error {
					_, err := reorder.Batch(ctx, tx, galleries(tx), transform)
					return err
				})
			}()
			assert.NoError(t, err)
		})
	}

	assert.Equal(t, []string{"g0", "g1", "g2"}, testutil.Names(t, s, galleries))
	testutil.RequireContiguous(t, s)
}

func TestApply_RejectsNonPermutation(t *testing.T) {
	s := setupGalleries(t, "g0", "g1")

	cases := map[string][]string{
		"short":     {"g0"},
		"unknown":   {"g0", "zz"},
		"duplicate": {"g0", "g0"},
	}
	for name, names := range cases {
		t.Run(name, func(t *testing.T) {
			err := s.Update(context.Background(), func(ctx context.Context, tx *store.Tx) error {
				_, err := reorder.Apply(ctx, tx, galleries(tx), names)
				return err
			})
			assert.True(t, catalog.IsValidation(err), "got %v", err)
		})
	}
}

func TestReorderGalleries_Subgalleries(t *testing.T) {
	s := setupGalleries(t, "root")
	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		for _, n := range []string{"a", "b", "c"} {
			if _, err := tx.InsertGallery(ctx, catalog.Gallery{GalleryKey: tool.Gallery(n), Master: "root"}); err != nil {
				return err
			}
		}
		_, err := reorder.ReorderGalleries(ctx, tx, tx.Registry(), tool, "root", []string{"c", "a", "b"})
		return err
	})

	got := testutil.Names(t, s, func(tx *store.Tx) reorder.Scope {
		return reorder.SubgalleriesOf(tx.Registry(), tool.Gallery("root"))
	})
	assert.Equal(t, []string{"c", "a", "b"}, got)
}

func TestReorderTools(t *testing.T) {
	s := testutil.OpenStore(t)
	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		for _, n := range []string{"t0", "t1", "t2"} {
			require.NoError(t, testutil.Tool(ctx, tx, tool.Parent().Tool(n)))
		}
		_, err := reorder.ReorderTools(ctx, tx, tx.Registry(), tool.Parent(), []string{"t2", "t0", "t1"})
		return err
	})

	got := testutil.Names(t, s, func(tx *store.Tx) reorder.Scope {
		return reorder.ToolsOf(tx.Registry(), tool.Parent())
	})
	assert.Equal(t, []string{"t2", "t0", "t1"}, got)
}

func TestMove(t *testing.T) {
	s := setupGalleries(t, "g0", "g1", "g2", "g3")

	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		_, err := reorder.Move(ctx, tx, galleries(tx), "g3", 1)
		return err
	})

	assert.Equal(t, []string{"g0", "g3", "g1", "g2"}, testutil.Names(t, s, galleries))
}

func TestVerify_ReportsViolation(t *testing.T) {
	s := setupGalleries(t, "g0", "g1")

	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		_, err := tx.ExecContext(ctx, "UPDATE galleries SET position = 5 WHERE name = 'g1'")
		return err
	})

	testutil.Read(t, s, func(ctx context.Context, tx *store.Tx) error {
		err := reorder.Verify(ctx, tx, galleries(tx))
		require.Error(t, err)
		assert.True(t, reorder.IsViolation(err))

		violations, err := reorder.VerifyAll(ctx, tx, tx.Registry())
		require.NoError(t, err)
		require.Len(t, violations, 1)
		assert.Equal(t, []int{0, 5}, violations[0].Positions)
		return nil
	})
}

func TestOpenSlot(t *testing.T) {
	s := setupGalleries(t, "g0", "g1")

	testutil.Update(t, s, func(ctx context.Context, tx *store.Tx) error {
		pos, err := reorder.OpenSlot(ctx, tx, galleries(tx), 7)
		require.NoError(t, err)
		assert.Equal(t, 2, pos)

		pos, err = reorder.OpenSlot(ctx, tx, galleries(tx), 0)
		require.NoError(t, err)
		assert.Equal(t, 0, pos)
		return nil
	})

	assert.Equal(t, map[string]int{"g0": 1, "g1": 2}, testutil.Positions(t, s, galleries))
}
