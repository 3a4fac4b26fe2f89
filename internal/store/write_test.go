package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/catalog/internal/catalog"
)

func insertGalleries(ctx context.Context, tx *Tx, master string, names ...string) error {
	for _, n := range names {
		if _, err := tx.InsertGallery(ctx, catalog.Gallery{GalleryKey: testTool.Gallery(n), Master: master}); err != nil {
			return err
		}
	}
	return nil
}

func TestInsert_AppendsPositions(t *testing.T) {
	s := createTestStore(t)
	createTestTool(t, s)

	var got []int
	mustUpdate(t, s, func(ctx context.Context, tx *Tx) error {
		for _, n := range []string{"a", "b", "c"} {
			pos, err := tx.InsertGallery(ctx, catalog.Gallery{GalleryKey: testTool.Gallery(n)})
			if err != nil {
				return err
			}
			got = append(got, pos)
		}
		return nil
	})
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestInsert_AtShiftsSiblings(t *testing.T) {
	s := createTestStore(t)
	createTestTool(t, s)

	mustUpdate(t, s, func(ctx context.Context, tx *Tx) error {
		require.NoError(t, insertGalleries(ctx, tx, "", "a", "b"))
		pos, err := tx.InsertGallery(ctx, catalog.Gallery{GalleryKey: testTool.Gallery("first")}, At(0))
		assert.Equal(t, 0, pos)
		return err
	})

	rows, err := s.db.Query("SELECT name FROM galleries ORDER BY position")
	require.NoError(t, err)
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	assert.Equal(t, []string{"first", "a", "b"}, names)
}

func TestInsert_NormalizesNames(t *testing.T) {
	s := createTestStore(t)
	createTestTool(t, s)

	// "é" as e + combining acute, padded with spaces
	mustUpdate(t, s, func(ctx context.Context, tx *Tx) error {
		_, err := tx.InsertGallery(ctx, catalog.Gallery{GalleryKey: testTool.Gallery("  café ")})
		return err
	})
	assert.Equal(t, 1, countRows(t, s, "SELECT COUNT(*) FROM galleries WHERE name = ?", "café"))
}

func TestInsert_ValidationRejectedBeforeStatement(t *testing.T) {
	s := createTestStore(t)
	createTestTool(t, s)

	cases := map[string]func(ctx context.Context, tx *Tx) error{
		"empty name": func(ctx context.Context, tx *Tx) error {
			_, err := tx.InsertGallery(ctx, catalog.Gallery{GalleryKey: testTool.Gallery(" ")})
			return err
		},
		"separator in name": func(ctx context.Context, tx *Tx) error {
			_, err := tx.InsertGallery(ctx, catalog.Gallery{GalleryKey: testTool.Gallery("a/b")})
			return err
		},
		"bad media type": func(ctx context.Context, tx *Tx) error {
			_, err := tx.InsertMedia(ctx, catalog.Media{MediaKey: testTool.Gallery("g").Media("m"), Type: "audio"})
			return err
		},
		"bad color": func(ctx context.Context, tx *Tx) error {
			return tx.InsertOutline(ctx, catalog.Outline{Media: testTool.Gallery("g").Media("m"), Color: "red", Opacity: 1})
		},
		"opacity out of range": func(ctx context.Context, tx *Tx) error {
			return tx.InsertOutline(ctx, catalog.Outline{Media: testTool.Gallery("g").Media("m"), Opacity: 1.5})
		},
		"coordinate out of range": func(ctx context.Context, tx *Tx) error {
			return tx.InsertBoundingCircle(ctx, catalog.BoundingCircle{
				Media:   testTool.Gallery("g").Media("m"),
				Circle:  &catalog.Circle{CenterX: 0.5, CenterY: 2, Radius: 0.1},
				Opacity: 1,
			})
		},
		"empty label": func(ctx context.Context, tx *Tx) error {
			_, err := tx.InsertLabel(ctx, catalog.Label{Media: testTool.Gallery("g").Media("m"), Opacity: 1})
			return err
		},
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			err := update(s, fn)
			assert.True(t, catalog.IsValidation(err), "got %v", err)
		})
	}
}

func TestInsert_DuplicateKey(t *testing.T) {
	s := createTestStore(t)
	createTestTool(t, s)

	err := update(s, func(ctx context.Context, tx *Tx) error {
		return insertGalleries(ctx, tx, "", "a", "a")
	})
	assert.True(t, catalog.IsConstraintViolation(err), "got %v", err)
	assert.Equal(t, 0, countRows(t, s, "SELECT COUNT(*) FROM galleries"))
}

func TestInsert_MissingParent(t *testing.T) {
	s := createTestStore(t)

	err := update(s, func(ctx context.Context, tx *Tx) error {
		_, err := tx.InsertGallery(ctx, catalog.Gallery{GalleryKey: testTool.Gallery("a")})
		return err
	})
	assert.True(t, catalog.IsConstraintViolation(err), "got %v", err)
}

func TestSubgallery_MissingMasterRejected(t *testing.T) {
	s := createTestStore(t)
	createTestTool(t, s)

	err := update(s, func(ctx context.Context, tx *Tx) error {
		return insertGalleries(ctx, tx, "ghost", "a")
	})
	assert.True(t, catalog.IsConstraintViolation(err), "got %v", err)
	assert.Equal(t, 0, countRows(t, s, "SELECT COUNT(*) FROM galleries"))
}

func TestSubgallery_SecondMasterRejected(t *testing.T) {
	s := createTestStore(t)
	createTestTool(t, s)
	mustUpdate(t, s, func(ctx context.Context, tx *Tx) error {
		require.NoError(t, insertGalleries(ctx, tx, "", "m1", "m2"))
		return insertGalleries(ctx, tx, "m1", "slave")
	})

	err := update(s, func(ctx context.Context, tx *Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO subgalleries (slave, master, tool, tab, map, game)
			VALUES ('slave', 'm2', 'tool', 'tab', 'map', 'game')`)
		return classify(err)
	})
	assert.True(t, catalog.IsConstraintViolation(err), "got %v", err)
}

func TestMediaVariant_MissingMasterRejected(t *testing.T) {
	s := createTestStore(t)
	createTestTool(t, s)
	mustUpdate(t, s, func(ctx context.Context, tx *Tx) error {
		return insertGalleries(ctx, tx, "", "g")
	})

	err := update(s, func(ctx context.Context, tx *Tx) error {
		m := image("g", "variant")
		m.Master = "missing"
		_, err := tx.InsertMedia(ctx, m)
		return err
	})
	assert.True(t, catalog.IsConstraintViolation(err), "got %v", err)
	assert.Contains(t, err.Error(), "media variant master does not exist")
	assert.Equal(t, 0, countRows(t, s, "SELECT COUNT(*) FROM media"))
}

func TestMediaVariant_SecondMasterRejected(t *testing.T) {
	s := createTestStore(t)
	createTestTool(t, s)
	mustUpdate(t, s, func(ctx context.Context, tx *Tx) error {
		require.NoError(t, insertGalleries(ctx, tx, "", "g"))
		for _, n := range []string{"m1", "m2"} {
			if _, err := tx.InsertMedia(ctx, image("g", n)); err != nil {
				return err
			}
		}
		v := image("g", "variant")
		v.Master = "m1"
		_, err := tx.InsertMedia(ctx, v)
		return err
	})

	err := update(s, func(ctx context.Context, tx *Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO media_variants (slave, master, gallery, tool, tab, map, game)
			VALUES ('variant', 'm2', 'g', 'tool', 'tab', 'map', 'game')`)
		return classify(err)
	})
	assert.True(t, catalog.IsConstraintViolation(err), "got %v", err)
	assert.Contains(t, err.Error(), "duplicate key")
	assert.Equal(t, 1, countRows(t, s, "SELECT COUNT(*) FROM media_variants"))
}

func TestSubgallery_MasterWithMediaRejected(t *testing.T) {
	s := createTestStore(t)
	createTestTool(t, s)
	mustUpdate(t, s, func(ctx context.Context, tx *Tx) error {
		require.NoError(t, insertGalleries(ctx, tx, "", "leaf"))
		_, err := tx.InsertMedia(ctx, image("leaf", "img"))
		return err
	})

	err := update(s, func(ctx context.Context, tx *Tx) error {
		return insertGalleries(ctx, tx, "leaf", "child")
	})
	assert.True(t, catalog.IsConstraintViolation(err), "got %v", err)
	assert.Contains(t, err.Error(), "subgallery master holds media")
}

func TestMedia_NonLeafGalleryRejected(t *testing.T) {
	s := createTestStore(t)
	createTestTool(t, s)
	mustUpdate(t, s, func(ctx context.Context, tx *Tx) error {
		require.NoError(t, insertGalleries(ctx, tx, "", "parent"))
		return insertGalleries(ctx, tx, "parent", "child")
	})

	err := update(s, func(ctx context.Context, tx *Tx) error {
		_, err := tx.InsertMedia(ctx, image("parent", "img"))
		return err
	})
	assert.True(t, catalog.IsConstraintViolation(err), "got %v", err)
	assert.Contains(t, err.Error(), "media requires a leaf gallery")

	mustUpdate(t, s, func(ctx context.Context, tx *Tx) error {
		_, err := tx.InsertMedia(ctx, image("child", "img"))
		return err
	})
}

func TestOverlays_ImageOnly(t *testing.T) {
	s := createTestStore(t)
	createTestTool(t, s)
	mustUpdate(t, s, func(ctx context.Context, tx *Tx) error {
		require.NoError(t, insertGalleries(ctx, tx, "", "g"))
		if _, err := tx.InsertMedia(ctx, image("g", "img")); err != nil {
			return err
		}
		_, err := tx.InsertMedia(ctx, video("g", "vid"))
		return err
	})

	box := &catalog.Box{X: 0.1, Y: 0.1, Width: 0.5, Height: 0.5}
	circle := &catalog.Circle{CenterX: 0.5, CenterY: 0.5, Radius: 0.25}
	overlays := map[string]func(ctx context.Context, tx *Tx, m catalog.MediaKey) error{
		"outline": func(ctx context.Context, tx *Tx, m catalog.MediaKey) error {
			return tx.InsertOutline(ctx, catalog.Outline{Media: m, Box: box, Opacity: 0.8})
		},
		"bounding circle": func(ctx context.Context, tx *Tx, m catalog.MediaKey) error {
			return tx.InsertBoundingCircle(ctx, catalog.BoundingCircle{Media: m, Circle: circle, Color: "#ff0000", Opacity: 1})
		},
		"label": func(ctx context.Context, tx *Tx, m catalog.MediaKey) error {
			_, err := tx.InsertLabel(ctx, catalog.Label{Media: m, Text: "hi", Point: &catalog.Point{X: 0.2, Y: 0.3}, Opacity: 1})
			return err
		},
		"variant": func(ctx context.Context, tx *Tx, m catalog.MediaKey) error {
			_, err := tx.InsertMedia(ctx, catalog.Media{MediaKey: m.Sibling(m.Name + "-v"), Type: catalog.MediaImage, Master: m.Name})
			return err
		},
	}
	for name, insert := range overlays {
		t.Run(name, func(t *testing.T) {
			err := update(s, func(ctx context.Context, tx *Tx) error {
				return insert(ctx, tx, testTool.Gallery("g").Media("vid"))
			})
			assert.True(t, catalog.IsConstraintViolation(err), "video: got %v", err)

			err = update(s, func(ctx context.Context, tx *Tx) error {
				return insert(ctx, tx, testTool.Gallery("g").Media("img"))
			})
			assert.NoError(t, err)
		})
	}
}

func TestOverlays_GeometryGroupTriggers(t *testing.T) {
	s := createTestStore(t)
	createTestTool(t, s)
	mustUpdate(t, s, func(ctx context.Context, tx *Tx) error {
		require.NoError(t, insertGalleries(ctx, tx, "", "g"))
		_, err := tx.InsertMedia(ctx, image("g", "img"))
		return err
	})

	const key = "'img', 'g', 'tool', 'tab', 'map', 'game'"
	statements := map[string]string{
		"outline partial":   "INSERT INTO outlines (media, gallery, tool, tab, map, game, origin_x, origin_y) VALUES (" + key + ", 0.1, 0.1)",
		"circle partial":    "INSERT INTO bounding_circles (media, gallery, tool, tab, map, game, radius) VALUES (" + key + ", 0.3)",
		"label partial":     "INSERT INTO labels (text, media, gallery, tool, tab, map, game, x, position) VALUES ('t', " + key + ", 0.5, 0)",
		"outline range":     "INSERT INTO outlines (media, gallery, tool, tab, map, game, origin_x, origin_y, width, height) VALUES (" + key + ", 0.1, 0.1, 0.5, 1.5)",
		"opacity range":     "INSERT INTO outlines (media, gallery, tool, tab, map, game, opacity) VALUES (" + key + ", 2)",
		"negative position": "INSERT INTO labels (text, media, gallery, tool, tab, map, game, position) VALUES ('t', " + key + ", -1)",
	}
	for name, stmt := range statements {
		t.Run(name, func(t *testing.T) {
			err := update(s, func(ctx context.Context, tx *Tx) error {
				_, err := tx.ExecContext(ctx, stmt)
				return classify(err)
			})
			assert.True(t, catalog.IsConstraintViolation(err), "got %v", err)
		})
	}

	mustUpdate(t, s, func(ctx context.Context, tx *Tx) error {
		return tx.InsertOutline(ctx, catalog.Outline{Media: testTool.Gallery("g").Media("img"), Opacity: 1})
	})
}

func TestSetGalleryMaster_MovesBetweenSets(t *testing.T) {
	s := createTestStore(t)
	createTestTool(t, s)
	mustUpdate(t, s, func(ctx context.Context, tx *Tx) error {
		return insertGalleries(ctx, tx, "", "a", "b", "c")
	})

	mustUpdate(t, s, func(ctx context.Context, tx *Tx) error {
		return tx.SetGalleryMaster(ctx, testTool.Gallery("b"), "a")
	})
	assert.Equal(t, 1, galleryPosition(t, s, "c"))
	assert.Equal(t, 0, galleryPosition(t, s, "b"))

	mustUpdate(t, s, func(ctx context.Context, tx *Tx) error {
		return tx.SetGalleryMaster(ctx, testTool.Gallery("b"), "")
	})
	assert.Equal(t, 2, galleryPosition(t, s, "b"))
	assert.Equal(t, 0, countRows(t, s, "SELECT COUNT(*) FROM subgalleries"))
}

func TestSetGalleryMaster_CycleRejected(t *testing.T) {
	s := createTestStore(t)
	createTestTool(t, s)
	mustUpdate(t, s, func(ctx context.Context, tx *Tx) error {
		require.NoError(t, insertGalleries(ctx, tx, "", "a"))
		require.NoError(t, insertGalleries(ctx, tx, "a", "b"))
		return insertGalleries(ctx, tx, "b", "c")
	})

	err := update(s, func(ctx context.Context, tx *Tx) error {
		return tx.SetGalleryMaster(ctx, testTool.Gallery("a"), "c")
	})
	assert.True(t, catalog.IsConstraintViolation(err), "got %v", err)
	assert.Contains(t, err.Error(), "cycle")
	assert.Equal(t, 2, countRows(t, s, "SELECT COUNT(*) FROM subgalleries"))
}

func TestSearchToken_Upsert(t *testing.T) {
	s := createTestStore(t)
	createTestTool(t, s)
	mustUpdate(t, s, func(ctx context.Context, tx *Tx) error {
		return insertGalleries(ctx, tx, "", "g")
	})

	for _, token := range []string{"first", "second"} {
		mustUpdate(t, s, func(ctx context.Context, tx *Tx) error {
			return tx.SetSearchToken(ctx, catalog.SearchToken{Gallery: testTool.Gallery("g"), Token: token})
		})
	}
	assert.Equal(t, 1, countRows(t, s, "SELECT COUNT(*) FROM search_tokens WHERE token = 'second'"))
	assert.Equal(t, 1, countRows(t, s, "SELECT COUNT(*) FROM search_tokens"))

	err := update(s, func(ctx context.Context, tx *Tx) error {
		return tx.SetSearchToken(ctx, catalog.SearchToken{Gallery: testTool.Gallery("ghost"), Token: "x"})
	})
	assert.True(t, catalog.IsNotFound(err), "got %v", err)

	mustUpdate(t, s, func(ctx context.Context, tx *Tx) error {
		return tx.DeleteSearchToken(ctx, testTool.Gallery("g"))
	})
	assert.Equal(t, 0, countRows(t, s, "SELECT COUNT(*) FROM search_tokens"))
}
