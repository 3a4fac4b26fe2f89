package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/reorder"
	"github.com/roach88/catalog/internal/schema"
)

// InsertOption adjusts where an inserted row lands among its siblings.
type InsertOption func(*insertOptions)

type insertOptions struct {
	at int
}

// At inserts the row at position, moving the siblings at or after it down by
// one. A position past the end appends.
func At(position int) InsertOption {
	return func(o *insertOptions) { o.at = position }
}

func placement(opts []InsertOption) int {
	o := insertOptions{at: -1}
	for _, opt := range opts {
		opt(&o)
	}
	return o.at
}

// insertRow opens a slot in scope and inserts one row with the given column
// values plus its position. It returns the position taken.
func (tx *Tx) insertRow(ctx context.Context, op string, scope reorder.Scope, at int, cols []string, vals []any) (int, error) {
	pos, err := reorder.OpenSlot(ctx, tx, scope, at)
	if err != nil {
		return 0, err
	}
	cols = append(cols, scope.Table.Position)
	vals = append(vals, pos)
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		scope.Table.Name, strings.Join(cols, ", "), placeholders(len(cols)))
	if _, err := tx.ExecContext(ctx, query, vals...); err != nil {
		return 0, schema.Classify(op, err)
	}
	return pos, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// InsertStudio adds a studio and returns its position.
func (tx *Tx) InsertStudio(ctx context.Context, s catalog.Studio, opts ...InsertOption) (int, error) {
	s.StudioKey = s.StudioKey.Normalize()
	if err := catalog.Validate("insert studio", s); err != nil {
		return 0, err
	}
	return tx.insertRow(ctx, "insert studio", reorder.Studios(tx.registry), placement(opts),
		[]string{"name"}, []any{s.Name})
}

// InsertGame adds a game under its studio.
func (tx *Tx) InsertGame(ctx context.Context, g catalog.Game, opts ...InsertOption) (int, error) {
	g.GameKey = g.GameKey.Normalize()
	g.Studio = catalog.NormalizeName(g.Studio)
	if err := catalog.Validate("insert game", g); err != nil {
		return 0, err
	}
	scope := reorder.GamesOf(tx.registry, catalog.StudioKey{Name: g.Studio})
	return tx.insertRow(ctx, "insert game", scope, placement(opts),
		[]string{"name", "studio"}, []any{g.Name, g.Studio})
}

// InsertMap adds a map under its game.
func (tx *Tx) InsertMap(ctx context.Context, m catalog.Map, opts ...InsertOption) (int, error) {
	m.MapKey = m.MapKey.Normalize()
	if err := catalog.Validate("insert map", m); err != nil {
		return 0, err
	}
	scope := reorder.MapsOf(tx.registry, m.Parent())
	return tx.insertRow(ctx, "insert map", scope, placement(opts),
		[]string{"name", "game"}, m.Values())
}

// InsertTab adds a tab under its map.
func (tx *Tx) InsertTab(ctx context.Context, t catalog.Tab, opts ...InsertOption) (int, error) {
	t.TabKey = t.TabKey.Normalize()
	if err := catalog.Validate("insert tab", t); err != nil {
		return 0, err
	}
	scope := reorder.TabsOf(tx.registry, t.Parent())
	return tx.insertRow(ctx, "insert tab", scope, placement(opts),
		[]string{"name", "map", "game"}, t.Values())
}

// InsertTool adds a tool under its tab.
func (tx *Tx) InsertTool(ctx context.Context, t catalog.Tool, opts ...InsertOption) (int, error) {
	t.ToolKey = t.ToolKey.Normalize()
	if err := catalog.Validate("insert tool", t); err != nil {
		return 0, err
	}
	scope := reorder.ToolsOf(tx.registry, t.Parent())
	return tx.insertRow(ctx, "insert tool", scope, placement(opts),
		[]string{"name", "tab", "map", "game", "icon"}, append(t.Values(), t.Icon))
}

// InsertGallery adds a gallery to its tool. With Master set the gallery is
// created as a slave of that gallery and positioned among its slaves;
// otherwise it joins the first-level galleries.
//
// The store rejects a master that does not exist or already holds media.
func (tx *Tx) InsertGallery(ctx context.Context, g catalog.Gallery, opts ...InsertOption) (int, error) {
	const op = "insert gallery"
	g.GalleryKey = g.GalleryKey.Normalize()
	g.Master = catalog.NormalizeName(g.Master)
	if err := catalog.Validate(op, g); err != nil {
		return 0, err
	}

	scope := reorder.GalleriesOf(tx.registry, g.Parent())
	if g.Master != "" {
		scope = reorder.SubgalleriesOf(tx.registry, g.Sibling(g.Master))
	}
	pos, err := tx.insertRow(ctx, op, scope, placement(opts),
		[]string{"name", "tool", "tab", "map", "game"}, g.Values())
	if err != nil {
		return 0, err
	}
	if g.Master != "" {
		if err := tx.insertEdge(ctx, op, tx.registry.Galleries(), g.Parent().Values(), g.Name, g.Master); err != nil {
			return 0, err
		}
	}
	return pos, nil
}

// InsertMedia adds an image or video to a leaf gallery. With Master set the
// media is a variant of that image.
func (tx *Tx) InsertMedia(ctx context.Context, m catalog.Media, opts ...InsertOption) (int, error) {
	const op = "insert media"
	m.MediaKey = m.MediaKey.Normalize()
	m.Master = catalog.NormalizeName(m.Master)
	if err := catalog.Validate(op, m); err != nil {
		return 0, err
	}

	scope := reorder.MediaOf(tx.registry, m.Parent())
	if m.Master != "" {
		scope = reorder.VariantsOf(tx.registry, m.Sibling(m.Master))
	}
	pos, err := tx.insertRow(ctx, op, scope, placement(opts),
		[]string{"name", "gallery", "tool", "tab", "map", "game", "type"}, append(m.Values(), string(m.Type)))
	if err != nil {
		return 0, err
	}
	if m.Master != "" {
		if err := tx.insertEdge(ctx, op, tx.registry.Media(), m.Parent().Values(), m.Name, m.Master); err != nil {
			return 0, err
		}
	}
	return pos, nil
}

// InsertLabel adds a text overlay to an image.
func (tx *Tx) InsertLabel(ctx context.Context, l catalog.Label, opts ...InsertOption) (int, error) {
	const op = "insert label"
	l.Media = l.Media.Normalize()
	if err := catalog.Validate(op, l); err != nil {
		return 0, err
	}
	var x, y any
	if l.Point != nil {
		x, y = l.Point.X, l.Point.Y
	}
	scope := reorder.LabelsOf(tx.registry, l.Media)
	return tx.insertRow(ctx, op, scope, placement(opts),
		[]string{"text", "media", "gallery", "tool", "tab", "map", "game", "x", "y", "color", "opacity"},
		append(append([]any{l.Text}, l.Media.Values()...), x, y, l.Color, l.Opacity))
}
