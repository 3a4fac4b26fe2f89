package aggregate

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/reorder"
	"github.com/roach88/catalog/internal/schema"
)

// MediaOptions selects what Media returns alongside the media.
type MediaOptions struct {
	// Master lists the variants of this image instead of the first-level
	// media of the gallery.
	Master string

	Outlines        bool
	BoundingCircles bool
	Labels          bool
	Variants        bool
}

// MediaView is the result of Media.
type MediaView struct {
	Media           []catalog.Media           `json:"media"`
	Outlines        []*catalog.Outline        `json:"outlines,omitempty"`
	BoundingCircles []*catalog.BoundingCircle `json:"bounding_circles,omitempty"`
	Labels          [][]catalog.Label         `json:"labels,omitempty"`
	Variants        [][]catalog.Media         `json:"variants,omitempty"`
}

// overlayView joins every media row with its 0..1 outline and bounding
// circle. It has no parameters; callers filter it by scope.
const overlayView = `
	SELECT m.name, m.gallery, m.tool, m.tab, m.map, m.game, m.type, m.position,
	       o.media IS NOT NULL AS has_outline,
	       o.origin_x, o.origin_y, o.width, o.height, o.color AS outline_color, o.opacity AS outline_opacity,
	       b.media IS NOT NULL AS has_circle,
	       b.center_x, b.center_y, b.radius, b.color AS circle_color, b.opacity AS circle_opacity
	FROM media m
	LEFT JOIN outlines o
	       ON o.media = m.name AND o.gallery = m.gallery AND o.tool = m.tool
	      AND o.tab = m.tab AND o.map = m.map AND o.game = m.game
	LEFT JOIN bounding_circles b
	       ON b.media = m.name AND b.gallery = m.gallery AND b.tool = m.tool
	      AND b.tab = m.tab AND b.map = m.map AND b.game = m.game`

// Media returns the first-level media of gallery, or the variants of
// opts.Master, in position order, with the requested overlays.
//
// The overlay join goes through a temporary view created on the caller's
// connection. The view is dropped before Media returns, on every path.
func Media(ctx context.Context, q Querier, gallery catalog.GalleryKey, opts MediaOptions) (view MediaView, err error) {
	const op = "read media"
	gallery = gallery.Normalize()
	if err := catalog.Validate(op, gallery); err != nil {
		return MediaView{}, err
	}
	master := catalog.NormalizeName(opts.Master)

	scope := reorder.MediaOf(q.Registry(), gallery)
	if master != "" {
		scope = reorder.VariantsOf(q.Registry(), gallery.Media(master))
	}

	name := "media_overlays_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := q.ExecContext(ctx, fmt.Sprintf("CREATE TEMP VIEW %s AS %s", name, overlayView)); err != nil {
		return MediaView{}, schema.Classify(op, err)
	}
	defer func() {
		_, dropErr := q.ExecContext(context.WithoutCancel(ctx), "DROP VIEW IF EXISTS temp."+name)
		if dropErr != nil && err == nil {
			err = schema.Classify(op, dropErr)
		}
	}()

	pred, args := scope.Predicate()
	rows, err := q.QueryContext(ctx, fmt.Sprintf(`
		SELECT name, type, position,
		       has_outline, origin_x, origin_y, width, height, outline_color, outline_opacity,
		       has_circle, center_x, center_y, radius, circle_color, circle_opacity
		FROM %s WHERE %s
		ORDER BY position ASC, name COLLATE BINARY ASC`, name, pred), args...)
	if err != nil {
		return MediaView{}, schema.Classify(op, err)
	}

	var outlines []*catalog.Outline
	var circles []*catalog.BoundingCircle
	view.Media = []catalog.Media{}
	for rows.Next() {
		m, o, c, err := scanMediaRow(rows, gallery, master)
		if err != nil {
			rows.Close()
			return MediaView{}, err
		}
		view.Media = append(view.Media, m)
		outlines = append(outlines, o)
		circles = append(circles, c)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return MediaView{}, schema.Classify(op, err)
	}

	if opts.Outlines {
		view.Outlines = padded(outlines, len(view.Media))
	}
	if opts.BoundingCircles {
		view.BoundingCircles = padded(circles, len(view.Media))
	}
	if opts.Labels {
		view.Labels = make([][]catalog.Label, len(view.Media))
		for i, m := range view.Media {
			if view.Labels[i], err = Labels(ctx, q, m.MediaKey); err != nil {
				return MediaView{}, err
			}
		}
	}
	if opts.Variants {
		view.Variants = make([][]catalog.Media, len(view.Media))
		for i, m := range view.Media {
			if view.Variants[i], err = Variants(ctx, q, m.MediaKey); err != nil {
				return MediaView{}, err
			}
		}
	}
	return view, nil
}

func padded[T any](in []*T, n int) []*T {
	out := make([]*T, n)
	copy(out, in)
	return out
}

func scanMediaRow(rows *sql.Rows, gallery catalog.GalleryKey, master string) (catalog.Media, *catalog.Outline, *catalog.BoundingCircle, error) {
	var m catalog.Media
	var name, mediaType string
	var hasOutline, hasCircle bool
	var ox, oy, ow, oh, cx, cy, cr sql.NullFloat64
	var outlineColor, circleColor sql.NullString
	var outlineOpacity, circleOpacity sql.NullFloat64
	err := rows.Scan(&name, &mediaType, &m.Position,
		&hasOutline, &ox, &oy, &ow, &oh, &outlineColor, &outlineOpacity,
		&hasCircle, &cx, &cy, &cr, &circleColor, &circleOpacity)
	if err != nil {
		return m, nil, nil, schema.Classify("scan media", err)
	}
	m.MediaKey = gallery.Media(name)
	m.Type = catalog.MediaType(mediaType)
	m.Master = master

	var o *catalog.Outline
	if hasOutline {
		o = &catalog.Outline{Media: m.MediaKey, Color: outlineColor.String, Opacity: outlineOpacity.Float64}
		if ox.Valid {
			o.Box = &catalog.Box{X: ox.Float64, Y: oy.Float64, Width: ow.Float64, Height: oh.Float64}
		}
	}
	var c *catalog.BoundingCircle
	if hasCircle {
		c = &catalog.BoundingCircle{Media: m.MediaKey, Color: circleColor.String, Opacity: circleOpacity.Float64}
		if cx.Valid {
			c.Circle = &catalog.Circle{CenterX: cx.Float64, CenterY: cy.Float64, Radius: cr.Float64}
		}
	}
	return m, o, c, nil
}

// Labels returns the labels of media in position order.
func Labels(ctx context.Context, q Querier, media catalog.MediaKey) ([]catalog.Label, error) {
	media = media.Normalize()
	rows, err := q.QueryContext(ctx, `
		SELECT text, x, y, color, opacity, position
		FROM labels
		WHERE media = ? AND gallery = ? AND tool = ? AND tab = ? AND map = ? AND game = ?
		ORDER BY position ASC, text COLLATE BINARY ASC
	`, media.Values()...)
	if err != nil {
		return nil, schema.Classify("read labels", err)
	}
	defer rows.Close()

	labels := []catalog.Label{}
	for rows.Next() {
		l := catalog.Label{Media: media}
		var x, y sql.NullFloat64
		if err := rows.Scan(&l.Text, &x, &y, &l.Color, &l.Opacity, &l.Position); err != nil {
			return nil, schema.Classify("scan label", err)
		}
		if x.Valid && y.Valid {
			l.Point = &catalog.Point{X: x.Float64, Y: y.Float64}
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, schema.Classify("iterate labels", err)
	}
	return labels, nil
}

// Variants returns the variants of master in position order.
func Variants(ctx context.Context, q Querier, master catalog.MediaKey) ([]catalog.Media, error) {
	master = master.Normalize()
	scope := reorder.VariantsOf(q.Registry(), master)
	pred, args := scope.Predicate()
	rows, err := q.QueryContext(ctx, fmt.Sprintf(`
		SELECT name, type, position FROM media WHERE %s
		ORDER BY position ASC, name COLLATE BINARY ASC`, pred), args...)
	if err != nil {
		return nil, schema.Classify("read variants", err)
	}
	defer rows.Close()

	variants := []catalog.Media{}
	for rows.Next() {
		var name, mediaType string
		v := catalog.Media{Master: master.Name}
		if err := rows.Scan(&name, &mediaType, &v.Position); err != nil {
			return nil, schema.Classify("scan variant", err)
		}
		v.MediaKey = master.Sibling(name)
		v.Type = catalog.MediaType(mediaType)
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, schema.Classify("iterate variants", err)
	}
	return variants, nil
}
