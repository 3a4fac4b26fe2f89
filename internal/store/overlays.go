package store

import (
	"context"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/schema"
)

// InsertOutline attaches the rectangular overlay of an image. A nil Box
// stores an outline without geometry.
func (tx *Tx) InsertOutline(ctx context.Context, o catalog.Outline) error {
	const op = "insert outline"
	o.Media = o.Media.Normalize()
	if err := catalog.Validate(op, o); err != nil {
		return err
	}
	var x, y, w, h any
	if o.Box != nil {
		x, y, w, h = o.Box.X, o.Box.Y, o.Box.Width, o.Box.Height
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO outlines
		(media, gallery, tool, tab, map, game, origin_x, origin_y, width, height, color, opacity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, append(o.Media.Values(), x, y, w, h, o.Color, o.Opacity)...)
	return schema.Classify(op, err)
}

// InsertBoundingCircle attaches the circular overlay of an image.
func (tx *Tx) InsertBoundingCircle(ctx context.Context, c catalog.BoundingCircle) error {
	const op = "insert bounding circle"
	c.Media = c.Media.Normalize()
	if err := catalog.Validate(op, c); err != nil {
		return err
	}
	var x, y, r any
	if c.Circle != nil {
		x, y, r = c.Circle.CenterX, c.Circle.CenterY, c.Circle.Radius
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO bounding_circles
		(media, gallery, tool, tab, map, game, center_x, center_y, radius, color, opacity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, append(c.Media.Values(), x, y, r, c.Color, c.Opacity)...)
	return schema.Classify(op, err)
}

// DeleteOutline removes the outline of an image. Removing a missing outline
// is not an error.
func (tx *Tx) DeleteOutline(ctx context.Context, media catalog.MediaKey) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM outlines
		WHERE media = ? AND gallery = ? AND tool = ? AND tab = ? AND map = ? AND game = ?
	`, media.Normalize().Values()...)
	return schema.Classify("delete outline", err)
}

// DeleteBoundingCircle removes the bounding circle of an image.
func (tx *Tx) DeleteBoundingCircle(ctx context.Context, media catalog.MediaKey) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM bounding_circles
		WHERE media = ? AND gallery = ? AND tool = ? AND tab = ? AND map = ? AND game = ?
	`, media.Normalize().Values()...)
	return schema.Classify("delete bounding circle", err)
}
