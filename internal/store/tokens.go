package store

import (
	"context"
	"fmt"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/schema"
)

// SetSearchToken sets the search token of a gallery, replacing any previous
// token. The table has no foreign key, so the gallery is checked here.
func (tx *Tx) SetSearchToken(ctx context.Context, st catalog.SearchToken) error {
	const op = "set search token"
	st.Gallery = st.Gallery.Normalize()
	st.Token = catalog.NormalizeName(st.Token)
	if err := catalog.Validate(op, st); err != nil {
		return err
	}

	var exists bool
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s)", schema.Galleries, tx.Registry().Galleries().KeyWhere(""))
	err := tx.QueryRowContext(ctx, query, st.Gallery.Values()...).Scan(&exists)
	if err != nil {
		return schema.Classify(op, err)
	}
	if !exists {
		return catalog.NewError(catalog.KindNotFound, op, fmt.Sprintf("gallery %s not found", st.Gallery), nil)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO search_tokens (gallery, tool, tab, map, game, token)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (gallery, tool, tab, map, game) DO UPDATE SET token = excluded.token
	`, append(st.Gallery.Values(), st.Token)...)
	return schema.Classify(op, err)
}

// DeleteSearchToken removes the search token of a gallery, if any.
func (tx *Tx) DeleteSearchToken(ctx context.Context, gallery catalog.GalleryKey) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM search_tokens WHERE gallery = ? AND tool = ? AND tab = ? AND map = ? AND game = ?
	`, gallery.Normalize().Values()...)
	return schema.Classify("delete search token", err)
}
