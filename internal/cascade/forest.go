package cascade

import (
	"context"
	"fmt"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/reorder"
	"github.com/roach88/catalog/internal/schema"
	"github.com/roach88/catalog/internal/store"
)

// descendants returns every slave below root in t's edge forest, in
// breadth-first order.
func descendants(ctx context.Context, tx *store.Tx, op string, t *schema.Table, parent []any, root string) ([]string, error) {
	e := t.Edge
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? AND %s ORDER BY %s",
		e.Slave, e.Table, e.Master, t.ParentWhere(""), e.Slave)

	var out []string
	seen := map[string]bool{root: true}
	queue := []string{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		rows, err := tx.QueryContext(ctx, query, append([]any{cur}, parent...)...)
		if err != nil {
			return nil, schema.Classify(op, err)
		}
		var slaves []string
		for rows.Next() {
			var s string
			if err := rows.Scan(&s); err != nil {
				rows.Close()
				return nil, schema.Classify(op, err)
			}
			slaves = append(slaves, s)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, schema.Classify(op, err)
		}

		for _, s := range slaves {
			if seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
			queue = append(queue, s)
		}
	}
	return out, nil
}

// deleteTree deletes root and its whole forest below it. Descendants are
// removed deepest first; root's own edge to its master goes before root. The
// sibling set root belonged to is closed up. It returns every deleted name,
// root last.
func deleteTree(ctx context.Context, tx *store.Tx, op string, t *schema.Table, parent []any, root string) ([]string, error) {
	scope, err := reorder.ScopeOf(ctx, tx, t, root, parent)
	if err != nil {
		return nil, err
	}
	pos, err := reorder.PositionOf(ctx, tx, scope, root)
	if err != nil {
		return nil, err
	}

	below, err := descendants(ctx, tx, op, t, parent, root)
	if err != nil {
		return nil, err
	}

	del := fmt.Sprintf("DELETE FROM %s WHERE %s", t.Name, rowWhere(t))
	for i := len(below) - 1; i >= 0; i-- {
		if _, err := tx.ExecContext(ctx, del, append([]any{below[i]}, parent...)...); err != nil {
			return nil, schema.Classify(op, err)
		}
	}

	edge := fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND %s", t.Edge.Table, t.Edge.Slave, t.ParentWhere(""))
	if _, err := tx.ExecContext(ctx, edge, append([]any{root}, parent...)...); err != nil {
		return nil, schema.Classify(op, err)
	}
	if _, err := tx.ExecContext(ctx, del, append([]any{root}, parent...)...); err != nil {
		return nil, schema.Classify(op, err)
	}

	if err := reorder.Remove(ctx, tx, scope, pos); err != nil {
		return nil, err
	}
	return append(below, root), nil
}

// DeleteGallery deletes a gallery, every gallery below it through the
// subgalleries edges, their media and overlays, and their search tokens.
func DeleteGallery(ctx context.Context, tx *store.Tx, key catalog.GalleryKey) (Report, error) {
	const op = "delete gallery"
	key = key.Normalize()
	if err := catalog.Validate(op, key); err != nil {
		return Report{}, err
	}
	tool := key.Parent()
	parent := tool.Values()

	var r Report
	p := toolPrefix(tool)
	mediaBefore, err := count(ctx, tx, op, schema.Media, p)
	if err != nil {
		return Report{}, err
	}

	deleted, err := deleteTree(ctx, tx, op, tx.Registry().Galleries(), parent, key.Name)
	if err != nil {
		return Report{}, err
	}
	r.Galleries = len(deleted)

	mediaAfter, err := count(ctx, tx, op, schema.Media, p)
	if err != nil {
		return Report{}, err
	}
	r.Media = mediaBefore - mediaAfter

	for _, name := range deleted {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM search_tokens WHERE gallery = ? AND tool = ? AND tab = ? AND map = ? AND game = ?
		`, append([]any{name}, parent...)...)
		if err != nil {
			return Report{}, schema.Classify(op, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			r.SearchTokens += int(n)
		}
	}

	tx.Logger().Info("deleted gallery", "gallery", key.String(), "galleries", r.Galleries, "media", r.Media, "search_tokens", r.SearchTokens)
	return r, nil
}

// DeleteMedia deletes a media item, its variants and their overlays.
func DeleteMedia(ctx context.Context, tx *store.Tx, key catalog.MediaKey) (Report, error) {
	const op = "delete media"
	key = key.Normalize()
	if err := catalog.Validate(op, key); err != nil {
		return Report{}, err
	}
	deleted, err := deleteTree(ctx, tx, op, tx.Registry().Media(), key.Parent().Values(), key.Name)
	if err != nil {
		return Report{}, err
	}
	tx.Logger().Info("deleted media", "media", key.String(), "count", len(deleted))
	return Report{Media: len(deleted)}, nil
}
