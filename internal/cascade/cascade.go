package cascade

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/reorder"
	"github.com/roach88/catalog/internal/schema"
	"github.com/roach88/catalog/internal/store"
)

// Report counts what a delete removed.
type Report struct {
	Galleries    int `json:"galleries"`
	Media        int `json:"media"`
	SearchTokens int `json:"search_tokens"`
}

func (r Report) String() string {
	return fmt.Sprintf("%d galleries, %d media, %d search tokens", r.Galleries, r.Media, r.SearchTokens)
}

func (r *Report) add(o Report) {
	r.Galleries += o.Galleries
	r.Media += o.Media
	r.SearchTokens += o.SearchTokens
}

// prefix selects rows of galleries, media and search_tokens that live under
// one ancestor. All three tables carry game, map, tab and tool columns.
type prefix struct {
	where string
	args  []any
}

func studioPrefix(k catalog.StudioKey) prefix {
	return prefix{"game IN (SELECT name FROM games WHERE studio = ?)", []any{k.Name}}
}

func gamePrefix(k catalog.GameKey) prefix {
	return prefix{"game = ?", []any{k.Name}}
}

func mapPrefix(k catalog.MapKey) prefix {
	return prefix{"game = ? AND map = ?", []any{k.Game, k.Name}}
}

func tabPrefix(k catalog.TabKey) prefix {
	return prefix{"game = ? AND map = ? AND tab = ?", []any{k.Game, k.Map, k.Name}}
}

func toolPrefix(k catalog.ToolKey) prefix {
	return prefix{"game = ? AND map = ? AND tab = ? AND tool = ?", []any{k.Game, k.Map, k.Tab, k.Name}}
}

func count(ctx context.Context, tx *store.Tx, op, table string, p prefix) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", table, p.where), p.args...).Scan(&n)
	if err != nil {
		return 0, schema.Classify(op, err)
	}
	return n, nil
}

// deleteBranch removes one node of the containment chain. Descendants go
// through foreign keys; search tokens under the node are removed explicitly
// and the node's sibling set is closed up.
func deleteBranch(ctx context.Context, tx *store.Tx, op string, t *schema.Table, name string, parent []any, p prefix) (Report, error) {
	scope := reorder.Scope{Table: t, Parent: parent}
	pos, err := reorder.PositionOf(ctx, tx, scope, name)
	if err != nil {
		return Report{}, err
	}

	var r Report
	if r.Galleries, err = count(ctx, tx, op, schema.Galleries, p); err != nil {
		return Report{}, err
	}
	if r.Media, err = count(ctx, tx, op, schema.Media, p); err != nil {
		return Report{}, err
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM search_tokens WHERE "+p.where, p.args...)
	if err != nil {
		return Report{}, schema.Classify(op, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		r.SearchTokens = int(n)
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s", t.Name, rowWhere(t))
	if _, err := tx.ExecContext(ctx, query, append([]any{name}, parent...)...); err != nil {
		return Report{}, schema.Classify(op, err)
	}
	if err := reorder.Remove(ctx, tx, scope, pos); err != nil {
		return Report{}, err
	}

	tx.Logger().Info("deleted "+t.Kind, "name", name, "galleries", r.Galleries, "media", r.Media, "search_tokens", r.SearchTokens)
	return r, nil
}

func rowWhere(t *schema.Table) string {
	parts := []string{t.NameColumn + " = ?"}
	if len(t.ParentColumns) > 0 {
		parts = append(parts, t.ParentWhere(""))
	}
	return strings.Join(parts, " AND ")
}

// DeleteStudio deletes a studio and its games.
func DeleteStudio(ctx context.Context, tx *store.Tx, key catalog.StudioKey) (Report, error) {
	key = key.Normalize()
	if err := catalog.Validate("delete studio", key); err != nil {
		return Report{}, err
	}
	return deleteBranch(ctx, tx, "delete studio", tx.Registry().Studios(), key.Name, nil, studioPrefix(key))
}

// DeleteGame deletes a game and its maps.
func DeleteGame(ctx context.Context, tx *store.Tx, key catalog.GameKey) (Report, error) {
	const op = "delete game"
	key = key.Normalize()
	if err := catalog.Validate(op, key); err != nil {
		return Report{}, err
	}
	var studio string
	err := tx.QueryRowContext(ctx, "SELECT studio FROM games WHERE name = ?", key.Name).Scan(&studio)
	if err != nil {
		if err = schema.Classify(op, err); catalog.IsNotFound(err) {
			return Report{}, catalog.NewError(catalog.KindNotFound, op, fmt.Sprintf("game %q not found", key.Name), nil)
		}
		return Report{}, err
	}
	return deleteBranch(ctx, tx, op, tx.Registry().Games(), key.Name, []any{studio}, gamePrefix(key))
}

// DeleteMap deletes a map and its tabs.
func DeleteMap(ctx context.Context, tx *store.Tx, key catalog.MapKey) (Report, error) {
	key = key.Normalize()
	if err := catalog.Validate("delete map", key); err != nil {
		return Report{}, err
	}
	return deleteBranch(ctx, tx, "delete map", tx.Registry().Maps(), key.Name, key.Parent().Values(), mapPrefix(key))
}

// DeleteTab deletes a tab and its tools.
func DeleteTab(ctx context.Context, tx *store.Tx, key catalog.TabKey) (Report, error) {
	key = key.Normalize()
	if err := catalog.Validate("delete tab", key); err != nil {
		return Report{}, err
	}
	return deleteBranch(ctx, tx, "delete tab", tx.Registry().Tabs(), key.Name, key.Parent().Values(), tabPrefix(key))
}

// DeleteTool deletes a tool and its galleries.
func DeleteTool(ctx context.Context, tx *store.Tx, key catalog.ToolKey) (Report, error) {
	key = key.Normalize()
	if err := catalog.Validate("delete tool", key); err != nil {
		return Report{}, err
	}
	return deleteBranch(ctx, tx, "delete tool", tx.Registry().Tools(), key.Name, key.Parent().Values(), toolPrefix(key))
}

// DeleteLabel deletes one label of an image and closes the gap.
func DeleteLabel(ctx context.Context, tx *store.Tx, media catalog.MediaKey, text string) error {
	const op = "delete label"
	media = media.Normalize()
	if err := catalog.Validate(op, media); err != nil {
		return err
	}
	scope := reorder.LabelsOf(tx.Registry(), media)
	pos, err := reorder.PositionOf(ctx, tx, scope, text)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", scope.Table.Name, rowWhere(scope.Table))
	if _, err := tx.ExecContext(ctx, query, append([]any{text}, scope.Parent...)...); err != nil {
		return schema.Classify(op, err)
	}
	return reorder.Remove(ctx, tx, scope, pos)
}
