package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/reorder"
	"github.com/roach88/catalog/internal/schema"
)

// insertEdge links slave under master in t's edge table after checking the
// link would not close a cycle.
func (tx *Tx) insertEdge(ctx context.Context, op string, t *schema.Table, parent []any, slave, master string) error {
	if err := tx.checkAcyclic(ctx, op, t, parent, slave, master); err != nil {
		return err
	}
	e := t.Edge
	cols := append([]string{e.Slave, e.Master}, t.ParentColumns...)
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		e.Table, strings.Join(cols, ", "), placeholders(len(cols)))
	if _, err := tx.ExecContext(ctx, query, append([]any{slave, master}, parent...)...); err != nil {
		return schema.Classify(op, err)
	}
	return nil
}

// checkAcyclic walks the master chain upward from master and fails if it
// reaches slave. Triggers cannot recurse, so the walk runs here inside the
// caller's transaction.
func (tx *Tx) checkAcyclic(ctx context.Context, op string, t *schema.Table, parent []any, slave, master string) error {
	e := t.Edge
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? AND %s",
		e.Master, e.Table, e.Slave, t.ParentWhere(""))

	seen := map[string]bool{}
	for cur := master; ; {
		if cur == slave {
			return catalog.NewError(catalog.KindConstraint, op,
				fmt.Sprintf("linking %q under %q would create a cycle", slave, master), nil)
		}
		if seen[cur] {
			// a cycle that does not include slave; stop rather than loop
			return nil
		}
		seen[cur] = true

		var next string
		err := tx.QueryRowContext(ctx, query, append([]any{cur}, parent...)...).Scan(&next)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return schema.Classify(op, err)
		}
		cur = next
	}
}

// SetGalleryMaster moves an existing gallery under master, or back to the
// first-level galleries of its tool when master is empty. The gallery leaves
// its old sibling set, whose gap is closed, and is appended to the new one.
func (tx *Tx) SetGalleryMaster(ctx context.Context, key catalog.GalleryKey, master string) error {
	key = key.Normalize()
	if err := catalog.Validate("set gallery master", key); err != nil {
		return err
	}
	return tx.relink(ctx, "set gallery master", tx.registry.Galleries(), key.Parent().Values(), key.Name, catalog.NormalizeName(master))
}

// SetMediaMaster makes an existing image a variant of master, or a
// first-level media item again when master is empty.
func (tx *Tx) SetMediaMaster(ctx context.Context, key catalog.MediaKey, master string) error {
	key = key.Normalize()
	if err := catalog.Validate("set media master", key); err != nil {
		return err
	}
	return tx.relink(ctx, "set media master", tx.registry.Media(), key.Parent().Values(), key.Name, catalog.NormalizeName(master))
}

func (tx *Tx) relink(ctx context.Context, op string, t *schema.Table, parent []any, name, master string) error {
	from, err := reorder.ScopeOf(ctx, tx, t, name, parent)
	if err != nil {
		return err
	}
	pos, err := reorder.PositionOf(ctx, tx, from, name)
	if err != nil {
		return err
	}

	switch {
	case from.Master == nil && master == "":
		return nil
	case from.Master != nil && *from.Master == master:
		return nil
	}

	to := reorder.Scope{Table: t, Parent: parent}
	if master != "" {
		to.Master = &master
	}
	n, err := reorder.Count(ctx, tx, to)
	if err != nil {
		return err
	}

	if from.Master != nil {
		query := fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND %s", t.Edge.Table, t.Edge.Slave, t.ParentWhere(""))
		if _, err := tx.ExecContext(ctx, query, append([]any{name}, parent...)...); err != nil {
			return schema.Classify(op, err)
		}
	}
	if err := reorder.Remove(ctx, tx, from, pos); err != nil {
		return err
	}
	if err := reorder.SetPosition(ctx, tx, to, name, n); err != nil {
		return err
	}
	if master != "" {
		return tx.insertEdge(ctx, op, t, parent, name, master)
	}
	return nil
}
