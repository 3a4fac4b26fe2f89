package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/reorder"
	"github.com/roach88/catalog/internal/schema"
	"github.com/roach88/catalog/internal/store"
)

// TargetStrategy decides where a moved node lands among its new siblings.
type TargetStrategy int

const (
	// PreserveTargetIndices keeps the node's old position value and touches
	// no target sibling, so the target set may be left with a duplicate or a
	// gap. Callers must renumber it with reorder.Apply or reorder.Batch in
	// the same transaction before it commits.
	PreserveTargetIndices TargetStrategy = iota

	// UpdateTargetIndices inserts the node at Options.TargetPosition, or at
	// its old position when none is given, shifting later siblings up.
	UpdateTargetIndices

	// PlaceAtEnd appends the node after the target's existing children.
	PlaceAtEnd
)

func (s TargetStrategy) String() string {
	switch s {
	case PreserveTargetIndices:
		return "preserve"
	case UpdateTargetIndices:
		return "update"
	case PlaceAtEnd:
		return "end"
	}
	return fmt.Sprintf("TargetStrategy(%d)", int(s))
}

// Options configures one move.
type Options struct {
	// UpdateSourceIndices closes the gap the node leaves behind.
	UpdateSourceIndices bool

	// Target selects the target reindex strategy.
	Target TargetStrategy

	// TargetPosition overrides the insertion point for UpdateTargetIndices.
	TargetPosition *int
}

// Result describes a finished move.
type Result struct {
	// Moved is false when the node was left where it was.
	Moved bool `json:"moved"`

	// From and To are the path keys of the old and new parent.
	From string `json:"from"`
	To   string `json:"to"`

	// Position is the node's position after the move.
	Position int `json:"position"`
}

// Level describes one parent/child relation the workflow can move along.
type Level[P fmt.Stringer] struct {
	// Table returns the child table.
	Table func(*schema.Registry) *schema.Table

	// Values returns the child table's parent column values for parent.
	Values func(parent P) []any

	// Propagate rewrites copies of the parent path that foreign keys do not
	// reach. It may be nil.
	Propagate func(ctx context.Context, tx *store.Tx, name string, from, to P) error
}

// Move runs the workflow for the child named name currently under from.
func Move[P fmt.Stringer](ctx context.Context, tx *store.Tx, level Level[P], name string, from P, candidates []P, keep func(P) bool, opts Options) (Result, error) {
	t := level.Table(tx.Registry())
	op := "migrate " + t.Kind
	log := tx.Logger().With("kind", t.Kind, "name", name, "from", from.String())

	if opts.TargetPosition != nil && *opts.TargetPosition < 0 {
		return Result{}, catalog.NewError(catalog.KindValidation, op,
			fmt.Sprintf("target position %d is negative", *opts.TargetPosition), nil)
	}

	source := reorder.Scope{Table: t, Parent: level.Values(from)}
	oldPos, err := reorder.PositionOf(ctx, tx, source, name)
	if err != nil {
		log.Warn("cannot read current parent, skipping move", "error", err)
		return Result{From: from.String()}, nil
	}

	if keep(from) {
		log.Info("current parent accepted, nothing to move")
		return Result{From: from.String(), To: from.String(), Position: oldPos}, nil
	}

	var to P
	found := false
	for _, c := range candidates {
		if keep(c) {
			to, found = c, true
			break
		}
	}
	if !found {
		panic(catalog.Invariantf(catalog.InvariantMigrationTarget,
			"no candidate parent accepted for %s %q among %d candidates", t.Kind, name, len(candidates)))
	}
	target := reorder.Scope{Table: t, Parent: level.Values(to)}

	if opts.UpdateSourceIndices {
		if _, err := reorder.ShiftDown(ctx, tx, source, oldPos); err != nil {
			return Result{}, err
		}
	}

	n, err := reorder.Count(ctx, tx, target)
	if err != nil {
		return Result{}, err
	}
	newPos := oldPos
	switch opts.Target {
	case UpdateTargetIndices:
		if opts.TargetPosition != nil {
			newPos = *opts.TargetPosition
		}
		if newPos > n {
			newPos = n
		}
		if _, err := reorder.ShiftUp(ctx, tx, target, newPos); err != nil {
			return Result{}, err
		}
	case PlaceAtEnd:
		newPos = n
	}

	if err := reparent(ctx, tx, op, t, name, source.Parent, target.Parent, newPos); err != nil {
		return Result{}, err
	}

	if level.Propagate != nil {
		if err := level.Propagate(ctx, tx, name, from, to); err != nil {
			return Result{}, err
		}
	}

	log.Info("moved", "to", to.String(), "position", newPos, "strategy", opts.Target.String())
	return Result{Moved: true, From: from.String(), To: to.String(), Position: newPos}, nil
}

// reparent rewrites the parent columns and the position of one row.
func reparent(ctx context.Context, tx *store.Tx, op string, t *schema.Table, name string, from, to []any, position int) error {
	set := make([]string, 0, len(t.ParentColumns)+1)
	for _, c := range t.ParentColumns {
		set = append(set, c+" = ?")
	}
	set = append(set, t.Position+" = ?")

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ? AND %s",
		t.Name, strings.Join(set, ", "), t.NameColumn, t.ParentWhere(""))
	args := append(append(append([]any{}, to...), position, name), from...)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return schema.Classify(op, err)
	}
	return nil
}
