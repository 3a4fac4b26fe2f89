package reorder

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/catalog/internal/schema"
)

// Violation describes a sibling set whose stored positions are not
// {0..n-1}.
type Violation struct {
	Scope     Scope
	Positions []int
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: positions %v are not contiguous from 0", v.Scope, v.Positions)
}

// IsViolation reports whether err is a *Violation.
func IsViolation(err error) bool {
	var v *Violation
	return errors.As(err, &v)
}

// Verify reads scope and returns a *Violation if its positions are not
// exactly {0..n-1}. Siblings returns them sorted, so the i-th must equal i.
func Verify(ctx context.Context, q schema.Querier, scope Scope) error {
	siblings, err := Siblings(ctx, q, scope)
	if err != nil {
		return err
	}
	positions := make([]int, len(siblings))
	bad := false
	for i, s := range siblings {
		positions[i] = s.Position
		if s.Position != i {
			bad = true
		}
	}
	if bad {
		return &Violation{Scope: scope, Positions: positions}
	}
	return nil
}

// VerifyAll checks every sibling set in the catalog and returns the
// violations found. A read failure stops the walk.
func VerifyAll(ctx context.Context, q schema.Querier, r *schema.Registry) ([]*Violation, error) {
	var out []*Violation
	for _, t := range r.Ordered() {
		scopes, err := AllScopes(ctx, q, t)
		if err != nil {
			return nil, err
		}
		for _, scope := range scopes {
			err := Verify(ctx, q, scope)
			var v *Violation
			switch {
			case errors.As(err, &v):
				out = append(out, v)
			case err != nil:
				return nil, err
			}
		}
	}
	return out, nil
}

// AllScopes lists every non-empty sibling set of t.
func AllScopes(ctx context.Context, q schema.Querier, t *schema.Table) ([]Scope, error) {
	if len(t.ParentColumns) == 0 {
		return []Scope{{Table: t}}, nil
	}

	parents, err := distinctParents(ctx, q, t)
	if err != nil {
		return nil, err
	}
	var scopes []Scope
	for _, p := range parents {
		scopes = append(scopes, Scope{Table: t, Parent: p})
		if t.Edge == nil {
			continue
		}
		masters, err := distinctMasters(ctx, q, t, p)
		if err != nil {
			return nil, err
		}
		for _, m := range masters {
			scopes = append(scopes, Scope{Table: t, Parent: p, Master: &m})
		}
	}
	return scopes, nil
}

func distinctParents(ctx context.Context, q schema.Querier, t *schema.Table) ([][]any, error) {
	cols := t.ParentList("")
	rows, err := q.QueryContext(ctx, fmt.Sprintf("SELECT DISTINCT %s FROM %s ORDER BY %s", cols, t.Name, cols))
	if err != nil {
		return nil, schema.Classify("list "+t.Kind+" parents", err)
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		vals := make([]string, len(t.ParentColumns))
		ptrs := make([]any, len(vals))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, schema.Classify("scan "+t.Kind+" parent", err)
		}
		parent := make([]any, len(vals))
		for i, v := range vals {
			parent[i] = v
		}
		out = append(out, parent)
	}
	if err := rows.Err(); err != nil {
		return nil, schema.Classify("iterate "+t.Kind+" parents", err)
	}
	return out, nil
}

func distinctMasters(ctx context.Context, q schema.Querier, t *schema.Table, parent []any) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE %s ORDER BY %s",
		t.Edge.Master, t.Edge.Table, t.ParentWhere(""), t.Edge.Master)
	rows, err := q.QueryContext(ctx, query, parent...)
	if err != nil {
		return nil, schema.Classify("list "+t.Kind+" masters", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, schema.Classify("scan "+t.Kind+" master", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, schema.Classify("iterate "+t.Kind+" masters", err)
	}
	return out, nil
}
