package reorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/schema"
)

// Scope is one sibling set: the rows of Table that share Parent and, for
// tables with master/slave edges, the same master. A nil Master selects the
// first-level rows, those that are never a slave.
type Scope struct {
	Table  *schema.Table
	Parent []any
	Master *string
}

func (s Scope) String() string {
	parts := make([]string, len(s.Parent))
	for i, p := range s.Parent {
		parts[i] = fmt.Sprint(p)
	}
	out := s.Table.Name + "[" + strings.Join(parts, ",") + "]"
	if s.Master != nil {
		out += " master=" + *s.Master
	}
	return out
}

// Predicate returns the WHERE clause selecting the scope and its arguments.
// Columns are unqualified so the clause works in UPDATE statements.
func (s Scope) Predicate() (string, []any) {
	var clauses []string
	var args []any

	t := s.Table
	if len(t.ParentColumns) > 0 {
		clauses = append(clauses, t.ParentWhere(""))
		args = append(args, s.Parent...)
	}
	if e := t.Edge; e != nil {
		sub := fmt.Sprintf("SELECT %s FROM %s WHERE %s", e.Slave, e.Table, t.ParentWhere(""))
		args = append(args, s.Parent...)
		if s.Master == nil {
			clauses = append(clauses, fmt.Sprintf("%s NOT IN (%s)", t.NameColumn, sub))
		} else {
			clauses = append(clauses, fmt.Sprintf("%s IN (%s AND %s = ?)", t.NameColumn, sub, e.Master))
			args = append(args, *s.Master)
		}
	}
	if len(clauses) == 0 {
		return "1 = 1", nil
	}
	return strings.Join(clauses, " AND "), args
}

func (s Scope) rowWhere() string {
	if len(s.Table.ParentColumns) == 0 {
		return s.Table.NameColumn + " = ?"
	}
	return s.Table.NameColumn + " = ? AND " + s.Table.ParentWhere("")
}

func (s Scope) rowArgs(name string) []any {
	return append([]any{name}, s.Parent...)
}

// Studios is the root scope.
func Studios(r *schema.Registry) Scope {
	return Scope{Table: r.Studios()}
}

// GamesOf is the scope of the games of a studio.
func GamesOf(r *schema.Registry, studio catalog.StudioKey) Scope {
	return Scope{Table: r.Games(), Parent: studio.Values()}
}

// MapsOf is the scope of the maps of a game.
func MapsOf(r *schema.Registry, game catalog.GameKey) Scope {
	return Scope{Table: r.Maps(), Parent: game.Values()}
}

// TabsOf is the scope of the tabs of a map.
func TabsOf(r *schema.Registry, m catalog.MapKey) Scope {
	return Scope{Table: r.Tabs(), Parent: m.Values()}
}

// ToolsOf is the scope of the tools of a tab.
func ToolsOf(r *schema.Registry, tab catalog.TabKey) Scope {
	return Scope{Table: r.Tools(), Parent: tab.Values()}
}

// GalleriesOf is the scope of the first-level galleries of a tool.
func GalleriesOf(r *schema.Registry, tool catalog.ToolKey) Scope {
	return Scope{Table: r.Galleries(), Parent: tool.Values()}
}

// SubgalleriesOf is the scope of the slaves of a master gallery.
func SubgalleriesOf(r *schema.Registry, master catalog.GalleryKey) Scope {
	name := master.Name
	return Scope{Table: r.Galleries(), Parent: master.Parent().Values(), Master: &name}
}

// MediaOf is the scope of the first-level media of a gallery.
func MediaOf(r *schema.Registry, gallery catalog.GalleryKey) Scope {
	return Scope{Table: r.Media(), Parent: gallery.Values()}
}

// VariantsOf is the scope of the variants of a master image.
func VariantsOf(r *schema.Registry, master catalog.MediaKey) Scope {
	name := master.Name
	return Scope{Table: r.Media(), Parent: master.Parent().Values(), Master: &name}
}

// LabelsOf is the scope of the labels of a media item.
func LabelsOf(r *schema.Registry, media catalog.MediaKey) Scope {
	return Scope{Table: r.Labels(), Parent: media.Values()}
}

// ScopeOf returns the scope the named row belongs to, resolving its master
// for tables with edges.
func ScopeOf(ctx context.Context, q schema.Querier, t *schema.Table, name string, parent []any) (Scope, error) {
	scope := Scope{Table: t, Parent: parent}
	if t.Edge == nil {
		return scope, nil
	}
	var master string
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? AND %s",
		t.Edge.Master, t.Edge.Table, t.Edge.Slave, t.ParentWhere(""))
	err := q.QueryRowContext(ctx, query, append([]any{name}, parent...)...).Scan(&master)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return scope, nil
	case err != nil:
		return Scope{}, schema.Classify("resolve "+t.Kind+" scope", err)
	}
	scope.Master = &master
	return scope, nil
}

// PositionOf returns the stored position of the named row in scope.
func PositionOf(ctx context.Context, q schema.Querier, scope Scope, name string) (int, error) {
	var pos int
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", scope.Table.Position, scope.Table.Name, scope.rowWhere())
	err := q.QueryRowContext(ctx, query, scope.rowArgs(name)...).Scan(&pos)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, catalog.NewError(catalog.KindNotFound, "read "+scope.Table.Kind+" position",
			fmt.Sprintf("%s %q not found in %s", scope.Table.Kind, name, scope), err)
	}
	if err != nil {
		return 0, schema.Classify("read "+scope.Table.Kind+" position", err)
	}
	return pos, nil
}
