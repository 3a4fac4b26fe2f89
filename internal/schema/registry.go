package schema

import "strings"

// Table names.
const (
	Studios         = "studios"
	Games           = "games"
	Maps            = "maps"
	Tabs            = "tabs"
	Tools           = "tools"
	Galleries       = "galleries"
	Subgalleries    = "subgalleries"
	Media           = "media"
	MediaVariants   = "media_variants"
	Outlines        = "outlines"
	BoundingCircles = "bounding_circles"
	Labels          = "labels"
	SearchTokens    = "search_tokens"
)

// Edge describes the master/slave join table of a self-referential entity.
// The edge table repeats the node table's parent columns under the same names.
type Edge struct {
	Table  string
	Slave  string
	Master string
}

// Table describes one ordered entity table.
type Table struct {
	// Name is the SQL table name.
	Name string

	// Kind is the singular entity name used in messages ("gallery").
	Kind string

	// NameColumn holds the entity's own name.
	NameColumn string

	// ParentColumns identify the parent row. For every table but games they
	// are also the trailing key columns.
	ParentColumns []string

	// KeyColumns is the full primary key in declaration order.
	KeyColumns []string

	// Position is the ordering column.
	Position string

	// Edge is set for tables whose rows form a master/slave forest.
	Edge *Edge
}

// KeyWhere returns "c1 = ? AND c2 = ?" over the key columns, optionally
// qualified by alias.
func (t *Table) KeyWhere(alias string) string {
	return where(alias, t.KeyColumns)
}

// ParentWhere returns "p1 = ? AND p2 = ?" over the parent columns.
func (t *Table) ParentWhere(alias string) string {
	return where(alias, t.ParentColumns)
}

// ParentList returns the parent columns joined for a SELECT or ORDER BY
// list.
func (t *Table) ParentList(alias string) string {
	cols := make([]string, len(t.ParentColumns))
	for i, c := range t.ParentColumns {
		cols[i] = qualify(alias, c)
	}
	return strings.Join(cols, ", ")
}

func (t *Table) String() string { return t.Name }

func where(alias string, cols []string) string {
	if len(cols) == 0 {
		return "1 = 1"
	}
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = qualify(alias, c) + " = ?"
	}
	return strings.Join(parts, " AND ")
}

func qualify(alias, col string) string {
	if alias == "" {
		return col
	}
	return alias + "." + col
}

// Registry holds the table descriptors of the catalog. It is built once with
// New and passed by reference to every component that issues statements.
type Registry struct {
	tables map[string]*Table
	order  []*Table
}

// New builds the catalog registry.
func New() *Registry {
	r := &Registry{tables: make(map[string]*Table)}
	r.add(&Table{Name: Studios, Kind: "studio", NameColumn: "name",
		KeyColumns: []string{"name"}, Position: "position"})
	r.add(&Table{Name: Games, Kind: "game", NameColumn: "name",
		KeyColumns: []string{"name"}, ParentColumns: []string{"studio"}, Position: "position"})
	r.add(&Table{Name: Maps, Kind: "map", NameColumn: "name",
		KeyColumns: []string{"name", "game"}, ParentColumns: []string{"game"}, Position: "position"})
	r.add(&Table{Name: Tabs, Kind: "tab", NameColumn: "name",
		KeyColumns: []string{"name", "map", "game"}, ParentColumns: []string{"map", "game"}, Position: "position"})
	r.add(&Table{Name: Tools, Kind: "tool", NameColumn: "name",
		KeyColumns:    []string{"name", "tab", "map", "game"},
		ParentColumns: []string{"tab", "map", "game"}, Position: "position"})
	r.add(&Table{Name: Galleries, Kind: "gallery", NameColumn: "name",
		KeyColumns:    []string{"name", "tool", "tab", "map", "game"},
		ParentColumns: []string{"tool", "tab", "map", "game"}, Position: "position",
		Edge:          &Edge{Table: Subgalleries, Slave: "slave", Master: "master"}})
	r.add(&Table{Name: Media, Kind: "media", NameColumn: "name",
		KeyColumns:    []string{"name", "gallery", "tool", "tab", "map", "game"},
		ParentColumns: []string{"gallery", "tool", "tab", "map", "game"}, Position: "position",
		Edge:          &Edge{Table: MediaVariants, Slave: "slave", Master: "master"}})
	r.add(&Table{Name: Labels, Kind: "label", NameColumn: "text",
		KeyColumns:    []string{"text", "media", "gallery", "tool", "tab", "map", "game"},
		ParentColumns: []string{"media", "gallery", "tool", "tab", "map", "game"}, Position: "position"})
	return r
}

func (r *Registry) add(t *Table) {
	r.tables[t.Name] = t
	r.order = append(r.order, t)
}

// Ordered returns every ordered table, root first.
func (r *Registry) Ordered() []*Table {
	out := make([]*Table, len(r.order))
	copy(out, r.order)
	return out
}

// Studios returns the studios table.
func (r *Registry) Studios() *Table { return r.tables[Studios] }

// Games returns the games table.
func (r *Registry) Games() *Table { return r.tables[Games] }

// Maps returns the maps table.
func (r *Registry) Maps() *Table { return r.tables[Maps] }

// Tabs returns the tabs table.
func (r *Registry) Tabs() *Table { return r.tables[Tabs] }

// Tools returns the tools table.
func (r *Registry) Tools() *Table { return r.tables[Tools] }

// Galleries returns the galleries table.
func (r *Registry) Galleries() *Table { return r.tables[Galleries] }

// Media returns the media table.
func (r *Registry) Media() *Table { return r.tables[Media] }

// Labels returns the labels table.
func (r *Registry) Labels() *Table { return r.tables[Labels] }
