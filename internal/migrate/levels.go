package migrate

import (
	"context"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/reorder"
	"github.com/roach88/catalog/internal/schema"
	"github.com/roach88/catalog/internal/store"
)

// ToolLevel moves tools between tabs.
var ToolLevel = Level[catalog.TabKey]{
	Table:  (*schema.Registry).Tools,
	Values: catalog.TabKey.Values,
	Propagate: func(ctx context.Context, tx *store.Tx, tool string, from, to catalog.TabKey) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE search_tokens SET tab = ?, map = ?, game = ?
			WHERE tool = ? AND tab = ? AND map = ? AND game = ?
		`, to.Name, to.Map, to.Game, tool, from.Name, from.Map, from.Game)
		return schema.Classify("propagate search tokens", err)
	},
}

// TabLevel moves tabs between maps.
var TabLevel = Level[catalog.MapKey]{
	Table:  (*schema.Registry).Tabs,
	Values: catalog.MapKey.Values,
	Propagate: func(ctx context.Context, tx *store.Tx, tab string, from, to catalog.MapKey) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE search_tokens SET map = ?, game = ?
			WHERE tab = ? AND map = ? AND game = ?
		`, to.Name, to.Game, tab, from.Name, from.Game)
		return schema.Classify("propagate search tokens", err)
	},
}

// Tool moves tool to the first candidate tab keep accepts. A nil candidates
// list means every tab of the tool's map in position order.
func Tool(ctx context.Context, tx *store.Tx, tool catalog.ToolKey, candidates []catalog.TabKey, keep func(catalog.TabKey) bool, opts Options) (Result, error) {
	tool = tool.Normalize()
	if err := catalog.Validate("migrate tool", tool); err != nil {
		return Result{}, err
	}
	from := tool.Parent()
	if candidates == nil {
		siblings, err := reorder.Siblings(ctx, tx, reorder.TabsOf(tx.Registry(), from.Parent()))
		if err != nil {
			return Result{}, err
		}
		for _, s := range siblings {
			candidates = append(candidates, from.Parent().Tab(s.Name))
		}
	}
	return Move(ctx, tx, ToolLevel, tool.Name, from, normalizeTabs(candidates), keep, opts)
}

// Tab moves tab to the first candidate map keep accepts. A nil candidates
// list means every map of the tab's game in position order.
func Tab(ctx context.Context, tx *store.Tx, tab catalog.TabKey, candidates []catalog.MapKey, keep func(catalog.MapKey) bool, opts Options) (Result, error) {
	tab = tab.Normalize()
	if err := catalog.Validate("migrate tab", tab); err != nil {
		return Result{}, err
	}
	from := tab.Parent()
	if candidates == nil {
		siblings, err := reorder.Siblings(ctx, tx, reorder.MapsOf(tx.Registry(), from.Parent()))
		if err != nil {
			return Result{}, err
		}
		for _, s := range siblings {
			candidates = append(candidates, from.Parent().Map(s.Name))
		}
	}
	return Move(ctx, tx, TabLevel, tab.Name, from, normalizeMaps(candidates), keep, opts)
}

// ToTab returns a predicate accepting exactly the tab named name.
func ToTab(name string) func(catalog.TabKey) bool {
	name = catalog.NormalizeName(name)
	return func(t catalog.TabKey) bool { return t.Name == name }
}

// ToMap returns a predicate accepting exactly the map named name.
func ToMap(name string) func(catalog.MapKey) bool {
	name = catalog.NormalizeName(name)
	return func(m catalog.MapKey) bool { return m.Name == name }
}

func normalizeTabs(tabs []catalog.TabKey) []catalog.TabKey {
	out := make([]catalog.TabKey, len(tabs))
	for i, t := range tabs {
		out[i] = t.Normalize()
	}
	return out
}

func normalizeMaps(maps []catalog.MapKey) []catalog.MapKey {
	out := make([]catalog.MapKey, len(maps))
	for i, m := range maps {
		out[i] = m.Normalize()
	}
	return out
}
