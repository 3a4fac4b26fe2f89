package reorder

import (
	"context"
	"fmt"
	"sort"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/schema"
)

// Draft is a mutable copy of one sibling handed to a batch transform.
// Transforms rewrite Position; the name and the previous position are
// captured when the draft is made and cannot change.
type Draft struct {
	name     string
	previous int

	// Position is the new position of the row.
	Position int
}

// Name returns the sibling's name.
func (d *Draft) Name() string { return d.name }

// Previous returns the position the sibling held when the draft was made.
func (d *Draft) Previous() int { return d.previous }

// Changed reports whether the transform moved the sibling.
func (d *Draft) Changed() bool { return d.Position != d.previous }

// Batch reads scope in position order, passes one draft per sibling to
// transform, and writes back every draft whose position changed. It returns
// the number of rows written.
//
// The transform must leave the positions as exactly {0, …, n-1}; anything
// else panics with *catalog.InvariantError. Reordering the slice itself has
// no effect: Batch writes from its own copy of the draft list.
func Batch(ctx context.Context, q schema.Querier, scope Scope, transform func(drafts []*Draft)) (int, error) {
	siblings, err := Siblings(ctx, q, scope)
	if err != nil {
		return 0, err
	}

	drafts := make([]*Draft, len(siblings))
	for i, s := range siblings {
		drafts[i] = &Draft{name: s.Name, previous: s.Position, Position: s.Position}
	}
	owned := make([]*Draft, len(drafts))
	copy(owned, drafts)

	transform(drafts)

	checkContiguous(scope, owned)

	written := 0
	for _, d := range owned {
		if !d.Changed() {
			continue
		}
		if err := SetPosition(ctx, q, scope, d.name, d.Position); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// checkContiguous panics unless the draft positions are exactly {0..n-1}.
func checkContiguous(scope Scope, drafts []*Draft) {
	positions := make([]int, len(drafts))
	for i, d := range drafts {
		positions[i] = d.Position
	}
	sort.Ints(positions)
	if len(positions) > 0 && (positions[0] != 0 || positions[len(positions)-1] != len(positions)-1) {
		panic(catalog.Invariantf(catalog.InvariantPositions,
			"%s: positions %v do not span 0..%d", scope, positions, len(positions)-1))
	}
	for i, p := range positions {
		if p != i {
			panic(catalog.Invariantf(catalog.InvariantPositions,
				"%s: positions %v are not {0..%d}", scope, positions, len(positions)-1))
		}
	}
}

// Apply reorders scope so that names, which must list every sibling exactly
// once, appear in the given order.
func Apply(ctx context.Context, q schema.Querier, scope Scope, names []string) (int, error) {
	siblings, err := Siblings(ctx, q, scope)
	if err != nil {
		return 0, err
	}
	order, err := permutation(scope, siblings, names)
	if err != nil {
		return 0, err
	}
	return Batch(ctx, q, scope, func(drafts []*Draft) {
		for _, d := range drafts {
			d.Position = order[d.Name()]
		}
	})
}

// Move places the named sibling at position to and slides the siblings in
// between by one.
func Move(ctx context.Context, q schema.Querier, scope Scope, name string, to int) (int, error) {
	siblings, err := Siblings(ctx, q, scope)
	if err != nil {
		return 0, err
	}
	if to < 0 || to >= len(siblings) {
		return 0, catalog.NewError(catalog.KindValidation, "move "+scope.Table.Kind,
			fmt.Sprintf("position %d is outside 0..%d", to, len(siblings)-1), nil)
	}
	names := make([]string, 0, len(siblings))
	found := false
	for _, s := range siblings {
		if s.Name == name {
			found = true
			continue
		}
		names = append(names, s.Name)
	}
	if !found {
		return 0, catalog.NewError(catalog.KindNotFound, "move "+scope.Table.Kind,
			fmt.Sprintf("%s %q not found in %s", scope.Table.Kind, name, scope), nil)
	}
	names = append(names[:to], append([]string{name}, names[to:]...)...)
	return Apply(ctx, q, scope, names)
}

func permutation(scope Scope, siblings []Sibling, names []string) (map[string]int, error) {
	op := "reorder " + scope.Table.Kind
	if len(names) != len(siblings) {
		return nil, catalog.NewError(catalog.KindValidation, op,
			fmt.Sprintf("got %d names for %d siblings", len(names), len(siblings)), nil)
	}
	existing := make(map[string]bool, len(siblings))
	for _, s := range siblings {
		existing[s.Name] = true
	}
	order := make(map[string]int, len(names))
	for i, n := range names {
		if !existing[n] {
			return nil, catalog.NewError(catalog.KindValidation, op,
				fmt.Sprintf("%q is not a sibling in %s", n, scope), nil)
		}
		if _, dup := order[n]; dup {
			return nil, catalog.NewError(catalog.KindValidation, op,
				fmt.Sprintf("%q listed twice", n), nil)
		}
		order[n] = i
	}
	return order, nil
}
