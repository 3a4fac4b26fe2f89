package reorder

import (
	"context"
	"fmt"

	"github.com/roach88/catalog/internal/catalog"
	"github.com/roach88/catalog/internal/schema"
)

// ShiftDown decrements the position of every sibling in scope whose position
// is greater than threshold. Call it after a row at threshold was removed
// from the scope.
func ShiftDown(ctx context.Context, q schema.Querier, scope Scope, threshold int) (int64, error) {
	return shift(ctx, q, scope, "-", ">", threshold)
}

// ShiftUp increments the position of every sibling in scope whose position
// is greater than or equal to threshold. Call it before inserting a row at
// threshold.
func ShiftUp(ctx context.Context, q schema.Querier, scope Scope, threshold int) (int64, error) {
	return shift(ctx, q, scope, "+", ">=", threshold)
}

func shift(ctx context.Context, q schema.Querier, scope Scope, sign, cmp string, threshold int) (int64, error) {
	pred, args := scope.Predicate()
	col := scope.Table.Position
	query := fmt.Sprintf("UPDATE %s SET %s = %s %s 1 WHERE %s AND %s %s ?",
		scope.Table.Name, col, col, sign, pred, col, cmp)
	res, err := q.ExecContext(ctx, query, append(args, threshold)...)
	if err != nil {
		return 0, schema.Classify("shift "+scope.Table.Kind+" positions", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, schema.Classify("shift "+scope.Table.Kind+" positions", err)
	}
	return n, nil
}

// Count returns the number of rows in scope.
func Count(ctx context.Context, q schema.Querier, scope Scope) (int, error) {
	pred, args := scope.Predicate()
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", scope.Table.Name, pred)
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, schema.Classify("count "+scope.Table.Kind+" siblings", err)
	}
	return n, nil
}

// Sibling is one row of a scope.
type Sibling struct {
	Name     string
	Position int
}

// Siblings returns the rows of scope in position order. Ties, which only a
// broken file can contain, are ordered by name.
func Siblings(ctx context.Context, q schema.Querier, scope Scope) ([]Sibling, error) {
	pred, args := scope.Predicate()
	t := scope.Table
	query := fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s ORDER BY %s ASC, %s COLLATE BINARY ASC",
		t.NameColumn, t.Position, t.Name, pred, t.Position, t.NameColumn)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, schema.Classify("read "+t.Kind+" siblings", err)
	}
	defer rows.Close()

	siblings := []Sibling{}
	for rows.Next() {
		var s Sibling
		if err := rows.Scan(&s.Name, &s.Position); err != nil {
			return nil, schema.Classify("scan "+t.Kind+" sibling", err)
		}
		siblings = append(siblings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, schema.Classify("iterate "+t.Kind+" siblings", err)
	}
	return siblings, nil
}

// SetPosition writes the position of one row.
func SetPosition(ctx context.Context, q schema.Querier, scope Scope, name string, position int) error {
	query := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s",
		scope.Table.Name, scope.Table.Position, scope.rowWhere())
	res, err := q.ExecContext(ctx, query, append([]any{position}, scope.rowArgs(name)...)...)
	if err != nil {
		return schema.Classify("set "+scope.Table.Kind+" position", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return catalog.NewError(catalog.KindNotFound, "set "+scope.Table.Kind+" position",
			fmt.Sprintf("%s %q not found in %s", scope.Table.Kind, name, scope), nil)
	}
	return nil
}

// OpenSlot prepares scope for an insert and returns the position the new row
// must take. A negative or out-of-range at appends; any other value shifts the
// tail up by one to make room.
func OpenSlot(ctx context.Context, q schema.Querier, scope Scope, at int) (int, error) {
	n, err := Count(ctx, q, scope)
	if err != nil {
		return 0, err
	}
	if at < 0 || at >= n {
		return n, nil
	}
	if _, err := ShiftUp(ctx, q, scope, at); err != nil {
		return 0, err
	}
	return at, nil
}

// Remove closes the gap left by a row that held position in scope.
func Remove(ctx context.Context, q schema.Querier, scope Scope, position int) error {
	_, err := ShiftDown(ctx, q, scope, position)
	return err
}
