// Package reorder maintains the sibling ordering of catalog tables.
//
// Every ordered row has a zero-based position among the rows sharing its
// parent (its Scope). After any committed change the positions of a scope are
// exactly {0, …, n-1}. Two primitives move the tail of a scope by one:
//
//   - ShiftDown closes the gap left by a removed row.
//   - ShiftUp opens a slot before an insert at an interior position.
//
// Batch applies an arbitrary permutation: it reads the scope in order, hands
// drafts to a transform, checks that the resulting positions are exactly
// {0, …, n-1}, and writes back only the rows that moved. A transform that
// produces any other set is a programming error and panics with
// *catalog.InvariantError.
//
// All functions take a schema.Querier and are meant to run inside the
// store's exclusive transaction.
package reorder
