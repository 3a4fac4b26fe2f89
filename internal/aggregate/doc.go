// Package aggregate builds the composite reads the catalog UI needs.
//
// Each read returns a primary slice in position order plus the optional
// collections the caller asked for. A requested optional collection always
// has the same length as the primary slice; a missing 0..1 record is a nil
// slot and a missing 0..n collection is an empty slice. Collections that were
// not requested are nil.
//
// The functions take a Querier so they can run inside a caller's
// transaction. Use store.Read for a consistent snapshot across tables.
package aggregate

import "github.com/roach88/catalog/internal/schema"

// Querier runs statements and knows the table registry. *store.Tx
// satisfies it.
type Querier interface {
	schema.Querier
	Registry() *schema.Registry
}
