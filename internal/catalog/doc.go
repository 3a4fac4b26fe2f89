// Package catalog defines the domain model of the hierarchical content catalog.
//
// The catalog is a strict containment chain:
//
//	studio → game → map → tab → tool → gallery → media → overlays
//
// Galleries form a master/slave tree inside one tool and media form a
// master/variant tree inside one gallery. Every node is identified by its
// path key: its own name plus the names of all of its ancestors, so two
// nodes with the same leaf name under different ancestors stay distinct.
//
// # Invariants
//
// The storage layer keeps the following true at the end of every committed
// transaction:
//
//   - Sibling positions are exactly {0, …, n-1}.
//   - Master/slave edges form a forest.
//   - Media attach only to leaf galleries.
//   - Overlays and variants attach only to images.
//   - Optional geometry groups are all-null or all-set and lie in [0,1].
//
// Errors returned by the engine are *Error values classified by Kind.
// Broken caller contracts panic with *InvariantError.
package catalog
