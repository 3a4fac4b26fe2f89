// Package migrate moves a catalog node to a different parent.
//
// A move runs inside the caller's transaction in fixed steps:
//
//  1. Read the node's current position. A node that cannot be read is
//     logged and left alone.
//  2. If the current parent already satisfies the caller's predicate,
//     nothing is written.
//  3. Walk the candidate parents in position order; the first one the
//     predicate keeps is the target. No kept candidate is a broken caller
//     contract and panics.
//  4. Optionally close the gap in the source sibling set.
//  5. Rewrite the parent columns. ON UPDATE CASCADE carries the new parent to
//     every descendant row and edge.
//  6. Position the node among the target's children according to the
//     target strategy.
//  7. Rewrite denormalized copies of the parent path that no foreign key
//     reaches (search tokens).
package migrate
