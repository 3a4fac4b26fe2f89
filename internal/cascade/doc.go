// Package cascade deletes catalog nodes together with everything below them.
//
// Foreign keys with ON DELETE CASCADE remove the containment chain (a game
// takes its maps, tabs, tools, galleries and media with it). Two things a
// foreign key cannot reach are handled here, inside the caller's transaction:
//
//   - master/slave forests. Deleting a gallery deletes every gallery below it
//     through the subgalleries edges, deepest first. Media variants work the
//     same way.
//   - search tokens, which store the gallery path without a foreign key.
//
// Every delete closes the position gap the node leaves in its sibling set.
package cascade
