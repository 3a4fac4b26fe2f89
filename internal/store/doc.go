// Package store provides SQLite-backed durable storage for the catalog.
//
// A Store owns one database file and the writer gate that serializes every
// call touching it. All work happens inside WithTransaction, which pins a
// connection and runs the body in BEGIN EXCLUSIVE TRANSACTION:
//
//	err := s.Update(ctx, func(ctx context.Context, tx *store.Tx) error {
//		_, err := tx.InsertGallery(ctx, g)
//		return err
//	})
//
// Tx carries the per-entity inserts. Each insert validates its input before
// issuing a statement, opens a slot in the row's sibling set and classifies
// driver failures into *catalog.Error.
//
// # Database Configuration
//
//   - WAL mode: concurrent readers from other processes during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: cascading containment keys
//   - recursive_triggers=ON: trigger chains run to completion
package store
