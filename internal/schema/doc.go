// Package schema owns the catalog's relational layout: the embedded DDL with
// its composite keys, CHECK constraints and triggers, the table registry used
// to build position and cascade statements, versioned migrations, and the
// classification of driver errors into catalog error kinds.
//
// The DDL in schema.sql is the durable format of a catalog file. Changes
// must go through a new migration version.
package schema
