// Package sqlite provides a SQLite-backed implementation of driven.TableStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Each index table is stored as a single
// row holding the table's JSON snapshot, so a Save replaces the whole table in one
// statement and a crash never leaves a half-written table behind.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// The database lives at <store dir>/index/tables.db.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
