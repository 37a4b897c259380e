// Package store provides persistence for board configuration documents.
//
// # Architecture
//
// ConfigStore is the single source of truth for every board. Two
// implementations share one update pipeline:
//
//   - SQLiteStore: modernc.org/sqlite, one row per board, JSON document column
//   - MemoryStore: in-process map, used by tests and short-lived sessions
//
// # Updates
//
// Update is an atomic read-modify-write:
//
//	cfg, applied, err := s.Update(ctx, "default", mutate, guard)
//
// Each call runs these steps:
//
//  1. load the current document (under the store lock / inside a transaction)
//  2. hand a private copy to mutate
//  3. if the result equals the previous document, stop (applied=false)
//  4. if guard is set and guard(previous, next) is false, stop (applied=false)
//  5. bump Version by one, validate, persist
//
// The guard always observes the pair produced by this one call, never two
// independent reads.
//
// # SQLite Configuration
//
//	PRAGMA journal_mode=WAL;
//
// The pool is limited to one connection; ":memory:" databases therefore stay
// shared across calls. SQLiteStore additionally writes with
// "WHERE version = ?" and reports ErrVersionConflict if another process
// changed the row.
//
// # Error Handling
//
//   - ErrNotFound: board does not exist
//   - ErrBoardExists: Create with a taken name
//   - ErrVersionConflict: concurrent writer outside this process
//   - board.ErrInvalidConfig: the document (or an update result) failed validation
//
// # Notifications
//
// WithNotifier wraps any ConfigStore and reports accepted writes, which the
// server uses to fan out board.updated events.
package store
