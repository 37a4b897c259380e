// Package layout keeps grid engines and stored boards in sync.
//
// A Session is the state of one open board: edit mode and the layout metrics
// (main area width, column count, size class). Every area of the board gets a
// Synchronizer bound to one Engine:
//
//	store ──Items/Refresh──▶ Synchronizer ──Load──▶ Engine
//	Engine ──NodeEvent────▶ Synchronizer ──Update─▶ store
//
// The engine is always derived from the store. Events are applied by pure
// reducers (ReduceChange, ReduceAdd) through store.Update; an add is guarded
// by AreaChanged so moving an item within its own area never writes.
//
// Nothing runs before the metrics are known: every call returns
// ErrMetricsNotReady until width, column count and size class are set.
//
// Manager owns the sessions of a process, creates synchronizers on demand
// (rendering into a View), drops redelivered events and refreshes sibling
// areas after an item moved between them.
package layout
