// Package board defines the board configuration document and the pure projections
// the layout layer builds on.
//
// # Document
//
// A Config is one named board: an ordered list of apps, an ordered list of widgets,
// settings and a version counter owned by the store. Every placeable item carries
// exactly one Area and a Shape with one entry per size class it has been placed in:
//
//	{
//	  "id": "plex",
//	  "area": {"type": "wrapper", "properties": {"id": "default"}},
//	  "shape": {"md": {"location": {"x": 0, "y": 0}, "size": {"width": 2, "height": 2}}}
//	}
//
// Sidebar areas use a location instead of an id:
//
//	{"type": "sidebar", "properties": {"location": "left"}}
//
// # Projections
//
//   - FilterApps / FilterWidgets: items of one area, original order kept
//   - AreaFilter: memoized projection keyed on (version, collection length)
//   - Registry: stable per-item handles, grows monotonically
//
// Nothing in this package performs I/O or locking; callers own synchronisation.
package board
