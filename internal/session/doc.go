// Package session owns the editing state of one loaded image.
//
// A Session is the single controller for the edit aggregate: the adjustment
// vector, the geometry, the undo/redo history and the comparison settings.
// Every change goes through one of its command methods, and every command
// holds the session lock until it finishes, so commands never interleave.
//
// # Lifecycle
//
//	NoImage --load--> ImageLoaded --commit--> Editing
//	   any  --load--> ImageLoaded (previous session discarded)
//	Editing --reset--> ImageLoaded
//
// Loading decodes outside the lock. Each load takes a generation number
// first; when the decode finishes, the resource is installed only if no newer
// load has started since. Stale results are dropped with ErrSuperseded.
//
// # History
//
// An adjustment that leaves the vector unchanged is a no-op and records
// nothing. Undo and Redo only move the history cursor. Whether geometry
// changes are recorded is controlled by GeometryPolicy.
package session
