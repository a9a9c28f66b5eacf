// Package history implements a linear undo/redo log of snapshots.
//
// The log always holds at least one entry and a cursor pointing at the
// current one. Committing while the cursor is behind the newest entry discards
// the redo branch. Undo and Redo only move the cursor; they never append, so
// navigating back and forth cannot create duplicate entries.
//
// A Log is not safe for concurrent use. It is owned by the session controller,
// which serializes every command.
package history

// Log is a linear history of snapshots of type T.
type Log[T any] struct {
	entries []T
	cursor  int
	limit   int
}

// Option configures a Log.
type Option func(*logOptions)

type logOptions struct {
	limit int
}

// WithLimit caps the number of retained entries. When a commit exceeds the
// cap the oldest entries are dropped. A limit below 2 means unbounded.
func WithLimit(n int) Option {
	return func(o *logOptions) {
		o.limit = n
	}
}

// New creates a log holding a single entry.
func New[T any](initial T, opts ...Option) *Log[T] {
	var o logOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.limit < 2 {
		o.limit = 0
	}
	return &Log[T]{
		entries: []T{initial},
		limit:   o.limit,
	}
}

// Commit appends s after the cursor, discarding any entries that were ahead
// of it, and moves the cursor to the new last entry.
func (l *Log[T]) Commit(s T) {
	l.entries = append(l.entries[:l.cursor+1], s)
	l.cursor = len(l.entries) - 1

	if l.limit > 0 && len(l.entries) > l.limit {
		drop := len(l.entries) - l.limit
		kept := make([]T, l.limit)
		copy(kept, l.entries[drop:])
		l.entries = kept
		l.cursor -= drop
	}
}

// Undo steps the cursor back one entry and returns the entry now current.
// At the first entry it returns the current entry and false.
func (l *Log[T]) Undo() (T, bool) {
	if l.cursor == 0 {
		return l.entries[l.cursor], false
	}
	l.cursor--
	return l.entries[l.cursor], true
}

// Redo steps the cursor forward one entry and returns the entry now current.
// At the last entry it returns the current entry and false.
func (l *Log[T]) Redo() (T, bool) {
	if l.cursor == len(l.entries)-1 {
		return l.entries[l.cursor], false
	}
	l.cursor++
	return l.entries[l.cursor], true
}

// Reinitialize replaces the whole log with a single entry.
func (l *Log[T]) Reinitialize(s T) {
	l.entries = []T{s}
	l.cursor = 0
}

// Current returns the entry at the cursor.
func (l *Log[T]) Current() T {
	return l.entries[l.cursor]
}

// Len returns the number of entries.
func (l *Log[T]) Len() int {
	return len(l.entries)
}

// Cursor returns the index of the current entry.
func (l *Log[T]) Cursor() int {
	return l.cursor
}

// CanUndo reports whether Undo would move the cursor.
func (l *Log[T]) CanUndo() bool {
	return l.cursor > 0
}

// CanRedo reports whether Redo would move the cursor.
func (l *Log[T]) CanRedo() bool {
	return l.cursor < len(l.entries)-1
}
