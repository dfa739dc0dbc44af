package walkengine

import "github.com/joe/scanwalk/pkg/scanwalk"

// Event is the interface implemented by all walk engine events.
type Event interface {
	isEvent()
}

// EventEmitter is the interface for emitting events.
type EventEmitter interface {
	Emit(event Event)
}

// EmitterFunc adapts a function to EventEmitter.
type EmitterFunc func(Event)

// Emit calls f(event).
func (f EmitterFunc) Emit(event Event) {
	f(event)
}

// WalkStarted is emitted once, before the root is visited.
type WalkStarted struct {
	Root string
}

func (WalkStarted) isEvent() {}

// EntryVisited is emitted for every entry that passes the type filter.
type EntryVisited struct {
	Path  string
	Type  scanwalk.TypeHint
	Depth int

	// Set only when the engine collects metadata.
	Inode uint64
	Size  int64
}

func (EntryVisited) isEvent() {}

// DirectoryPruned is emitted when the engine stops the walk from descending
// into a directory.
type DirectoryPruned struct {
	Path   string
	Reason string
}

func (DirectoryPruned) isEvent() {}

// WalkProgress is emitted every ProgressInterval entries.
type WalkProgress struct {
	Stats   Stats
	Current string
}

func (WalkProgress) isEvent() {}

// WalkComplete is emitted when the walk ends, successfully or not.
type WalkComplete struct {
	Stats Stats
	Err   error
}

func (WalkComplete) isEvent() {}

// ErrorOccurred is emitted for per-entry problems that don't stop the walk.
type ErrorOccurred struct {
	Path string
	Err  error
}

func (ErrorOccurred) isEvent() {}
