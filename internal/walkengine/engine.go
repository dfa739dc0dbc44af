// Package walkengine drives a scanwalk traversal for the command line: it
// applies pruning and depth limits through the entries' Skip flag, filters
// and counts entries, and reports everything as events.
package walkengine

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/joe/scanwalk/internal/config"
	"github.com/joe/scanwalk/pkg/scanwalk"
)

// ProgressInterval is how many entries pass between WalkProgress events.
const ProgressInterval = 500

// Stats counts what a walk has seen so far.
type Stats struct {
	Entries  int
	Dirs     int
	Files    int
	Symlinks int
	Other    int
	Pruned   int
	Errors   int
	Bytes    int64
}

// Engine walks one root on one Source.
type Engine struct {
	Source         scanwalk.Source
	Root           string
	FollowSymlinks bool
	MaxDepth       int
	Type           config.EntryType

	// CollectMetadata fetches inode and size for every reported entry.
	CollectMetadata bool

	Pruner  Pruner
	Emitter EventEmitter
	Logger  logrus.FieldLogger

	Stats Stats
}

// NewEngine creates an engine with no pruning, no depth limit and no-op
// event and log sinks.
func NewEngine(src scanwalk.Source, root string) *Engine {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return &Engine{
		Source:   src,
		Root:     root,
		MaxDepth: -1,
		Pruner:   NewGlobPruner(),
		Emitter:  EmitterFunc(func(Event) {}),
		Logger:   logger,
	}
}

// NewEngineFromConfig creates an engine configured from command-line options.
func NewEngineFromConfig(src scanwalk.Source, root string, cfg *config.Config) *Engine {
	engine := NewEngine(src, root)
	engine.FollowSymlinks = cfg.FollowSymlinks
	engine.MaxDepth = cfg.MaxDepth
	engine.Type = cfg.Type
	engine.CollectMetadata = cfg.Long
	engine.Pruner = NewGlobPruner(cfg.Prune...)

	return engine
}

// Run walks the tree until it is exhausted, fails, or ctx is cancelled.
// The returned error is the walk error (a *scanwalk.PathError) or ctx.Err().
func (e *Engine) Run(ctx context.Context) error {
	log := e.Logger.WithField("root", e.Root)
	log.WithField("follow_symlinks", e.FollowSymlinks).Info("walk started")
	e.Emitter.Emit(WalkStarted{Root: e.Root})

	walker := scanwalk.Walk(e.Source, e.Root,
		scanwalk.WithFollowSymlinks(e.FollowSymlinks),
		scanwalk.WithLogger(e.Logger),
	)
	defer walker.Close()

	err := e.consume(ctx, walker)

	e.Emitter.Emit(WalkComplete{Stats: e.Stats, Err: err})

	fields := logrus.Fields{
		"entries": e.Stats.Entries,
		"dirs":    e.Stats.Dirs,
		"pruned":  e.Stats.Pruned,
	}
	if err != nil {
		log.WithFields(fields).WithError(err).Debug("walk failed")
		return err
	}

	log.WithFields(fields).Info("walk complete")

	return nil
}

func (e *Engine) consume(ctx context.Context, walker *scanwalk.Walker) error {
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("walk cancelled: %w", err)
		}

		entry, ok := walker.Next()
		if !ok {
			return walker.Err()
		}

		if err := e.visit(entry, walker.Depth()); err != nil {
			return err
		}

		if e.Stats.Entries%ProgressInterval == 0 {
			e.Emitter.Emit(WalkProgress{Stats: e.Stats, Current: entry.Path()})
		}
	}
}

// visit classifies, counts and reports one entry, then decides whether the
// walker may descend into it.
func (e *Engine) visit(entry *scanwalk.Entry, depth int) error {
	kind, err := classify(entry, e.FollowSymlinks)
	if err != nil {
		return err
	}

	e.Stats.Entries++
	e.count(kind)

	if e.wanted(kind) {
		e.report(entry, kind, depth)
	}

	if kind != scanwalk.TypeDirectory && !(depth == 0 && kind == scanwalk.TypeSymlink) {
		return nil
	}

	if reason := e.pruneReason(entry, depth); reason != "" {
		entry.Skip = true
		e.Stats.Pruned++
		e.Logger.WithFields(logrus.Fields{"path": entry.Path(), "reason": reason}).Debug("pruned")
		e.Emitter.Emit(DirectoryPruned{Path: entry.Path(), Reason: reason})
	}

	return nil
}

func (e *Engine) count(kind scanwalk.TypeHint) {
	switch kind {
	case scanwalk.TypeDirectory:
		e.Stats.Dirs++
	case scanwalk.TypeRegular:
		e.Stats.Files++
	case scanwalk.TypeSymlink:
		e.Stats.Symlinks++
	case scanwalk.TypeUnknown, scanwalk.TypeSocket, scanwalk.TypeFIFO,
		scanwalk.TypeBlockDevice, scanwalk.TypeCharDevice:
		e.Stats.Other++
	default:
		e.Stats.Other++
	}
}

func (e *Engine) pruneReason(entry *scanwalk.Entry, depth int) string {
	if e.MaxDepth >= 0 && depth >= e.MaxDepth {
		return fmt.Sprintf("max depth %d", e.MaxDepth)
	}

	if e.Pruner.ShouldPrune(relativeTo(e.Root, entry.Path())) {
		return "matched prune pattern"
	}

	return ""
}

func (e *Engine) report(entry *scanwalk.Entry, kind scanwalk.TypeHint, depth int) {
	visited := EntryVisited{
		Path:  entry.Path(),
		Type:  kind,
		Depth: depth,
	}

	if e.CollectMetadata {
		md, err := entry.Metadata(false)
		if err != nil {
			// The entry vanished or became unreadable after it was listed;
			// report it without metadata rather than abandon the walk.
			e.Stats.Errors++
			e.Logger.WithError(err).WithField("path", entry.Path()).Warn("metadata unavailable")
			e.Emitter.Emit(ErrorOccurred{Path: entry.Path(), Err: err})
		} else {
			visited.Inode = md.Inode
			visited.Size = md.Size
			e.Stats.Bytes += md.Size
		}
	}

	e.Emitter.Emit(visited)
}

func (e *Engine) wanted(kind scanwalk.TypeHint) bool {
	switch e.Type {
	case config.AnyType:
		return true
	case config.FilesOnly:
		return kind == scanwalk.TypeRegular
	case config.DirsOnly:
		return kind == scanwalk.TypeDirectory
	case config.LinksOnly:
		return kind == scanwalk.TypeSymlink
	default:
		return true
	}
}

// classify returns the entry's type, answering from the listing hint where
// possible. With followSymlinks, a symlink to a directory counts as a
// directory, matching what the walker will descend into.
func classify(entry *scanwalk.Entry, followSymlinks bool) (scanwalk.TypeHint, error) {
	isLink, err := entry.IsSymlink()
	if err != nil {
		return scanwalk.TypeUnknown, err
	}

	if isLink && !followSymlinks {
		return scanwalk.TypeSymlink, nil
	}

	isDir, err := entry.IsDir(followSymlinks)
	if err != nil {
		return scanwalk.TypeUnknown, err
	}

	if isDir {
		return scanwalk.TypeDirectory, nil
	}

	if isLink {
		return scanwalk.TypeSymlink, nil
	}

	isFile, err := entry.IsFile(false)
	if err != nil {
		return scanwalk.TypeUnknown, err
	}

	if isFile {
		return scanwalk.TypeRegular, nil
	}

	if hint := entry.Hint(); hint != scanwalk.TypeUnknown {
		return hint, nil
	}

	md, err := entry.Metadata(false)
	if err != nil {
		return scanwalk.TypeUnknown, err
	}

	return scanwalk.TypeHintFromMode(md.Mode), nil
}
