package scanwalk

import (
	"io"
	"iter"

	"github.com/sirupsen/logrus"
)

// Option configures a Walker.
type Option func(*Walker)

// Walker produces a pre-order, depth-first sequence of entries for a root and
// everything under it. Siblings come in listing order; nothing is sorted and
// nothing beyond the directory currently being listed is buffered.
//
// The walker keeps one open Scanner per directory on the path from the root to
// the current entry. Close releases all of them.
type Walker struct {
	root           *Entry
	followSymlinks bool
	logger         logrus.FieldLogger

	// stack holds the scans in progress, innermost last.
	stack []*Scanner
	// last is the entry most recently returned by Next; its descent is
	// decided when Next is called again.
	last      *Entry
	lastDepth int

	started bool
	done    bool
	err     error
}

// Walk returns a Walker over path and everything beneath it.
// The root entry is synthesized from path and yielded first, verbatim.
func Walk(src Source, path string, opts ...Option) *Walker {
	return WalkEntry(NewEntry(src, path), opts...)
}

// WalkEntry returns a Walker rooted at an existing entry, e.g. one obtained
// from an earlier Scan or Walk. The entry itself is yielded first, unchanged.
func WalkEntry(root *Entry, opts ...Option) *Walker {
	walker := &Walker{
		root:   root,
		logger: discardLogger(),
	}

	for _, opt := range opts {
		opt(walker)
	}

	return walker
}

// WithFollowSymlinks makes the walker descend into symlinks that point at
// directories. Off by default, since a link back to an ancestor would make
// the walk infinite.
func WithFollowSymlinks(follow bool) Option {
	return func(w *Walker) {
		w.followSymlinks = follow
	}
}

// WithLogger sets the logger used for debug tracing of descents.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(w *Walker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// All returns the walk as a range-over-func sequence. Breaking out of the
// loop closes every open directory handle. A walk failure is yielded once, as
// the last element, with a nil Entry.
func (w *Walker) All() iter.Seq2[*Entry, error] {
	return func(yield func(*Entry, error) bool) {
		defer w.Close()

		for {
			entry, ok := w.Next()
			if !ok {
				break
			}

			if !yield(entry, nil) {
				return
			}
		}

		if err := w.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// Close stops the walk and releases every open directory handle.
// It is safe to call more than once.
func (w *Walker) Close() error {
	w.done = true
	w.last = nil

	var firstErr error

	for len(w.stack) > 0 {
		if err := w.pop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// Depth returns the depth of the entry most recently returned by Next.
// The root is at depth 0.
func (w *Walker) Depth() int {
	return w.lastDepth
}

// Err returns the error that stopped the walk, if any.
// Check it after Next returns false.
func (w *Walker) Err() error {
	return w.err
}

// Next returns the next entry of the walk.
// Returns (nil, false) when the walk is complete, has failed, or was closed.
//
// Before moving on, Next decides whether to descend into the entry it
// returned last time: it does so unless that entry's Skip is set or it isn't
// a directory (following symlinks only if the walker was configured to).
func (w *Walker) Next() (*Entry, bool) {
	if w.done {
		return nil, false
	}

	if !w.started {
		w.started = true
		w.last = w.root
		w.lastDepth = 0

		return w.root, true
	}

	if err := w.descend(); err != nil {
		w.fail(err)
		return nil, false
	}

	for len(w.stack) > 0 {
		top := w.stack[len(w.stack)-1]

		entry, ok := top.Next()
		if ok {
			w.last = entry
			w.lastDepth = len(w.stack)

			return entry, true
		}

		if err := top.Err(); err != nil {
			w.fail(err)
			return nil, false
		}

		w.stack = w.stack[:len(w.stack)-1]
	}

	w.done = true
	w.last = nil

	return nil, false
}

// descend opens a scan of the last returned entry when it should be walked into.
func (w *Walker) descend() error {
	entry := w.last
	w.last = nil

	if entry == nil {
		return nil
	}

	if entry.Skip {
		w.logger.WithField("path", entry.Path()).Debug("skipping subtree")
		return nil
	}

	isDir, err := entry.IsDir(w.followForDepth(w.lastDepth))
	if err != nil {
		return err
	}

	if !isDir {
		return nil
	}

	scanner, err := Scan(entry.Source(), entry.Path())
	if err != nil {
		return err
	}

	w.logger.WithFields(logrus.Fields{
		"path":  entry.Path(),
		"depth": w.lastDepth + 1,
	}).Debug("descending")

	w.stack = append(w.stack, scanner)

	return nil
}

func (w *Walker) fail(err error) {
	w.logger.WithError(err).Debug("walk failed")
	w.err = err
	_ = w.Close()
}

// followForDepth decides symlink following for the descent decision. The root
// is always resolved through a final symlink, so walking a link to a directory
// walks the directory.
func (w *Walker) followForDepth(depth int) bool {
	if depth == 0 {
		return true
	}

	return w.followSymlinks
}

func (w *Walker) pop() error {
	top := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]

	return top.Close()
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return logger
}
