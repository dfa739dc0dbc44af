package scanwalk

import (
	"fmt"
)

// Entry describes one filesystem object found by Scan or Walk, or the root of a walk.
//
// Type and metadata questions are answered lazily: from the listing's type hint
// when it is conclusive, otherwise from a metadata call whose result is cached
// on the Entry for its lifetime. The follow and no-follow results are cached
// independently. Entries assume the tree is not modified while they are in use.
type Entry struct {
	// Skip tells the walker not to descend into this entry.
	// It is consulted when the walker resumes after yielding the entry.
	Skip bool

	src    Source
	parent string
	record *Record // nil for a bare-path entry
	root   string  // set only for bare-path entries

	stat  *Metadata // follow symlinks
	lstat *Metadata // don't follow
}

// NewEntry returns an Entry for a bare path. It carries no type hint, so every
// type question costs one metadata call (then cached).
func NewEntry(src Source, path string) *Entry {
	return &Entry{
		src:  src,
		root: path,
	}
}

// newScannedEntry returns an Entry for a record listed in parent.
func newScannedEntry(src Source, parent string, record Record) *Entry {
	return &Entry{
		src:    src,
		parent: parent,
		record: &record,
	}
}

// Hint returns the listing's type hint, or TypeUnknown for a bare-path entry.
func (e *Entry) Hint() TypeHint {
	if e.record == nil {
		return TypeUnknown
	}

	return e.record.Type
}

// Inode returns the inode number, from the listing record when it has one and
// from no-follow metadata otherwise.
func (e *Entry) Inode() (uint64, error) {
	if e.record != nil && e.record.HasInode {
		return e.record.Inode, nil
	}

	md, err := e.Metadata(false)
	if err != nil {
		return 0, err
	}

	return md.Inode, nil
}

// IsDir reports whether the entry is a directory. With followSymlinks, a
// symlink to a directory counts as a directory.
func (e *Entry) IsDir(followSymlinks bool) (bool, error) {
	if !e.needMetadata(followSymlinks) {
		return e.record.Type == TypeDirectory, nil
	}

	md, err := e.Metadata(followSymlinks)
	if err != nil {
		return false, err
	}

	return md.IsDir(), nil
}

// IsFile reports whether the entry is a regular file. With followSymlinks, a
// symlink to a regular file counts as a file.
func (e *Entry) IsFile(followSymlinks bool) (bool, error) {
	if !e.needMetadata(followSymlinks) {
		return e.record.Type == TypeRegular, nil
	}

	md, err := e.Metadata(followSymlinks)
	if err != nil {
		return false, err
	}

	return md.IsRegular(), nil
}

// IsSymlink reports whether the entry itself is a symbolic link.
func (e *Entry) IsSymlink() (bool, error) {
	if !e.needMetadata(false) {
		return e.record.Type == TypeSymlink, nil
	}

	md, err := e.Metadata(false)
	if err != nil {
		return false, err
	}

	return md.IsSymlink(), nil
}

// Metadata returns the entry's metadata, retrieving it on first use.
// Failures are *PathError values and are not cached.
func (e *Entry) Metadata(followSymlinks bool) (Metadata, error) {
	slot := &e.lstat
	if followSymlinks {
		slot = &e.stat
	}

	if *slot != nil {
		return **slot, nil
	}

	md, err := e.src.Metadata(e.Path(), followSymlinks)
	if err != nil {
		return Metadata{}, NewPathError(statOp(followSymlinks), e.Path(), err)
	}

	*slot = &md

	return md, nil
}

// Name returns the final path component.
func (e *Entry) Name() string {
	if e.record != nil {
		return e.record.Name
	}

	return e.src.Base(e.root)
}

// Path returns the entry's path: the parent joined with the name, or the
// caller's path verbatim for a bare-path entry.
func (e *Entry) Path() string {
	if e.record == nil {
		return e.root
	}

	return e.src.Join(e.parent, e.record.Name)
}

// Source returns the Source the entry resolves metadata through.
func (e *Entry) Source() Source {
	return e.src
}

func (e *Entry) String() string {
	return fmt.Sprintf("<Entry %q>", e.Path())
}

// needMetadata reports whether the type hint can't answer a type question.
// A missing or unknown hint never can; a symlink hint can't when the question
// is about the link target.
func (e *Entry) needMetadata(followSymlinks bool) bool {
	if e.record == nil || e.record.Type == TypeUnknown {
		return true
	}

	return followSymlinks && e.record.Type == TypeSymlink
}

func statOp(followSymlinks bool) string {
	if followSymlinks {
		return "stat"
	}

	return "lstat"
}
