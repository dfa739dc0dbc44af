// Package scanwalk provides a fast recursive directory traversal primitive.
//
// A walk yields one *Entry per filesystem object in pre-order, reading each
// directory exactly once and answering type questions from the cheap type hint
// the directory listing already carries. Metadata calls are only made when the
// hint is missing or cannot answer the question (symlinks being followed).
//
// Basic usage:
//
//	w := scanwalk.Walk(filesystem.NewLocalFileSystem(), "/srv/data")
//	defer w.Close()
//	for {
//	    entry, ok := w.Next()
//	    if !ok {
//	        break
//	    }
//	    if entry.Name() == ".git" {
//	        entry.Skip = true
//	    }
//	    fmt.Println(entry.Path())
//	}
//	if err := w.Err(); err != nil {
//	    return err
//	}
//
// The directory listing and metadata calls are provided by a Source, so the
// same traversal runs over the local disk, SFTP or an in-memory tree.
package scanwalk

import (
	"io/fs"
	"time"
)

// Exported constants.
const (
	TypeUnknown TypeHint = iota
	TypeDirectory
	TypeRegular
	TypeSymlink
	TypeSocket
	TypeFIFO
	TypeBlockDevice
	TypeCharDevice
)

// DirReader is an open listing of one directory.
// It follows the same Next/Err pattern as the rest of this package.
type DirReader interface {
	// Next returns the next raw record. The "." and ".." pseudo-entries are never returned.
	// Returns (Record{}, false) when the listing is exhausted or failed.
	Next() (Record, bool)

	// Err returns the error that stopped the listing, if any.
	Err() error

	// Close releases the underlying handle. Safe to call more than once.
	Close() error
}

// Metadata is the full metadata for one filesystem object.
type Metadata struct {
	Inode      uint64
	Mode       fs.FileMode
	Size       int64
	ModTime    time.Time
	AccessTime time.Time
	ChangeTime time.Time
	Links      uint64
}

// IsDir reports whether the metadata describes a directory.
func (m Metadata) IsDir() bool {
	return m.Mode.IsDir()
}

// IsRegular reports whether the metadata describes a regular file.
func (m Metadata) IsRegular() bool {
	return m.Mode.IsRegular()
}

// IsSymlink reports whether the metadata describes a symbolic link.
func (m Metadata) IsSymlink() bool {
	return m.Mode&fs.ModeSymlink != 0
}

// Record is one raw entry returned by a directory listing.
type Record struct {
	Name string

	// Inode is only meaningful when HasInode is set; some listings don't carry it.
	Inode    uint64
	HasInode bool

	// Type is the advisory type reported by the listing. It may be TypeUnknown.
	Type TypeHint
}

// Source provides the two OS-level calls a traversal needs, plus the path
// conventions of the filesystem it talks to.
type Source interface {
	// ListDir opens a listing of the immediate children of path.
	// Failures to open are reported here, before any record is produced.
	ListDir(path string) (DirReader, error)

	// Metadata retrieves full metadata for path, following a final symlink if asked to.
	Metadata(path string, followSymlinks bool) (Metadata, error)

	// Join appends name to dir.
	Join(dir, name string) string

	// Base returns the final component of path.
	Base(path string) string
}

// TypeHint is the advisory file type reported by a directory listing.
type TypeHint uint8

// String returns the lowercase name of the hint.
func (t TypeHint) String() string {
	switch t {
	case TypeDirectory:
		return "directory"
	case TypeRegular:
		return "file"
	case TypeSymlink:
		return "symlink"
	case TypeSocket:
		return "socket"
	case TypeFIFO:
		return "fifo"
	case TypeBlockDevice:
		return "block"
	case TypeCharDevice:
		return "char"
	case TypeUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// TypeHintFromMode converts the type bits of a FileMode into a hint.
// Listings that report fs.FileMode (os.ReadDir, sftp) use this.
func TypeHintFromMode(mode fs.FileMode) TypeHint {
	switch mode.Type() {
	case 0:
		return TypeRegular
	case fs.ModeDir:
		return TypeDirectory
	case fs.ModeSymlink:
		return TypeSymlink
	case fs.ModeSocket:
		return TypeSocket
	case fs.ModeNamedPipe:
		return TypeFIFO
	case fs.ModeDevice:
		return TypeBlockDevice
	case fs.ModeDevice | fs.ModeCharDevice:
		return TypeCharDevice
	default:
		return TypeUnknown
	}
}
