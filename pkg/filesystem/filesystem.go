// Package filesystem provides the directory-listing and metadata backends a
// scanwalk traversal runs on: the local disk, a remote host over SFTP, and an
// in-memory tree for tests.
package filesystem

import (
	"os"
	"path/filepath"

	"github.com/joe/scanwalk/pkg/scanwalk"
)

// Compile-time checks that every backend is a scanwalk.Source.
var (
	_ scanwalk.Source = (*LocalFileSystem)(nil)
	_ scanwalk.Source = (*SFTPFileSystem)(nil)
	_ scanwalk.Source = (*MockFileSystem)(nil)
)

// LocalFileSystem lists and stats paths on the local machine.
//
// On Linux, directories are read with getdents(2) directly, so each record
// carries its inode number and d_type without further syscalls. Elsewhere the
// os package is used and inode numbers come from metadata.
type LocalFileSystem struct {
	// BufferSize is the size of the buffer used for each directory read.
	// Zero means DefaultBufferSize.
	BufferSize int
}

// NewLocalFileSystem creates a new LocalFileSystem instance.
func NewLocalFileSystem() *LocalFileSystem {
	return &LocalFileSystem{}
}

// Base returns the last element of path.
func (fs *LocalFileSystem) Base(path string) string {
	return filepath.Base(path)
}

// Join appends name to dir with a single separator. Unlike filepath.Join it
// doesn't clean the result, so paths keep the form the caller started with.
func (fs *LocalFileSystem) Join(dir, name string) string {
	if dir == "" {
		return name
	}

	if os.IsPathSeparator(dir[len(dir)-1]) {
		return dir + name
	}

	return dir + string(os.PathSeparator) + name
}

func (fs *LocalFileSystem) bufferSize() int {
	if fs.BufferSize > 0 {
		return fs.BufferSize
	}

	return DefaultBufferSize
}

// DefaultBufferSize is the directory read buffer size used when none is configured.
const DefaultBufferSize = 32 * 1024
