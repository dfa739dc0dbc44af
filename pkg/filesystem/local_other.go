//go:build !linux

package filesystem

import (
	"errors"
	"io"
	iofs "io/fs"
	"os"

	"github.com/joe/scanwalk/pkg/scanwalk"
)

// ListDir opens path and reads the first batch of entries immediately, so a
// missing path or a non-directory fails here rather than mid-listing.
func (fs *LocalFileSystem) ListDir(path string) (scanwalk.DirReader, error) {
	dir, err := os.Open(path)
	if err != nil {
		return nil, err //nolint:wrapcheck // *os.PathError already names the path
	}

	reader := &osDirReader{
		dir:   dir,
		batch: fs.bufferSize() / averageDirentSize,
	}

	if !reader.fill() && reader.err != nil {
		_ = dir.Close()
		return nil, reader.err
	}

	return reader, nil
}

// Metadata stats path, following a final symlink when asked to.
func (fs *LocalFileSystem) Metadata(path string, followSymlinks bool) (scanwalk.Metadata, error) {
	var (
		info iofs.FileInfo
		err  error
	)

	if followSymlinks {
		info, err = os.Stat(path)
	} else {
		info, err = os.Lstat(path)
	}

	if err != nil {
		return scanwalk.Metadata{}, err //nolint:wrapcheck // *os.PathError already names the path
	}

	inode, links := statIdentity(info)

	return scanwalk.Metadata{
		Inode:   inode,
		Mode:    info.Mode(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Links:   links,
	}, nil
}

// averageDirentSize converts the configured buffer size into a batch count.
const averageDirentSize = 64

// osDirReader lists a directory in batches through (*os.File).ReadDir.
// The os package supplies the type bits; inode numbers aren't available.
type osDirReader struct {
	dir     *os.File
	batch   int
	pending []iofs.DirEntry
	eof     bool
	closed  bool
	err     error
}

func (r *osDirReader) Close() error {
	if r.closed {
		return nil
	}

	r.closed = true

	return r.dir.Close() //nolint:wrapcheck // *os.PathError already names the path
}

func (r *osDirReader) Err() error {
	return r.err
}

func (r *osDirReader) Next() (scanwalk.Record, bool) {
	for len(r.pending) == 0 {
		if r.closed || r.eof || r.err != nil || !r.fill() {
			return scanwalk.Record{}, false
		}
	}

	entry := r.pending[0]
	r.pending = r.pending[1:]

	return scanwalk.Record{
		Name: entry.Name(),
		Type: scanwalk.TypeHintFromMode(entry.Type()),
	}, true
}

func (r *osDirReader) fill() bool {
	entries, err := r.dir.ReadDir(max(r.batch, 1))
	r.pending = entries

	if errors.Is(err, io.EOF) {
		r.eof = true
		return len(entries) > 0
	}

	if err != nil {
		r.err = err
		return false
	}

	return true
}
