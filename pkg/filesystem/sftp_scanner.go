package filesystem

import (
	iofs "io/fs"

	"github.com/joe/scanwalk/pkg/scanwalk"
)

// sftpDirReader hands out the records of a listing that SFTP has already
// delivered in full.
type sftpDirReader struct {
	infos  []iofs.FileInfo
	index  int
	closed bool
}

func newSFTPDirReader(infos []iofs.FileInfo) *sftpDirReader {
	return &sftpDirReader{
		infos: infos,
		index: -1,
	}
}

// Close drops the buffered listing.
func (r *sftpDirReader) Close() error {
	r.closed = true
	r.infos = nil

	return nil
}

// Err always returns nil; remote read errors surface from ListDir.
func (r *sftpDirReader) Err() error {
	return nil
}

// Next advances to the next record.
func (r *sftpDirReader) Next() (scanwalk.Record, bool) {
	for !r.closed {
		r.index++
		if r.index >= len(r.infos) {
			return scanwalk.Record{}, false
		}

		info := r.infos[r.index]
		if info.Name() == "." || info.Name() == ".." {
			continue
		}

		return scanwalk.Record{
			Name: info.Name(),
			Type: scanwalk.TypeHintFromMode(info.Mode()),
		}, true
	}

	return scanwalk.Record{}, false
}
