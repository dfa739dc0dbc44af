package filesystem

import (
	"fmt"
	iofs "io/fs"
	"os"
	"path"
	"strings"
	"time"

	"github.com/pkg/sftp"

	"github.com/joe/scanwalk/pkg/scanwalk"
)

// DefaultPoolSize is the number of SFTP sessions opened when none is configured.
const DefaultPoolSize = 2

// SFTPFileSystem lists and stats paths on a remote host over SFTP.
//
// SFTP listings carry the full attributes of each child, so records always
// have a conclusive type hint; there are no inode numbers.
type SFTPFileSystem struct {
	pool *SFTPClientPool
}

// NewSFTPFileSystem creates a new SFTP filesystem using an established connection.
// A poolSize of zero means DefaultPoolSize.
func NewSFTPFileSystem(conn *SFTPConnection, poolSize int) (*SFTPFileSystem, error) {
	if poolSize == 0 {
		poolSize = DefaultPoolSize
	}

	pool, err := NewSFTPClientPool(conn.SSHClient(), poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create SFTP client pool: %w", err)
	}

	return &SFTPFileSystem{
		pool: pool,
	}, nil
}

// Base returns the last element of a slash-separated remote path.
func (fs *SFTPFileSystem) Base(p string) string {
	return path.Base(p)
}

// Close closes the SFTP client pool and releases all resources.
func (fs *SFTPFileSystem) Close() error {
	if fs.pool != nil {
		return fs.pool.Close()
	}

	return nil
}

// Join appends name to dir with a single slash, without cleaning.
func (fs *SFTPFileSystem) Join(dir, name string) string {
	if dir == "" {
		return name
	}

	if strings.HasSuffix(dir, "/") {
		return dir + name
	}

	return dir + "/" + name
}

// ListDir reads the whole remote directory in one request sequence; the SFTP
// handle is closed before ListDir returns.
func (fs *SFTPFileSystem) ListDir(p string) (scanwalk.DirReader, error) {
	client, err := fs.pool.Acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire SFTP client: %w", err)
	}
	defer fs.pool.Release(client)

	infos, err := client.ReadDir(p)
	if err != nil {
		return nil, &os.PathError{Op: "readdir", Path: p, Err: err}
	}

	return newSFTPDirReader(infos), nil
}

// Metadata stats a remote path, following a final symlink when asked to.
func (fs *SFTPFileSystem) Metadata(p string, followSymlinks bool) (scanwalk.Metadata, error) {
	client, err := fs.pool.Acquire()
	if err != nil {
		return scanwalk.Metadata{}, fmt.Errorf("failed to acquire SFTP client: %w", err)
	}
	defer fs.pool.Release(client)

	var (
		info iofs.FileInfo
		op   = "lstat"
	)

	if followSymlinks {
		op = "stat"
		info, err = client.Stat(p)
	} else {
		info, err = client.Lstat(p)
	}

	if err != nil {
		return scanwalk.Metadata{}, &os.PathError{Op: op, Path: p, Err: err}
	}

	return metadataFromSFTP(info), nil
}

func metadataFromSFTP(info iofs.FileInfo) scanwalk.Metadata {
	md := scanwalk.Metadata{
		Mode:    info.Mode(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Links:   1,
	}

	if stat, ok := info.Sys().(*sftp.FileStat); ok {
		md.AccessTime = time.Unix(int64(stat.Atime), 0)
	}

	return md
}
