//go:build linux

package filesystem

import (
	"encoding/binary"
	"errors"
	"io/fs"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/joe/scanwalk/pkg/scanwalk"
)

// linux_dirent64 layout:
//
//	ino64_t        d_ino;    offset 0
//	off64_t        d_off;    offset 8
//	unsigned short d_reclen; offset 16
//	unsigned char  d_type;   offset 18
//	char           d_name[]; offset 19, NUL-terminated
const (
	direntInoOffset    = 0
	direntReclenOffset = 16
	direntTypeOffset   = 18
	direntNameOffset   = 19
)

var errCorruptDirent = errors.New("corrupt directory entry")

// ListDir opens path with O_DIRECTORY, so a missing path, a non-directory or
// a permission problem fails here rather than on the first read.
func (fs *LocalFileSystem) ListDir(path string) (scanwalk.DirReader, error) {
	var (
		fd  int
		err error
	)

	for {
		fd, err = unix.Open(path, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
		if !errors.Is(err, unix.EINTR) {
			break
		}
	}

	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}

	return &getdentsReader{
		fd:  fd,
		buf: make([]byte, fs.bufferSize()),
	}, nil
}

// Metadata stats path, following a final symlink when asked to.
func (fs *LocalFileSystem) Metadata(path string, followSymlinks bool) (scanwalk.Metadata, error) {
	var (
		st  unix.Stat_t
		err error
		op  = "lstat"
	)

	for {
		if followSymlinks {
			op = "stat"
			err = unix.Stat(path, &st)
		} else {
			err = unix.Lstat(path, &st)
		}

		if !errors.Is(err, unix.EINTR) {
			break
		}
	}

	if err != nil {
		return scanwalk.Metadata{}, &os.PathError{Op: op, Path: path, Err: err}
	}

	return metadataFromStat(&st), nil
}

// getdentsReader decodes linux_dirent64 records from batched getdents calls.
type getdentsReader struct {
	fd     int
	buf    []byte
	pos    int
	end    int
	eof    bool
	closed bool
	err    error
}

func (r *getdentsReader) Close() error {
	if r.closed {
		return nil
	}

	r.closed = true

	err := unix.Close(r.fd)
	if err != nil {
		return os.NewSyscallError("close", err)
	}

	return nil
}

func (r *getdentsReader) Err() error {
	return r.err
}

func (r *getdentsReader) Next() (scanwalk.Record, bool) {
	for {
		if r.closed || r.err != nil {
			return scanwalk.Record{}, false
		}

		if r.pos >= r.end {
			if r.eof || !r.fill() {
				return scanwalk.Record{}, false
			}
		}

		record, ok := r.decode()
		if !ok {
			return scanwalk.Record{}, false
		}

		if record.Name == "." || record.Name == ".." {
			continue
		}

		return record, true
	}
}

// decode reads the record at r.pos and advances past it.
func (r *getdentsReader) decode() (scanwalk.Record, bool) {
	rec := r.buf[r.pos:r.end]
	if len(rec) < direntNameOffset {
		r.err = errCorruptDirent
		return scanwalk.Record{}, false
	}

	reclen := int(binary.NativeEndian.Uint16(rec[direntReclenOffset:]))
	if reclen < direntNameOffset || reclen > len(rec) {
		r.err = errCorruptDirent
		return scanwalk.Record{}, false
	}

	name := rec[direntNameOffset:reclen]
	for i, c := range name {
		if c == 0 {
			name = name[:i]
			break
		}
	}

	r.pos += reclen

	return scanwalk.Record{
		Name:     string(name),
		Inode:    binary.NativeEndian.Uint64(rec[direntInoOffset:]),
		HasInode: true,
		Type:     hintFromDType(rec[direntTypeOffset]),
	}, true
}

// fill reads the next batch of records. It returns false at end of directory
// or on error.
func (r *getdentsReader) fill() bool {
	for {
		n, err := unix.Getdents(r.fd, r.buf)
		if errors.Is(err, unix.EINTR) {
			continue
		}

		if err != nil {
			r.err = os.NewSyscallError("getdents", err)
			return false
		}

		if n <= 0 {
			r.eof = true
			return false
		}

		r.pos, r.end = 0, n

		return true
	}
}

func hintFromDType(dtype byte) scanwalk.TypeHint {
	switch dtype {
	case unix.DT_DIR:
		return scanwalk.TypeDirectory
	case unix.DT_REG:
		return scanwalk.TypeRegular
	case unix.DT_LNK:
		return scanwalk.TypeSymlink
	case unix.DT_SOCK:
		return scanwalk.TypeSocket
	case unix.DT_FIFO:
		return scanwalk.TypeFIFO
	case unix.DT_BLK:
		return scanwalk.TypeBlockDevice
	case unix.DT_CHR:
		return scanwalk.TypeCharDevice
	default:
		return scanwalk.TypeUnknown
	}
}

func metadataFromStat(st *unix.Stat_t) scanwalk.Metadata {
	return scanwalk.Metadata{
		Inode:      st.Ino,
		Mode:       fileModeFromUnix(st.Mode),
		Size:       st.Size,
		ModTime:    time.Unix(st.Mtim.Unix()),
		AccessTime: time.Unix(st.Atim.Unix()),
		ChangeTime: time.Unix(st.Ctim.Unix()),
		Links:      uint64(st.Nlink), //nolint:unconvert // Nlink is uint32 on some architectures
	}
}

func fileModeFromUnix(mode uint32) fs.FileMode {
	fm := fs.FileMode(mode & 0o777)

	switch mode & unix.S_IFMT {
	case unix.S_IFBLK:
		fm |= fs.ModeDevice
	case unix.S_IFCHR:
		fm |= fs.ModeDevice | fs.ModeCharDevice
	case unix.S_IFDIR:
		fm |= fs.ModeDir
	case unix.S_IFIFO:
		fm |= fs.ModeNamedPipe
	case unix.S_IFLNK:
		fm |= fs.ModeSymlink
	case unix.S_IFSOCK:
		fm |= fs.ModeSocket
	}

	if mode&unix.S_ISGID != 0 {
		fm |= fs.ModeSetgid
	}

	if mode&unix.S_ISUID != 0 {
		fm |= fs.ModeSetuid
	}

	if mode&unix.S_ISVTX != 0 {
		fm |= fs.ModeSticky
	}

	return fm
}
