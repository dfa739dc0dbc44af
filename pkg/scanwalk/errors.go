package scanwalk

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"

	"github.com/pkg/sftp"
)

// Exported constants.
const (
	KindOther Kind = iota
	KindNotFound
	KindPermission
	KindNotADirectory
)

// Exported variables.
var (
	ErrNotFound      = errors.New("not found")
	ErrPermission    = errors.New("permission denied")
	ErrNotADirectory = errors.New("not a directory")
)

// Kind classifies an OS-level failure.
type Kind int

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindPermission:
		return "permission"
	case KindNotADirectory:
		return "not_a_directory"
	case KindOther:
		return "other"
	default:
		return "other"
	}
}

// PathError is the error returned for every failed listing or metadata call.
// It carries the OS error code (0 when the source has none), the kind, and the
// path that caused it.
type PathError struct {
	Op   string
	Path string
	Kind Kind
	Code int
	Err  error
}

// NewPathError classifies err and wraps it with the operation and path.
// An err that already is a *PathError is returned unchanged.
func NewPathError(op, path string, err error) *PathError {
	var pathErr *PathError
	if errors.As(err, &pathErr) {
		return pathErr
	}

	kind := classify(err)

	return &PathError{
		Op:   op,
		Path: path,
		Kind: kind,
		Code: errorCode(err, kind),
		Err:  err,
	}
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.message())
}

// Is matches the package sentinels by kind, so callers can write
// errors.Is(err, scanwalk.ErrNotFound) regardless of the source.
func (e *PathError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrPermission:
		return e.Kind == KindPermission
	case ErrNotADirectory:
		return e.Kind == KindNotADirectory
	default:
		return false
	}
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// message strips any "op path:" prefix the cause already carries.
func (e *PathError) message() string {
	var osErr *fs.PathError
	if errors.As(e.Err, &osErr) {
		return osErr.Err.Error()
	}

	if e.Err == nil {
		return e.Kind.String()
	}

	return e.Err.Error()
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, syscall.ENOTDIR):
		return KindNotADirectory
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindPermission
	}

	var status *sftp.StatusError
	if errors.As(err, &status) {
		switch status.Code {
		case uint32(sftp.ErrSSHFxNoSuchFile):
			return KindNotFound
		case uint32(sftp.ErrSSHFxPermissionDenied):
			return KindPermission
		default:
			return KindOther
		}
	}

	return KindOther
}

func errorCode(err error, kind Kind) int {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}

	var status *sftp.StatusError
	if errors.As(err, &status) {
		return int(status.Code)
	}

	switch kind {
	case KindNotFound:
		return int(syscall.ENOENT)
	case KindPermission:
		return int(syscall.EACCES)
	case KindNotADirectory:
		return int(syscall.ENOTDIR)
	case KindOther:
		return 0
	default:
		return 0
	}
}
