//go:build unix && !linux

package filesystem

import (
	"io/fs"
	"syscall"
)

func statIdentity(info fs.FileInfo) (inode, links uint64) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0
	}

	return uint64(st.Ino), uint64(st.Nlink) //nolint:unconvert // field widths vary by platform
}
