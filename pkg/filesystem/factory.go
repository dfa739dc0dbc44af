package filesystem

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/joe/scanwalk/pkg/scanwalk"
)

// OpenSource returns the Source for a location string (local path or sftp:// URL).
// Returns (source, rootPath, closer, error).
// - source: the Source to walk with
// - rootPath: the path to walk on that source (stripped of any URL prefix)
// - closer: releases connections; nil for local paths
func OpenSource(location string, logger logrus.FieldLogger) (scanwalk.Source, string, func(), error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, "", nil, err
	}

	if !loc.IsRemote {
		return NewLocalFileSystem(), loc.Path, nil, nil
	}

	conn, err := Connect(loc.Host, loc.Port, loc.User, logger)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to connect to %s@%s:%d: %w",
			loc.User, loc.Host, loc.Port, err)
	}

	sftpFS, err := NewSFTPFileSystem(conn, DefaultPoolSize)
	if err != nil {
		_ = conn.Close()
		return nil, "", nil, err
	}

	closer := func() {
		_ = sftpFS.Close()
		_ = conn.Close()
	}

	logger.WithField("remote", conn.String()).Debug("connected")

	return sftpFS, loc.Path, closer, nil
}
