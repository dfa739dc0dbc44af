package filesystem

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DefaultSSHPort is used when an sftp:// location names no port.
const DefaultSSHPort = 22

var (
	errMissingUser = errors.New("SFTP URL must include username (sftp://user@host/path)")
	errMissingHost = errors.New("SFTP URL must include host")
)

// Location is a walk root: either a local path or a directory on an SFTP host.
type Location struct {
	IsRemote bool

	// Path is the local path, or the remote path for SFTP locations.
	Path string

	// SFTP only.
	Host string
	Port int
	User string
}

// ParseLocation detects whether s is a local path or an SFTP URL.
// SFTP URLs have the form sftp://user@host[:port]/path:
//   - sftp://joe@myserver.com/data   → data, relative to the home directory
//   - sftp://joe@myserver.com//srv   → /srv
//   - sftp://joe@myserver.com        → the home directory
//
// Anything else is a local path, returned as given.
func ParseLocation(s string) (*Location, error) {
	if !strings.HasPrefix(s, "sftp://") {
		return &Location{Path: s}, nil
	}

	u, err := url.Parse(s) //nolint:varnamelen // u is idiomatic for URL
	if err != nil {
		return nil, fmt.Errorf("invalid SFTP URL: %w", err)
	}

	if u.User == nil || u.User.Username() == "" {
		return nil, errMissingUser
	}

	host := u.Hostname()
	if host == "" {
		return nil, errMissingHost
	}

	port := DefaultSSHPort
	if portStr := u.Port(); portStr != "" {
		port, err = strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid port number: %w", err)
		}
	}

	return &Location{
		IsRemote: true,
		Path:     remotePath(u.Path),
		Host:     host,
		Port:     port,
		User:     u.User.Username(),
	}, nil
}

// String returns the location in the form ParseLocation accepts.
func (l *Location) String() string {
	if !l.IsRemote {
		return l.Path
	}

	p := l.Path
	if p == "." {
		p = ""
	}

	return fmt.Sprintf("sftp://%s@%s:%d/%s", l.User, l.Host, l.Port, p)
}

// remotePath maps a URL path to an SFTP path: one leading slash means
// "relative to home", two mean absolute.
func remotePath(urlPath string) string {
	switch {
	case urlPath == "" || urlPath == "/":
		return "."
	case strings.HasPrefix(urlPath, "//"):
		return urlPath[1:]
	default:
		return strings.TrimPrefix(urlPath, "/")
	}
}
