package errors_test

import (
	"testing"

	"github.com/joe/scanwalk/pkg/errors"
)

func TestPatternMatcher_Match(t *testing.T) {
	t.Parallel()

	tests := []struct {
		msg  string
		want errors.ErrorCategory
	}{
		{"open /data/private: permission denied", errors.CategoryPermission},
		{"lstat /x: operation not permitted", errors.CategoryPermission},
		{"scandir /missing: no such file or directory", errors.CategoryPath},
		{"path does not exist", errors.CategoryPath},
		{"open /etc/passwd/x: not a directory", errors.CategoryNotADirectory},
		{"stat /loop: too many levels of symbolic links", errors.CategoryLoop},
		{"failed to connect: SSH connection failed: dial tcp: connection refused", errors.CategoryRemote},
		{"ssh: unable to authenticate, attempted methods [none publickey]", errors.CategoryRemote},
		{"getdents: input/output error", errors.CategoryIO},
		{"readdir /nfs: stale file handle", errors.CategoryIO},
		{"something odd happened", errors.CategoryUnknown},
		{"", errors.CategoryUnknown},
	}

	matcher := errors.NewPatternMatcher()

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			t.Parallel()

			if got := matcher.Match(tt.msg); got != tt.want {
				t.Errorf("Match(%q) = %q, want %q", tt.msg, got, tt.want)
			}
		})
	}
}

func TestPatternMatcher_CaseInsensitive(t *testing.T) {
	t.Parallel()

	matcher := errors.NewPatternMatcher()

	for _, msg := range []string{"PERMISSION DENIED", "Permission Denied", "permission denied"} {
		if got := matcher.Match(msg); got != errors.CategoryPermission {
			t.Errorf("Match(%q) = %q, want %q", msg, got, errors.CategoryPermission)
		}
	}
}

// A path containing a missing component can't also be "not a directory";
// when both fragments appear, the more specific one wins.
func TestPatternMatcher_NotADirectoryWinsOverPath(t *testing.T) {
	t.Parallel()

	matcher := errors.NewPatternMatcher()

	got := matcher.Match("open /no such file or directory/x: not a directory")
	if got != errors.CategoryNotADirectory {
		t.Errorf("got %q, want %q", got, errors.CategoryNotADirectory)
	}
}
