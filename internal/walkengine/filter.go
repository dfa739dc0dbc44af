package walkengine

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Pruner decides which directories the walk should not descend into.
type Pruner interface {
	// ShouldPrune reports whether the directory at relativePath (slash-separated,
	// relative to the walk root) should not be descended into.
	ShouldPrune(relativePath string) bool
}

// GlobPruner prunes directories matching any of a set of doublestar patterns.
// A pattern without a slash also matches the directory's base name, so
// "node_modules" prunes it at every depth.
type GlobPruner struct {
	patterns []string
}

// NewGlobPruner creates a GlobPruner. No patterns prunes nothing.
func NewGlobPruner(patterns ...string) *GlobPruner {
	return &GlobPruner{
		patterns: patterns,
	}
}

// ShouldPrune returns true if the path or, for slash-free patterns, its base
// name matches a pattern. Invalid patterns never match.
func (p *GlobPruner) ShouldPrune(relativePath string) bool {
	if relativePath == "" {
		return false
	}

	base := relativePath[strings.LastIndex(relativePath, "/")+1:]

	for _, pattern := range p.patterns {
		if matched, err := doublestar.Match(pattern, relativePath); err == nil && matched {
			return true
		}

		if strings.Contains(pattern, "/") {
			continue
		}

		if matched, err := doublestar.Match(pattern, base); err == nil && matched {
			return true
		}
	}

	return false
}

// relativeTo returns p relative to root with forward slashes, or "" for the root.
func relativeTo(root, p string) string {
	rel := strings.TrimPrefix(p, root)
	rel = filepath.ToSlash(rel)

	return strings.TrimLeft(rel, "/")
}
