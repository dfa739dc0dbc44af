package errors

import "strings"

// PatternMatcher matches error messages to categories using string patterns.
type PatternMatcher interface {
	Match(errorMsg string) ErrorCategory
}

// NewPatternMatcher creates a new PatternMatcher with predefined patterns.
func NewPatternMatcher() PatternMatcher {
	return &patternMatcher{
		// Checked in order; "not a directory" must win over generic path patterns.
		patterns: []categoryPatterns{
			{CategoryNotADirectory, []string{
				"not a directory",
			}},
			{CategoryLoop, []string{
				"too many levels of symbolic links",
				"too many links",
			}},
			{CategoryPermission, []string{
				"permission denied",
				"access denied",
				"operation not permitted",
			}},
			{CategoryPath, []string{
				"no such file or directory",
				"file not found",
				"file does not exist",
				"path does not exist",
			}},
			{CategoryRemote, []string{
				"ssh connection failed",
				"sftp session creation failed",
				"connection refused",
				"connection lost",
				"no ssh authentication methods",
				"unable to authenticate",
				"knownhosts: key mismatch",
			}},
			{CategoryIO, []string{
				"input/output error",
				"i/o error",
				"stale file handle",
			}},
		},
	}
}

// categoryPatterns pairs a category with the message fragments that identify it.
type categoryPatterns struct {
	category ErrorCategory
	patterns []string
}

// patternMatcher is the concrete implementation of PatternMatcher.
type patternMatcher struct {
	patterns []categoryPatterns
}

// Match returns the first category with a pattern contained in errorMsg,
// ignoring case, or CategoryUnknown.
func (m *patternMatcher) Match(errorMsg string) ErrorCategory {
	lowerMsg := strings.ToLower(errorMsg)

	for _, entry := range m.patterns {
		for _, pattern := range entry.patterns {
			if strings.Contains(lowerMsg, pattern) {
				return entry.category
			}
		}
	}

	return CategoryUnknown
}
