package errors

import (
	"errors"
	"regexp"
	"strings"
	"syscall"

	"github.com/joe/scanwalk/pkg/scanwalk"
)

// Enricher enriches standard errors with actionable suggestions.
type Enricher interface {
	Enrich(err error, affectedPath string) error
}

// NewEnricher creates a new Enricher with default pattern matcher and suggestion generator.
func NewEnricher() Enricher {
	return &enricher{
		matcher:   NewPatternMatcher(),
		generator: NewSuggestionGenerator(),
	}
}

// unexported variables.
var (
	//nolint:gochecknoglobals // Compiled regexes shared across all enricher instances
	pathExtractionPatterns = []*regexp.Regexp{
		// Unix/Linux paths (absolute and relative)
		regexp.MustCompile(`\b\w+\s+([./][^\s:]+):`),
		// Windows paths with backslashes
		regexp.MustCompile(`\b\w+\s+([A-Za-z]:\\[^\s:]+):`),
		// Windows paths with forward slashes
		regexp.MustCompile(`\b\w+\s+([A-Za-z]:/[^\s:]+):`),
	}
)

// enricher is the concrete implementation of Enricher.
type enricher struct {
	matcher   PatternMatcher
	generator SuggestionGenerator
}

// Enrich wraps err with a category and suggestions. An ActionableError is
// returned unchanged and nil stays nil.
//
// A *scanwalk.PathError anywhere in the chain supplies both the category
// (from its Kind) and, when affectedPath is empty, the path. Otherwise the
// message is pattern-matched and the path extracted from it.
func (e *enricher) Enrich(err error, affectedPath string) error {
	if err == nil {
		return nil
	}

	var actionableErr ActionableError
	if errors.As(err, &actionableErr) {
		return actionableErr
	}

	category := CategoryUnknown

	var pathErr *scanwalk.PathError
	if errors.As(err, &pathErr) {
		category = categoryForPathError(pathErr)
		if affectedPath == "" {
			affectedPath = pathErr.Path
		}
	}

	if category == CategoryUnknown {
		category = e.matcher.Match(err.Error())
	}

	if affectedPath == "" {
		affectedPath = extractPath(err.Error())
	}

	return NewActionableError(
		err,
		category,
		e.generator.Generate(category, affectedPath),
		affectedPath,
	)
}

func categoryForPathError(pathErr *scanwalk.PathError) ErrorCategory {
	switch pathErr.Kind {
	case scanwalk.KindNotFound:
		return CategoryPath
	case scanwalk.KindPermission:
		return CategoryPermission
	case scanwalk.KindNotADirectory:
		return CategoryNotADirectory
	case scanwalk.KindOther:
		if errors.Is(pathErr, syscall.ELOOP) {
			return CategoryLoop
		}

		return CategoryUnknown
	default:
		return CategoryUnknown
	}
}

// extractPath pulls a path out of messages in the usual Go form
// "op /path/to/file: description". Returns "" if there is none.
func extractPath(errorMsg string) string {
	for _, pattern := range pathExtractionPatterns {
		if matches := pattern.FindStringSubmatch(errorMsg); len(matches) > 1 {
			path := strings.TrimSpace(matches[1])
			if path != "" {
				return path
			}
		}
	}

	return ""
}
