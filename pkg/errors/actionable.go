// Package errors turns traversal failures into errors a person can act on.
//
// Errors are categorised (missing path, permission, not a directory, symlink
// loop, remote connection, I/O) and given suggestions specific to the category
// and, where known, the affected path. A *scanwalk.PathError is categorised by
// its Kind; any other error by matching its message.
//
// Basic Usage:
//
//	enricher := errors.NewEnricher()
//	if err := walker.Err(); err != nil {
//	    enriched := enricher.Enrich(err, "")
//	    fmt.Fprintln(os.Stderr, enriched)
//	    fmt.Fprintln(os.Stderr, errors.FormatSuggestions(enriched))
//	}
package errors

import "strings"

// Exported constants.
const (
	CategoryIO            ErrorCategory = "io"
	CategoryLoop          ErrorCategory = "symlink_loop"
	CategoryNotADirectory ErrorCategory = "not_a_directory"
	CategoryPath          ErrorCategory = "path"
	CategoryPermission    ErrorCategory = "permission"
	CategoryRemote        ErrorCategory = "remote"
	CategoryUnknown       ErrorCategory = "unknown"
)

// ActionableError represents an error with actionable suggestions for the user.
type ActionableError interface {
	error
	Unwrap() error
	Category() ErrorCategory
	Suggestions() []string
	AffectedPath() string
}

// NewActionableError creates a new ActionableError wrapping cause.
func NewActionableError(
	cause error,
	category ErrorCategory,
	suggestions []string,
	affectedPath string,
) ActionableError {
	return &actionableError{
		cause:        cause,
		category:     category,
		suggestions:  suggestions,
		affectedPath: affectedPath,
	}
}

// ErrorCategory represents the type of error that occurred.
type ErrorCategory string

// FormatSuggestions formats the suggestions of an ActionableError as an
// indented bulleted list. Returns "" if err is nil, not actionable, or has
// no suggestions.
func FormatSuggestions(err error) string {
	if err == nil {
		return ""
	}

	actionable, ok := err.(ActionableError) //nolint:errorlint // only the outermost error carries suggestions
	if !ok {
		return ""
	}

	suggestions := actionable.Suggestions()
	if len(suggestions) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, suggestion := range suggestions {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("  • ")
		builder.WriteString(suggestion)
	}

	return builder.String()
}

// actionableError is the concrete implementation of ActionableError.
type actionableError struct {
	cause        error
	category     ErrorCategory
	suggestions  []string
	affectedPath string
}

// AffectedPath returns the path the error is about, if known.
func (e *actionableError) AffectedPath() string {
	return e.affectedPath
}

// Category returns the error category.
func (e *actionableError) Category() ErrorCategory {
	return e.category
}

// Error returns the message of the wrapped error.
func (e *actionableError) Error() string {
	return e.cause.Error()
}

// Suggestions returns the list of actionable suggestions.
func (e *actionableError) Suggestions() []string {
	return e.suggestions
}

// Unwrap returns the wrapped error, so errors.Is and errors.As see through.
func (e *actionableError) Unwrap() error {
	return e.cause
}
