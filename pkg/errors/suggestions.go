package errors

import "fmt"

// SuggestionGenerator generates actionable suggestions based on error category.
type SuggestionGenerator interface {
	Generate(category ErrorCategory, affectedPath string) []string
}

// NewSuggestionGenerator creates a new SuggestionGenerator.
func NewSuggestionGenerator() SuggestionGenerator {
	return &suggestionGenerator{}
}

// suggestionGenerator is the concrete implementation of SuggestionGenerator.
type suggestionGenerator struct{}

// Generate returns actionable suggestions based on the error category and affected path.
func (g *suggestionGenerator) Generate(category ErrorCategory, affectedPath string) []string {
	switch category {
	case CategoryPermission:
		return g.generatePermissionSuggestions(affectedPath)
	case CategoryPath:
		return g.generatePathSuggestions(affectedPath)
	case CategoryNotADirectory:
		return g.generateNotADirectorySuggestions(affectedPath)
	case CategoryLoop:
		return g.generateLoopSuggestions(affectedPath)
	case CategoryRemote:
		return g.generateRemoteSuggestions(affectedPath)
	case CategoryIO:
		return g.generateIOSuggestions(affectedPath)
	case CategoryUnknown:
		return g.generateUnknownSuggestions(affectedPath)
	default:
		return g.generateUnknownSuggestions(affectedPath)
	}
}

func (g *suggestionGenerator) generateIOSuggestions(_ string) []string {
	return []string{
		"Try the walk again - this may be a transient I/O error",
		"Check that the disk or network mount is still available",
		"Check system logs for hardware issues",
	}
}

func (g *suggestionGenerator) generateLoopSuggestions(path string) []string {
	suggestions := []string{
		"A chain of symbolic links points back on itself",
		"Walk without --follow-symlinks to avoid descending through links",
	}

	if path != "" {
		suggestions = append(suggestions, fmt.Sprintf("Inspect the link with 'ls -l %s'", path))
	}

	return suggestions
}

func (g *suggestionGenerator) generateNotADirectorySuggestions(path string) []string {
	suggestions := []string{
		"The walk root or a path component is a file, not a directory",
	}

	if path != "" {
		suggestions = append(suggestions, "Check what "+path+" is with 'ls -ld "+path+"'")
	}

	return append(suggestions, "Pass the containing directory instead")
}

func (g *suggestionGenerator) generatePathSuggestions(path string) []string {
	suggestions := []string{
		"Verify the path exists and is spelled correctly",
	}

	if path != "" {
		suggestions = append(suggestions, "Check if the path exists: "+path)
	}

	return append(suggestions,
		"The tree may have changed during the walk - run it again")
}

func (g *suggestionGenerator) generatePermissionSuggestions(path string) []string {
	suggestions := []string{
		"Check read and execute permissions on the directory",
	}

	if path != "" {
		suggestions = append(suggestions, fmt.Sprintf("Run 'ls -ld %s' to view permissions", path))
	}

	return append(suggestions,
		"Use --prune to skip directories you cannot read",
		"Run as a user with access to the whole tree")
}

func (g *suggestionGenerator) generateRemoteSuggestions(_ string) []string {
	return []string{
		"Check the host name, port and user in the sftp:// URL",
		"Make sure your key is loaded in ssh-agent or present in ~/.ssh",
		"Try connecting with 'ssh' directly to see the full error",
	}
}

func (g *suggestionGenerator) generateUnknownSuggestions(path string) []string {
	suggestions := []string{
		"Try the walk again",
	}

	if path != "" {
		suggestions = append(suggestions, "Check the state of "+path)
	}

	return append(suggestions, "Run with --verbose for more detail")
}
