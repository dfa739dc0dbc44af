// Package config handles application configuration and command-line argument parsing.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/joe/scanwalk/pkg/filesystem"
)

// EntryType selects which entries are printed.
type EntryType int

const (
	// AnyType prints every entry
	AnyType EntryType = iota
	// FilesOnly prints regular files
	FilesOnly
	// DirsOnly prints directories
	DirsOnly
	// LinksOnly prints symbolic links
	LinksOnly
)

var errRootRequired = errors.New("root path is required")

// String returns the string representation of EntryType
func (et EntryType) String() string {
	switch et {
	case AnyType:
		return "any"
	case FilesOnly:
		return "f"
	case DirsOnly:
		return "d"
	case LinksOnly:
		return "l"
	default:
		return "unknown"
	}
}

// ParseEntryType parses a string into an EntryType
func ParseEntryType(s string) (EntryType, error) {
	switch strings.ToLower(s) {
	case "", "any", "all":
		return AnyType, nil
	case "f", "file", "files":
		return FilesOnly, nil
	case "d", "dir", "dirs", "directory":
		return DirsOnly, nil
	case "l", "link", "links", "symlink":
		return LinksOnly, nil
	default:
		return AnyType, fmt.Errorf("invalid entry type: %s (valid: f, d, l, any)", s) //nolint:err113 // validation error with actual value
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for go-arg
func (et *EntryType) UnmarshalText(text []byte) error {
	parsed, err := ParseEntryType(string(text))
	if err != nil {
		return err
	}
	*et = parsed
	return nil
}

// Config holds the application configuration
type Config struct {
	Root           string    `arg:"positional" help:"Directory to walk (local path or sftp://user@host/path)"`
	FollowSymlinks bool      `arg:"-L,--follow-symlinks" help:"Descend into symlinks that point at directories"`
	Prune          []string  `arg:"-p,--prune,separate" help:"Glob (relative to the root, ** allowed) of directories not to descend into; repeatable"`
	MaxDepth       int       `arg:"-d,--max-depth" default:"-1" help:"Do not descend below this depth (-1 = unlimited)"`
	Type           EntryType `arg:"-t,--type" default:"any" help:"Only print entries of this type: f|d|l|any"`
	Long           bool      `arg:"-l,--long" help:"Print type, inode and size with each path"`
	Progress       bool      `arg:"--progress" help:"Show a live progress view instead of the listing"`
	Verbose        bool      `arg:"-v,--verbose" help:"Log debug information to stderr"`
}

// Description returns the program description for go-arg
func (Config) Description() string {
	return "Walk a directory tree quickly, using the type information directory listings already provide"
}

// Version returns the version string for go-arg
func (Config) Version() string {
	return "scanwalk 1.0.0"
}

// ParseArgs parses args (without the program name) into a validated config.
// It returns errors instead of exiting, including arg.ErrHelp and
// arg.ErrVersion.
func ParseArgs(args []string) (*Config, error) {
	cfg := &Config{}

	parser, err := arg.NewParser(arg.Config{Program: "scanwalk"}, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build argument parser: %w", err)
	}

	if err := parser.Parse(args); err != nil {
		return nil, err //nolint:wrapcheck // callers compare against arg.ErrHelp
	}

	return PostProcessConfig(cfg)
}

// PostProcessConfig applies defaults and validates a parsed config
func PostProcessConfig(cfg *Config) (*Config, error) {
	if cfg.Root == "" {
		return nil, errRootRequired
	}

	if _, err := filesystem.ParseLocation(cfg.Root); err != nil {
		return nil, fmt.Errorf("invalid root: %w", err)
	}

	if cfg.MaxDepth < -1 {
		return nil, fmt.Errorf("max depth must be -1 or greater, got %d", cfg.MaxDepth) //nolint:err113 // validation error with actual value
	}

	for _, pattern := range cfg.Prune {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid prune pattern: %q", pattern) //nolint:err113 // validation error with actual value
		}
	}

	return cfg, nil
}
