// Package main is the entry point for the scanwalk application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alexflint/go-arg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"golang.org/x/term" //nolint:depguard // Required for TTY detection

	"github.com/joe/scanwalk/internal/config"
	"github.com/joe/scanwalk/internal/tui"
	"github.com/joe/scanwalk/internal/walkengine"
	apperrors "github.com/joe/scanwalk/pkg/errors"
	"github.com/joe/scanwalk/pkg/filesystem"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one scanwalk invocation and returns the exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.ParseArgs(args)
	if err != nil {
		return reportParseError(err, stdout, stderr)
	}

	logger := newLogger(stderr, cfg.Verbose)

	src, root, closer, err := filesystem.OpenSource(cfg.Root, logger)
	if err != nil {
		return reportError(err, cfg.Root, stderr)
	}

	if closer != nil {
		defer closer()
	}

	engine := walkengine.NewEngineFromConfig(src, root, cfg)
	engine.Logger = logger

	if cfg.Progress && isTerminal(stdout) {
		return runWithProgress(ctx, engine, stdout, stderr)
	}

	out := newPrinter(stdout, cfg.Long)
	engine.Emitter = out

	walkErr := engine.Run(ctx)

	if err := out.Flush(); err != nil {
		logger.WithError(err).Error("writing output failed")
		return 1
	}

	if walkErr != nil {
		return reportError(walkErr, "", stderr)
	}

	return 0
}

func runWithProgress(ctx context.Context, engine *walkengine.Engine, stdout, stderr io.Writer) int {
	stats, err := tui.Run(ctx, engine, tea.WithOutput(stdout))

	_, _ = fmt.Fprintf(stdout, "%d entries (%d dirs, %d files, %d links, %d other), %d pruned\n",
		stats.Entries, stats.Dirs, stats.Files, stats.Symlinks, stats.Other, stats.Pruned)

	if err != nil {
		return reportError(err, "", stderr)
	}

	return 0
}

func reportParseError(err error, stdout, stderr io.Writer) int {
	switch {
	case errors.Is(err, arg.ErrHelp):
		writeUsage(stdout, true)
		return 0
	case errors.Is(err, arg.ErrVersion):
		_, _ = fmt.Fprintln(stdout, config.Config{}.Version())
		return 0
	}

	_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	writeUsage(stderr, false)

	return 1
}

// reportError prints err with suggestions. Interruption is reported briefly.
func reportError(err error, affectedPath string, stderr io.Writer) int {
	if errors.Is(err, context.Canceled) {
		_, _ = fmt.Fprintln(stderr, "Interrupted")
		return 1
	}

	enriched := apperrors.NewEnricher().Enrich(err, affectedPath)

	_, _ = fmt.Fprintf(stderr, "Error: %v\n", enriched)

	if suggestions := apperrors.FormatSuggestions(enriched); suggestions != "" {
		_, _ = fmt.Fprintf(stderr, "\nSuggestions:\n%s\n", suggestions)
	}

	return 1
}

func writeUsage(w io.Writer, full bool) {
	parser, err := arg.NewParser(arg.Config{Program: "scanwalk"}, &config.Config{})
	if err != nil {
		return
	}

	if full {
		parser.WriteHelp(w)
	} else {
		parser.WriteUsage(w)
	}
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)

	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	return logger
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}
