//go:build mage
// +build mage

package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "scanwalk"

// Default target to run when none is specified
var Default = Build

// Build builds the binary
func Build() error {
	fmt.Println("Building...")
	return sh.Run("go", "build", "-o", binary, "./cmd/scanwalk")
}

// Test runs all tests
func Test() error {
	fmt.Println("Running tests...")
	return sh.Run("go", "test", "-race", "-coverprofile=coverage.out", "./...")
}

// TestForFail runs the unit tests purely to find out whether any fail
func TestForFail() error {
	fmt.Println("Running unit tests for overall pass/fail...")
	return run(context.Background(), "go", "test", "-timeout=30s", "./...", "-failfast", "-shuffle=on", "-race")
}

// CrossVet vets the non-Linux directory readers, which the host build skips.
func CrossVet() error {
	for _, goos := range []string{"darwin", "windows"} {
		fmt.Printf("Vetting for %s...\n", goos)

		err := sh.RunWith(map[string]string{"GOOS": goos}, "go", "vet", "./pkg/...")
		if err != nil {
			return err
		}
	}

	return nil
}

// Lint lints the codebase
func Lint() error {
	fmt.Println("Linting...")
	return run(context.Background(), "golangci-lint", "run", "-c", ".golangci.yml", "./...")
}

// Smoke builds the binary and walks the Go root with it
func Smoke() error {
	mg.Deps(Build)

	fmt.Println("Walking GOROOT...")

	return run(context.Background(), "./"+binary, "--prune", "testdata", "-t", "d", runtime.GOROOT())
}

// Check runs all checks (lint, test, cross-platform vet)
func Check() error {
	mg.SerialDeps(Lint, Test, CrossVet)
	return nil
}

// Clean removes build artifacts
func Clean() error {
	fmt.Println("Cleaning...")
	os.Remove(binary)
	os.Remove("coverage.out")
	return nil
}

// Install installs the binary
func Install() error {
	fmt.Println("Installing...")
	return sh.Run("go", "install", "./cmd/scanwalk")
}

// Helper function to run commands with context
func run(c context.Context, command string, arg ...string) error {
	cmd := exec.CommandContext(c, command, arg...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
