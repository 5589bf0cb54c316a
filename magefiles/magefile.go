//go:build mage

// Package main provides build targets for the shopkeep project using Mage.
//
// Usage:
//
//	mage build          Compile shopkeep binary to bin/
//	mage test           Run all tests
//	mage cover          Run all tests with a coverage profile
//	mage golden         Regenerate golden CSV files
//	mage lint           Run golangci-lint
//	mage clean          Remove build artifacts
//	mage install        Install shopkeep to GOPATH/bin
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName   = "shopkeep"
	binaryDir    = "bin"
	cmdDir       = "./cmd/shopkeep"
	versionVar   = "github.com/mesh-intelligence/shopkeep/internal/cli.Version"
	coverProfile = "coverage.out"
)

// goldenPackages hold goldie fixtures under testdata/golden.
var goldenPackages = []string{"./internal/sqlite"}

// Build compiles the shopkeep binary to bin/. The version comes from
// SHOPKEEP_VERSION or the latest git tag when set.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	args := []string{"build", "-v", "-o", filepath.Join(binaryDir, binaryName)}
	if v := version(); v != "" {
		args = append(args, "-ldflags", "-X "+versionVar+"="+v)
	}
	return sh.RunV("go", append(args, cmdDir)...)
}

func version() string {
	if v := os.Getenv("SHOPKEEP_VERSION"); v != "" {
		return v
	}
	tag, err := sh.Output("git", "describe", "--tags", "--abbrev=0")
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.TrimSpace(tag), "v")
}

// Test runs all tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Cover runs all tests with a coverage profile and prints the summary.
func Cover() error {
	if err := sh.RunV("go", "test", "-coverprofile="+coverProfile, "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func="+coverProfile)
}

// Golden rewrites the golden CSV fixtures from the current output.
func Golden() error {
	args := append([]string{"test"}, goldenPackages...)
	return sh.RunV("go", append(args, "-run", "Golden", "-update")...)
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	if err := os.Remove(coverProfile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return sh.RunV("go", "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output("go", "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
