// Package paths resolves the configuration and data directory locations.
//
// A shop terminal keeps everything next to where it is started: the backing
// stores live in the working directory and the configuration in a hidden
// directory beside them, unless a flag, config value, or environment
// variable says otherwise.
package paths

import (
	"os"
	"path/filepath"
)

// DefaultConfigDirName is the CWD-relative configuration directory.
const DefaultConfigDirName = ".shopkeep"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "SHOPKEEP_CONFIG_DIR"
	EnvDataDir   = "SHOPKEEP_DATA_DIR"
)

// getwd is overridden in tests.
var getwd = os.Getwd

// DefaultConfigDir returns $(CWD)/.shopkeep.
func DefaultConfigDir() (string, error) {
	cwd, err := getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultConfigDirName), nil
}

// DefaultDataDir returns the working directory, where the CSV stores
// have always lived.
func DefaultDataDir() (string, error) {
	return getwd()
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > SHOPKEEP_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configYAMLValue > SHOPKEEP_DATA_DIR env > DefaultDataDir().
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultDataDir()
}
