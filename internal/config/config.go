// Package config holds runtime configuration: defaults, CLI flag parsing, and
// validation.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// --- Enum types for validated string fields ---

// ColorMode controls styled console output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// LogLevel is the minimum severity printed to the console and log file.
type LogLevel string

const (
	LevelDebug   LogLevel = "debug"
	LevelInfo    LogLevel = "info"
	LevelWarning LogLevel = "warning"
	LevelError   LogLevel = "error"
)

// Config holds all runtime settings. It is populated by [DefaultConfig] and
// then mutated by [ParseFlags] before being passed (by pointer) to packages
// that need it.
type Config struct {
	// Paths to scan for installers. At least one is required unless only
	// running diagnostics.
	Paths []string

	// InnoextractPath is the innoextract binary to use. Empty means
	// resolve from PATH.
	InnoextractPath string

	// OutputFile, when set, receives the plain-text report. The run
	// timestamp is inserted before the extension.
	OutputFile string

	// DataFile is the JSON policy data file. Default: "data.json" next to
	// the working directory.
	DataFile string

	// Logging and display.
	LogLevel  LogLevel  // Default: "info".
	LogFile   string    // Custom log file path; empty means the default name in cwd.
	ColorMode ColorMode // Default: "auto".
	CheckOnly bool      // Run --check diagnostics and exit.
}

// DefaultConfig returns a Config with all defaults applied. Used as the base
// before [ParseFlags] applies CLI overrides.
func DefaultConfig() Config {
	return Config{
		DataFile:  "data.json",
		LogLevel:  LevelInfo,
		ColorMode: ColorAuto,
		CheckOnly: false,
	}
}

// NormalizeDirArg strips trailing separators from a directory path.
// The filesystem root is returned unchanged so we don't produce an empty
// string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/\\")
}

// Validate checks enum fields and, when not in CheckOnly mode, requires at
// least one scan path.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case LevelDebug, LevelInfo, LevelWarning, LevelError:
		// valid
	default:
		return fmt.Errorf("invalid log level %q (use 'debug', 'info', 'warning' or 'error')", c.LogLevel)
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}

	if c.CheckOnly {
		return nil
	}
	if len(c.Paths) == 0 {
		return errors.New("need at least one --path to scan")
	}
	return nil
}

// TimestampPath inserts "_<ts>" between the base name and the extension of
// path, so repeated runs never clobber each other's reports or logs.
func TimestampPath(path string, ts time.Time) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return base + "_" + ts.Format("20060102_150405") + ext
}
