// Package logging provides leveled, optionally styled logging with an
// optional plain-text file sink. The logger remembers whether any
// error-level event fired so the process can report a degraded run through
// its exit code.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/1024mb/gog-installer-update-checker/internal/config"
)

// Level orders log severities for filtering.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

// ParseLevel maps a validated config log level onto a Level.
func ParseLevel(l config.LogLevel) Level {
	switch l {
	case config.LevelDebug:
		return LevelDebug
	case config.LevelWarning:
		return LevelWarning
	case config.LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

// Per-level label styles. The active color profile decides whether they
// render as ANSI sequences or plain text.
var (
	styleDebug   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")) // cyan
	styleInfo    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")) // blue
	styleSuccess = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")) // green
	styleWarn    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")) // yellow
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))  // red
)

// Logger provides leveled logging to the console and an optional file.
type Logger struct {
	mu       sync.Mutex
	min      Level
	file     *os.File
	filePath string
	errored  bool
}

// NewLogger configures the color profile from cfg and optionally opens the
// log file at logPath. Call Close() when done if a file was opened.
func NewLogger(cfg *config.Config, logPath string) (*Logger, error) {
	switch cfg.ColorMode {
	case config.ColorAlways:
		lipgloss.SetColorProfile(termenv.ANSI256)
	case config.ColorNever:
		lipgloss.SetColorProfile(termenv.Ascii)
	case config.ColorAuto:
		if !isTerminal(os.Stdout) || os.Getenv("NO_COLOR") != "" || strings.ToLower(os.Getenv("TERM")) == "dumb" {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	}

	l := &Logger{min: ParseLevel(cfg.LogLevel)}
	if logPath != "" {
		dir := filepath.Dir(logPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		l.file = f
		l.filePath = logPath
	}
	return l, nil
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// Errored reports whether any error-level event was logged.
func (l *Logger) Errored() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errored
}

// FilePath returns the log file path, or "" when logging only to console.
func (l *Logger) FilePath() string {
	return l.filePath
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) line(level Level, label string, style lipgloss.Style, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level == LevelError {
		l.errored = true
	}
	if level < l.min {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05")
	out := os.Stdout
	if level == LevelError {
		out = os.Stderr
	}
	_, _ = io.WriteString(out, ts+" "+style.Render("["+label+"]")+" "+text+"\n")
	if l.file != nil {
		_, _ = io.WriteString(l.file, ts+" ["+label+"] "+text+"\n")
	}
}

// Debug logs at DEBUG level (cyan).
func (l *Logger) Debug(format string, args ...interface{}) {
	l.line(LevelDebug, "DEBUG", styleDebug, fmt.Sprintf(format, args...))
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.line(LevelInfo, "INFO", styleInfo, fmt.Sprintf(format, args...))
}

// Success logs at SUCCESS level (green), filtered like INFO.
func (l *Logger) Success(format string, args ...interface{}) {
	l.line(LevelInfo, "SUCCESS", styleSuccess, fmt.Sprintf(format, args...))
}

// Warn logs at WARNING level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line(LevelWarning, "WARNING", styleWarn, fmt.Sprintf(format, args...))
}

// Error logs at ERROR level (red) to stderr and marks the run as errored.
// The mark sticks even when the level filter suppresses the line.
func (l *Logger) Error(format string, args ...interface{}) {
	l.line(LevelError, "ERROR", styleError, fmt.Sprintf(format, args...))
}
