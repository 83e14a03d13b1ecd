package contract

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/bizcache/schema"
)

// Color variables for console output.
var (
	FailedColor  = color.New(color.FgRed, color.Bold) // FailedColor represents a load that did not settle successfully.
	PendingColor = color.New(color.FgYellow)          // PendingColor represents a load still in flight.
	LoadedColor  = color.New(color.FgGreen)           // LoadedColor represents a successful load.
)

// GetPlainLabel returns the plain text label for a load state.
func GetPlainLabel(state schema.LoadState) string {
	switch state {
	case schema.LoadedState:
		return "Loaded"
	case schema.FailedState:
		return "Failed"
	default:
		return "Pending"
	}
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(state schema.LoadState) string {
	text := GetPlainLabel(state)

	switch state {
	case schema.LoadedState:
		return LoadedColor.Sprint(text)
	case schema.FailedState:
		return FailedColor.Sprint(text)
	default:
		return PendingColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetStoreDBFilePath returns the path to the SQLite DB file for offline storage.
func GetStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".bizcache_store.db"
	}
	return filepath.Join(homeDir, ".bizcache_store.db")
}

// TruncateText truncates a value to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and one character.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// StderrReporter forwards backend failures to stderr as warnings.
type StderrReporter struct{}

var _ ErrorReporter = StderrReporter{} // Compile-time check

// Report implements the ErrorReporter interface.
func (StderrReporter) Report(msg string) {
	_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", FailedColor.Sprint("Error"), msg)
}

// StaticTokenSource hands out a fixed bearer token.
type StaticTokenSource string

var _ TokenSource = StaticTokenSource("") // Compile-time check

// Token implements the TokenSource interface.
func (s StaticTokenSource) Token(_ context.Context) (string, error) {
	return string(s), nil
}

// LogModeHeader prints a one-line summary of where records come from.
func LogModeHeader(w io.Writer, cfg *Config) {
	if cfg.Mode == schema.RemoteMode {
		_, _ = fmt.Fprintf(w, "🔎 Mode: %s (%s)\n", cfg.Mode, strings.TrimRight(cfg.BaseURL, "/")+DefaultAPIPath)
		return
	}
	_, _ = fmt.Fprintf(w, "🔎 Mode: %s (%s store)\n", cfg.Mode, cfg.StoreBackend)
}
