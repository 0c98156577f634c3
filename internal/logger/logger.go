// Package logger provides verbose logging for wallapocket.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to show token handling and sync passes.
//
// Registered secrets (passwords, client secrets, access tokens) are masked
// in every line written.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	redacted   = "****"
	timeLayout = "15:04:05"

	// minSecretLen keeps tiny values from masking ordinary text.
	minSecretLen = 3
)

var (
	mu         sync.RWMutex
	verbose    bool
	timestamps bool
	output     io.Writer = os.Stderr
)

var (
	now     = time.Now
	secrets = make(map[string]struct{})
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetTimestamps prefixes each line with the wall-clock time. Long-running
// commands turn this on.
func SetTimestamps(on bool) {
	mu.Lock()
	defer mu.Unlock()
	timestamps = on
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Redact registers values that must never appear in log output.
// Values shorter than three bytes are ignored.
func Redact(values ...string) {
	mu.Lock()
	defer mu.Unlock()
	for _, v := range values {
		if len(v) >= minSecretLen {
			secrets[v] = struct{}{}
		}
	}
}

// ResetRedactions forgets every registered secret.
func ResetRedactions() {
	mu.Lock()
	defer mu.Unlock()
	secrets = make(map[string]struct{})
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(false, "[DEBUG] ", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	write(false, "", "\n=== %s ===", name)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(false, "[INFO] ", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	write(false, "[WARN] ", format, args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	write(true, "[ERROR] ", format, args...)
}

func write(always bool, level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !always && !verbose {
		return
	}

	line := level + fmt.Sprintf(format, args...)
	for s := range secrets {
		line = strings.ReplaceAll(line, s, redacted)
	}
	if timestamps {
		line = now().Format(timeLayout) + " " + line
	}
	fmt.Fprintln(output, line)
}
