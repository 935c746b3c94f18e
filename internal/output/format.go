// Package output renders command results as text, tables or JSON.
package output

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
)

// Supported formats.
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
)

// Formats lists every format accepted by --output.
var Formats = []string{FormatText, FormatTable, FormatJSON}

const formatEnv = "REELTREND_OUTPUT"

var (
	formatMu      sync.RWMutex
	currentFormat string
	stdout        io.Writer = os.Stdout
)

// DefaultFormat returns the preferred output format unless REELTREND_OUTPUT is set to a supported value.
func DefaultFormat(preferred string, allowed []string) string {
	env := strings.TrimSpace(os.Getenv(formatEnv))
	if env == "" {
		return preferred
	}

	env = strings.ToLower(env)
	for _, option := range allowed {
		if env == option {
			return env
		}
	}

	return preferred
}

// SetFormat records the format chosen for the running command.
func SetFormat(format string) {
	formatMu.Lock()
	currentFormat = strings.ToLower(strings.TrimSpace(format))
	formatMu.Unlock()
}

// IsJSONMode reports whether machine-readable output was requested, either
// through SetFormat or REELTREND_OUTPUT.
func IsJSONMode() bool {
	formatMu.RLock()
	format := currentFormat
	formatMu.RUnlock()

	if format != "" {
		return format == FormatJSON
	}

	return DefaultFormat(FormatText, Formats) == FormatJSON
}

// SetWriter redirects rendered output, returning a function restoring the previous writer.
func SetWriter(w io.Writer) func() {
	formatMu.Lock()
	previous := stdout
	stdout = w
	formatMu.Unlock()

	return func() {
		formatMu.Lock()
		stdout = previous
		formatMu.Unlock()
	}
}

func writer() io.Writer {
	formatMu.RLock()
	defer formatMu.RUnlock()

	return stdout
}

func displayJSON(data any) error {
	encoder := json.NewEncoder(writer())
	encoder.SetIndent("", "  ")

	return encoder.Encode(data)
}
