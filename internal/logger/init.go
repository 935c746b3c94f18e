// Package logger provides leveled diagnostic logging for reeltrend on top of pterm.
package logger

import (
	"io"
	"os"

	"github.com/pterm/pterm"
)

// InitPterm sends every diagnostic printer to stderr so stdout only carries
// command output (tables, JSON).
func InitPterm() {
	SetOutput(os.Stderr)
}

// SetOutput redirects all diagnostic printers to w.
// Tables and spinners keep their own writers.
func SetOutput(w io.Writer) {
	pterm.Info.Writer = w
	pterm.Success.Writer = w
	pterm.Warning.Writer = w
	pterm.Error.Writer = w
	pterm.Debug.Writer = w
}
