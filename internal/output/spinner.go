package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// Spinner shows progress on stderr and degrades to plain lines when stderr
// isn't a TTY or JSON output was requested.
type Spinner struct {
	mu      sync.Mutex
	enabled bool
	active  bool
	stopped bool
	message string
	writer  io.Writer
	sp      *pterm.SpinnerPrinter
}

// NewSpinner creates a spinner with the provided message. Call Start before using.
func NewSpinner(message string) *Spinner {
	return newSpinner(message, os.Stderr, term.IsTerminal(int(os.Stderr.Fd())) && !IsJSONMode())
}

func newSpinner(message string, w io.Writer, enabled bool) *Spinner {
	return &Spinner{enabled: enabled, message: message, writer: w}
}

// Start begins rendering the spinner.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.active {
		return
	}
	s.active = true

	if s.enabled {
		sp, err := pterm.DefaultSpinner.WithWriter(s.writer).WithRemoveWhenDone(true).Start(s.message)
		if err == nil {
			s.sp = sp

			return
		}
	}

	if !IsJSONMode() {
		fmt.Fprintf(s.writer, "%s...\n", s.message)
	}
}

// Update changes the spinner message.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = message
	if !s.active || s.stopped {
		return
	}

	if s.sp != nil {
		s.sp.UpdateText(message)
	}
}

// Stop stops the spinner without printing an additional message.
func (s *Spinner) Stop() {
	s.stopWithMessage("", "")
}

// Success stops the spinner and prints a success message.
func (s *Spinner) Success(message string) {
	s.stopWithMessage("✓", message)
}

// Fail stops the spinner and prints a failure message.
func (s *Spinner) Fail(message string) {
	s.stopWithMessage("✗", message)
}

func (s *Spinner) stopWithMessage(prefix, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.stopped {
		s.stopped = true
		if s.sp != nil {
			_ = s.sp.Stop()
		}
	}

	if message != "" && !IsJSONMode() {
		fmt.Fprintf(s.writer, "%s %s\n", prefix, message)
	}
}
