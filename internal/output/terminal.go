package output

import (
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const defaultTerminalWidth = 100

func detectTerminalWidth() (int, bool) {
	if raw, ok := os.LookupEnv("COLUMNS"); ok {
		if width, err := strconv.Atoi(raw); err == nil && width > 0 {
			return width, true
		}
	}

	if width, ok := systemTerminalWidth(); ok {
		return width, true
	}

	return 0, false
}

func terminalWidth() int {
	if width, ok := detectTerminalWidth(); ok {
		return width
	}

	return defaultTerminalWidth
}

func stdoutFd() int {
	if f, ok := writer().(*os.File); ok {
		return int(f.Fd())
	}

	return -1
}

// colorEnabled reports whether output goes to an interactive terminal.
func colorEnabled() bool {
	fd := stdoutFd()

	return fd >= 0 && term.IsTerminal(fd)
}

func visibleWidth(s string) int {
	return runewidth.StringWidth(stripAnsiCodes(s))
}

func padRight(s string, width int) string {
	current := visibleWidth(s)
	if current >= width {
		return s
	}

	return s + strings.Repeat(" ", width-current)
}

// truncate shortens s to at most width display cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}

	if runewidth.StringWidth(s) <= width {
		return s
	}

	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}

	return runewidth.Truncate(s, width, "...")
}

// stripAnsiCodes removes ANSI escape sequences.
func stripAnsiCodes(s string) string {
	var b strings.Builder
	inEscape := false

	for i := 0; i < len(s); i++ {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			inEscape = true
			i++

			continue
		}

		if inEscape {
			if (s[i] >= 'A' && s[i] <= 'Z') || (s[i] >= 'a' && s[i] <= 'z') {
				inEscape = false
			}

			continue
		}

		b.WriteByte(s[i])
	}

	return b.String()
}
