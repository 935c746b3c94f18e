//go:build !unix

package output

import "golang.org/x/term"

func systemTerminalWidth() (int, bool) {
	width, _, err := term.GetSize(stdoutFd())
	if err != nil || width <= 0 {
		return 0, false
	}

	return width, true
}
