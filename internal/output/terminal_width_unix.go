//go:build unix

package output

import (
	"golang.org/x/sys/unix"
)

func systemTerminalWidth() (int, bool) {
	ws, err := unix.IoctlGetWinsize(stdoutFd(), unix.TIOCGWINSZ)
	if err != nil || ws == nil || ws.Col == 0 {
		return 0, false
	}

	return int(ws.Col), true
}
