package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Batman", 10, "Batman"},
		{"The Dark Knight Rises", 10, "The Dar..."},
		{"Batman", 3, "Bat"},
		{"Batman", 0, ""},
		{"千と千尋の神隠し", 8, "千と..."},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := truncate(tt.in, tt.width)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, visibleWidth(got), tt.width)
		})
	}
}

func TestPadRightIgnoresANSI(t *testing.T) {
	colored := "\x1b[32mok\x1b[0m"

	assert.Equal(t, "ok", stripAnsiCodes(colored))
	assert.Equal(t, 2, visibleWidth(colored))
	assert.Equal(t, colored+"   ", padRight(colored, 5))
	assert.Equal(t, "toolong", padRight("toolong", 3))
}

func TestDetectTerminalWidthFromColumns(t *testing.T) {
	t.Setenv("COLUMNS", "132")

	width, ok := detectTerminalWidth()
	assert.True(t, ok)
	assert.Equal(t, 132, width)
	assert.Equal(t, 132, terminalWidth())
}
