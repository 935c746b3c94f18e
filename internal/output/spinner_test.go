package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpinnerWithoutTTY(t *testing.T) {
	t.Setenv(formatEnv, "")
	SetFormat(FormatText)
	t.Cleanup(func() { SetFormat("") })

	var buf bytes.Buffer
	s := newSpinner("Fetching trending searches", &buf, false)

	s.Start()
	s.Start()
	s.Update("still fetching")
	s.Success("Fetched 5 searches")
	s.Fail("ignored after stop")

	out := buf.String()
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("Fetching trending searches...")))
	assert.Contains(t, out, "✓ Fetched 5 searches")
	assert.Contains(t, out, "✗ ignored after stop")
}

func TestSpinnerQuietInJSONMode(t *testing.T) {
	SetFormat(FormatJSON)
	t.Cleanup(func() { SetFormat("") })

	var buf bytes.Buffer
	s := newSpinner("Recording", &buf, false)
	s.Start()
	s.Success("done")
	s.Stop()

	assert.Empty(t, buf.String())
}
