package output

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultFormatAndJSONMode(t *testing.T) {
	t.Cleanup(func() { SetFormat("") })

	t.Run("default_format_with_empty_env", func(t *testing.T) {
		t.Setenv(formatEnv, "")
		SetFormat("")
		format := DefaultFormat(FormatText, Formats)
		require.Equal(t, FormatText, format)
		require.False(t, IsJSONMode())
	})

	t.Run("default_format_with_json_env", func(t *testing.T) {
		t.Setenv(formatEnv, "JSON")
		SetFormat("")
		format := DefaultFormat(FormatText, Formats)
		require.Equal(t, FormatJSON, format)
		require.True(t, IsJSONMode())
	})

	t.Run("default_format_with_unsupported_env", func(t *testing.T) {
		t.Setenv(formatEnv, "yaml")
		format := DefaultFormat(FormatTable, Formats)
		require.Equal(t, FormatTable, format)
	})

	t.Run("set_format_to_json", func(t *testing.T) {
		t.Setenv(formatEnv, "")
		SetFormat("json")
		require.True(t, IsJSONMode())
	})

	t.Run("set_format_overrides_env", func(t *testing.T) {
		t.Setenv(formatEnv, "json")
		SetFormat("text")
		require.False(t, IsJSONMode())
	})
}
