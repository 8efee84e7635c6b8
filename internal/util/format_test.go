package util

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected string
	}{
		{name: "zero", input: 0, expected: "0"},
		{name: "three digits", input: 999, expected: "999"},
		{name: "thousand", input: 1000, expected: "1,000"},
		{name: "million", input: 1234567, expected: "1,234,567"},
		{name: "negative", input: -45000, expected: "-45,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatNumber(tt.input))
		})
	}
}

func TestFormatMillis(t *testing.T) {
	assert.Equal(t, "1.500 ms", FormatMillis(1500*time.Microsecond))
	assert.Equal(t, "0.000 ms", FormatMillis(0))
}

func TestFormatOffset(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "0.000", FormatOffset(t0, t0))
	assert.Equal(t, "2.041", FormatOffset(t0.Add(2041*time.Millisecond), t0))
}

func TestDisplayHelpers(t *testing.T) {
	assert.Equal(t, 4, GetDisplayWidth("時間"))
	assert.Equal(t, "ab  ", PadRight("ab", 4))
	assert.Equal(t, "  ab", PadLeft("ab", 4))
	assert.Equal(t, " ab ", CenterText("ab", 4))
	assert.LessOrEqual(t, GetDisplayWidth(Truncate("abcdefgh", 5)), 5)
}

func TestTerminalDetection(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTerminal(&buf))
	assert.Equal(t, DefaultTerminalWidth, TerminalWidth(&buf))
}

func TestColorize(t *testing.T) {
	assert.Equal(t, "x", Colorize(ColorRed, "x", false))
	assert.Equal(t, ColorRed+"x"+ColorReset, Colorize(ColorRed, "x", true))
}

func TestFileFingerprint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.lola")
	require.NoError(t, os.WriteFile(path, []byte("0: s = \"start_m\"\n"), 0644))

	first, err := FileFingerprint(path)
	require.NoError(t, err)
	again, err := FileFingerprint(path)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	require.NoError(t, os.WriteFile(path, []byte("0: s = \"end_m\"\n"), 0644))
	changed, err := FileFingerprint(path)
	require.NoError(t, err)
	assert.NotEqual(t, first, changed)

	_, err = FileFingerprint(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
