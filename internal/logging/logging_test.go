package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestNew_FiltersByLevelWithoutColor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, "warn")
	l.Info().Msg("hidden")
	l.Warn().Str("tag", "UK100").Msg("late arrival")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "late arrival")
	assert.Contains(t, out, "tag=UK100")
	assert.NotContains(t, out, "\x1b[", "no ANSI color off a terminal")
}
