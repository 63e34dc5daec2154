package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"Warn", LevelWarn},
		{"warning", LevelWarn},
		{"ERROR", LevelError},
		{"dEbUg", LevelDebug},
		{"", LevelInfo},
		{"trace", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestIsValidLevel(t *testing.T) {
	for _, s := range []string{"debug", "INFO", "Warn", "warning", "error"} {
		assert.True(t, IsValidLevel(s), s)
	}
	for _, s := range []string{"", "verbose", "fatal"} {
		assert.False(t, IsValidLevel(s), s)
	}
	assert.Equal(t, []string{"debug", "error", "info", "warn", "warning"}, LevelNames())
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatText, ParseFormat(""))
	assert.Equal(t, FormatText, ParseFormat("yaml"))

	assert.True(t, IsValidFormat("Json"))
	assert.True(t, IsValidFormat("TEXT"))
	assert.False(t, IsValidFormat("xml"))
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelDebug, Format: FormatJSON, Output: &buf})

	log.Debug("hello", "id", 7, "duration", 1500*time.Microsecond)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec), buf.String())
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, float64(7), rec["id"])
	assert.Equal(t, "1.5ms", rec["duration"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelWarn, Output: &buf})

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	Component(New(Config{Output: &buf}), "proxy").Info("x")
	assert.True(t, strings.Contains(buf.String(), "component=proxy"), buf.String())

	require.NotNil(t, Component(nil, "x"))
}

func TestNop(t *testing.T) {
	log := Nop()
	assert.False(t, log.Enabled(t.Context(), LevelError))
}
