package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextLogger(t *testing.T) {
	var out bytes.Buffer
	l, err := New("GAME", "\033[36m", &out)
	require.NoError(t, err)

	l.Info("round started")
	l.Warning("odd tilt")
	l.Error("broken")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "\033[36m[GAME]\033[0m "), line)
	}
	assert.Contains(t, lines[0], "level=info")
	assert.Contains(t, lines[0], "msg=round started")
	assert.Contains(t, lines[1], "level=warning")
	assert.Contains(t, lines[2], "level=error")
}

func TestJSONLoggerAndLevel(t *testing.T) {
	var out bytes.Buffer
	l, err := New("LOBBY", "", &out, Options{Level: "warning", Format: "JSON"})
	require.NoError(t, err)

	l.Info("hidden")
	l.Warning("queue is slow")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "LOBBY", entry["component"])
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "queue is slow", entry["msg"])
}

func TestNewNeedsOutput(t *testing.T) {
	_, err := New("APP", "", nil)
	assert.ErrorIs(t, err, ErrNoOutput)
}
