package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"trace", LevelTrace, false},
		{"DEBUG", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestInitConsole(t *testing.T) {
	var buf bytes.Buffer
	closeFn, err := Init(Config{Level: "info", Console: &buf})
	require.NoError(t, err)
	defer closeFn()

	ForService("pipeline").Info("batch done", "files", 3)
	ForService("pipeline").Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "service=pipeline")
	assert.Contains(t, out, "files=3")
	assert.NotContains(t, out, "hidden")

	SetLevel(LevelTrace)
	Trace("now visible")
	assert.Contains(t, buf.String(), "level=TRACE")
}

func TestInitFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "ftirkit.log")

	closeFn, err := Init(Config{Level: "debug", File: path, Console: &console})
	require.NoError(t, err)

	ForService("reader").Debug("parsed", "source", "a.csv")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "reader", entry["service"])
	assert.Equal(t, "a.csv", entry["source"])
	assert.NotNil(t, HumanReadable())
	assert.Empty(t, console.String())
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	_, err := Init(Config{Level: "chatty"})
	assert.Error(t, err)
}
