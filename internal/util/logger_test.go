package util

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level string, format LogFormat) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l, _ := NewLogger(LoggerOptions{Level: level})
	l.AddOutput(NewStreamOutput(&buf, format))
	return l, &buf
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"bogus":   LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	l, buf := newBufferLogger("warn", FormatText)
	l.Debug("hidden")
	l.Info("hidden")
	l.Warnf("shown %d", 1)
	l.Error("also shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown 1")
	assert.Contains(t, out, "[ERROR] also shown")

	l.SetLevel(LevelDebug)
	l.Debug("now visible")
	assert.Contains(t, buf.String(), "[DEBUG] now visible")
}

func TestLoggerFieldsAreSorted(t *testing.T) {
	l, buf := newBufferLogger("debug", FormatText)
	l.With(F("z", 1)).Info("msg", F("b", "x"), F("a", 2))
	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasSuffix(line, "msg a=2 b=x z=1"), line)
}

func TestLoggerJSONFormat(t *testing.T) {
	l, buf := newBufferLogger("info", FormatJSON)
	l.Info("reparented", F("node", 3))

	var entry map[string]interface{}
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "reparented", entry["message"])
	assert.Equal(t, float64(3), entry["fields"].(map[string]interface{})["node"])
}

func TestLoggerFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.log")
	l, err := NewLogger(LoggerOptions{Level: "info", File: path})
	require.NoError(t, err)
	l.Info("to file")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")

	_, err = NewLogger(LoggerOptions{File: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}

func TestGlobalLogger(t *testing.T) {
	l, buf := newBufferLogger("debug", FormatText)
	SetLogger(l)
	defer SetLogger(nil)

	LogDebugf("value %d", 42)
	LogWarn("careful", F("k", "v"))
	assert.Contains(t, buf.String(), "value 42")
	assert.Contains(t, buf.String(), "careful k=v")

	SetLogger(nil)
	assert.NotPanics(t, func() { LogError("dropped") })
}
