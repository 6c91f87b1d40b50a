package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("APP_ENV")) }()
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestNewWithWriter_ComponentAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "session", "warn")
	l.Infof("dropped")
	l.Warnf("kept %d", 1)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "session", entry["component"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "kept 1", entry["message"])
}

func TestNewWithWriter_DefaultLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "c", "nonsense")
	l.Debugw("hidden", map[string]any{"a": 1})
	l.Infof("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
