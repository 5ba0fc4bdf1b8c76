package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withBuffer(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetVerbose(false)
	})
	return &buf
}

func TestDebug_SilentByDefault(t *testing.T) {
	buf := withBuffer(t)

	Debug("harvesting %s", "https://example.com")
	assert.Empty(t, buf.String())
}

func TestDebug_VerbosePrints(t *testing.T) {
	buf := withBuffer(t)
	SetVerbose(true)

	Debug("harvesting %s", "https://example.com")
	assert.Equal(t, "[DEBUG] harvesting https://example.com\n", buf.String())
}

func TestLevels(t *testing.T) {
	buf := withBuffer(t)
	SetVerbose(true)

	Info("embedded %d chunks", 3)
	Warn("skipping malformed line")
	Stage("Acquisition")

	out := buf.String()
	assert.Contains(t, out, "[INFO] embedded 3 chunks\n")
	assert.Contains(t, out, "[WARN] skipping malformed line\n")
	assert.Contains(t, out, "=== Acquisition ===\n")
}

func TestIsVerbose(t *testing.T) {
	withBuffer(t)

	SetVerbose(true)
	assert.True(t, IsVerbose())
	SetVerbose(false)
	assert.False(t, IsVerbose())
}
