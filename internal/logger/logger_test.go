package logger

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Not parallel: swaps the global logger output.
func TestInitDir_WritesToFile(t *testing.T) {
	defer log.SetOutput(os.Stderr)
	defer Close()

	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, InitDir(dir))
	assert.Equal(t, filepath.Join(dir, "debug.log"), GetLogPath())

	LogError("room %s failed", "4821")
	LogPanic("boom")

	data, err := os.ReadFile(GetLogPath())
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "[INFO] Logger initialized")
	assert.Contains(t, content, "[ERROR] room 4821 failed")
	assert.Contains(t, content, "[PANIC] boom")
	assert.Contains(t, content, "goroutine", "panic log carries a stack trace")
}
