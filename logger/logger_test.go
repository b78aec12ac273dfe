package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")

	log, err := New(Config{Level: "warn", Encoding: "json", OutputPath: path})
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown", zap.String("id", "n1"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), `"level":"WARN"`)
	assert.Contains(t, string(data), `"id":"n1"`)
	assert.Contains(t, string(data), `"timestamp"`)
}

func TestNewInvalidLevel(t *testing.T) {
	log, err := New(Config{Level: "loud", Encoding: "xml"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.InfoLevel))
	assert.False(t, log.Core().Enabled(zap.DebugLevel))
}
