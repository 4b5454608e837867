package logging

import (
	"os"
	"path/filepath"
	"testing"

	"glowdesk/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "glowdesk.log")
	logger, err := New(config.LoggingConfig{Level: "info", File: path}, false)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("turn submitted", zap.String("session", "abc"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "turn submitted")
	assert.Contains(t, string(data), `"session":"abc"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glowdesk.log")
	logger, err := New(config.LoggingConfig{Level: "warn", File: path}, true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "loud"}, false)
	assert.Error(t, err)
}
