package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()

	logger, err := New("loud", "")
	assert.Error(t, err)
	assert.Nil(t, logger)
}

func TestNew_Levels(t *testing.T) {
	t.Parallel()

	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := New(level, "")
		require.NoError(t, err, level)

		expected, _ := zapcore.ParseLevel(level)
		assert.True(t, logger.Core().Enabled(expected), level)
		assert.False(t, logger.Core().Enabled(expected-1), level)
	}
}

func TestNew_WritesJSONToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "memwatch.log")
	logger, err := New("info", path)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Warn("memory sample failed", zap.String("component", "memory-reader"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "memory sample failed", entry["msg"])
	assert.Equal(t, "memory-reader", entry["component"])
}
