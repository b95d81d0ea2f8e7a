package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sethgrid/watchbuddy/internal/config"
)

func TestNewFileOutput(t *testing.T) {
	dir := t.TempDir()
	log, err := New(config.LogConfig{
		Level:  "debug",
		Output: "file",
		File: config.LogFileConfig{
			Path:     dir,
			Filename: "test.log",
			MaxSize:  1,
		},
	})
	require.NoError(t, err)

	log.Info("hello", zap.String("pet", "Pip"))
	_ = log.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"pet":"Pip"`)
}

func TestNewRejectsUnknownOutput(t *testing.T) {
	_, err := New(config.LogConfig{Output: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
}
