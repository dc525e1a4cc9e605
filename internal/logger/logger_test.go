package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"go-roast/internal/config"
)

func TestNew_LevelParsing(t *testing.T) {
	l, err := New(config.LogConfig{Level: "warn", Format: "console"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l, err = New(config.LogConfig{Level: "bogus"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roast.log")
	l, err := New(config.LogConfig{Level: "info", Format: "json", Output: "file", FilePath: path})
	require.NoError(t, err)

	ctx := WithRequestID(context.Background(), "req-123")
	l.Info("hello", RequestField(ctx))
	require.NoError(t, l.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	line := string(raw)
	assert.True(t, strings.Contains(line, `"message":"hello"`), line)
	assert.True(t, strings.Contains(line, `"request_id":"req-123"`), line)
}

func TestRequestID_Missing(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))
}
