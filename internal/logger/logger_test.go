package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNew_ProductionWritesJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "app.log")
	log, err := New(Config{Env: "production", Level: "warn", OutputPath: out})
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("visible")
	require.NoError(t, log.Sync())

	data := readLog(t, out)
	assert.NotContains(t, data, "hidden")
	assert.Contains(t, data, `"msg":"visible"`)
	assert.Contains(t, data, `"level":"WARN"`)
	assert.Contains(t, data, `"env":"production"`)
	assert.NotContains(t, data, `"caller"`)
}

func TestNew_DevelopmentUsesConsole(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dev.log")
	log, err := New(Config{Env: "development", Level: "debug", OutputPath: out})
	require.NoError(t, err)

	log.Debug("dev line")
	require.NoError(t, log.Sync())

	data := readLog(t, out)
	assert.Contains(t, data, "dev line")
	assert.Contains(t, data, "logger_test.go")
	assert.NotContains(t, data, `"msg"`)
}

func TestNew_ExplicitEncodingWins(t *testing.T) {
	out := filepath.Join(t.TempDir(), "cli.log")
	log, err := New(Config{Env: "production", Encoding: "console", OutputPath: out})
	require.NoError(t, err)

	log.Info("console line")
	require.NoError(t, log.Sync())
	assert.NotContains(t, readLog(t, out), `"msg"`)
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	log, err := New(Config{Level: "loud", OutputPath: filepath.Join(t.TempDir(), "x.log")})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}
