package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogBeforeInitIsSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		Info("before init", zap.String("k", "v"))
		WithContext(zap.String("component", "test")).Debug("scoped")
	})
}

func TestInitLoggerWritesToDir(t *testing.T) {
	previous := Log
	t.Cleanup(func() { Log = previous })

	dir := filepath.Join(t.TempDir(), "nested", "logs")
	InitLogger(dir)
	Info("hello", zap.String("operation", "premium_analysis"))
	Error("boom")
	_ = Sync()

	data, err := os.ReadFile(filepath.Join(dir, "api.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"operation":"premium_analysis"`)
	assert.Contains(t, string(data), `"timestamp"`)
}
