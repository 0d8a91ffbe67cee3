package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerFileSink(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "crm.log")

	logger := NewLogger("production", logPath)
	logger.Info("file sink check")
	// Sync по stdout на Linux может вернуть EINVAL, файлового синка это не касается
	_ = logger.Sync()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file sink check")
}

func TestNewLoggerWithoutFile(t *testing.T) {
	logger := NewLogger("development", "")
	require.NotNil(t, logger)
	logger.Info("stdout only")
}
