package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoggerIsShared(t *testing.T) {
	a := GetLogger()
	require.NotNil(t, a)
	assert.Equal(t, a, GetLogger())
}

func TestInitLoggerReplacesGlobal(t *testing.T) {
	logger := InitLogger(Config{Level: "debug", Output: []string{"stdout"}})
	require.NotNil(t, logger)
	assert.Equal(t, logger, GetLogger())
}

func TestInitLoggerFileWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger := InitLogger(Config{Level: "info", Output: []string{"file"}, Dir: dir})
	require.NotNil(t, logger)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(dir, "engine.log"), logger.GetLogFilePath())
}
