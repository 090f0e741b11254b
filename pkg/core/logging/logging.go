// Package logging builds the arbor logger shared by the engine.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

// Config selects log level and writers.
type Config struct {
	Level  string   `toml:"level" validate:"omitempty,oneof=trace debug info warn error fatal"`
	Output []string `toml:"output" validate:"dive,oneof=stdout console file"`
	Dir    string   `toml:"dir"` // directory for the file writer
}

var (
	globalLogger arbor.ILogger
	loggerMutex  sync.RWMutex
)

func consoleWriter() models.WriterConfiguration {
	return models.WriterConfiguration{
		Type:       models.LogWriterTypeConsole,
		TimeFormat: "15:04:05",
	}
}

// GetLogger returns the global logger, creating a console logger on first use.
func GetLogger() arbor.ILogger {
	loggerMutex.RLock()
	if globalLogger != nil {
		loggerMutex.RUnlock()
		return globalLogger
	}
	loggerMutex.RUnlock()

	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	if globalLogger == nil {
		globalLogger = arbor.NewLogger().WithConsoleWriter(consoleWriter())
	}
	return globalLogger
}

// InitLogger builds a logger from cfg and installs it as the global logger.
// Without outputs it logs to the console.
func InitLogger(cfg Config) arbor.ILogger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	logger := arbor.NewLogger()

	console := len(cfg.Output) == 0
	for _, output := range cfg.Output {
		switch strings.ToLower(output) {
		case "stdout", "console":
			console = true
		case "file":
			dir := cfg.Dir
			if dir == "" {
				dir = "logs"
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to create log directory %s: %v\n", dir, err)
				console = true
				continue
			}
			logger = logger.WithFileWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeFile,
				FileName:   filepath.Join(dir, "engine.log"),
				TimeFormat: "15:04:05",
				MaxSize:    50 * 1024 * 1024,
				MaxBackups: 3,
				OutputType: models.OutputFormatLogfmt,
			})
		}
	}
	if console {
		logger = logger.WithConsoleWriter(consoleWriter())
	}

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	logger = logger.WithLevelFromString(level)

	globalLogger = logger
	return logger
}
