// Package logging builds the combined console + file log sink used by the
// replicator daemon. All synchronization outcomes are surfaced through this
// sink, so it is constructed before anything touches the filesystem.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// rotation policy for the file sink
	maxLogSizeMB  = 10
	maxLogBackups = 3
	maxLogAgeDays = 28

	timeFormat = "2006-01-02T15:04:05.000Z07:00"
)

// New returns a logger that writes colored output to stdout and plain text
// records to logFilePath, creating the log directory if needed. The returned
// closer flushes and closes the file sink.
func New(logFilePath string) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(logFilePath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}

	fileSink := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
	}

	stdoutHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: timeFormat,
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	})
	fileHandler := slog.NewTextHandler(fileSink, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})

	logger := slog.New(NewMultiHandler(stdoutHandler, fileHandler))
	return logger, fileSink, nil
}
