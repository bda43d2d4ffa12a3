package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// New creates a new logger with the specified log level writing to stdout.
func New(level string) *logrus.Logger {
	logger := logrus.New()

	// Set log level
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set formatter
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// Set output
	logger.SetOutput(os.Stdout)

	return logger
}

// NewWithFile creates a logger that also appends to app-YYYY-MM-DD.log in dir.
// The returned closer releases the file.
func NewWithFile(level, dir string) (*logrus.Logger, io.Closer, error) {
	logger := New(level)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(LogFilePath(dir, time.Now()), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger.SetOutput(io.MultiWriter(os.Stdout, f))
	return logger, f, nil
}

// LogFilePath returns the log file used for the day of t.
func LogFilePath(dir string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("app-%s.log", t.Format("2006-01-02")))
}

// WithFields creates a logger entry with the specified fields
func WithFields(logger *logrus.Logger, fields logrus.Fields) *logrus.Entry {
	return logger.WithFields(fields)
}
