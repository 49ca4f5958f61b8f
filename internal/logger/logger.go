// Package logger provides structured logging with configurable verbosity and
// output destinations. Console output is colorized via tint; an optional log
// file receives the same records in plain text.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Logger wraps a slog.Logger together with the optional log file handle so the
// file can be flushed and closed on shutdown.
type Logger struct {
	slog       *slog.Logger
	fileWriter io.WriteCloser
}

// globalLogger is the singleton logger instance used throughout the application.
var globalLogger *Logger

// SetupLogging initializes the global logger with the specified configuration.
//
// Parameters:
//   - verbose: If true, enables debug-level logging (shows all messages)
//   - logFile: If non-empty, writes logs to the specified file path in addition to stderr
//
// The logger writes to stderr by default using a colorized tint handler. If a
// log file is specified, color is disabled and records are written to both
// stderr and the file via io.MultiWriter. The log file is opened in append
// mode, creating it if it doesn't exist.
//
// Returns an error if the log file cannot be created or opened.
func SetupLogging(verbose bool, logFile string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	var fileWriter io.WriteCloser
	var output io.Writer = os.Stderr
	noColor := false

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", logFile, err)
		}
		fileWriter = f
		output = io.MultiWriter(os.Stderr, f)
		// ANSI escapes would end up in the file, so plain text for both sinks.
		noColor = true
	}

	handler := tint.NewHandler(output, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    noColor,
	})

	globalLogger = &Logger{
		slog:       slog.New(handler),
		fileWriter: fileWriter,
	}

	return nil
}

// Close closes the log file if one was opened.
// This should be called before application exit to ensure all log data is flushed.
// It's safe to call this even if no log file was opened, and safe to call
// multiple times (idempotent).
func Close() error {
	if globalLogger != nil && globalLogger.fileWriter != nil {
		err := globalLogger.fileWriter.Close()
		globalLogger.fileWriter = nil
		return err
	}
	return nil
}

// Debug logs a debug-level message with optional key-value attributes.
// Debug messages are filtered out unless verbose logging is enabled.
func Debug(msg string, args ...any) {
	active().Debug(msg, args...)
}

// Info logs an informational message with optional key-value attributes.
func Info(msg string, args ...any) {
	active().Info(msg, args...)
}

// Warn logs a warning message with optional key-value attributes.
// Warnings indicate situations that don't stop a scan (skipped paths,
// unavailable backends, retried operations).
func Warn(msg string, args ...any) {
	active().Warn(msg, args...)
}

// Error logs an error message with optional key-value attributes.
func Error(msg string, args ...any) {
	active().Error(msg, args...)
}

// LogPathError logs a path-specific error with structured attributes.
// This is used for tracking per-path failures encountered during a scan
// (permission denied, exhausted retries, symlink cycles).
func LogPathError(path string, err error) {
	active().Warn("path skipped", "path", path, "error", err)
}

// active returns the configured logger, falling back to a default stderr
// logger when SetupLogging was never called (library use, tests).
func active() *slog.Logger {
	if globalLogger == nil {
		return slog.Default()
	}
	return globalLogger.slog
}
