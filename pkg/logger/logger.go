package logger

import (
	"os"

	"github.com/charmbracelet/log"
)

var instance *log.Logger

// Init configures the package-level logger. Must be called before any
// logging function; calls made before Init are dropped.
func Init(debug bool) {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	instance = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
}

// Debug writes a message at DEBUG level.
func Debug(message string, keyvals ...any) {
	if instance == nil {
		return
	}
	instance.Debug(message, keyvals...)
}

// Info writes a message at INFO level.
func Info(message string, keyvals ...any) {
	if instance == nil {
		return
	}
	instance.Info(message, keyvals...)
}

// Warn writes a message at WARN level.
func Warn(message string, keyvals ...any) {
	if instance == nil {
		return
	}
	instance.Warn(message, keyvals...)
}

// Error writes a message at ERROR level.
func Error(message string, keyvals ...any) {
	if instance == nil {
		return
	}
	instance.Error(message, keyvals...)
}

// Fatal writes a message at FATAL level and terminates the program.
func Fatal(message string, keyvals ...any) {
	if instance == nil {
		os.Exit(1)
	}
	instance.Fatal(message, keyvals...)
}
