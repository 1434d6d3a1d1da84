// Package logger provides the process-wide run log.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu      sync.Mutex
	log     *logrus.Logger
	logFile *os.File
	verbose bool
)

// noop swallows log calls made before Init or after Close.
var noop = &logrus.Logger{
	Out:       io.Discard,
	Formatter: new(logrus.TextFormatter),
	Hooks:     make(logrus.LevelHooks),
	Level:     logrus.PanicLevel,
}

// Init initializes the global logger with the specified log file path.
func Init(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	// Close previous log file if exists
	if logFile != nil {
		logFile.Close()
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	logFile = f
	log = &logrus.Logger{
		Out: out(f),
		Formatter: &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000",
		},
		Hooks: make(logrus.LevelHooks),
		Level: logrus.DebugLevel,
	}

	return nil
}

// SetVerbose mirrors log output to stderr in addition to the log file.
// Takes effect on the current and any later Init.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()

	verbose = v
	if log != nil && logFile != nil {
		log.SetOutput(out(logFile))
	}
}

func out(f *os.File) io.Writer {
	if verbose {
		return io.MultiWriter(f, os.Stderr)
	}
	return f
}

// Close closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	log = nil
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	get().Infof(format, v...)
}

// Debug logs a debug message.
func Debug(format string, v ...interface{}) {
	get().Debugf(format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	get().Errorf(format, v...)
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	get().Warnf(format, v...)
}

// GetWriter returns the underlying writer for use by drivers.
func GetWriter() io.Writer {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		return logFile
	}
	return io.Discard
}

func get() *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()

	if log != nil {
		return log
	}
	return noop
}
