package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"palletkiosk/internal/config"
)

// Levels lists the log levels that have their own file.
var Levels = []string{"info", "warning", "error"}

// Logger provides leveled logging (info/warning/error) to files and stdout/stderr.
type Logger struct {
	infoLog    *log.Logger
	warningLog *log.Logger
	errorLog   *log.Logger
	logDir     string
	files      []*os.File
	mu         sync.Mutex
}

// NewLogger creates a Logger and ensures the log directory exists.
func NewLogger(config *config.Config) *Logger {
	if err := os.MkdirAll(config.LogDirectory, 0755); err != nil {
		log.Fatalf("Failed to create log directory: %v", err)
	}

	logger := &Logger{
		logDir: config.LogDirectory,
	}

	logger.setupLoggers()
	return logger
}

// NewDiscard returns a Logger that drops everything. Used by tests and tools.
func NewDiscard() *Logger {
	return newWithWriters(io.Discard, io.Discard, io.Discard)
}

// NewConsole returns a Logger that writes to stdout/stderr only.
func NewConsole() *Logger {
	return newWithWriters(os.Stdout, os.Stdout, os.Stderr)
}

func newWithWriters(info, warning, errs io.Writer) *Logger {
	l := &Logger{}
	l.infoLog = log.New(info, "ℹ️  INFO    ", log.Ldate|log.Ltime)
	l.warningLog = log.New(warning, "⚠️  WARNING ", log.Ldate|log.Ltime)
	l.errorLog = log.New(errs, "❌ ERROR   ", log.Ldate|log.Ltime)
	return l
}

// setupLoggers initializes writers and per-level loggers.
func (l *Logger) setupLoggers() {
	infoFileHandle := l.openLogFile(l.Path("info"))
	warningFileHandle := l.openLogFile(l.Path("warning"))
	errorFileHandle := l.openLogFile(l.Path("error"))
	l.files = []*os.File{infoFileHandle, warningFileHandle, errorFileHandle}

	infoWriter := io.MultiWriter(os.Stdout, infoFileHandle)
	warningWriter := io.MultiWriter(os.Stdout, warningFileHandle)
	errorWriter := io.MultiWriter(os.Stderr, errorFileHandle)

	l.infoLog = log.New(infoWriter, "ℹ️  INFO    ", log.Ldate|log.Ltime|log.Lshortfile)
	l.warningLog = log.New(warningWriter, "⚠️  WARNING ", log.Ldate|log.Ltime|log.Lshortfile)
	l.errorLog = log.New(errorWriter, "❌ ERROR   ", log.Ldate|log.Ltime|log.Lshortfile)
}

// openLogFile opens or creates a log file for appending.
func (l *Logger) openLogFile(filename string) *os.File {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file %s: %v", filename, err)
	}
	return file
}

// Path returns the file backing a level, or "" for a console-only logger.
func (l *Logger) Path(level string) string {
	if l.logDir == "" {
		return ""
	}
	return filepath.Join(l.logDir, level+".log")
}

// HasLevel reports whether level is one of Levels.
func (l *Logger) HasLevel(level string) bool {
	return slices.Contains(Levels, level)
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infoLog.Output(2, fmt.Sprintf(format, v...))
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warningLog.Output(2, fmt.Sprintf(format, v...))
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errorLog.Output(2, fmt.Sprintf(format, v...))
}

// CleanLogs truncates the log file of the given level.
func (l *Logger) CleanLogs(level string) error {
	filePath := l.Path(level)
	if filePath == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.Truncate(filePath, 0); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", filePath, err)
	}
	l.infoLog.Printf("Log file %s has been cleared.", filepath.Base(filePath))
	return nil
}

// Close releases the log files.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, f := range l.files {
		f.Close()
	}
	l.files = nil
}
