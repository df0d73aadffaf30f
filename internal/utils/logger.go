package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// DefaultLogPath is used until Init is called with a configured path
const DefaultLogPath = "/tmp/textfinder.out"

// Logger provides a centralized logging mechanism for textfinder
type Logger struct {
	infoLogger    *log.Logger
	warningLogger *log.Logger
	debugLogger   *log.Logger
	errorLogger   *log.Logger
	file          *os.File
	debug         bool
	mu            sync.Mutex
}

var (
	defaultLogger *Logger
	logPath       = DefaultLogPath
	debugEnabled  bool
	once          sync.Once
)

// Init sets the log file path and debug switch for the default logger.
// It only has an effect before the first log call.
func Init(path string, debug bool) {
	if path != "" {
		logPath = path
	}
	debugEnabled = debug
}

// GetLogger returns the default logger instance (singleton pattern)
func GetLogger() *Logger {
	once.Do(func() {
		var err error
		defaultLogger, err = NewLogger(logPath)
		if err != nil {
			// Fallback to stderr if we can't create the log file
			log.Printf("Failed to create log file, falling back to stderr: %v", err)
			defaultLogger = NewWriterLogger(os.Stderr)
		}
		defaultLogger.debug = debugEnabled
	})
	return defaultLogger
}

// NewLogger creates a new logger that writes to the specified file
func NewLogger(logPath string) (*Logger, error) {
	// Ensure the directory exists
	dir := filepath.Dir(logPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Open or create the log file
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := NewWriterLogger(file)
	l.file = file
	return l, nil
}

// NewWriterLogger creates a logger that writes to w
func NewWriterLogger(w io.Writer) *Logger {
	return &Logger{
		infoLogger:    log.New(w, "[INFO] ", log.LstdFlags|log.Lshortfile),
		warningLogger: log.New(w, "[WARN] ", log.LstdFlags|log.Lshortfile),
		debugLogger:   log.New(w, "[DEBUG] ", log.LstdFlags|log.Lshortfile),
		errorLogger:   log.New(w, "[ERROR] ", log.LstdFlags|log.Lshortfile),
	}
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.output(l.infoLogger, 1, format, args)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.output(l.warningLogger, 1, format, args)
}

// Debug logs a debug message; it is dropped unless debug output is enabled
func (l *Logger) Debug(format string, args ...interface{}) {
	l.output(l.debugLogger, 1, format, args)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.output(l.errorLogger, 1, format, args)
}

// output writes one entry. skip is the number of frames between output and
// the code whose file:line should be reported.
func (l *Logger) output(lg *log.Logger, skip int, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lg == l.debugLogger && !l.debug {
		return
	}
	lg.Output(skip+2, fmt.Sprintf(format, args...))
}

// Close closes the log file (if any)
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Convenience functions for the default logger
func Info(format string, args ...interface{}) {
	l := GetLogger()
	l.output(l.infoLogger, 2, format, args)
}

func Warning(format string, args ...interface{}) {
	l := GetLogger()
	l.output(l.warningLogger, 2, format, args)
}

func Debug(format string, args ...interface{}) {
	l := GetLogger()
	l.output(l.debugLogger, 2, format, args)
}

func Error(format string, args ...interface{}) {
	l := GetLogger()
	l.output(l.errorLogger, 2, format, args)
}
