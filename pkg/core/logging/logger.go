// File: logger.go
// Title: Core Logger Implementation
// Description: Implements the Logger type providing structured key-value
//              logging with named components, configurable format and
//              optional caller information.
// Author: AnderBEz
// Version: v0.1.0
// Created: 2026-08-14
// Modified: 2026-08-14
//
// Change History:
// - 2026-08-14 v0.1.0: Initial implementation with structured logging

package logging

import (
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
)

// Logger is a structured logger. All With* methods return a copy, leaving
// the receiver untouched, so loggers can be shared freely across goroutines.
type Logger struct {
	level     Level
	formatter Formatter
	output    io.Writer
	name      string

	// Context carried into every entry
	contextFields Fields
	requestID     string

	enableCaller     bool
	callerSkipFrames int

	mutex sync.RWMutex
}

// Config represents logger configuration
type Config struct {
	Level            Level
	Format           Format
	Output           io.Writer
	Name             string
	EnableCaller     bool
	CallerSkipFrames int
}

// New creates a named logger with the default configuration: info level,
// JSON format, stdout
func New(name string) *Logger {
	return NewWithConfig(Config{
		Level:  DefaultLevel(),
		Format: FormatJSON,
		Name:   name,
	})
}

// NewWithConfig creates a new logger with the specified configuration
func NewWithConfig(config Config) *Logger {
	logger := &Logger{
		level:            config.Level,
		output:           config.Output,
		name:             config.Name,
		contextFields:    make(Fields),
		enableCaller:     config.EnableCaller,
		callerSkipFrames: config.CallerSkipFrames,
	}

	if config.Output == nil {
		logger.output = os.Stdout
	}

	logger.formatter = GetFormatter(config.Format)

	return logger
}

// WithLevel returns a copy with the given minimum log level
func (l *Logger) WithLevel(level Level) *Logger {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	clone := l.clone()
	clone.level = level
	return clone
}

// WithFormat returns a copy using the given output format
func (l *Logger) WithFormat(format Format) *Logger {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	clone := l.clone()
	clone.formatter = GetFormatter(format)
	return clone
}

// WithOutput returns a copy writing to the given destination
func (l *Logger) WithOutput(output io.Writer) *Logger {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	clone := l.clone()
	clone.output = output
	return clone
}

// WithName returns a copy with the given component name
func (l *Logger) WithName(name string) *Logger {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	clone := l.clone()
	clone.name = name
	return clone
}

// WithField returns a copy carrying a persistent field on every entry
func (l *Logger) WithField(key string, value interface{}) *Logger {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	clone := l.clone()
	clone.contextFields[key] = value
	return clone
}

// WithFields returns a copy carrying persistent fields on every entry
func (l *Logger) WithFields(fields Fields) *Logger {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	clone := l.clone()
	for k, v := range fields {
		clone.contextFields[k] = v
	}
	return clone
}

// WithRequestID returns a copy carrying the request correlation ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	clone := l.clone()
	clone.requestID = requestID
	return clone
}

// WithCaller returns a copy that records caller file and line
func (l *Logger) WithCaller(skip int) *Logger {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	clone := l.clone()
	clone.enableCaller = true
	clone.callerSkipFrames = skip
	return clone
}

// Debug logs a debug level message with key-value pairs
func (l *Logger) Debug(message string, keysAndValues ...interface{}) {
	l.log(LevelDebug, message, nil, keysAndValues...)
}

// Info logs an info level message with key-value pairs
func (l *Logger) Info(message string, keysAndValues ...interface{}) {
	l.log(LevelInfo, message, nil, keysAndValues...)
}

// Warn logs a warning level message with key-value pairs
func (l *Logger) Warn(message string, keysAndValues ...interface{}) {
	l.log(LevelWarn, message, nil, keysAndValues...)
}

// Error logs an error level message with key-value pairs
func (l *Logger) Error(message string, keysAndValues ...interface{}) {
	l.log(LevelError, message, nil, keysAndValues...)
}

// Fatal logs a fatal level message and exits the program
func (l *Logger) Fatal(message string, keysAndValues ...interface{}) {
	l.log(LevelFatal, message, nil, keysAndValues...)
	os.Exit(1)
}

// ErrorWithErr logs an error level message with an error object
func (l *Logger) ErrorWithErr(message string, err error, keysAndValues ...interface{}) {
	l.log(LevelError, message, err, keysAndValues...)
}

// WarnWithErr logs a warning level message with an error object
func (l *Logger) WarnWithErr(message string, err error, keysAndValues ...interface{}) {
	l.log(LevelWarn, message, err, keysAndValues...)
}

// IsLevelEnabled returns true if the given level is enabled
func (l *Logger) IsLevelEnabled(level Level) bool {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return level.ShouldLog(l.level)
}

// GetLevel returns the current minimum log level
func (l *Logger) GetLevel() Level {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.level
}

// log is the internal logging method
func (l *Logger) log(level Level, message string, err error, keysAndValues ...interface{}) {
	l.mutex.RLock()

	if !level.ShouldLog(l.level) {
		l.mutex.RUnlock()
		return
	}

	entry := newEntry(level, message)
	entry.Logger = l.name
	entry.RequestID = l.requestID
	entry.Error = err

	for k, v := range l.contextFields {
		entry.Fields[k] = v
	}
	for k, v := range pairsToFields(keysAndValues...) {
		entry.Fields[k] = v
	}

	if l.enableCaller {
		if function, file, line, ok := l.getCaller(); ok {
			entry.Caller = &CallerInfo{Function: function, File: file, Line: line}
		}
	}

	formatter := l.formatter
	output := l.output
	l.mutex.RUnlock()

	if formatted, formatErr := formatter.Format(entry); formatErr == nil {
		output.Write(formatted)
	}
}

// getCaller returns caller information
func (l *Logger) getCaller() (function, file string, line int, ok bool) {
	// Skip frames: getCaller, log, public method, user code
	skip := 3 + l.callerSkipFrames

	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "", "", 0, false
	}

	function = "unknown"
	if fn := runtime.FuncForPC(pc); fn != nil {
		function = fn.Name()
		if idx := strings.LastIndex(function, "."); idx != -1 {
			function = function[idx+1:]
		}
	}

	if idx := strings.LastIndex(file, "/"); idx != -1 {
		file = file[idx+1:]
	}

	return function, file, line, true
}

// clone creates a copy of the logger for immutable With* operations
func (l *Logger) clone() *Logger {
	clone := &Logger{
		level:            l.level,
		formatter:        l.formatter,
		output:           l.output,
		name:             l.name,
		requestID:        l.requestID,
		enableCaller:     l.enableCaller,
		callerSkipFrames: l.callerSkipFrames,
		contextFields:    make(Fields),
	}

	for k, v := range l.contextFields {
		clone.contextFields[k] = v
	}

	return clone
}

// Default logger instance
var defaultLogger = New("")

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// Debug logs a debug message using the default logger
func Debug(message string, keysAndValues ...interface{}) {
	defaultLogger.Debug(message, keysAndValues...)
}

// Info logs an info message using the default logger
func Info(message string, keysAndValues ...interface{}) {
	defaultLogger.Info(message, keysAndValues...)
}

// Warn logs a warning message using the default logger
func Warn(message string, keysAndValues ...interface{}) {
	defaultLogger.Warn(message, keysAndValues...)
}

// Error logs an error message using the default logger
func Error(message string, keysAndValues ...interface{}) {
	defaultLogger.Error(message, keysAndValues...)
}
