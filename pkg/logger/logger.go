package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
	"time"
)

// Level represents the severity level of log messages
type Level int

const (
	TraceLevel Level = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case TraceLevel:
		return "TRACE"
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a flag value to a Level, defaulting to InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return TraceLevel
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Config holds the logger configuration
type Config struct {
	Level      Level
	UseColor   bool
	JSON       bool
	Component  string
	Timestamps bool
	// Output defaults to os.Stderr when nil.
	Output io.Writer
}

// Logger represents the logger instance
type Logger struct {
	config Config
	logger *log.Logger
}

// Default logger instance
var defaultLogger *Logger

// New builds a standalone logger; the package-level default is untouched.
func New(config Config) *Logger {
	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	return &Logger{
		config: config,
		logger: log.New(out, "", 0),
	}
}

// Initialize sets up the default logger
func Initialize(config Config) error {
	defaultLogger = New(config)
	return nil
}

// Default returns the package-level logger, creating an info-level one on
// first use.
func Default() *Logger {
	if defaultLogger == nil {
		defaultLogger = New(Config{Level: InfoLevel, Component: "distcheck"})
	}
	return defaultLogger
}

// Log writes a log message
func (l *Logger) Log(level Level, message string, fields ...Field) {
	if level < l.config.Level {
		return
	}

	entry := LogEntry{
		Time:      time.Now(),
		Level:     level.String(),
		Message:   message,
		Component: l.config.Component,
		Fields:    make(map[string]interface{}),
	}

	// Caller info for debug and trace
	if level <= DebugLevel {
		_, file, line, ok := runtime.Caller(2)
		if ok {
			entry.File = file
			entry.Line = line
		}
	}

	for _, field := range fields {
		entry.Fields[field.Key] = field.Value
	}

	var output string
	if l.config.JSON {
		jsonBytes, _ := json.Marshal(entry)
		output = string(jsonBytes)
	} else {
		output = l.formatPretty(entry)
	}

	l.logger.Print(output)
}

// Line writes message without level or component decoration. JSON loggers
// emit it as an INFO entry so machine consumers still get one object per
// line.
func (l *Logger) Line(message string) {
	if l.config.Level > InfoLevel {
		return
	}
	if l.config.JSON {
		l.Log(InfoLevel, message)
		return
	}
	l.logger.Print(message)
}

func (l *Logger) Trace(message string, fields ...Field) { l.Log(TraceLevel, message, fields...) }
func (l *Logger) Debug(message string, fields ...Field) { l.Log(DebugLevel, message, fields...) }
func (l *Logger) Info(message string, fields ...Field)  { l.Log(InfoLevel, message, fields...) }
func (l *Logger) Warn(message string, fields ...Field)  { l.Log(WarnLevel, message, fields...) }
func (l *Logger) Error(message string, fields ...Field) { l.Log(ErrorLevel, message, fields...) }

// SetOutput redirects this logger.
func (l *Logger) SetOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

// formatPretty formats the log entry in a human-readable way
func (l *Logger) formatPretty(entry LogEntry) string {
	var builder strings.Builder

	if l.config.Timestamps {
		builder.WriteString(entry.Time.Format("2006-01-02 15:04:05"))
		builder.WriteString(" ")
	}

	level := entry.Level
	if l.config.UseColor {
		level = Colorize(entry.Level, entry.Level)
	}
	builder.WriteString(fmt.Sprintf("[%s]", level))

	if entry.Component != "" {
		builder.WriteString(fmt.Sprintf(" %s:", entry.Component))
	}

	builder.WriteString(fmt.Sprintf(" %s", entry.Message))

	if len(entry.Fields) > 0 {
		builder.WriteString(" {")
		first := true
		for k, v := range entry.Fields {
			if !first {
				builder.WriteString(", ")
			}
			builder.WriteString(fmt.Sprintf("%s=%v", k, v))
			first = false
		}
		builder.WriteString("}")
	}

	if entry.File != "" {
		builder.WriteString(fmt.Sprintf(" (%s:%d)", entry.File, entry.Line))
	}

	return builder.String()
}

// Colorize wraps text in the ANSI color used for the named level.
func Colorize(level, text string) string {
	switch level {
	case "TRACE":
		return "\033[37m" + text + "\033[0m" // White
	case "DEBUG":
		return "\033[36m" + text + "\033[0m" // Cyan
	case "INFO":
		return "\033[32m" + text + "\033[0m" // Green
	case "WARN":
		return "\033[33m" + text + "\033[0m" // Yellow
	case "ERROR":
		return "\033[31m" + text + "\033[0m" // Red
	default:
		return text
	}
}

// Field represents a structured field in a log entry
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field
func Err(err error) Field {
	return Field{Key: "error", Value: err.Error()}
}

// LogEntry represents a log entry
type LogEntry struct {
	Time      time.Time              `json:"time"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Component string                 `json:"component,omitempty"`
	File      string                 `json:"file,omitempty"`
	Line      int                    `json:"line,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Convenience functions for default logger
func Trace(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(TraceLevel, message, fields...)
	}
}

func Debug(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(DebugLevel, message, fields...)
	}
}

func Info(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(InfoLevel, message, fields...)
	} else {
		// Fallback to stderr if logger not initialized
		os.Stderr.WriteString(fmt.Sprintf("[INFO] distcheck: %s\n", message))
	}
}

func Warn(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(WarnLevel, message, fields...)
	}
}

func Error(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(ErrorLevel, message, fields...)
	} else {
		os.Stderr.WriteString(fmt.Sprintf("[ERROR] distcheck: %s\n", message))
	}
}

// SetOutput sets the output writer for the logger
func SetOutput(w io.Writer) {
	if defaultLogger != nil {
		defaultLogger.logger.SetOutput(w)
	}
}
