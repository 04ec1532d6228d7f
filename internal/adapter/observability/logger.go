// Package observability provides the structured logger and terminal
// progress reporting used by the export commands.
package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

// LogLevel defines the logging verbosity level.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarning
	LogLevelError
)

// LogFormat defines the output format for logs.
type LogFormat int

const (
	LogFormatHuman LogFormat = iota
	LogFormatJSON
)

// ParseLevel maps a configuration string to a LogLevel.
func ParseLevel(value string) (LogLevel, error) {
	switch strings.ToLower(value) {
	case "debug":
		return LogLevelDebug, nil
	case "", "info":
		return LogLevelInfo, nil
	case "warning", "warn":
		return LogLevelWarning, nil
	case "error":
		return LogLevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", value)
	}
}

// ParseFormat maps a configuration string to a LogFormat.
func ParseFormat(value string) (LogFormat, error) {
	switch strings.ToLower(value) {
	case "", "human":
		return LogFormatHuman, nil
	case "json":
		return LogFormatJSON, nil
	default:
		return 0, fmt.Errorf("unknown log format %q", value)
	}
}

// Logger writes structured log lines through the standard log package.
type Logger struct {
	level  LogLevel
	format LogFormat
	now    func() time.Time
}

// NewLogger creates a logger with the specified level and format.
func NewLogger(level LogLevel, format LogFormat) *Logger {
	return &Logger{level: level, format: format, now: time.Now}
}

// LogDebug logs a debug message with structured fields.
func (l *Logger) LogDebug(ctx context.Context, message string, fields map[string]interface{}) {
	l.emit(LogLevelDebug, "debug", "[DEBUG]", message, fields)
}

// LogInfo logs an informational message with structured fields.
func (l *Logger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	l.emit(LogLevelInfo, "info", "[INFO]", message, fields)
}

// LogWarning logs a warning message with structured fields.
func (l *Logger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.emit(LogLevelWarning, "warning", "[WARN]", message, fields)
}

// LogError logs an error message with structured fields.
func (l *Logger) LogError(ctx context.Context, message string, fields map[string]interface{}) {
	l.emit(LogLevelError, "error", "[ERROR]", message, fields)
}

func (l *Logger) emit(level LogLevel, name, prefix, message string, fields map[string]interface{}) {
	if l.level > level {
		return
	}

	if l.format == LogFormatJSON {
		entry := map[string]interface{}{
			"level":     name,
			"message":   message,
			"timestamp": l.now().Format(time.RFC3339),
		}
		for key, value := range fields {
			entry[key] = value
		}
		encoded, err := json.Marshal(entry)
		if err != nil {
			log.Printf(`{"level":"error","message":"failed to encode log entry: %v"}`, err)
			return
		}
		log.Printf("%s", encoded)
		return
	}

	if len(fields) == 0 {
		log.Printf("%s %s", prefix, message)
		return
	}
	log.Printf("%s %s (%s)", prefix, message, formatFields(fields))
}

// formatFields renders fields as "k=v" pairs sorted by key so the human
// format stays stable across runs.
func formatFields(fields map[string]interface{}) string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", key, fields[key]))
	}
	return strings.Join(pairs, ", ")
}
