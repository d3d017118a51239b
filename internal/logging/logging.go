// Package logging provides leveled, structured logging backed by zap.
//
// # Features
//
//   - Levels: Debug, Info, Warn, Error (plus None to disable output)
//   - JSON output format for machine parsing
//   - Text (console) output format for human readability
//   - Request/response logging for API debugging with secret redaction
//   - File and stderr output support
//
// # Usage
//
//	w, err := logging.OpenFile("gemini_cli.log")
//	if err != nil {
//	    // handle error
//	}
//	logger := logging.New(logging.Options{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	    Output: w,
//	})
//	defer logger.Sync()
//
//	logger.Info("Session started", logging.Fields{"model": "gemini-2.0-flash"})
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents a logging level
type Level int

const (
	// LevelDebug is for detailed debugging information
	LevelDebug Level = iota
	// LevelInfo is for general informational messages
	LevelInfo
	// LevelWarn is for warning messages
	LevelWarn
	// LevelError is for error messages
	LevelError
	// LevelNone disables all logging
	LevelNone
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// LookupLevel parses a level name case-insensitively and reports whether it was recognized.
func LookupLevel(s string) (Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	case "NONE", "OFF":
		return LevelNone, true
	default:
		return LevelInfo, false
	}
}

// ParseLevel parses a string into a Level, defaulting to Info
func ParseLevel(s string) Level {
	level, _ := LookupLevel(s)
	return level
}

// zapLevel maps a Level onto the zap level scale
func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		// above Fatal: nothing is enabled
		return zapcore.FatalLevel + 1
	}
}

// Format represents the output format
type Format int

const (
	// FormatText outputs human-readable text
	FormatText Format = iota
	// FormatJSON outputs machine-readable JSON
	FormatJSON
)

// Fields is a map of structured log fields
type Fields map[string]interface{}

// Options configures the logger
type Options struct {
	Level  Level
	Format Format
	Output io.Writer
}

// Logger provides structured logging capabilities
type Logger struct {
	zl    *zap.Logger
	level zap.AtomicLevel
}

// New creates a new Logger with the given options
func New(opts Options) *Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.MessageKey = "message"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var enc zapcore.Encoder
	if opts.Format == FormatJSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	level := zap.NewAtomicLevelAt(opts.Level.zapLevel())
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(opts.Output)), level)

	return &Logger{zl: zap.New(core), level: level}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{zl: zap.NewNop(), level: zap.NewAtomicLevelAt(LevelNone.zapLevel())}
}

// OpenFile opens path for appending, creating parent directories as needed
func OpenFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// SetLevel changes the log level
func (l *Logger) SetLevel(level Level) {
	l.level.SetLevel(level.zapLevel())
}

// Enabled reports whether messages at level would be written
func (l *Logger) Enabled(level Level) bool {
	return level != LevelNone && l.level.Enabled(level.zapLevel())
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...Fields) {
	l.zl.Debug(msg, toZap(nil, fields)...)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...Fields) {
	l.zl.Info(msg, toZap(nil, fields)...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...Fields) {
	l.zl.Warn(msg, toZap(nil, fields)...)
}

// Error logs an error message
func (l *Logger) Error(msg string, err error, fields ...Fields) {
	l.zl.Error(msg, toZap(err, fields)...)
}

// WithFields creates a child logger with preset fields
func (l *Logger) WithFields(fields Fields) *Logger {
	return &Logger{zl: l.zl.With(toZap(nil, []Fields{fields})...), level: l.level}
}

// Sync flushes buffered output
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

// toZap merges field maps into zap fields with a stable key order
func toZap(err error, fields []Fields) []zap.Field {
	merged := make(Fields)
	for _, f := range fields {
		for k, v := range f {
			merged[k] = v
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys)+1)
	for _, k := range keys {
		out = append(out, zap.Any(k, merged[k]))
	}
	if err != nil {
		out = append(out, zap.Error(err))
	}
	return out
}
