package logging

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Level represents log severity levels.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) logrus() logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// ParseLevel maps a LOG_LEVEL style string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	lvl, err := logrus.ParseLevel(s)
	if err != nil {
		return LevelInfo
	}
	switch {
	case lvl >= logrus.DebugLevel:
		return LevelDebug
	case lvl == logrus.WarnLevel:
		return LevelWarn
	case lvl <= logrus.ErrorLevel:
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger provides structured JSON logging on top of logrus.
type Logger struct {
	base  *logrus.Logger
	entry *logrus.Entry
}

// New creates a new Logger writing JSON lines to stdout at info level.
func New() *Logger {
	base := logrus.New()
	base.SetOutput(os.Stdout)
	base.SetLevel(logrus.InfoLevel)
	base.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	})
	return &Logger{base: base, entry: logrus.NewEntry(base)}
}

// SetOutput sets the output writer for the logger.
func (l *Logger) SetOutput(w io.Writer) *Logger {
	l.base.SetOutput(w)
	return l
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) *Logger {
	l.base.SetLevel(level.logrus())
	return l
}

// WithField returns a new logger with an additional field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a new logger with additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{base: l.base, entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.with(fields).Debug(msg)
}

func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.with(fields).Info(msg)
}

func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.with(fields).Warn(msg)
}

func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.with(fields).Error(msg)
}

func (l *Logger) with(fields []map[string]interface{}) *logrus.Entry {
	entry := l.entry
	for _, f := range fields {
		entry = entry.WithFields(logrus.Fields(f))
	}
	return entry
}

// Default is the default logger instance.
var Default = New()

// SetDefaultLevel sets the level for the default logger.
func SetDefaultLevel(level Level) {
	Default.SetLevel(level)
}

func Debug(msg string, fields ...map[string]interface{}) {
	Default.Debug(msg, fields...)
}

func Info(msg string, fields ...map[string]interface{}) {
	Default.Info(msg, fields...)
}

func Warn(msg string, fields ...map[string]interface{}) {
	Default.Warn(msg, fields...)
}

func Error(msg string, fields ...map[string]interface{}) {
	Default.Error(msg, fields...)
}
