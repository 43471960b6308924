package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ncobase/couchview/config"

	"github.com/sirupsen/logrus"
)

// Key constants
const (
	VersionKey   = "version"
	ComponentKey = "component"
)

// Logger wraps logrus with context aware helpers
type Logger struct {
	*logrus.Logger
	version string
	logFile *os.File
}

var (
	standardLogger *Logger
	once           sync.Once
)

// StandardLogger returns the singleton logger instance
func StandardLogger() *Logger {
	once.Do(func() {
		standardLogger = &Logger{
			Logger: logrus.New(),
		}
		standardLogger.SetFormatter(&logrus.JSONFormatter{})
		standardLogger.SetLevel(logrus.InfoLevel)
	})
	return standardLogger
}

// SetVersion sets the version for logging
func (l *Logger) SetVersion(v string) {
	l.version = v
}

// Init initializes the logger with the given configuration
func (l *Logger) Init(c *config.Logger) (func(), error) {
	if c == nil {
		return func() {}, nil
	}
	l.SetLevel(logrus.Level(c.Level))

	switch c.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{})
	}

	switch c.Output {
	case "stdout":
		l.SetOutput(os.Stdout)
	case "stderr":
		l.SetOutput(os.Stderr)
	case "file":
		if c.OutputFile == "" {
			return nil, fmt.Errorf("logger output file is required when output is file")
		}
		if err := l.openLogFile(c.OutputFile); err != nil {
			return nil, err
		}
	}

	return func() {
		if l.logFile != nil {
			_ = l.logFile.Close()
		}
	}, nil
}

func (l *Logger) openLogFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	l.logFile = f
	l.SetOutput(f)
	return nil
}

// entryFromContext creates a new log entry with fields from context
func (l *Logger) entryFromContext(ctx context.Context) *logrus.Entry {
	fields := logrus.Fields{}

	if traceID := getTraceID(ctx); traceID != "" {
		fields[traceKey] = traceID
	}

	if l.version != "" {
		fields[VersionKey] = l.version
	}

	return l.WithFields(fields)
}

// IsDebug reports whether debug entries are emitted
func (l *Logger) IsDebug() bool {
	return l.IsLevelEnabled(logrus.DebugLevel)
}

func (l *Logger) log(ctx context.Context, level logrus.Level, args ...any) {
	l.entryFromContext(ctx).Log(level, args...)
}

func (l *Logger) logf(ctx context.Context, level logrus.Level, format string, args ...any) {
	l.entryFromContext(ctx).Logf(level, format, args...)
}

func (l *Logger) Debug(ctx context.Context, args ...any) {
	l.log(ctx, logrus.DebugLevel, args...)
}
func (l *Logger) Info(ctx context.Context, args ...any) {
	l.log(ctx, logrus.InfoLevel, args...)
}
func (l *Logger) Warn(ctx context.Context, args ...any) {
	l.log(ctx, logrus.WarnLevel, args...)
}
func (l *Logger) Error(ctx context.Context, args ...any) {
	l.log(ctx, logrus.ErrorLevel, args...)
}

func (l *Logger) Debugf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.DebugLevel, format, args...)
}
func (l *Logger) Infof(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.InfoLevel, format, args...)
}
func (l *Logger) Warnf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.WarnLevel, format, args...)
}
func (l *Logger) Errorf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.ErrorLevel, format, args...)
}

// SetOutput sets the output destination for the logger
func (l *Logger) SetOutput(out io.Writer) {
	l.Logger.SetOutput(out)
}

// Exported functions operating on the standard logger

func SetVersion(v string)                   { StandardLogger().SetVersion(v) }
func Init(c *config.Logger) (func(), error) { return StandardLogger().Init(c) }
func IsDebug() bool                         { return StandardLogger().IsDebug() }
func SetOutput(out io.Writer)               { StandardLogger().SetOutput(out) }

// EntryWithFields returns a context entry carrying the extra fields
func EntryWithFields(ctx context.Context, fields logrus.Fields) *logrus.Entry {
	entry := StandardLogger().entryFromContext(ctx)
	return entry.WithFields(fields)
}

func Debug(ctx context.Context, args ...any) { StandardLogger().Debug(ctx, args...) }
func Info(ctx context.Context, args ...any)  { StandardLogger().Info(ctx, args...) }
func Warn(ctx context.Context, args ...any)  { StandardLogger().Warn(ctx, args...) }
func Error(ctx context.Context, args ...any) { StandardLogger().Error(ctx, args...) }

func Debugf(ctx context.Context, format string, args ...any) {
	StandardLogger().Debugf(ctx, format, args...)
}
func Infof(ctx context.Context, format string, args ...any) {
	StandardLogger().Infof(ctx, format, args...)
}
func Warnf(ctx context.Context, format string, args ...any) {
	StandardLogger().Warnf(ctx, format, args...)
}
func Errorf(ctx context.Context, format string, args ...any) {
	StandardLogger().Errorf(ctx, format, args...)
}
