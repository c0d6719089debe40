// Package logger provides the process-wide structured logger for chadcn.
//
// The package-level helpers wrap a zap SugaredLogger. Call Initialize once at
// startup; until then a no-op logger is installed so library code and tests can
// log freely.
package logger

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var current atomic.Pointer[zap.SugaredLogger]

func init() {
	current.Store(zap.NewNop().Sugar())
}

// Options controls how the global logger is built
type Options struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string
	// Development switches to a human-readable console encoder
	Development bool
}

// ParseLevel converts a level name to a zap level, falling back to info.
// The second return value is false when the name was not recognised.
func ParseLevel(name string) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel, true
	case "info", "":
		return zapcore.InfoLevel, true
	case "warn", "warning":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

// Initialize builds the global logger. JSON output goes to stderr so stdout
// stays clean for commands that print data.
func Initialize(opts Options) error {
	level, ok := ParseLevel(opts.Level)

	var cfg zap.Config
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	Set(l)

	if !ok {
		Warnf("Invalid log level %q, using info", opts.Level)
	}
	return nil
}

// Set replaces the global logger. Mostly useful in tests (zaptest, observer).
func Set(l *zap.Logger) {
	current.Store(l.Sugar())
}

// Get returns the global sugared logger
func Get() *zap.SugaredLogger {
	return current.Load()
}

// Sync flushes buffered log entries
func Sync() {
	_ = current.Load().Sync()
}

// Debug logs a message at debug level
func Debug(msg string) { current.Load().Debug(msg) }

// Debugf logs a formatted message at debug level
func Debugf(format string, args ...any) { current.Load().Debugf(format, args...) }

// Info logs a message at info level
func Info(msg string) { current.Load().Info(msg) }

// Infof logs a formatted message at info level
func Infof(format string, args ...any) { current.Load().Infof(format, args...) }

// Warn logs a message at warn level
func Warn(msg string) { current.Load().Warn(msg) }

// Warnf logs a formatted message at warn level
func Warnf(format string, args ...any) { current.Load().Warnf(format, args...) }

// Error logs a message at error level
func Error(msg string) { current.Load().Error(msg) }

// Errorf logs a formatted message at error level
func Errorf(format string, args ...any) { current.Load().Errorf(format, args...) }

// Fatalf logs a formatted message and exits the process
func Fatalf(format string, args ...any) { current.Load().Fatalf(format, args...) }

type contextKey struct{}

// IntoContext stores a logr.Logger in the context
func IntoContext(ctx context.Context, l logr.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logr.Logger stored in ctx, or one backed by the
// global zap logger when none was set.
func FromContext(ctx context.Context) logr.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(logr.Logger); ok {
			return l
		}
	}
	return zapr.NewLogger(current.Load().Desugar())
}
