// Package log builds zap loggers and carries them
// through a context.
package log

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerKey struct{}

// New builds a JSON production logger that writes
// entries at level and above. level is one of zap's
// level names such as "debug" or "warn".
func New(level string) (*zap.Logger, error) {
	var lvl zapcore.Level

	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("Could not parse log level %q: %w", level, err)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := config.Build()

	if err != nil {
		return nil, fmt.Errorf("Could not build logger: %w", err)
	}

	return logger, nil
}

// WithLogger returns a context that carries logger
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger returns the logger carried by ctx or nil
func Logger(ctx context.Context) *zap.Logger {
	logger, _ := ctx.Value(loggerKey{}).(*zap.Logger)

	return logger
}

// LoggerFromContext returns the logger carried by ctx. If
// there is none it returns fallback along with a context
// that carries it.
func LoggerFromContext(ctx context.Context, fallback *zap.Logger) (*zap.Logger, context.Context) {
	if logger := Logger(ctx); logger != nil {
		return logger, ctx
	}

	return fallback, WithLogger(ctx, fallback)
}
