// Package observability builds the engine's zap loggers.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/statengine/internal/config"
)

const appName = "statengine"

// NewLogger builds the process logger. Output goes to stderr so stdout stays
// free for the command shell. Sampling is off: per-tick debug lines must not
// be dropped.
//
// Precondition: cfg passes config validation.
// Postcondition: Returns a logger carrying the "app" field, or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zc zap.Config
	switch cfg.Format {
	case "json":
		zc = zap.NewProductionConfig()
	case "console":
		zc = zap.NewDevelopmentConfig()
		zc.DisableStacktrace = true
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Sampling = nil
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.InitialFields = map[string]any{"app": appName}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// ForGame returns a child logger carrying the game id.
func ForGame(logger *zap.Logger, gameID string) *zap.Logger {
	return logger.With(zap.String("game_id", gameID))
}

// ForService returns a named child logger for a lifecycle service.
func ForService(logger *zap.Logger, name string) *zap.Logger {
	return logger.Named(name).With(zap.String("service", name))
}
