// Package log provides a structured logging interface for sparsebayes estimators.
//
// The interface is slog-shaped (message plus alternating key/value fields) and
// is backed by zerolog in production and by TestLogger in tests. Estimators
// log fit start/finish at Info, per-iteration hyperparameter statistics at
// Debug and convergence problems at Warn.
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.ModelNameKey, "RVR",
//	    log.EstimatorIDKey, id,
//	)
//	logger.Info("fit started",
//	    log.OperationKey, log.OperationFit,
//	    log.SamplesKey, 200,
//	)

package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	// Estimators use it for per-iteration statistics.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message, e.g. an unconverged fit.
	Warn(msg string, fields ...any)

	// Error logs an error-level message. If the first field is an error it
	// is attached together with its stack trace.
	//
	//	logger.Error("fit failed", err, log.OperationKey, log.OperationFit)
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	// The engines check it before computing per-iteration summaries.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
// This type allows for level-based filtering of log messages.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4 // Detailed diagnostic information
	LevelInfo  Level = 0  // General operational information
	LevelWarn  Level = 4  // Warning conditions
	LevelError Level = 8  // Error conditions
)

// String returns the string representation of the log level.
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
