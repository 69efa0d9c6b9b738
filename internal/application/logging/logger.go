package logging

import "context"

// Log levels understood by every TickLogger
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// TickLogger provides logging for the simulation loop and its adapters
type TickLogger interface {
	Log(level, message string, metadata map[string]interface{})
}

// Context keys for passing logger through context
type contextKey int

const (
	loggerKey contextKey = iota
)

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger TickLogger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext extracts the logger from context, or returns a no-op logger if not found
func LoggerFromContext(ctx context.Context) TickLogger {
	if logger, ok := ctx.Value(loggerKey).(TickLogger); ok {
		return logger
	}
	return &noOpLogger{}
}

// noOpLogger is a logger that does nothing (fallback when no logger in context)
type noOpLogger struct{}

func (l *noOpLogger) Log(level, message string, metadata map[string]interface{}) {
	// Do nothing
}

// fanOut forwards every entry to several loggers
type fanOut []TickLogger

// FanOut combines loggers; nil entries are skipped
func FanOut(loggers ...TickLogger) TickLogger {
	out := make(fanOut, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}

func (f fanOut) Log(level, message string, metadata map[string]interface{}) {
	for _, l := range f {
		l.Log(level, message, metadata)
	}
}
