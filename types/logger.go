package types

// Logger defines methods for structured logging.
//
// Compatible with slog-style and zap.SugaredLogger-style structured
// loggers. All methods accept alternating key-value pairs for
// structured fields.
type Logger interface {
	// Debug logs a message at DebugLevel with the given structured fields.
	Debug(msg string, keysAndValues ...any)

	// Info logs a message at InfoLevel with the given structured fields.
	Info(msg string, keysAndValues ...any)

	// Warn logs a message at WarnLevel with the given structured fields.
	Warn(msg string, keysAndValues ...any)

	// Error logs a message at ErrorLevel with the given structured fields.
	Error(msg string, keysAndValues ...any)

	// Fatal logs a message at FatalLevel and calls os.Exit(1).
	//
	// The logger calls os.Exit(1) even if logging at FatalLevel is disabled.
	Fatal(msg string, keysAndValues ...any)
}
