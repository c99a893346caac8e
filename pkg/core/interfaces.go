package core

// Logger defines the interface for logging operations
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, err error, keysAndValues ...interface{})
}

// Notifier shows a desktop notification. Failures are not fatal to the
// caller and are only reported back for logging.
type Notifier interface {
	Info(message string) error
	Error(message string) error
}
