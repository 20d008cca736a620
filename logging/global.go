package logging

import (
	"os"
	"sync/atomic"
)

var globalLogger atomic.Pointer[Logger]

// The global logger starts from LOG_LEVEL/LOG_COLOR so that packages logging
// before config.Load still honor them.
func init() {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	globalLogger.Store(New(Config{
		Level:       level,
		Output:      os.Stdout,
		EnableColor: os.Getenv("LOG_COLOR") != "false",
	}))
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	return globalLogger.Load()
}

// SetGlobalLogger sets the global logger instance
func SetGlobalLogger(logger *Logger) {
	globalLogger.Store(logger)
}

// Configure replaces the global logger with one built from config
func Configure(config Config) {
	globalLogger.Store(New(config))
}

// Debug logs a message at DEBUG level using the global logger
func Debug(args ...interface{}) { GetGlobalLogger().Debug(args...) }

// Debugf logs a formatted message at DEBUG level using the global logger
func Debugf(format string, args ...interface{}) { GetGlobalLogger().Debugf(format, args...) }

// Info logs a message at INFO level using the global logger
func Info(args ...interface{}) { GetGlobalLogger().Info(args...) }

// Infof logs a formatted message at INFO level using the global logger
func Infof(format string, args ...interface{}) { GetGlobalLogger().Infof(format, args...) }

// Warn logs a message at WARN level using the global logger
func Warn(args ...interface{}) { GetGlobalLogger().Warn(args...) }

// Warnf logs a formatted message at WARN level using the global logger
func Warnf(format string, args ...interface{}) { GetGlobalLogger().Warnf(format, args...) }

// Error logs a message at ERROR level using the global logger
func Error(args ...interface{}) { GetGlobalLogger().Error(args...) }

// Errorf logs a formatted message at ERROR level using the global logger
func Errorf(format string, args ...interface{}) { GetGlobalLogger().Errorf(format, args...) }

// Fatal logs a message at FATAL level using the global logger and exits the program
func Fatal(args ...interface{}) { GetGlobalLogger().Fatal(args...) }

// Fatalf logs a formatted message at FATAL level using the global logger and exits the program
func Fatalf(format string, args ...interface{}) { GetGlobalLogger().Fatalf(format, args...) }

// WithPrefix returns a prefixed child of the global logger
func WithPrefix(prefix string) *Logger {
	return GetGlobalLogger().WithPrefix(prefix)
}

// WithFields returns a child of the global logger carrying fields
func WithFields(fields Fields) *Logger {
	return GetGlobalLogger().WithFields(fields)
}
