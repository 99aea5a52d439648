package logger

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Package logger provides a small package-level logging facade backed by
// zerolog. Call sites stay printf-style so packages do not carry a logger
// dependency through their constructors.

// LogLevel represents log severity levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu  sync.RWMutex
	log = newLogger(LevelInfo, false)
)

func newLogger(level LogLevel, console bool) zerolog.Logger {
	zl := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if console {
		zl = zl.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}
	return zl.Level(toZerolog(level))
}

func toZerolog(level LogLevel) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetLevel sets the minimum log level.
func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	log = log.Level(toZerolog(level))
}

// UseConsoleWriter switches output to a human-readable console format.
func UseConsoleWriter() {
	mu.Lock()
	defer mu.Unlock()
	log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}

// Debugf logs a debug message
func Debugf(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	log.Debug().Msgf(format, args...)
}

// Infof logs an info message
func Infof(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	log.Info().Msgf(format, args...)
}

// Warnf logs a warning message
func Warnf(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	log.Warn().Msgf(format, args...)
}

// Errorf logs an error message
func Errorf(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	log.Error().Msgf(format, args...)
}
